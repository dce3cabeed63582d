package sparkrpc

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/photonwallet/photon/internal/core/domain"
	"github.com/photonwallet/photon/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

const wsHandshakeTimeout = 10 * time.Second

// eventStream reads engine events off a websocket and fans them out to
// registered listeners. Each listener consumes from its own buffered
// channel on a dedicated goroutine, so a slow callback never stalls the
// read loop or the other listeners. Events that overflow a listener's
// buffer are dropped.
type eventStream struct {
	conn *websocket.Conn

	mu        sync.Mutex
	listeners map[string]*streamListener
	closed    bool
	done      chan struct{}
}

const listenerBuffer = 64

type streamListener struct {
	fn ports.EventListener
	ch chan domain.WalletEvent
}

func newEventStream(url, apiKey, sessionID string) (*eventStream, error) {
	header := http.Header{}
	if apiKey != "" {
		header.Set("Authorization", "Bearer "+apiKey)
	}
	if sessionID != "" {
		header.Set("X-Session-Id", sessionID)
	}

	dialer := websocket.Dialer{HandshakeTimeout: wsHandshakeTimeout}
	conn, resp, err := dialer.Dial(url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", url, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	s := &eventStream{
		conn:      conn,
		listeners: make(map[string]*streamListener),
		done:      make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

func (s *eventStream) addListener(listener ports.EventListener) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	l := &streamListener{fn: listener, ch: make(chan domain.WalletEvent, listenerBuffer)}
	s.listeners[id] = l
	go func() {
		for evt := range l.ch {
			l.fn(evt)
		}
	}()
	return id
}

func (s *eventStream) removeListener(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listeners[id]
	if !ok {
		return fmt.Errorf("unknown listener %s", id)
	}
	delete(s.listeners, id)
	close(l.ch)
	return nil
}

func (s *eventStream) running() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

func (s *eventStream) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	// nolint:all
	s.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	// nolint:all
	s.conn.Close()
	<-s.done

	s.mu.Lock()
	for id, l := range s.listeners {
		delete(s.listeners, id)
		close(l.ch)
	}
	s.mu.Unlock()
}

func (s *eventStream) readLoop() {
	defer close(s.done)

	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if !closed {
				log.WithError(err).Warn("engine event stream closed")
			}
			return
		}

		var evt event
		if err := json.Unmarshal(msg, &evt); err != nil {
			log.WithError(err).Warn("failed to decode engine event")
			continue
		}

		domainEvent, ok := evt.toDomain()
		if !ok {
			log.WithField("type", evt.Type).Debug("ignoring unknown engine event")
			continue
		}

		s.mu.Lock()
		for _, l := range s.listeners {
			select {
			case l.ch <- domainEvent:
			default:
				log.WithField("type", evt.Type).Warn("dropping event for slow listener")
			}
		}
		s.mu.Unlock()
	}
}
