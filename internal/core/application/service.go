package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/photonwallet/photon/internal/core/domain"
	"github.com/photonwallet/photon/internal/core/ports"
	"github.com/photonwallet/photon/utils"
	log "github.com/sirupsen/logrus"
)

type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

type SessionStatus string

const (
	SessionDisconnected SessionStatus = "disconnected"
	SessionConnecting   SessionStatus = "connecting"
	SessionConnected    SessionStatus = "connected"
)

// Notification is a user facing event produced by the wallet session.
type Notification struct {
	Message   string
	Timestamp time.Time
}

const notificationLimit = 50

// Snapshot is the last known wallet state, refreshed on engine events and
// on the periodic sync. Reads never hit the engine.
type Snapshot struct {
	BalanceSats uint64
	Payments    []domain.Payment
	UpdatedAt   time.Time
}

// Service owns the wallet session: the single engine connection, its
// event listener, the periodic refresh and the send, receive and deposit
// flows layered on top. All engine lifecycle changes go through it.
type Service struct {
	BuildInfo BuildInfo

	engineFactory ports.EngineFactory
	repoManager   ports.RepoManager
	schedulerSvc  ports.SchedulerService

	mu            sync.RWMutex
	engine        ports.WalletEngine
	status        SessionStatus
	restoring     bool
	fingerprint   string
	listenerID    string
	snapshot      Snapshot
	notifications []Notification

	engineBaseURL string
	engineWSURL   string
	engineAPIKey  string

	sendFlow   *SendFlow
	recvFlow   *ReceiveFlow
	depositSvc *DepositService
}

func NewService(
	buildInfo BuildInfo,
	engineFactory ports.EngineFactory,
	repoManager ports.RepoManager,
	schedulerSvc ports.SchedulerService,
	network domain.Network,
	engineBaseURL, engineWSURL, engineAPIKey string,
) (*Service, error) {
	ctx := context.Background()
	if _, err := repoManager.Settings().GetSettings(ctx); err != nil {
		if err := repoManager.Settings().AddDefaultSettings(ctx); err != nil {
			return nil, err
		}
		// first run: the configured network seeds the stored settings
		if network != "" {
			seeded, err := repoManager.Settings().GetSettings(ctx)
			if err == nil && seeded.Network != network {
				updated := *seeded
				updated.Network = network
				if err := repoManager.Settings().UpdateSettings(ctx, updated); err != nil {
					return nil, err
				}
			}
		}
	}

	svc := &Service{
		BuildInfo:     buildInfo,
		engineFactory: engineFactory,
		repoManager:   repoManager,
		schedulerSvc:  schedulerSvc,
		status:        SessionDisconnected,
		engineBaseURL: engineBaseURL,
		engineWSURL:   engineWSURL,
		engineAPIKey:  engineAPIKey,
	}
	svc.sendFlow = NewSendFlow(svc.getEngine, svc.preferSpark, svc.onPaymentFinished)
	svc.recvFlow = NewReceiveFlow(svc.getEngine, svc.currentNetwork)
	svc.depositSvc = NewDepositService(svc.getEngine, svc.GetSettings)
	return svc, nil
}

func (s *Service) Send() *SendFlow           { return s.sendFlow }
func (s *Service) Receive() *ReceiveFlow     { return s.recvFlow }
func (s *Service) Deposits() *DepositService { return s.depositSvc }

func (s *Service) Status() SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Service) IsConnected() bool {
	return s.Status() == SessionConnected
}

// IsRestoring reports whether the engine is still replaying history for
// the current session. Cleared by the first synced event.
func (s *Service) IsRestoring() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.restoring
}

// Fingerprint identifies the connected wallet without exposing key
// material. Empty while disconnected.
func (s *Service) Fingerprint() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fingerprint
}

// Restore reconnects with the saved mnemonic, if any. A failed restore
// clears the saved mnemonic so the next start lands on onboarding
// instead of a crash loop.
func (s *Service) Restore(ctx context.Context) (bool, error) {
	mnemonic, err := s.repoManager.Credentials().GetMnemonic(ctx)
	if err != nil {
		return false, err
	}
	if mnemonic == "" {
		return false, nil
	}
	if err := s.Connect(ctx, mnemonic); err != nil {
		log.WithError(err).Warn("failed to restore wallet session")
		if clearErr := s.repoManager.Credentials().ClearMnemonic(ctx); clearErr != nil {
			log.WithError(clearErr).Warn("failed to clear saved mnemonic")
		}
		return false, err
	}
	return true, nil
}

// Connect opens the engine session for the given mnemonic on the
// configured network and starts the event listener and periodic sync.
func (s *Service) Connect(ctx context.Context, mnemonic string) error {
	if err := utils.IsValidMnemonic(mnemonic); err != nil {
		return err
	}

	s.mu.Lock()
	if s.status != SessionDisconnected {
		s.mu.Unlock()
		return fmt.Errorf("session already %s", s.status)
	}
	s.status = SessionConnecting
	s.mu.Unlock()

	settings, err := s.GetSettings(ctx)
	if err != nil {
		s.setStatus(SessionDisconnected)
		return err
	}

	engine, err := s.engineFactory.Connect(ctx, ports.EngineConfig{
		Mnemonic: mnemonic,
		Network:  settings.Network,
		BaseURL:  s.engineBaseURL,
		WSURL:    s.engineWSURL,
		APIKey:   s.engineAPIKey,
	})
	if err != nil {
		s.setStatus(SessionDisconnected)
		return fmt.Errorf("failed to connect wallet engine: %w", err)
	}

	listenerID, err := engine.AddEventListener(s.handleEvent)
	if err != nil {
		// nolint:all
		engine.Disconnect()
		s.setStatus(SessionDisconnected)
		return err
	}

	if err := s.repoManager.Credentials().SaveMnemonic(ctx, mnemonic); err != nil {
		// nolint:all
		engine.RemoveEventListener(listenerID)
		// nolint:all
		engine.Disconnect()
		s.setStatus(SessionDisconnected)
		return err
	}

	fingerprint, err := utils.WalletFingerprint(mnemonic)
	if err != nil {
		// nolint:all
		engine.RemoveEventListener(listenerID)
		// nolint:all
		engine.Disconnect()
		s.setStatus(SessionDisconnected)
		return err
	}

	s.mu.Lock()
	s.engine = engine
	s.listenerID = listenerID
	s.status = SessionConnected
	// the engine replays history until it reports synced
	s.restoring = true
	s.fingerprint = fingerprint
	s.mu.Unlock()

	s.schedulerSvc.Start()
	if err := s.schedulerSvc.ScheduleRecurring(settings.SyncIntervalSecs, func() {
		s.refresh(context.Background())
	}); err != nil {
		log.WithError(err).Warn("failed to schedule periodic sync")
	}

	go s.refresh(ctx)

	log.WithField("network", settings.Network).Info("wallet session connected")
	return nil
}

// Disconnect tears the session down but keeps the saved mnemonic, so the
// next start restores silently.
func (s *Service) Disconnect() error {
	s.mu.Lock()
	engine := s.engine
	listenerID := s.listenerID
	s.engine = nil
	s.listenerID = ""
	s.status = SessionDisconnected
	s.restoring = false
	s.fingerprint = ""
	s.snapshot = Snapshot{}
	s.mu.Unlock()

	s.schedulerSvc.CancelRecurring()
	s.schedulerSvc.Stop()
	s.sendFlow.Reset()
	s.recvFlow.Reset()

	if engine == nil {
		return nil
	}
	if err := engine.RemoveEventListener(listenerID); err != nil {
		log.WithError(err).Warn("failed to remove event listener")
	}
	if err := engine.Disconnect(); err != nil {
		return err
	}
	log.Info("wallet session disconnected")
	return nil
}

// Logout disconnects and forgets the mnemonic.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.Disconnect(); err != nil {
		return err
	}
	return s.repoManager.Credentials().ClearMnemonic(ctx)
}

// SwitchNetwork persists the new network, tears the session down and
// reconnects with the saved mnemonic.
func (s *Service) SwitchNetwork(ctx context.Context, network domain.Network) error {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return err
	}
	if settings.Network == network {
		return nil
	}

	mnemonic, err := s.repoManager.Credentials().GetMnemonic(ctx)
	if err != nil {
		return err
	}

	updated := *settings
	updated.Network = network
	if err := s.repoManager.Settings().UpdateSettings(ctx, updated); err != nil {
		return err
	}

	if mnemonic == "" {
		return nil
	}
	if err := s.Disconnect(); err != nil {
		return err
	}
	return s.Connect(ctx, mnemonic)
}

func (s *Service) GenerateMnemonic() (string, error) {
	return utils.NewMnemonic()
}

// BackupMnemonic returns the saved mnemonic for the backup screen.
func (s *Service) BackupMnemonic(ctx context.Context) (string, error) {
	mnemonic, err := s.repoManager.Credentials().GetMnemonic(ctx)
	if err != nil {
		return "", err
	}
	if mnemonic == "" {
		return "", fmt.Errorf("no wallet to back up")
	}
	return mnemonic, nil
}

func (s *Service) GetSettings(ctx context.Context) (*domain.Settings, error) {
	settings, err := s.repoManager.Settings().GetSettings(ctx)
	if err != nil {
		defaults := domain.DefaultSettings()
		return &defaults, nil
	}
	return settings, nil
}

func (s *Service) UpdateSettings(ctx context.Context, settings domain.Settings) error {
	return s.repoManager.Settings().UpdateSettings(ctx, settings)
}

// GetSnapshot returns the cached balance and payment history.
func (s *Service) GetSnapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Refresh reloads balance and payments from the engine.
func (s *Service) Refresh(ctx context.Context) error {
	return s.refresh(ctx)
}

func (s *Service) Notifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

func (s *Service) getEngine() (ports.WalletEngine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.engine == nil || s.status != SessionConnected {
		return nil, ErrEngineNotInitialized
	}
	return s.engine, nil
}

func (s *Service) currentNetwork() domain.Network {
	settings, err := s.GetSettings(context.Background())
	if err != nil {
		return domain.NetworkMainnet
	}
	return settings.Network
}

func (s *Service) preferSpark() bool {
	settings, err := s.GetSettings(context.Background())
	if err != nil {
		return true
	}
	return settings.PreferSparkOverLightning
}

func (s *Service) onPaymentFinished(payment domain.Payment) {
	go func() {
		if err := s.refresh(context.Background()); err != nil {
			log.WithError(err).Warn("failed to refresh after payment")
		}
	}()
}

// handleEvent runs on the engine's event loop goroutine.
func (s *Service) handleEvent(event domain.WalletEvent) {
	switch e := event.(type) {
	case domain.SyncedEvent:
		s.mu.Lock()
		s.restoring = false
		s.mu.Unlock()
		if err := s.refresh(context.Background()); err != nil {
			log.WithError(err).Debug("failed to refresh on sync event")
		}
	case domain.PaymentSucceededEvent:
		switch e.Payment.Type {
		case domain.PaymentReceive:
			s.notify(fmt.Sprintf("Received %d sats", e.Payment.AmountSats))
		case domain.PaymentSend:
			s.notify(fmt.Sprintf("Sent %d sats", e.Payment.AmountSats))
		}
		if err := s.refresh(context.Background()); err != nil {
			log.WithError(err).Debug("failed to refresh on payment event")
		}
	case domain.ClaimDepositsSucceededEvent:
		if len(e.Deposits) > 0 {
			s.notify(fmt.Sprintf("Claimed %d deposit(s)", len(e.Deposits)))
		}
		if err := s.refresh(context.Background()); err != nil {
			log.WithError(err).Debug("failed to refresh on claim event")
		}
	case domain.ClaimDepositsFailedEvent:
		if len(e.Deposits) > 0 {
			s.notify(fmt.Sprintf("Failed to claim %d deposit(s)", len(e.Deposits)))
		}
	}
}

func (s *Service) refresh(ctx context.Context) error {
	engine, err := s.getEngine()
	if err != nil {
		return err
	}

	info, err := engine.GetInfo(ctx)
	if err != nil {
		return fmt.Errorf("failed to get wallet info: %w", err)
	}
	payments, err := engine.ListPayments(ctx, 0, 50)
	if err != nil {
		return fmt.Errorf("failed to list payments: %w", err)
	}

	s.mu.Lock()
	s.snapshot = Snapshot{
		BalanceSats: info.BalanceSats,
		Payments:    payments,
		UpdatedAt:   time.Now(),
	}
	s.mu.Unlock()
	return nil
}

func (s *Service) notify(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, Notification{
		Message:   message,
		Timestamp: time.Now(),
	})
	if len(s.notifications) > notificationLimit {
		s.notifications = s.notifications[len(s.notifications)-notificationLimit:]
	}
}

func (s *Service) setStatus(status SessionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

func (s *Service) Close() {
	if err := s.Disconnect(); err != nil {
		log.WithError(err).Warn("failed to disconnect on shutdown")
	}
	s.repoManager.Close()
}
