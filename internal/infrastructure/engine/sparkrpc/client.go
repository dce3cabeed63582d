package sparkrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/photonwallet/photon/internal/core/domain"
	"github.com/photonwallet/photon/internal/core/ports"
)

const defaultHTTPTimeout = 30 * time.Second

// Factory opens engine sessions against a spark RPC daemon.
type Factory struct{}

func NewFactory() ports.EngineFactory {
	return &Factory{}
}

func (f *Factory) Connect(ctx context.Context, cfg ports.EngineConfig) (ports.WalletEngine, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("missing engine url")
	}
	wsURL := cfg.WSURL
	if wsURL == "" {
		wsURL = deriveWSURL(cfg.BaseURL)
	}

	e := &engine{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		wsURL:   wsURL,
		apiKey:  cfg.APIKey,
		client:  http.Client{Timeout: defaultHTTPTimeout},
	}

	resp, err := sendPostRequest[connectResponse](ctx, e, "/session", connectRequest{
		Mnemonic: cfg.Mnemonic,
		Network:  string(cfg.Network),
	})
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%s", resp.Error)
	}
	e.sessionID = resp.SessionID

	if err := e.startEventStream(); err != nil {
		// nolint:all
		e.closeSession()
		return nil, err
	}
	return e, nil
}

type engine struct {
	baseURL   string
	wsURL     string
	apiKey    string
	sessionID string
	client    http.Client

	events *eventStream
}

func (e *engine) ParseInput(ctx context.Context, input string) (domain.ParsedInput, error) {
	resp, err := sendPostRequest[parsedInput](ctx, e, "/parse", parseRequest{Input: input})
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%s", resp.Error)
	}
	return resp.toDomain()
}

func (e *engine) PrepareSendPayment(
	ctx context.Context, input string, amountSats uint64,
) (*domain.PreparedSend, error) {
	resp, err := sendPostRequest[preparedSend](ctx, e, "/payments/prepare", prepareSendRequest{
		Input:      input,
		AmountSats: amountSats,
	})
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%s", resp.Error)
	}
	method, err := resp.Method.toDomain()
	if err != nil {
		return nil, err
	}
	return &domain.PreparedSend{Method: method, AmountSats: resp.AmountSats}, nil
}

func (e *engine) SendPayment(
	ctx context.Context, prepared domain.PreparedSend, options domain.SendOptions,
) (*domain.Payment, error) {
	resp, err := sendPostRequest[payment](ctx, e, "/payments/send", sendPaymentRequest{
		Prepared: preparedSend{
			Method:     sendMethodFromDomain(prepared.Method),
			AmountSats: prepared.AmountSats,
		},
		Options: sendOptionsFromDomain(options),
	})
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%s", resp.Error)
	}
	out := resp.toDomain()
	return &out, nil
}

func (e *engine) PrepareLnurlPay(
	ctx context.Context, amountSats uint64, comment string,
	payRequest domain.LnurlPayInput, validateSuccessURL bool,
) (*domain.PreparedLnurlPay, error) {
	resp, err := sendPostRequest[preparedLnurlPay](ctx, e, "/lnurl/prepare", prepareLnurlPayRequest{
		AmountSats:         amountSats,
		Comment:            comment,
		PayRequest:         lnurlPayFromDomain(payRequest),
		ValidateSuccessURL: validateSuccessURL,
	})
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%s", resp.Error)
	}
	out := resp.toDomain()
	return &out, nil
}

func (e *engine) LnurlPay(
	ctx context.Context, prepared domain.PreparedLnurlPay,
) (*domain.LnurlPayResult, error) {
	type lnurlPayResponse struct {
		Payment       payment        `json:"payment"`
		SuccessAction *successAction `json:"successAction,omitempty"`

		Error string `json:"error"`
	}
	resp, err := sendPostRequest[lnurlPayResponse](ctx, e, "/lnurl/pay", preparedLnurlPayFromDomain(prepared))
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%s", resp.Error)
	}
	return &domain.LnurlPayResult{
		Payment:       resp.Payment.toDomain(),
		SuccessAction: resp.SuccessAction.toDomain(),
	}, nil
}

func (e *engine) ReceivePayment(ctx context.Context, method domain.ReceiveMethod) (string, error) {
	var req receiveRequest
	switch m := method.(type) {
	case domain.SparkReceive:
		req.Type = "sparkAddress"
	case domain.BitcoinReceive:
		req.Type = "bitcoinAddress"
	case domain.Bolt11Receive:
		req.Type = "bolt11Invoice"
		req.Description = m.Description
		req.AmountSats = m.AmountSats
	default:
		return "", fmt.Errorf("unknown receive method")
	}

	resp, err := sendPostRequest[receiveResponse](ctx, e, "/receive", req)
	if err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", fmt.Errorf("%s", resp.Error)
	}
	return resp.PaymentRequest, nil
}

func (e *engine) GetInfo(ctx context.Context) (*domain.WalletInfo, error) {
	resp, err := sendGetRequest[infoResponse](ctx, e, "/info")
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%s", resp.Error)
	}
	return &domain.WalletInfo{BalanceSats: resp.BalanceSats}, nil
}

func (e *engine) ListPayments(ctx context.Context, offset, limit uint32) ([]domain.Payment, error) {
	resp, err := sendGetRequest[listPaymentsResponse](
		ctx, e, fmt.Sprintf("/payments?offset=%d&limit=%d", offset, limit),
	)
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%s", resp.Error)
	}
	out := make([]domain.Payment, 0, len(resp.Payments))
	for _, p := range resp.Payments {
		out = append(out, p.toDomain())
	}
	return out, nil
}

func (e *engine) UnclaimedDeposits(ctx context.Context) ([]domain.DepositInfo, error) {
	resp, err := sendGetRequest[listDepositsResponse](ctx, e, "/deposits/unclaimed")
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%s", resp.Error)
	}
	return depositsToDomain(resp.Deposits), nil
}

func (e *engine) ClaimDeposit(ctx context.Context, txid string, vout uint32, maxFee domain.Fee) error {
	resp, err := sendPostRequest[struct {
		Error string `json:"error"`
	}](ctx, e, "/deposits/claim", claimDepositRequest{
		Txid:   txid,
		Vout:   vout,
		MaxFee: feeFromDomain(maxFee),
	})
	if err != nil {
		return err
	}
	if resp.Error != "" {
		return fmt.Errorf("%s", resp.Error)
	}
	return nil
}

func (e *engine) RefundDeposit(
	ctx context.Context, txid string, vout uint32, destination string, refundFee domain.Fee,
) (string, error) {
	resp, err := sendPostRequest[refundDepositResponse](ctx, e, "/deposits/refund", refundDepositRequest{
		Txid:        txid,
		Vout:        vout,
		Destination: destination,
		Fee:         feeFromDomain(refundFee),
	})
	if err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", fmt.Errorf("%s", resp.Error)
	}
	return resp.Txid, nil
}

func (e *engine) LightningAddress(ctx context.Context) (*domain.LightningAddressInfo, error) {
	resp, err := sendGetRequest[getLightningAddressResponse](ctx, e, "/lnurl/address")
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%s", resp.Error)
	}
	if resp.Info == nil {
		return nil, nil
	}
	info := resp.Info.toDomain()
	return &info, nil
}

func (e *engine) CheckLightningAddressAvailable(ctx context.Context, username string) (bool, error) {
	resp, err := sendGetRequest[checkUsernameResponse](
		ctx, e, "/lnurl/address/available?username="+username,
	)
	if err != nil {
		return false, err
	}
	if resp.Error != "" {
		return false, fmt.Errorf("%s", resp.Error)
	}
	return resp.Available, nil
}

func (e *engine) RegisterLightningAddress(
	ctx context.Context, username, description string,
) (*domain.LightningAddressInfo, error) {
	resp, err := sendPostRequest[lightningAddressInfo](ctx, e, "/lnurl/address", registerAddressRequest{
		Username:    username,
		Description: description,
	})
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusConflict {
			return nil, domain.ErrAddressUnavailable
		}
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%s", resp.Error)
	}
	info := resp.toDomain()
	return &info, nil
}

func (e *engine) DeleteLightningAddress(ctx context.Context) error {
	_, err := callAPI[struct{}](ctx, e, http.MethodDelete, e.baseURL+"/v1/lnurl/address", nil)
	return err
}

func (e *engine) AddEventListener(listener ports.EventListener) (string, error) {
	if e.events == nil {
		return "", fmt.Errorf("event stream not running")
	}
	return e.events.addListener(listener), nil
}

func (e *engine) RemoveEventListener(id string) error {
	if e.events == nil {
		return fmt.Errorf("event stream not running")
	}
	return e.events.removeListener(id)
}

func (e *engine) Connected() bool {
	return e.events != nil && e.events.running()
}

func (e *engine) Disconnect() error {
	if e.events != nil {
		e.events.close()
	}
	return e.closeSession()
}

func (e *engine) startEventStream() error {
	stream, err := newEventStream(e.wsURL+"/v1/events", e.apiKey, e.sessionID)
	if err != nil {
		return fmt.Errorf("failed to open event stream: %w", err)
	}
	e.events = stream
	return nil
}

func (e *engine) closeSession() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultHTTPTimeout)
	defer cancel()
	_, err := callAPI[struct{}](ctx, e, http.MethodDelete, e.baseURL+"/v1/session", nil)
	return err
}

func deriveWSURL(baseURL string) string {
	switch {
	case strings.HasPrefix(baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(baseURL, "https://")
	case strings.HasPrefix(baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(baseURL, "http://")
	}
	return "ws://" + baseURL
}

func sendGetRequest[T any](ctx context.Context, e *engine, endpoint string) (*T, error) {
	return callAPI[T](ctx, e, http.MethodGet, e.baseURL+"/v1"+endpoint, nil)
}

func sendPostRequest[T any](ctx context.Context, e *engine, endpoint string, requestBody any) (*T, error) {
	return callAPI[T](ctx, e, http.MethodPost, e.baseURL+"/v1"+endpoint, requestBody)
}

func callAPI[T any](ctx context.Context, e *engine, method, url string, reqBody any) (*T, error) {
	var body io.Reader
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("new %s %s: %w", method, url, err)
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}
	if e.sessionID != "" {
		req.Header.Set("X-Session-Id", e.sessionID)
	}

	res, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg := strings.TrimSpace(string(raw))
		if len(msg) > 2000 {
			msg = msg[:2000] + "...(truncated)"
		}
		return nil, &HTTPError{
			Method:     method,
			URL:        url,
			StatusCode: res.StatusCode,
			Body:       msg,
		}
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		var zero T
		return &zero, nil
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		snip := strings.TrimSpace(string(raw))
		if len(snip) > 300 {
			snip = snip[:300] + "...(truncated)"
		}
		return nil, fmt.Errorf("unmarshal JSON: %w (body: %q)", err, snip)
	}

	return &out, nil
}

type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}
