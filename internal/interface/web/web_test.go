package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/photonwallet/photon/internal/core/application"
	"github.com/photonwallet/photon/internal/core/domain"
	"github.com/photonwallet/photon/internal/core/ports"
	"github.com/photonwallet/photon/internal/infrastructure/db"
	scheduler "github.com/photonwallet/photon/internal/infrastructure/scheduler/gocron"
	"github.com/stretchr/testify/require"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

// stubEngine implements the handful of engine calls the web tests drive.
// Anything else panics via the embedded nil interface.
type stubEngine struct {
	ports.WalletEngine
	quote     domain.OnchainFeeQuote
	infoCalls atomic.Int32
}

func (e *stubEngine) ParseInput(_ context.Context, input string) (domain.ParsedInput, error) {
	return domain.BitcoinAddressInput{
		Address: input,
		Network: domain.BitcoinNetworkMainnet,
	}, nil
}

func (e *stubEngine) PrepareSendPayment(
	_ context.Context, input string, amountSats uint64,
) (*domain.PreparedSend, error) {
	return &domain.PreparedSend{
		Method: domain.BitcoinSendMethod{
			Address:  domain.BitcoinAddressInput{Address: input},
			FeeQuote: e.quote,
		},
		AmountSats: amountSats,
	}, nil
}

func (e *stubEngine) SendPayment(
	_ context.Context, prepared domain.PreparedSend, _ domain.SendOptions,
) (*domain.Payment, error) {
	return &domain.Payment{
		ID:         "pay-1",
		Type:       domain.PaymentSend,
		Status:     domain.PaymentCompleted,
		AmountSats: prepared.AmountSats,
		FeeSats:    20,
		Method:     domain.MethodWithdraw,
	}, nil
}

func (e *stubEngine) GetInfo(_ context.Context) (*domain.WalletInfo, error) {
	e.infoCalls.Add(1)
	return &domain.WalletInfo{BalanceSats: 100_000}, nil
}

func (e *stubEngine) ListPayments(_ context.Context, _, _ uint32) ([]domain.Payment, error) {
	return nil, nil
}

func (e *stubEngine) AddEventListener(ports.EventListener) (string, error) { return "listener-1", nil }
func (e *stubEngine) RemoveEventListener(string) error                     { return nil }
func (e *stubEngine) Connected() bool                                      { return true }
func (e *stubEngine) Disconnect() error                                    { return nil }

type stubFactory struct {
	engine *stubEngine
}

func (f *stubFactory) Connect(context.Context, ports.EngineConfig) (ports.WalletEngine, error) {
	return f.engine, nil
}

func newTestServer(t *testing.T) (http.Handler, *stubEngine) {
	t.Helper()

	repoSvc, err := db.NewService(db.ServiceConfig{
		DbType:   "badger",
		DbConfig: []any{"", nil},
	})
	require.NoError(t, err)

	engine := &stubEngine{quote: domain.OnchainFeeQuote{
		ID:     "quote-1",
		Fast:   domain.SpeedFee{UserFeeSat: 20, L1BroadcastFeeSat: 3},
		Medium: domain.SpeedFee{UserFeeSat: 12, L1BroadcastFeeSat: 3},
		Slow:   domain.SpeedFee{UserFeeSat: 5, L1BroadcastFeeSat: 3},
	}}

	appSvc, err := application.NewService(
		application.BuildInfo{Version: "test", Commit: "none", Date: "now"},
		&stubFactory{engine: engine},
		repoSvc,
		scheduler.NewScheduler(), "",
		"http://engine.test", "", "",
	)
	require.NoError(t, err)
	require.NoError(t, appSvc.Connect(context.Background(), testMnemonic))
	t.Cleanup(appSvc.Close)

	return NewService(0, appSvc).server.Handler, engine
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func getFragment(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestSendEndToEnd(t *testing.T) {
	handler, engine := newTestServer(t)

	rec, body := doJSON(t, handler, http.MethodPost, "/api/v1/send/input",
		map[string]any{"input": "bc1qexampleaddress"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "amount", body["step"])

	rec, body = doJSON(t, handler, http.MethodPost, "/api/v1/send/amount",
		map[string]any{"amountSats": 25_000})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "confirm", body["step"])
	require.Equal(t, false, body["canConfirm"])
	require.Equal(t, "bitcoin", body["method"])
	tiers := body["tiers"].(map[string]any)
	require.Equal(t, float64(23), tiers["fast"])

	// confirming before a tier is picked is refused
	rec, _ = doJSON(t, handler, http.MethodPost, "/api/v1/send/confirm", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = doJSON(t, handler, http.MethodPost, "/api/v1/send/speed",
		map[string]any{"speed": "fast"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, body["canConfirm"])
	require.Equal(t, float64(23), body["feeSats"])

	frag := getFragment(t, handler, "/fragments/send")
	require.Equal(t, http.StatusOK, frag.Code)
	require.Contains(t, frag.Body.String(), "Confirm payment")

	rec, body = doJSON(t, handler, http.MethodPost, "/api/v1/send/confirm", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "result", body["step"])
	require.Equal(t, true, body["success"])
	payment := body["payment"].(map[string]any)
	require.Equal(t, float64(25_000), payment["amountSats"])
	require.Equal(t, float64(20), payment["feeSats"])

	frag = getFragment(t, handler, "/fragments/send")
	require.Contains(t, frag.Body.String(), "Payment Successful!")

	// closing the dialog refreshes the account in the background
	before := engine.infoCalls.Load()
	rec, body = doJSON(t, handler, http.MethodPost, "/api/v1/send/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "input", body["step"])
	require.Eventually(t, func() bool {
		return engine.infoCalls.Load() > before
	}, time.Second, 10*time.Millisecond)
}

func TestReceiveReset(t *testing.T) {
	handler, engine := newTestServer(t)

	before := engine.infoCalls.Load()
	rec, _ := doJSON(t, handler, http.MethodPost, "/api/v1/receive/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Eventually(t, func() bool {
		return engine.infoCalls.Load() > before
	}, time.Second, 10*time.Millisecond)
}

func TestFragmentsRequireHTMX(t *testing.T) {
	handler, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/fragments/balance", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	frag := getFragment(t, handler, "/fragments/balance")
	require.Equal(t, http.StatusOK, frag.Code)
	require.Contains(t, frag.Body.String(), "sats")
}

func TestSessionEndpoints(t *testing.T) {
	handler, _ := newTestServer(t)

	rec, body := doJSON(t, handler, http.MethodGet, "/api/v1/info", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "test", body["version"])

	rec, body = doJSON(t, handler, http.MethodGet, "/api/v1/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "connected", body["status"])
	require.Equal(t, true, body["restoring"])
	require.Len(t, body["fingerprint"], 8)

	rec, body = doJSON(t, handler, http.MethodGet, "/api/v1/session/mnemonic", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, testMnemonic, body["mnemonic"])
}

func TestSettingsEndpoints(t *testing.T) {
	handler, _ := newTestServer(t)

	rec, body := doJSON(t, handler, http.MethodGet, "/api/v1/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, body["preferSparkOverLightning"])

	// partial update leaves the other fields alone
	rec, body = doJSON(t, handler, http.MethodPost, "/api/v1/settings",
		map[string]any{"preferSparkOverLightning": false})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, false, body["preferSparkOverLightning"])
	require.Equal(t, "mainnet", body["network"])

	rec, body = doJSON(t, handler, http.MethodGet, "/api/v1/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, false, body["preferSparkOverLightning"])
}

func TestAccountEndpoints(t *testing.T) {
	handler, _ := newTestServer(t)

	rec, body := doJSON(t, handler, http.MethodPost, "/api/v1/account/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(100_000), body["balanceSats"])
}

func TestQRCode(t *testing.T) {
	handler, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/qr?data=bc1qexample", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	req = httptest.NewRequest(http.MethodGet, "/qr", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
