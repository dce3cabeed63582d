package application_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/photonwallet/photon/internal/core/domain"
	"github.com/photonwallet/photon/internal/core/ports"
)

// fakeEngine implements ports.WalletEngine with overridable behavior per
// test. Unset hooks fail loudly so tests only exercise what they declare.
type fakeEngine struct {
	mu sync.Mutex

	parseFn        func(input string) (domain.ParsedInput, error)
	prepareFn      func(input string, amountSats uint64) (*domain.PreparedSend, error)
	sendFn         func(prepared domain.PreparedSend, options domain.SendOptions) (*domain.Payment, error)
	prepareLnurlFn func(amountSats uint64, comment string, pay domain.LnurlPayInput) (*domain.PreparedLnurlPay, error)
	lnurlPayFn     func(prepared domain.PreparedLnurlPay) (*domain.LnurlPayResult, error)
	receiveFn      func(method domain.ReceiveMethod) (string, error)
	claimFn        func(txid string, vout uint32, maxFee domain.Fee) error
	refundFn       func(txid string, vout uint32, destination string, fee domain.Fee) (string, error)
	depositsFn     func() ([]domain.DepositInfo, error)

	lnAddress       *domain.LightningAddressInfo
	taken           map[string]bool
	registered      []string
	registerRejects int

	balanceSats uint64
	payments    []domain.Payment
	listCalls   int

	listeners map[string]ports.EventListener
	nextID    int
	connected bool
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		taken:     map[string]bool{},
		listeners: map[string]ports.EventListener{},
		connected: true,
	}
}

func (e *fakeEngine) ParseInput(_ context.Context, input string) (domain.ParsedInput, error) {
	if e.parseFn == nil {
		return nil, fmt.Errorf("unexpected ParseInput call")
	}
	return e.parseFn(input)
}

func (e *fakeEngine) PrepareSendPayment(_ context.Context, input string, amountSats uint64) (*domain.PreparedSend, error) {
	if e.prepareFn == nil {
		return nil, fmt.Errorf("unexpected PrepareSendPayment call")
	}
	return e.prepareFn(input, amountSats)
}

func (e *fakeEngine) SendPayment(_ context.Context, prepared domain.PreparedSend, options domain.SendOptions) (*domain.Payment, error) {
	if e.sendFn == nil {
		return nil, fmt.Errorf("unexpected SendPayment call")
	}
	return e.sendFn(prepared, options)
}

func (e *fakeEngine) PrepareLnurlPay(
	_ context.Context, amountSats uint64, comment string, pay domain.LnurlPayInput, _ bool,
) (*domain.PreparedLnurlPay, error) {
	if e.prepareLnurlFn == nil {
		return nil, fmt.Errorf("unexpected PrepareLnurlPay call")
	}
	return e.prepareLnurlFn(amountSats, comment, pay)
}

func (e *fakeEngine) LnurlPay(_ context.Context, prepared domain.PreparedLnurlPay) (*domain.LnurlPayResult, error) {
	if e.lnurlPayFn == nil {
		return nil, fmt.Errorf("unexpected LnurlPay call")
	}
	return e.lnurlPayFn(prepared)
}

func (e *fakeEngine) ReceivePayment(_ context.Context, method domain.ReceiveMethod) (string, error) {
	if e.receiveFn == nil {
		return "", fmt.Errorf("unexpected ReceivePayment call")
	}
	return e.receiveFn(method)
}

func (e *fakeEngine) GetInfo(_ context.Context) (*domain.WalletInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return &domain.WalletInfo{BalanceSats: e.balanceSats}, nil
}

func (e *fakeEngine) ListPayments(_ context.Context, _, _ uint32) ([]domain.Payment, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listCalls++
	out := make([]domain.Payment, len(e.payments))
	copy(out, e.payments)
	return out, nil
}

func (e *fakeEngine) setBalance(sats uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.balanceSats = sats
}

func (e *fakeEngine) getListCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.listCalls
}

func (e *fakeEngine) UnclaimedDeposits(_ context.Context) ([]domain.DepositInfo, error) {
	if e.depositsFn == nil {
		return nil, nil
	}
	return e.depositsFn()
}

func (e *fakeEngine) ClaimDeposit(_ context.Context, txid string, vout uint32, maxFee domain.Fee) error {
	if e.claimFn == nil {
		return fmt.Errorf("unexpected ClaimDeposit call")
	}
	return e.claimFn(txid, vout, maxFee)
}

func (e *fakeEngine) RefundDeposit(
	_ context.Context, txid string, vout uint32, destination string, fee domain.Fee,
) (string, error) {
	if e.refundFn == nil {
		return "", fmt.Errorf("unexpected RefundDeposit call")
	}
	return e.refundFn(txid, vout, destination, fee)
}

func (e *fakeEngine) LightningAddress(_ context.Context) (*domain.LightningAddressInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lnAddress, nil
}

func (e *fakeEngine) CheckLightningAddressAvailable(_ context.Context, username string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.taken[username], nil
}

func (e *fakeEngine) RegisterLightningAddress(
	_ context.Context, username, description string,
) (*domain.LightningAddressInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.taken[username] {
		return nil, domain.ErrAddressUnavailable
	}
	if e.registerRejects > 0 {
		e.registerRejects--
		return nil, domain.ErrAddressUnavailable
	}
	e.registered = append(e.registered, username)
	info := &domain.LightningAddressInfo{
		Address:     username + "@wallet.test",
		Username:    username,
		Description: description,
	}
	e.lnAddress = info
	return info, nil
}

func (e *fakeEngine) DeleteLightningAddress(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lnAddress = nil
	return nil
}

func (e *fakeEngine) AddEventListener(listener ports.EventListener) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	id := fmt.Sprintf("listener-%d", e.nextID)
	e.listeners[id] = listener
	return id, nil
}

func (e *fakeEngine) RemoveEventListener(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.listeners[id]; !ok {
		return fmt.Errorf("unknown listener %s", id)
	}
	delete(e.listeners, id)
	return nil
}

func (e *fakeEngine) emit(event domain.WalletEvent) {
	e.mu.Lock()
	listeners := make([]ports.EventListener, 0, len(e.listeners))
	for _, l := range e.listeners {
		listeners = append(listeners, l)
	}
	e.mu.Unlock()
	for _, l := range listeners {
		l(event)
	}
}

func (e *fakeEngine) Connected() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.connected
}

func (e *fakeEngine) Disconnect() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.connected = false
	return nil
}

type fakeFactory struct {
	engine *fakeEngine
	err    error

	mu       sync.Mutex
	connects []ports.EngineConfig
}

func (f *fakeFactory) Connect(_ context.Context, cfg ports.EngineConfig) (ports.WalletEngine, error) {
	f.mu.Lock()
	f.connects = append(f.connects, cfg)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.engine.mu.Lock()
	f.engine.connected = true
	f.engine.mu.Unlock()
	return f.engine, nil
}

type fakeScheduler struct {
	mu        sync.Mutex
	started   bool
	scheduled []uint32
}

func (s *fakeScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = true
}

func (s *fakeScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = false
}

func (s *fakeScheduler) ScheduleRecurring(intervalSecs uint32, _ func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled = append(s.scheduled, intervalSecs)
	return nil
}

func (s *fakeScheduler) CancelRecurring() {}

type fakeSettingsRepo struct {
	mu       sync.Mutex
	settings *domain.Settings
}

func (r *fakeSettingsRepo) AddDefaultSettings(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	defaults := domain.DefaultSettings()
	r.settings = &defaults
	return nil
}

func (r *fakeSettingsRepo) GetSettings(_ context.Context) (*domain.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings == nil {
		return nil, fmt.Errorf("settings not found")
	}
	settings := *r.settings
	return &settings, nil
}

func (r *fakeSettingsRepo) UpdateSettings(_ context.Context, settings domain.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings = &settings
	return nil
}

func (r *fakeSettingsRepo) CleanSettings(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings = nil
	return nil
}

func (r *fakeSettingsRepo) Close() {}

type fakeCredentialsRepo struct {
	mu       sync.Mutex
	mnemonic string
}

func (r *fakeCredentialsRepo) SaveMnemonic(_ context.Context, mnemonic string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mnemonic = mnemonic
	return nil
}

func (r *fakeCredentialsRepo) GetMnemonic(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mnemonic, nil
}

func (r *fakeCredentialsRepo) ClearMnemonic(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mnemonic = ""
	return nil
}

func (r *fakeCredentialsRepo) Close() {}

type fakeRepoManager struct {
	settings    *fakeSettingsRepo
	credentials *fakeCredentialsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		settings:    &fakeSettingsRepo{},
		credentials: &fakeCredentialsRepo{},
	}
}

func (m *fakeRepoManager) Settings() domain.SettingsRepository       { return m.settings }
func (m *fakeRepoManager) Credentials() domain.CredentialsRepository { return m.credentials }
func (m *fakeRepoManager) Close()                                    {}

func engineGetter(e *fakeEngine) func() (ports.WalletEngine, error) {
	return func() (ports.WalletEngine, error) { return e, nil }
}
