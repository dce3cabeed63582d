package ports

import (
	"context"

	"github.com/photonwallet/photon/internal/core/domain"
)

// EngineConfig carries everything needed to open a wallet engine session.
type EngineConfig struct {
	Mnemonic string
	Network  domain.Network
	BaseURL  string
	WSURL    string
	APIKey   string
}

// EventListener receives engine events. Callbacks run on the engine's
// event loop goroutine and must not block.
type EventListener func(event domain.WalletEvent)

// WalletEngine is the opaque wallet backend. Implementations own keys,
// channel state and chain interaction; callers only orchestrate.
type WalletEngine interface {
	ParseInput(ctx context.Context, input string) (domain.ParsedInput, error)

	PrepareSendPayment(ctx context.Context, input string, amountSats uint64) (*domain.PreparedSend, error)
	SendPayment(ctx context.Context, prepared domain.PreparedSend, options domain.SendOptions) (*domain.Payment, error)
	PrepareLnurlPay(
		ctx context.Context, amountSats uint64, comment string,
		payRequest domain.LnurlPayInput, validateSuccessURL bool,
	) (*domain.PreparedLnurlPay, error)
	LnurlPay(ctx context.Context, prepared domain.PreparedLnurlPay) (*domain.LnurlPayResult, error)

	ReceivePayment(ctx context.Context, method domain.ReceiveMethod) (string, error)

	GetInfo(ctx context.Context) (*domain.WalletInfo, error)
	ListPayments(ctx context.Context, offset, limit uint32) ([]domain.Payment, error)

	UnclaimedDeposits(ctx context.Context) ([]domain.DepositInfo, error)
	ClaimDeposit(ctx context.Context, txid string, vout uint32, maxFee domain.Fee) error
	RefundDeposit(ctx context.Context, txid string, vout uint32, destination string, fee domain.Fee) (string, error)

	LightningAddress(ctx context.Context) (*domain.LightningAddressInfo, error)
	CheckLightningAddressAvailable(ctx context.Context, username string) (bool, error)
	RegisterLightningAddress(ctx context.Context, username, description string) (*domain.LightningAddressInfo, error)
	DeleteLightningAddress(ctx context.Context) error

	AddEventListener(listener EventListener) (string, error)
	RemoveEventListener(id string) error

	Connected() bool
	Disconnect() error
}

// EngineFactory opens engine sessions. A non-nil error means no session
// was established and no resources are held.
type EngineFactory interface {
	Connect(ctx context.Context, cfg EngineConfig) (WalletEngine, error)
}
