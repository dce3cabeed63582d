package domain

// WalletEvent is a push notification from the engine. Events carry no
// ordering or delivery guarantee beyond arrival order from a single engine
// instance; consumers treat them as idempotent refresh triggers.
type WalletEvent interface {
	walletEvent()
}

type SyncedEvent struct{}

type PaymentSucceededEvent struct {
	Payment Payment
}

type ClaimDepositsSucceededEvent struct {
	Deposits []DepositInfo
}

type ClaimDepositsFailedEvent struct {
	Deposits []DepositInfo
}

func (SyncedEvent) walletEvent()                 {}
func (PaymentSucceededEvent) walletEvent()       {}
func (ClaimDepositsSucceededEvent) walletEvent() {}
func (ClaimDepositsFailedEvent) walletEvent()    {}
