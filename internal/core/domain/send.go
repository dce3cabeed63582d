package domain

// ConfirmationSpeed is an on-chain fee tier chosen by the user.
type ConfirmationSpeed string

const (
	SpeedFast   ConfirmationSpeed = "fast"
	SpeedMedium ConfirmationSpeed = "medium"
	SpeedSlow   ConfirmationSpeed = "slow"
)

// SpeedFee is one tier of an on-chain fee quote.
type SpeedFee struct {
	UserFeeSat        uint64
	L1BroadcastFeeSat uint64
}

// Total is the fee the user effectively pays for this tier.
func (f SpeedFee) Total() uint64 {
	return f.UserFeeSat + f.L1BroadcastFeeSat
}

// OnchainFeeQuote is the 3-tier fee quote returned when preparing a bitcoin
// address send.
type OnchainFeeQuote struct {
	ID        string
	ExpiresAt int64
	Fast      SpeedFee
	Medium    SpeedFee
	Slow      SpeedFee
}

// Tier returns the quote for the given speed.
func (q OnchainFeeQuote) Tier(speed ConfirmationSpeed) (SpeedFee, bool) {
	switch speed {
	case SpeedFast:
		return q.Fast, true
	case SpeedMedium:
		return q.Medium, true
	case SpeedSlow:
		return q.Slow, true
	}
	return SpeedFee{}, false
}

// SendMethod is the engine-resolved payment method of a prepared send.
type SendMethod interface {
	sendMethod()
}

type BitcoinSendMethod struct {
	Address  BitcoinAddressInput
	FeeQuote OnchainFeeQuote
}

// Bolt11SendMethod carries the fee alternatives for paying a Lightning
// invoice. SparkTransferFeeSats is nil when no Spark route exists.
type Bolt11SendMethod struct {
	Invoice              Bolt11InvoiceInput
	SparkTransferFeeSats *uint64
	LightningFeeSats     uint64
}

type SparkSendMethod struct {
	Address string
	FeeSats uint64
}

func (BitcoinSendMethod) sendMethod() {}
func (Bolt11SendMethod) sendMethod()  {}
func (SparkSendMethod) sendMethod()   {}

// PreparedSend is the engine's fee/route preparation for one send attempt.
// It is valid for exactly one execution; changing the amount or fee tier
// requires re-preparation.
type PreparedSend struct {
	Method     SendMethod
	AmountSats uint64
}

// SendOptions is the execution-time choice correlated with the prepared
// method. The option kind must match the method kind.
type SendOptions interface {
	sendOptions()
}

type BitcoinSendOptions struct {
	Speed ConfirmationSpeed
}

type Bolt11SendOptions struct {
	UseSpark bool
}

func (BitcoinSendOptions) sendOptions() {}
func (Bolt11SendOptions) sendOptions()  {}

// SuccessActionKind tags the LNURL success action variants.
type SuccessActionKind string

const (
	SuccessActionMessage SuccessActionKind = "message"
	SuccessActionURL     SuccessActionKind = "url"
	SuccessActionAes     SuccessActionKind = "aes"
)

// SuccessAction is the optional action an LNURL-Pay endpoint returns for
// display after a successful payment. Only the fields of the tagged kind are
// populated.
type SuccessAction struct {
	Kind        SuccessActionKind
	Message     string
	Description string
	URL         string
}

// PreparedLnurlPay is the LNURL-specific preparation result: the resolved
// invoice plus the optional success action to surface after payment.
type PreparedLnurlPay struct {
	AmountSats    uint64
	Comment       string
	PayRequest    LnurlPayInput
	FeeSats       uint64
	Invoice       Bolt11InvoiceInput
	SuccessAction *SuccessAction
}

// LnurlPayResult is the outcome of executing a prepared LNURL payment.
type LnurlPayResult struct {
	Payment       Payment
	SuccessAction *SuccessAction
}
