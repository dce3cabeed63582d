package domain

type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "completed"
	PaymentPending   PaymentStatus = "pending"
	PaymentFailed    PaymentStatus = "failed"
)

type PaymentType string

const (
	PaymentSend    PaymentType = "send"
	PaymentReceive PaymentType = "receive"
)

// PaymentMethod tags how a payment moved: over Lightning, as a Spark
// transfer, or on-chain in either direction.
type PaymentMethod string

const (
	MethodLightning PaymentMethod = "lightning"
	MethodSpark     PaymentMethod = "spark"
	MethodDeposit   PaymentMethod = "deposit"
	MethodWithdraw  PaymentMethod = "withdraw"
	MethodUnknown   PaymentMethod = "unknown"
)

// PaymentDetails carries the protocol-specific metadata of a history entry.
type PaymentDetails interface {
	paymentDetails()
}

type LnurlPayInfo struct {
	LnAddress string
	Comment   string
	Domain    string
	Metadata  string
}

type LightningPaymentDetails struct {
	Description       string
	Preimage          string
	Invoice           string
	PaymentHash       string
	DestinationPubkey string
	LnurlPayInfo      *LnurlPayInfo
}

type SparkPaymentDetails struct{}

type DepositPaymentDetails struct {
	Txid string
}

type WithdrawPaymentDetails struct {
	Txid string
}

func (LightningPaymentDetails) paymentDetails() {}
func (SparkPaymentDetails) paymentDetails()     {}
func (DepositPaymentDetails) paymentDetails()   {}
func (WithdrawPaymentDetails) paymentDetails()  {}

// Payment is one transaction history entry. Entries are created and owned by
// the wallet engine; this layer only reads them.
type Payment struct {
	ID         string
	Type       PaymentType
	Status     PaymentStatus
	AmountSats uint64
	FeeSats    uint64
	Timestamp  int64
	Method     PaymentMethod
	Details    PaymentDetails
}

// WalletInfo is the account snapshot the engine reports.
type WalletInfo struct {
	BalanceSats uint64
}
