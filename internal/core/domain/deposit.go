package domain

// Fee is a fee ceiling or policy used for deposit claim and refund calls.
type Fee interface {
	fee()
}

type FixedFee struct {
	AmountSats uint64
}

type RateFee struct {
	SatPerVbyte uint64
}

// NetworkRecommendedFee tracks the network estimate plus a fixed leeway.
type NetworkRecommendedFee struct {
	LeewaySatPerVbyte uint64
}

func (FixedFee) fee()              {}
func (RateFee) fee()               {}
func (NetworkRecommendedFee) fee() {}

// DepositClaimErrorKind tags why an automatic claim attempt failed.
type DepositClaimErrorKind string

const (
	ClaimErrorFeeExceeded DepositClaimErrorKind = "depositClaimFeeExceeded"
	ClaimErrorMissingUtxo DepositClaimErrorKind = "missingUtxo"
	ClaimErrorGeneric     DepositClaimErrorKind = "generic"
)

type DepositClaimError struct {
	Kind         DepositClaimErrorKind
	Message      string
	MaxFee       Fee
	ActualFeeSat uint64
}

// DepositInfo is an unclaimed on-chain receipt belonging to the wallet. It is
// mutated only by engine claim/refund calls; this layer re-fetches the list
// instead of editing entries.
type DepositInfo struct {
	Txid       string
	Vout       uint32
	AmountSats uint64
	RefundTxid string
	ClaimError *DepositClaimError
}
