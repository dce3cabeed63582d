package domain

// Network is the network a wallet session runs against.
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkRegtest Network = "regtest"
)

// BitcoinNetwork is the chain a parsed bitcoin artifact belongs to, as
// reported by the wallet engine. It is broader than Network because parsed
// inputs may reference chains the session is not running on.
type BitcoinNetwork string

const (
	BitcoinNetworkMainnet  BitcoinNetwork = "bitcoin"
	BitcoinNetworkTestnet3 BitcoinNetwork = "testnet3"
	BitcoinNetworkTestnet4 BitcoinNetwork = "testnet4"
	BitcoinNetworkSignet   BitcoinNetwork = "signet"
	BitcoinNetworkRegtest  BitcoinNetwork = "regtest"
)

// ParsedInput is the result of classifying a raw payment destination string.
// Exactly one variant is produced per raw input; values are immutable once
// parsed.
type ParsedInput interface {
	parsedInput()
}

type Bolt11RouteHintHop struct {
	SrcNodeID                  string
	ShortChannelID             string
	FeesBaseMsat               uint64
	FeesProportionalMillionths uint64
	CltvExpiryDelta            uint32
}

type Bolt11RouteHint struct {
	Hops []Bolt11RouteHintHop
}

// Bolt11InvoiceInput carries the decoded fields of a Lightning invoice.
// AmountMsat is zero for amountless invoices.
type Bolt11InvoiceInput struct {
	Invoice         string
	AmountMsat      uint64
	Description     string
	DescriptionHash string
	Expiry          uint64
	Timestamp       uint64
	PayeePubkey     string
	PaymentHash     string
	PaymentSecret   string
	Network         BitcoinNetwork
	RoutingHints    []Bolt11RouteHint
}

type BitcoinAddressInput struct {
	Address string
	Network BitcoinNetwork
}

type SparkAddressInput struct {
	Address string
}

// LnurlPayInput is the resolved LNURL-Pay endpoint metadata. Sendable bounds
// are in millisatoshi; CommentAllowed is the maximum comment length in
// characters, zero when comments are not supported.
type LnurlPayInput struct {
	Callback       string
	MinSendable    uint64
	MaxSendable    uint64
	MetadataStr    string
	CommentAllowed uint32
	Domain         string
	URL            string
	Address        string
}

type LightningAddressInput struct {
	Address    string
	PayRequest LnurlPayInput
}

type Bolt12InvoiceInput struct {
	Invoice    string
	AmountMsat uint64
}

type Bolt12OfferInput struct {
	Offer       string
	Description string
	Issuer      string
	Chains      []string
}

type LnurlWithdrawInput struct {
	Callback           string
	K1                 string
	DefaultDescription string
	MinWithdrawable    uint64
	MaxWithdrawable    uint64
}

type LnurlAuthInput struct {
	K1     string
	Domain string
	URL    string
	Action string
}

// Bip21Input is a bitcoin: URI; PaymentMethods holds the inner destinations
// the URI unifies, in engine-reported order.
type Bip21Input struct {
	URI            string
	AmountSat      uint64
	Label          string
	Message        string
	PaymentMethods []ParsedInput
}

type SilentPaymentAddressInput struct {
	Address string
	Network BitcoinNetwork
}

type URLInput struct {
	URL string
}

func (Bolt11InvoiceInput) parsedInput()        {}
func (BitcoinAddressInput) parsedInput()       {}
func (SparkAddressInput) parsedInput()         {}
func (LnurlPayInput) parsedInput()             {}
func (LightningAddressInput) parsedInput()     {}
func (Bolt12InvoiceInput) parsedInput()        {}
func (Bolt12OfferInput) parsedInput()          {}
func (LnurlWithdrawInput) parsedInput()        {}
func (LnurlAuthInput) parsedInput()            {}
func (Bip21Input) parsedInput()                {}
func (SilentPaymentAddressInput) parsedInput() {}
func (URLInput) parsedInput()                  {}
