package sparkrpc

import (
	"encoding/json"
	"fmt"

	"github.com/photonwallet/photon/internal/core/domain"
)

type connectRequest struct {
	Mnemonic string `json:"mnemonic"`
	Network  string `json:"network"`
}

type connectResponse struct {
	SessionID string `json:"sessionId"`

	Error string `json:"error"`
}

type parseRequest struct {
	Input string `json:"input"`
}

type routeHintHop struct {
	SrcNodeID                  string `json:"srcNodeId"`
	ShortChannelID             string `json:"shortChannelId"`
	FeesBaseMsat               uint64 `json:"feesBaseMsat"`
	FeesProportionalMillionths uint64 `json:"feesProportionalMillionths"`
	CltvExpiryDelta            uint32 `json:"cltvExpiryDelta"`
}

type routeHint struct {
	Hops []routeHintHop `json:"hops"`
}

type bolt11Invoice struct {
	Invoice         string      `json:"invoice"`
	AmountMsat      uint64      `json:"amountMsat"`
	Description     string      `json:"description"`
	DescriptionHash string      `json:"descriptionHash"`
	Expiry          uint64      `json:"expiry"`
	Timestamp       uint64      `json:"timestamp"`
	PayeePubkey     string      `json:"payeePubkey"`
	PaymentHash     string      `json:"paymentHash"`
	PaymentSecret   string      `json:"paymentSecret"`
	Network         string      `json:"network"`
	RoutingHints    []routeHint `json:"routingHints"`
}

func (b bolt11Invoice) toDomain() domain.Bolt11InvoiceInput {
	hints := make([]domain.Bolt11RouteHint, 0, len(b.RoutingHints))
	for _, h := range b.RoutingHints {
		hops := make([]domain.Bolt11RouteHintHop, 0, len(h.Hops))
		for _, hop := range h.Hops {
			hops = append(hops, domain.Bolt11RouteHintHop(hop))
		}
		hints = append(hints, domain.Bolt11RouteHint{Hops: hops})
	}
	return domain.Bolt11InvoiceInput{
		Invoice:         b.Invoice,
		AmountMsat:      b.AmountMsat,
		Description:     b.Description,
		DescriptionHash: b.DescriptionHash,
		Expiry:          b.Expiry,
		Timestamp:       b.Timestamp,
		PayeePubkey:     b.PayeePubkey,
		PaymentHash:     b.PaymentHash,
		PaymentSecret:   b.PaymentSecret,
		Network:         domain.BitcoinNetwork(b.Network),
		RoutingHints:    hints,
	}
}

type lnurlPayRequestData struct {
	Callback       string `json:"callback"`
	MinSendable    uint64 `json:"minSendable"`
	MaxSendable    uint64 `json:"maxSendable"`
	MetadataStr    string `json:"metadataStr"`
	CommentAllowed uint32 `json:"commentAllowed"`
	Domain         string `json:"domain"`
	URL            string `json:"url"`
	Address        string `json:"address,omitempty"`
}

func (l lnurlPayRequestData) toDomain() domain.LnurlPayInput {
	return domain.LnurlPayInput(l)
}

func lnurlPayFromDomain(l domain.LnurlPayInput) lnurlPayRequestData {
	return lnurlPayRequestData(l)
}

// parsedInput is the wire shape of the engine's input classifier. Type
// selects which payload field is set.
type parsedInput struct {
	Type string `json:"type"`

	Bolt11Invoice  *bolt11Invoice       `json:"bolt11Invoice,omitempty"`
	BitcoinAddress *bitcoinAddress      `json:"bitcoinAddress,omitempty"`
	SparkAddress   *sparkAddress        `json:"sparkAddress,omitempty"`
	LnurlPay       *lnurlPayRequestData `json:"lnurlPay,omitempty"`
	LnAddress      *lightningAddress    `json:"lightningAddress,omitempty"`
	Bolt12Invoice  *bolt12Invoice       `json:"bolt12Invoice,omitempty"`
	Bolt12Offer    *bolt12Offer         `json:"bolt12Offer,omitempty"`
	LnurlWithdraw  *lnurlWithdraw       `json:"lnurlWithdraw,omitempty"`
	LnurlAuth      *lnurlAuth           `json:"lnurlAuth,omitempty"`
	Bip21          *bip21               `json:"bip21,omitempty"`
	SilentPayment  *silentPayment       `json:"silentPaymentAddress,omitempty"`
	URL            *urlInput            `json:"url,omitempty"`

	Error string `json:"error"`
}

type bitcoinAddress struct {
	Address string `json:"address"`
	Network string `json:"network"`
}

type sparkAddress struct {
	Address string `json:"address"`
}

type lightningAddress struct {
	Address    string              `json:"address"`
	PayRequest lnurlPayRequestData `json:"payRequest"`
}

type bolt12Invoice struct {
	Invoice    string `json:"invoice"`
	AmountMsat uint64 `json:"amountMsat"`
}

type bolt12Offer struct {
	Offer       string   `json:"offer"`
	Description string   `json:"description"`
	Issuer      string   `json:"issuer"`
	Chains      []string `json:"chains"`
}

type lnurlWithdraw struct {
	Callback           string `json:"callback"`
	K1                 string `json:"k1"`
	DefaultDescription string `json:"defaultDescription"`
	MinWithdrawable    uint64 `json:"minWithdrawable"`
	MaxWithdrawable    uint64 `json:"maxWithdrawable"`
}

type lnurlAuth struct {
	K1     string `json:"k1"`
	Domain string `json:"domain"`
	URL    string `json:"url"`
	Action string `json:"action"`
}

type bip21 struct {
	URI            string        `json:"uri"`
	AmountSat      uint64        `json:"amountSat"`
	Label          string        `json:"label"`
	Message        string        `json:"message"`
	PaymentMethods []parsedInput `json:"paymentMethods"`
}

type silentPayment struct {
	Address string `json:"address"`
	Network string `json:"network"`
}

type urlInput struct {
	URL string `json:"url"`
}

func (p parsedInput) toDomain() (domain.ParsedInput, error) {
	switch p.Type {
	case "bolt11Invoice":
		if p.Bolt11Invoice == nil {
			return nil, fmt.Errorf("missing bolt11Invoice payload")
		}
		return p.Bolt11Invoice.toDomain(), nil
	case "bitcoinAddress":
		if p.BitcoinAddress == nil {
			return nil, fmt.Errorf("missing bitcoinAddress payload")
		}
		return domain.BitcoinAddressInput{
			Address: p.BitcoinAddress.Address,
			Network: domain.BitcoinNetwork(p.BitcoinAddress.Network),
		}, nil
	case "sparkAddress":
		if p.SparkAddress == nil {
			return nil, fmt.Errorf("missing sparkAddress payload")
		}
		return domain.SparkAddressInput{Address: p.SparkAddress.Address}, nil
	case "lnurlPay":
		if p.LnurlPay == nil {
			return nil, fmt.Errorf("missing lnurlPay payload")
		}
		return p.LnurlPay.toDomain(), nil
	case "lightningAddress":
		if p.LnAddress == nil {
			return nil, fmt.Errorf("missing lightningAddress payload")
		}
		return domain.LightningAddressInput{
			Address:    p.LnAddress.Address,
			PayRequest: p.LnAddress.PayRequest.toDomain(),
		}, nil
	case "bolt12Invoice":
		if p.Bolt12Invoice == nil {
			return nil, fmt.Errorf("missing bolt12Invoice payload")
		}
		return domain.Bolt12InvoiceInput(*p.Bolt12Invoice), nil
	case "bolt12Offer":
		if p.Bolt12Offer == nil {
			return nil, fmt.Errorf("missing bolt12Offer payload")
		}
		return domain.Bolt12OfferInput(*p.Bolt12Offer), nil
	case "lnurlWithdraw":
		if p.LnurlWithdraw == nil {
			return nil, fmt.Errorf("missing lnurlWithdraw payload")
		}
		return domain.LnurlWithdrawInput(*p.LnurlWithdraw), nil
	case "lnurlAuth":
		if p.LnurlAuth == nil {
			return nil, fmt.Errorf("missing lnurlAuth payload")
		}
		return domain.LnurlAuthInput(*p.LnurlAuth), nil
	case "bip21":
		if p.Bip21 == nil {
			return nil, fmt.Errorf("missing bip21 payload")
		}
		methods := make([]domain.ParsedInput, 0, len(p.Bip21.PaymentMethods))
		for _, m := range p.Bip21.PaymentMethods {
			parsed, err := m.toDomain()
			if err != nil {
				return nil, err
			}
			methods = append(methods, parsed)
		}
		return domain.Bip21Input{
			URI:            p.Bip21.URI,
			AmountSat:      p.Bip21.AmountSat,
			Label:          p.Bip21.Label,
			Message:        p.Bip21.Message,
			PaymentMethods: methods,
		}, nil
	case "silentPaymentAddress":
		if p.SilentPayment == nil {
			return nil, fmt.Errorf("missing silentPaymentAddress payload")
		}
		return domain.SilentPaymentAddressInput{
			Address: p.SilentPayment.Address,
			Network: domain.BitcoinNetwork(p.SilentPayment.Network),
		}, nil
	case "url":
		if p.URL == nil {
			return nil, fmt.Errorf("missing url payload")
		}
		return domain.URLInput{URL: p.URL.URL}, nil
	}
	return nil, fmt.Errorf("unknown input type %q", p.Type)
}

type speedFee struct {
	UserFeeSat        uint64 `json:"userFeeSat"`
	L1BroadcastFeeSat uint64 `json:"l1BroadcastFeeSat"`
}

type feeQuote struct {
	ID        string   `json:"id"`
	ExpiresAt int64    `json:"expiresAt"`
	Fast      speedFee `json:"speedFast"`
	Medium    speedFee `json:"speedMedium"`
	Slow      speedFee `json:"speedSlow"`
}

func (q feeQuote) toDomain() domain.OnchainFeeQuote {
	return domain.OnchainFeeQuote{
		ID:        q.ID,
		ExpiresAt: q.ExpiresAt,
		Fast:      domain.SpeedFee(q.Fast),
		Medium:    domain.SpeedFee(q.Medium),
		Slow:      domain.SpeedFee(q.Slow),
	}
}

func feeQuoteFromDomain(q domain.OnchainFeeQuote) feeQuote {
	return feeQuote{
		ID:        q.ID,
		ExpiresAt: q.ExpiresAt,
		Fast:      speedFee(q.Fast),
		Medium:    speedFee(q.Medium),
		Slow:      speedFee(q.Slow),
	}
}

type prepareSendRequest struct {
	Input      string `json:"input"`
	AmountSats uint64 `json:"amountSats"`
}

// sendMethod mirrors domain.SendMethod on the wire.
type sendMethod struct {
	Type string `json:"type"`

	BitcoinAddress       *bitcoinAddress `json:"bitcoinAddress,omitempty"`
	FeeQuote             *feeQuote       `json:"feeQuote,omitempty"`
	Invoice              *bolt11Invoice  `json:"invoice,omitempty"`
	SparkTransferFeeSats *uint64         `json:"sparkTransferFeeSats,omitempty"`
	LightningFeeSats     uint64          `json:"lightningFeeSats,omitempty"`
	SparkAddress         string          `json:"sparkAddress,omitempty"`
	FeeSats              uint64          `json:"feeSats,omitempty"`
}

func (m sendMethod) toDomain() (domain.SendMethod, error) {
	switch m.Type {
	case "bitcoin":
		if m.BitcoinAddress == nil || m.FeeQuote == nil {
			return nil, fmt.Errorf("malformed bitcoin send method")
		}
		return domain.BitcoinSendMethod{
			Address: domain.BitcoinAddressInput{
				Address: m.BitcoinAddress.Address,
				Network: domain.BitcoinNetwork(m.BitcoinAddress.Network),
			},
			FeeQuote: m.FeeQuote.toDomain(),
		}, nil
	case "bolt11":
		if m.Invoice == nil {
			return nil, fmt.Errorf("malformed bolt11 send method")
		}
		return domain.Bolt11SendMethod{
			Invoice:              m.Invoice.toDomain(),
			SparkTransferFeeSats: m.SparkTransferFeeSats,
			LightningFeeSats:     m.LightningFeeSats,
		}, nil
	case "spark":
		return domain.SparkSendMethod{Address: m.SparkAddress, FeeSats: m.FeeSats}, nil
	}
	return nil, fmt.Errorf("unknown send method %q", m.Type)
}

func sendMethodFromDomain(m domain.SendMethod) sendMethod {
	switch method := m.(type) {
	case domain.BitcoinSendMethod:
		quote := feeQuoteFromDomain(method.FeeQuote)
		return sendMethod{
			Type: "bitcoin",
			BitcoinAddress: &bitcoinAddress{
				Address: method.Address.Address,
				Network: string(method.Address.Network),
			},
			FeeQuote: &quote,
		}
	case domain.Bolt11SendMethod:
		invoice := bolt11FromDomain(method.Invoice)
		return sendMethod{
			Type:                 "bolt11",
			Invoice:              &invoice,
			SparkTransferFeeSats: method.SparkTransferFeeSats,
			LightningFeeSats:     method.LightningFeeSats,
		}
	case domain.SparkSendMethod:
		return sendMethod{Type: "spark", SparkAddress: method.Address, FeeSats: method.FeeSats}
	}
	return sendMethod{}
}

func bolt11FromDomain(b domain.Bolt11InvoiceInput) bolt11Invoice {
	hints := make([]routeHint, 0, len(b.RoutingHints))
	for _, h := range b.RoutingHints {
		hops := make([]routeHintHop, 0, len(h.Hops))
		for _, hop := range h.Hops {
			hops = append(hops, routeHintHop(hop))
		}
		hints = append(hints, routeHint{Hops: hops})
	}
	return bolt11Invoice{
		Invoice:         b.Invoice,
		AmountMsat:      b.AmountMsat,
		Description:     b.Description,
		DescriptionHash: b.DescriptionHash,
		Expiry:          b.Expiry,
		Timestamp:       b.Timestamp,
		PayeePubkey:     b.PayeePubkey,
		PaymentHash:     b.PaymentHash,
		PaymentSecret:   b.PaymentSecret,
		Network:         string(b.Network),
		RoutingHints:    hints,
	}
}

type preparedSend struct {
	Method     sendMethod `json:"method"`
	AmountSats uint64     `json:"amountSats"`

	Error string `json:"error"`
}

type sendOptions struct {
	Type     string `json:"type,omitempty"`
	Speed    string `json:"speed,omitempty"`
	UseSpark bool   `json:"useSpark,omitempty"`
}

func sendOptionsFromDomain(o domain.SendOptions) sendOptions {
	switch opts := o.(type) {
	case domain.BitcoinSendOptions:
		return sendOptions{Type: "bitcoin", Speed: string(opts.Speed)}
	case domain.Bolt11SendOptions:
		return sendOptions{Type: "bolt11", UseSpark: opts.UseSpark}
	}
	return sendOptions{}
}

type sendPaymentRequest struct {
	Prepared preparedSend `json:"prepared"`
	Options  sendOptions  `json:"options"`
}

type successAction struct {
	Kind        string `json:"kind"`
	Message     string `json:"message,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

func (a *successAction) toDomain() *domain.SuccessAction {
	if a == nil {
		return nil
	}
	return &domain.SuccessAction{
		Kind:        domain.SuccessActionKind(a.Kind),
		Message:     a.Message,
		Description: a.Description,
		URL:         a.URL,
	}
}

func successActionFromDomain(a *domain.SuccessAction) *successAction {
	if a == nil {
		return nil
	}
	return &successAction{
		Kind:        string(a.Kind),
		Message:     a.Message,
		Description: a.Description,
		URL:         a.URL,
	}
}

type prepareLnurlPayRequest struct {
	AmountSats         uint64              `json:"amountSats"`
	Comment            string              `json:"comment,omitempty"`
	PayRequest         lnurlPayRequestData `json:"payRequest"`
	ValidateSuccessURL bool                `json:"validateSuccessUrl"`
}

type preparedLnurlPay struct {
	AmountSats    uint64              `json:"amountSats"`
	Comment       string              `json:"comment,omitempty"`
	PayRequest    lnurlPayRequestData `json:"payRequest"`
	FeeSats       uint64              `json:"feeSats"`
	Invoice       bolt11Invoice       `json:"invoice"`
	SuccessAction *successAction      `json:"successAction,omitempty"`

	Error string `json:"error"`
}

func (p preparedLnurlPay) toDomain() domain.PreparedLnurlPay {
	return domain.PreparedLnurlPay{
		AmountSats:    p.AmountSats,
		Comment:       p.Comment,
		PayRequest:    p.PayRequest.toDomain(),
		FeeSats:       p.FeeSats,
		Invoice:       p.Invoice.toDomain(),
		SuccessAction: p.SuccessAction.toDomain(),
	}
}

func preparedLnurlPayFromDomain(p domain.PreparedLnurlPay) preparedLnurlPay {
	return preparedLnurlPay{
		AmountSats:    p.AmountSats,
		Comment:       p.Comment,
		PayRequest:    lnurlPayFromDomain(p.PayRequest),
		FeeSats:       p.FeeSats,
		Invoice:       bolt11FromDomain(p.Invoice),
		SuccessAction: successActionFromDomain(p.SuccessAction),
	}
}

type lnurlPayInfo struct {
	LnAddress string `json:"lnAddress,omitempty"`
	Comment   string `json:"comment,omitempty"`
	Domain    string `json:"domain,omitempty"`
	Metadata  string `json:"metadata,omitempty"`
}

type paymentDetails struct {
	Type string `json:"type"`

	Description       string        `json:"description,omitempty"`
	Preimage          string        `json:"preimage,omitempty"`
	Invoice           string        `json:"invoice,omitempty"`
	PaymentHash       string        `json:"paymentHash,omitempty"`
	DestinationPubkey string        `json:"destinationPubkey,omitempty"`
	LnurlPayInfo      *lnurlPayInfo `json:"lnurlPayInfo,omitempty"`
	Txid              string        `json:"txid,omitempty"`
}

type payment struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Status     string          `json:"status"`
	AmountSats uint64          `json:"amountSats"`
	FeeSats    uint64          `json:"feeSats"`
	Timestamp  int64           `json:"timestamp"`
	Method     string          `json:"method"`
	Details    *paymentDetails `json:"details,omitempty"`

	Error string `json:"error"`
}

func (p payment) toDomain() domain.Payment {
	out := domain.Payment{
		ID:         p.ID,
		Type:       domain.PaymentType(p.Type),
		Status:     domain.PaymentStatus(p.Status),
		AmountSats: p.AmountSats,
		FeeSats:    p.FeeSats,
		Timestamp:  p.Timestamp,
		Method:     domain.PaymentMethod(p.Method),
	}
	if p.Details == nil {
		return out
	}
	switch p.Details.Type {
	case "lightning":
		details := domain.LightningPaymentDetails{
			Description:       p.Details.Description,
			Preimage:          p.Details.Preimage,
			Invoice:           p.Details.Invoice,
			PaymentHash:       p.Details.PaymentHash,
			DestinationPubkey: p.Details.DestinationPubkey,
		}
		if p.Details.LnurlPayInfo != nil {
			info := domain.LnurlPayInfo(*p.Details.LnurlPayInfo)
			details.LnurlPayInfo = &info
		}
		out.Details = details
	case "spark":
		out.Details = domain.SparkPaymentDetails{}
	case "deposit":
		out.Details = domain.DepositPaymentDetails{Txid: p.Details.Txid}
	case "withdraw":
		out.Details = domain.WithdrawPaymentDetails{Txid: p.Details.Txid}
	}
	return out
}

type receiveRequest struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	AmountSats  uint64 `json:"amountSats,omitempty"`
}

type receiveResponse struct {
	PaymentRequest string `json:"paymentRequest"`

	Error string `json:"error"`
}

type infoResponse struct {
	BalanceSats uint64 `json:"balanceSats"`

	Error string `json:"error"`
}

type listPaymentsResponse struct {
	Payments []payment `json:"payments"`

	Error string `json:"error"`
}

type fee struct {
	Type  string `json:"type"`
	Value uint64 `json:"value"`
}

func feeFromDomain(f domain.Fee) fee {
	switch v := f.(type) {
	case domain.FixedFee:
		return fee{Type: "fixed", Value: v.AmountSats}
	case domain.RateFee:
		return fee{Type: "rate", Value: v.SatPerVbyte}
	case domain.NetworkRecommendedFee:
		return fee{Type: "networkRecommended", Value: v.LeewaySatPerVbyte}
	}
	return fee{}
}

func (f fee) toDomain() domain.Fee {
	switch f.Type {
	case "rate":
		return domain.RateFee{SatPerVbyte: f.Value}
	case "networkRecommended":
		return domain.NetworkRecommendedFee{LeewaySatPerVbyte: f.Value}
	default:
		return domain.FixedFee{AmountSats: f.Value}
	}
}

type depositClaimError struct {
	Kind         string `json:"kind"`
	Message      string `json:"message"`
	MaxFee       *fee   `json:"maxFee,omitempty"`
	ActualFeeSat uint64 `json:"actualFeeSat,omitempty"`
}

type deposit struct {
	Txid       string             `json:"txid"`
	Vout       uint32             `json:"vout"`
	AmountSats uint64             `json:"amountSats"`
	RefundTxid string             `json:"refundTxid,omitempty"`
	ClaimError *depositClaimError `json:"claimError,omitempty"`
}

func (d deposit) toDomain() domain.DepositInfo {
	out := domain.DepositInfo{
		Txid:       d.Txid,
		Vout:       d.Vout,
		AmountSats: d.AmountSats,
		RefundTxid: d.RefundTxid,
	}
	if d.ClaimError != nil {
		claimErr := &domain.DepositClaimError{
			Kind:         domain.DepositClaimErrorKind(d.ClaimError.Kind),
			Message:      d.ClaimError.Message,
			ActualFeeSat: d.ClaimError.ActualFeeSat,
		}
		if d.ClaimError.MaxFee != nil {
			claimErr.MaxFee = d.ClaimError.MaxFee.toDomain()
		}
		out.ClaimError = claimErr
	}
	return out
}

type listDepositsResponse struct {
	Deposits []deposit `json:"deposits"`

	Error string `json:"error"`
}

type claimDepositRequest struct {
	Txid   string `json:"txid"`
	Vout   uint32 `json:"vout"`
	MaxFee fee    `json:"maxFee"`
}

type refundDepositRequest struct {
	Txid        string `json:"txid"`
	Vout        uint32 `json:"vout"`
	Destination string `json:"destination"`
	Fee         fee    `json:"fee"`
}

type refundDepositResponse struct {
	Txid string `json:"txid"`

	Error string `json:"error"`
}

type lightningAddressInfo struct {
	Address     string              `json:"address"`
	Username    string              `json:"username"`
	Description string              `json:"description,omitempty"`
	PayRequest  lnurlPayRequestData `json:"payRequest"`

	Error string `json:"error"`
}

func (l lightningAddressInfo) toDomain() domain.LightningAddressInfo {
	return domain.LightningAddressInfo{
		Address:     l.Address,
		Username:    l.Username,
		Description: l.Description,
		PayRequest:  l.PayRequest.toDomain(),
	}
}

type getLightningAddressResponse struct {
	Info *lightningAddressInfo `json:"info"`

	Error string `json:"error"`
}

type checkUsernameResponse struct {
	Available bool `json:"available"`

	Error string `json:"error"`
}

type registerAddressRequest struct {
	Username    string `json:"username"`
	Description string `json:"description,omitempty"`
}

// event is one frame on the /v1/events stream.
type event struct {
	Type     string          `json:"type"`
	Payment  *payment        `json:"payment,omitempty"`
	Deposits []deposit       `json:"deposits,omitempty"`
	Raw      json.RawMessage `json:"data,omitempty"`
}

func (e event) toDomain() (domain.WalletEvent, bool) {
	switch e.Type {
	case "synced":
		return domain.SyncedEvent{}, true
	case "paymentSucceeded":
		if e.Payment == nil {
			return nil, false
		}
		return domain.PaymentSucceededEvent{Payment: e.Payment.toDomain()}, true
	case "claimDepositsSucceeded":
		return domain.ClaimDepositsSucceededEvent{Deposits: depositsToDomain(e.Deposits)}, true
	case "claimDepositsFailed":
		return domain.ClaimDepositsFailedEvent{Deposits: depositsToDomain(e.Deposits)}, true
	}
	return nil, false
}

func depositsToDomain(in []deposit) []domain.DepositInfo {
	out := make([]domain.DepositInfo, 0, len(in))
	for _, d := range in {
		out = append(out, d.toDomain())
	}
	return out
}
