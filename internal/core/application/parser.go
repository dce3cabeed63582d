package application

import (
	"fmt"

	"github.com/photonwallet/photon/internal/core/domain"
)

// Route decides which send step a parsed destination lands on.
type Route interface {
	route()
}

// RouteAmount sends the user to the amount step; the destination carries
// no usable amount of its own.
type RouteAmount struct {
	Input  string
	Parsed domain.ParsedInput
}

// RoutePrepare skips the amount step; the destination already fixes the
// amount to pay.
type RoutePrepare struct {
	Input      string
	AmountSats uint64
	Parsed     domain.ParsedInput
}

// RouteLnurl sends the user to the LNURL amount step with the pay
// request's own bounds.
type RouteLnurl struct {
	Pay    domain.LnurlPayInput
	Parsed domain.ParsedInput
}

func (RouteAmount) route()  {}
func (RoutePrepare) route() {}
func (RouteLnurl) route()   {}

// RouteInput maps every parseable destination to its send route. Inputs
// the wallet cannot pay to come back as an error, never as a route.
func RouteInput(input string, parsed domain.ParsedInput) (Route, error) {
	switch p := parsed.(type) {
	case domain.Bolt11InvoiceInput:
		if p.AmountMsat > 0 {
			return RoutePrepare{Input: input, AmountSats: p.AmountMsat / 1000, Parsed: parsed}, nil
		}
		return RouteAmount{Input: input, Parsed: parsed}, nil
	case domain.BitcoinAddressInput:
		return RouteAmount{Input: input, Parsed: parsed}, nil
	case domain.SparkAddressInput:
		return RouteAmount{Input: input, Parsed: parsed}, nil
	case domain.LnurlPayInput:
		return RouteLnurl{Pay: p, Parsed: parsed}, nil
	case domain.LightningAddressInput:
		return RouteLnurl{Pay: p.PayRequest, Parsed: parsed}, nil
	case domain.Bip21Input, domain.Bolt12InvoiceInput, domain.Bolt12OfferInput,
		domain.LnurlWithdrawInput, domain.LnurlAuthInput,
		domain.SilentPaymentAddressInput, domain.URLInput:
		return nil, fmt.Errorf("%w: unsupported destination type", ErrInvalidDestination)
	default:
		return nil, fmt.Errorf("%w: unrecognized destination", ErrInvalidDestination)
	}
}
