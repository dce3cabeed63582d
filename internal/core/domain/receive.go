package domain

import "errors"

// ErrAddressUnavailable is returned when a lightning address username is
// already taken.
var ErrAddressUnavailable = errors.New("lightning address not available")

// ReceiveMethod selects which receive artifact to generate.
type ReceiveMethod interface {
	receiveMethod()
}

type SparkReceive struct{}

type BitcoinReceive struct{}

type Bolt11Receive struct {
	Description string
	AmountSats  uint64
}

func (SparkReceive) receiveMethod()   {}
func (BitcoinReceive) receiveMethod() {}
func (Bolt11Receive) receiveMethod()  {}

// LightningAddressInfo describes the wallet's registered Lightning Address.
type LightningAddressInfo struct {
	Address     string
	Username    string
	Description string
	PayRequest  LnurlPayInput
}
