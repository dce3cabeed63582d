package application

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"

	"github.com/photonwallet/photon/internal/core/domain"
	"github.com/photonwallet/photon/internal/core/ports"
	"github.com/photonwallet/photon/utils"
	log "github.com/sirupsen/logrus"
)

const provisionAttempts = 3

// ReceiveFlow produces payment requests of every supported kind and keeps
// the wallet's lightning address provisioned. Static addresses are cached
// per session; invoices are minted fresh on every request.
type ReceiveFlow struct {
	mu sync.Mutex

	engine  func() (ports.WalletEngine, error)
	network func() domain.Network

	sparkAddress   string
	bitcoinAddress string
	lnAddress      *domain.LightningAddressInfo
}

func NewReceiveFlow(
	engine func() (ports.WalletEngine, error), network func() domain.Network,
) *ReceiveFlow {
	return &ReceiveFlow{engine: engine, network: network}
}

// Reset drops all cached addresses, on disconnect or network switch.
func (f *ReceiveFlow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sparkAddress = ""
	f.bitcoinAddress = ""
	f.lnAddress = nil
}

// SparkAddress returns the wallet's static spark address.
func (f *ReceiveFlow) SparkAddress(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sparkAddress != "" {
		return f.sparkAddress, nil
	}
	engine, err := f.engine()
	if err != nil {
		return "", err
	}
	addr, err := engine.ReceivePayment(ctx, domain.SparkReceive{})
	if err != nil {
		return "", err
	}
	if !utils.IsValidSparkAddress(addr) {
		return "", fmt.Errorf("engine returned invalid spark address")
	}
	f.sparkAddress = addr
	return addr, nil
}

// BitcoinAddress returns the wallet's static deposit address.
func (f *ReceiveFlow) BitcoinAddress(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bitcoinAddress != "" {
		return f.bitcoinAddress, nil
	}
	engine, err := f.engine()
	if err != nil {
		return "", err
	}
	addr, err := engine.ReceivePayment(ctx, domain.BitcoinReceive{})
	if err != nil {
		return "", err
	}
	if !utils.IsValidBtcAddress(addr, string(f.network())) {
		return "", fmt.Errorf("engine returned invalid bitcoin address")
	}
	f.bitcoinAddress = addr
	return addr, nil
}

// CreateInvoice mints a bolt11 invoice. A zero amount yields an
// amountless invoice.
func (f *ReceiveFlow) CreateInvoice(
	ctx context.Context, amountSats uint64, description string,
) (string, error) {
	engine, err := f.engine()
	if err != nil {
		return "", err
	}
	invoice, err := engine.ReceivePayment(ctx, domain.Bolt11Receive{
		Description: description,
		AmountSats:  amountSats,
	})
	if err != nil {
		return "", err
	}
	if !utils.IsValidInvoice(invoice) {
		return "", fmt.Errorf("engine returned invalid invoice")
	}
	if decoded := utils.SatsFromInvoice(invoice); amountSats > 0 && uint64(decoded) != amountSats {
		log.WithFields(log.Fields{
			"requested": amountSats,
			"decoded":   decoded,
		}).Warn("invoice amount differs from requested amount")
	}
	return invoice, nil
}

// LightningAddress returns the registered lightning address, provisioning
// one on first use. Registration collisions are retried with a fresh
// random username a bounded number of times.
func (f *ReceiveFlow) LightningAddress(ctx context.Context) (*domain.LightningAddressInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.lnAddress != nil {
		return f.lnAddress, nil
	}
	engine, err := f.engine()
	if err != nil {
		return nil, err
	}

	info, err := engine.LightningAddress(ctx)
	if err != nil {
		return nil, err
	}
	if info != nil {
		f.lnAddress = info
		return info, nil
	}

	for attempt := 0; attempt < provisionAttempts; attempt++ {
		username, err := randomUsername()
		if err != nil {
			return nil, err
		}
		info, err := engine.RegisterLightningAddress(ctx, username, "")
		if err != nil {
			if errors.Is(err, ErrAddressUnavailable) {
				log.WithField("username", username).Debug("lightning address taken, retrying")
				continue
			}
			return nil, err
		}
		f.lnAddress = info
		return info, nil
	}
	return nil, fmt.Errorf("failed to provision lightning address after %d attempts", provisionAttempts)
}

// UpdateLightningAddress re-registers with a user chosen username after
// checking availability.
func (f *ReceiveFlow) UpdateLightningAddress(
	ctx context.Context, username, description string,
) (*domain.LightningAddressInfo, error) {
	if !utils.IsValidLightningAddressUsername(username) {
		return nil, fmt.Errorf("invalid username")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	engine, err := f.engine()
	if err != nil {
		return nil, err
	}

	available, err := engine.CheckLightningAddressAvailable(ctx, username)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, ErrAddressUnavailable
	}

	info, err := engine.RegisterLightningAddress(ctx, username, description)
	if err != nil {
		return nil, err
	}
	f.lnAddress = info
	return info, nil
}

// DeleteLightningAddress unregisters the wallet's lightning address.
func (f *ReceiveFlow) DeleteLightningAddress(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	engine, err := f.engine()
	if err != nil {
		return err
	}
	if err := engine.DeleteLightningAddress(ctx); err != nil {
		return err
	}
	f.lnAddress = nil
	return nil
}

func randomUsername() (string, error) {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = letters[int(buf[i])%len(letters)]
	}
	return string(buf), nil
}
