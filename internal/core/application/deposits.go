package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/photonwallet/photon/internal/core/domain"
	"github.com/photonwallet/photon/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

// DepositService reconciles onchain deposits stuck outside the wallet
// balance. At most one claim or refund runs per deposit index; a second
// request for the same index is rejected while the first is in flight.
type DepositService struct {
	mu       sync.Mutex
	inFlight map[string]struct{}

	engine   func() (ports.WalletEngine, error)
	settings func(ctx context.Context) (*domain.Settings, error)
}

func NewDepositService(
	engine func() (ports.WalletEngine, error),
	settings func(ctx context.Context) (*domain.Settings, error),
) *DepositService {
	return &DepositService{
		inFlight: make(map[string]struct{}),
		engine:   engine,
		settings: settings,
	}
}

// List returns all deposits awaiting a claim or refund.
func (d *DepositService) List(ctx context.Context) ([]domain.DepositInfo, error) {
	engine, err := d.engine()
	if err != nil {
		return nil, err
	}
	return engine.UnclaimedDeposits(ctx)
}

// InFlight reports whether a claim or refund is running for the deposit.
func (d *DepositService) InFlight(txid string, vout uint32) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.inFlight[depositKey(txid, vout)]
	return ok
}

// Claim retries claiming a deposit with the configured max fee.
func (d *DepositService) Claim(ctx context.Context, txid string, vout uint32) error {
	engine, err := d.engine()
	if err != nil {
		return err
	}
	release, err := d.acquire(txid, vout)
	if err != nil {
		return err
	}
	defer release()

	settings, err := d.settings(ctx)
	if err != nil {
		return err
	}

	if err := engine.ClaimDeposit(ctx, txid, vout, settings.DepositMaxFee); err != nil {
		return fmt.Errorf("failed to claim deposit %s:%d: %w", txid, vout, err)
	}
	log.WithField("txid", txid).WithField("vout", vout).Info("deposit claimed")
	return nil
}

// Refund sends the deposit to an external address instead of claiming it.
func (d *DepositService) Refund(
	ctx context.Context, txid string, vout uint32, destination string, fee domain.Fee,
) (string, error) {
	if destination == "" {
		return "", fmt.Errorf("missing refund destination")
	}
	engine, err := d.engine()
	if err != nil {
		return "", err
	}
	release, err := d.acquire(txid, vout)
	if err != nil {
		return "", err
	}
	defer release()

	refundTxid, err := engine.RefundDeposit(ctx, txid, vout, destination, fee)
	if err != nil {
		return "", fmt.Errorf("failed to refund deposit %s:%d: %w", txid, vout, err)
	}
	log.WithField("txid", txid).WithField("refund_txid", refundTxid).Info("deposit refunded")
	return refundTxid, nil
}

func (d *DepositService) acquire(txid string, vout uint32) (func(), error) {
	key := depositKey(txid, vout)

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.inFlight[key]; ok {
		return nil, fmt.Errorf("operation already in progress for deposit %s", key)
	}
	d.inFlight[key] = struct{}{}
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.inFlight, key)
	}, nil
}

func depositKey(txid string, vout uint32) string {
	return fmt.Sprintf("%s:%d", txid, vout)
}
