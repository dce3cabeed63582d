package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/photonwallet/photon/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const settingsKey = "settings"

type settingsRepository struct {
	store *badgerhold.Store
}

func NewSettingsRepository(baseDir string, logger badger.Logger) (domain.SettingsRepository, error) {
	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, "settings")
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings store: %s", err)
	}
	return &settingsRepository{store}, nil
}

func (r *settingsRepository) AddDefaultSettings(ctx context.Context) error {
	return r.addSettings(ctx, domain.DefaultSettings())
}

func (r *settingsRepository) GetSettings(ctx context.Context) (*domain.Settings, error) {
	var data settingsData
	err := r.store.Get(settingsKey, &data)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, fmt.Errorf("settings not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	settings := data.toSettings()
	return &settings, nil
}

func (r *settingsRepository) UpdateSettings(ctx context.Context, settings domain.Settings) error {
	if err := r.store.Upsert(settingsKey, toSettingsData(settings)); err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return nil
}

func (r *settingsRepository) CleanSettings(ctx context.Context) error {
	err := r.store.Delete(settingsKey, &settingsData{})
	if errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("settings not found")
	}
	if err != nil {
		return fmt.Errorf("failed to delete settings: %w", err)
	}
	return nil
}

func (r *settingsRepository) Close() {
	// nolint:all
	r.store.Close()
}

func (r *settingsRepository) addSettings(_ context.Context, settings domain.Settings) error {
	if err := r.store.Insert(settingsKey, toSettingsData(settings)); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return fmt.Errorf("settings already exist")
		}
		return fmt.Errorf("failed to add settings: %w", err)
	}
	return nil
}

const (
	feeKindFixed       = "fixed"
	feeKindRate        = "rate"
	feeKindRecommended = "recommended"
)

// settingsData flattens the fee union for storage.
type settingsData struct {
	Network          string
	FeeKind          string
	FeeValue         uint64
	SyncIntervalSecs uint32
	LnurlDomain      string
	PreferSpark      bool
}

func toSettingsData(s domain.Settings) settingsData {
	data := settingsData{
		Network:          string(s.Network),
		SyncIntervalSecs: s.SyncIntervalSecs,
		LnurlDomain:      s.LnurlDomain,
		PreferSpark:      s.PreferSparkOverLightning,
	}
	switch fee := s.DepositMaxFee.(type) {
	case domain.FixedFee:
		data.FeeKind = feeKindFixed
		data.FeeValue = fee.AmountSats
	case domain.RateFee:
		data.FeeKind = feeKindRate
		data.FeeValue = fee.SatPerVbyte
	case domain.NetworkRecommendedFee:
		data.FeeKind = feeKindRecommended
		data.FeeValue = fee.LeewaySatPerVbyte
	}
	return data
}

func (d settingsData) toSettings() domain.Settings {
	settings := domain.Settings{
		Network:                  domain.Network(d.Network),
		SyncIntervalSecs:         d.SyncIntervalSecs,
		LnurlDomain:              d.LnurlDomain,
		PreferSparkOverLightning: d.PreferSpark,
	}
	switch d.FeeKind {
	case feeKindRate:
		settings.DepositMaxFee = domain.RateFee{SatPerVbyte: d.FeeValue}
	case feeKindRecommended:
		settings.DepositMaxFee = domain.NetworkRecommendedFee{LeewaySatPerVbyte: d.FeeValue}
	default:
		settings.DepositMaxFee = domain.FixedFee{AmountSats: d.FeeValue}
	}
	return settings
}
