package domain

import "context"

// Settings is the locally persisted configuration surface. A missing or
// malformed record falls back to DefaultSettings silently.
type Settings struct {
	Network                  Network
	DepositMaxFee            Fee
	SyncIntervalSecs         uint32
	LnurlDomain              string
	PreferSparkOverLightning bool
}

// DefaultSettings returns the hardcoded fallback record.
func DefaultSettings() Settings {
	return Settings{
		Network:                  NetworkMainnet,
		DepositMaxFee:            FixedFee{AmountSats: 1},
		SyncIntervalSecs:         30,
		PreferSparkOverLightning: true,
	}
}

// SettingsRepository stores the single settings record. UpdateSettings
// replaces the stored record wholesale; callers read-modify-write.
type SettingsRepository interface {
	AddDefaultSettings(ctx context.Context) error
	GetSettings(ctx context.Context) (*Settings, error)
	UpdateSettings(ctx context.Context, settings Settings) error
	CleanSettings(ctx context.Context) error
	Close()
}
