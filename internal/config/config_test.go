package config_test

import (
	"path/filepath"
	"testing"

	"github.com/photonwallet/photon/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("PHOTON_DATADIR", t.TempDir())
		t.Setenv("PHOTON_ENGINE_URL", "http://localhost:9730")

		cfg, err := config.LoadConfig()
		require.NoError(t, err)
		require.Equal(t, "badger", cfg.DbType)
		require.Equal(t, uint32(7000), cfg.HTTPPort)
		require.Equal(t, uint32(4), cfg.LogLevel)
		require.Equal(t, "mainnet", cfg.Network)
		require.Empty(t, cfg.EngineWSURL)
	})

	t.Run("env overrides", func(t *testing.T) {
		datadir := filepath.Join(t.TempDir(), "photon-test")
		t.Setenv("PHOTON_DATADIR", datadir)
		t.Setenv("PHOTON_ENGINE_URL", "http://engine:9730")
		t.Setenv("PHOTON_ENGINE_WS_URL", "ws://engine:9730")
		t.Setenv("PHOTON_ENGINE_API_KEY", "secret")
		t.Setenv("PHOTON_HTTP_PORT", "8080")
		t.Setenv("PHOTON_NETWORK", "regtest")

		cfg, err := config.LoadConfig()
		require.NoError(t, err)
		require.Equal(t, datadir, cfg.Datadir)
		require.DirExists(t, datadir)
		require.Equal(t, "http://engine:9730", cfg.EngineURL)
		require.Equal(t, "ws://engine:9730", cfg.EngineWSURL)
		require.Equal(t, "secret", cfg.EngineKey)
		require.Equal(t, uint32(8080), cfg.HTTPPort)
		require.Equal(t, "regtest", cfg.Network)
	})

	t.Run("missing engine url", func(t *testing.T) {
		t.Setenv("PHOTON_DATADIR", t.TempDir())
		t.Setenv("PHOTON_ENGINE_URL", "")

		_, err := config.LoadConfig()
		require.Error(t, err)
	})

	t.Run("invalid network", func(t *testing.T) {
		t.Setenv("PHOTON_DATADIR", t.TempDir())
		t.Setenv("PHOTON_ENGINE_URL", "http://localhost:9730")
		t.Setenv("PHOTON_NETWORK", "testnet")

		_, err := config.LoadConfig()
		require.Error(t, err)
	})

	t.Run("invalid db type", func(t *testing.T) {
		t.Setenv("PHOTON_DATADIR", t.TempDir())
		t.Setenv("PHOTON_ENGINE_URL", "http://localhost:9730")
		t.Setenv("PHOTON_DB_TYPE", "postgres")

		_, err := config.LoadConfig()
		require.Error(t, err)
	})
}
