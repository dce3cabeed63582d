package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"unicode"

	"github.com/photonwallet/photon/utils"
	"github.com/spf13/viper"
)

const badgerDb = "badger"

type Config struct {
	Datadir     string `mapstructure:"DATADIR" envDefault:"photon" envInfo:"Data directory for Photon state"`
	DbType      string `mapstructure:"DB_TYPE" envDefault:"badger" envInfo:"Database backend: badger"`
	HTTPPort    uint32 `mapstructure:"HTTP_PORT" envDefault:"7000" envInfo:"HTTP server port"`
	LogLevel    uint32 `mapstructure:"LOG_LEVEL" envDefault:"4" envInfo:"Log verbosity (higher = more verbose)"`
	EngineURL   string `mapstructure:"ENGINE_URL" envDefault:"" envInfo:"Wallet engine HTTP endpoint (e.g., http://sparkd:9730)"`
	EngineWSURL string `mapstructure:"ENGINE_WS_URL" envDefault:"" envInfo:"Wallet engine WebSocket endpoint (derived from ENGINE_URL if unset)"`
	EngineKey   string `mapstructure:"ENGINE_API_KEY" envDefault:"" envInfo:"Wallet engine API key"`
	Network     string `mapstructure:"NETWORK" envDefault:"mainnet" envInfo:"Default network: mainnet | regtest"`
}

func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("PHOTON")
	v.AutomaticEnv()

	if err := setDefaultConfig(v); err != nil {
		return nil, fmt.Errorf("error setting default config: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %v", err)
	}

	if err := config.initDatadir(); err != nil {
		return nil, fmt.Errorf("error initializing data directory: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	if c.DbType != badgerDb {
		return fmt.Errorf("unsupported db type: %s", c.DbType)
	}
	if c.Network != "mainnet" && c.Network != "regtest" {
		return fmt.Errorf("unsupported network: %s", c.Network)
	}
	if c.EngineURL == "" {
		return fmt.Errorf("missing PHOTON_ENGINE_URL")
	}
	if _, err := utils.ValidateURL(c.EngineURL); err != nil {
		return fmt.Errorf("invalid engine URL: %v", err)
	}
	return nil
}

func (c *Config) initDatadir() error {
	if c.Datadir == "photon" {
		c.Datadir = appDatadir("photon", false)
	}
	return makeDirectoryIfNotExists(c.Datadir)
}

func setDefaultConfig(v *viper.Viper) error {
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		key := f.Tag.Get("mapstructure")
		def := f.Tag.Get("envDefault")
		if def != "" {
			v.SetDefault(key, def)
		}
		err := v.BindEnv(key)
		if err != nil {
			return fmt.Errorf("error binding env variable for key %s: %w", key, err)
		}
	}
	return nil
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}

// appDatadir returns an operating system specific directory for storing
// application data.
func appDatadir(appName string, roaming bool) string {
	if appName == "" || appName == "." {
		return "."
	}

	appName = strings.TrimPrefix(appName, ".")
	appNameUpper := string(unicode.ToUpper(rune(appName[0]))) + appName[1:]
	appNameLower := string(unicode.ToLower(rune(appName[0]))) + appName[1:]

	var homeDir string
	usr, err := user.Current()
	if err == nil {
		homeDir = usr.HomeDir
	}
	if err != nil || homeDir == "" {
		homeDir = os.Getenv("HOME")
	}

	goos := runtime.GOOS
	switch goos {
	case "windows":
		appData := os.Getenv("LOCALAPPDATA")
		if roaming || appData == "" {
			appData = os.Getenv("APPDATA")
		}
		if appData != "" {
			return filepath.Join(appData, appNameUpper)
		}

	case "darwin":
		if homeDir != "" {
			return filepath.Join(homeDir, "Library",
				"Application Support", appNameUpper)
		}

	case "plan9":
		if homeDir != "" {
			return filepath.Join(homeDir, appNameLower)
		}

	default:
		if homeDir != "" {
			return filepath.Join(homeDir, "."+appNameLower)
		}
	}

	return "."
}
