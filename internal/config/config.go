package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Storage StorageConfig
	Group   GroupConfig
	UI      UIConfig
	Log     LogConfig
}

// StorageConfig selects and locates the document store.
type StorageConfig struct {
	Driver string // "sqlite" or "bolt"
	Path   string
}

// GroupConfig seeds the group record on first run. Changing these after the
// first save does not rewrite the stored group.
type GroupConfig struct {
	Name          string
	MonthlySaving int64   `mapstructure:"monthly_saving"`
	InterestRate  float64 `mapstructure:"interest_rate"`
	SeedDemo      bool    `mapstructure:"seed_demo"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	CurrencySymbol string `mapstructure:"currency_symbol"`
	DateFormat     string `mapstructure:"date_format"`
}

// LogConfig locates the log file. The TUI owns the terminal, so logs never
// go to stdout.
type LogConfig struct {
	Path  string
	Level string
}

// Load reads configuration from file and env. Env var overrides use prefix
// SANGAM_.
func Load() (Config, error) {
	v := viper.New()

	dataDir := filepath.Join(os.Getenv("HOME"), ".local", "share", "sangam")

	// default values
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.path", filepath.Join(dataDir, "sangam.db"))
	v.SetDefault("group.name", "Ekta Sangam")
	v.SetDefault("group.monthly_saving", 200)
	v.SetDefault("group.interest_rate", 24)
	v.SetDefault("group.seed_demo", true)
	v.SetDefault("ui.currency_symbol", "₹")
	v.SetDefault("ui.date_format", "02 Jan 2006")
	v.SetDefault("log.path", filepath.Join(dataDir, "sangam.log"))
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("SANGAM_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "sangam"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("SANGAM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if
// needed. Used by the TUI settings view for non-sensitive preferences.
func Save(cfg Config) error {
	path := os.Getenv("SANGAM_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "sangam", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("storage.driver", cfg.Storage.Driver)
	v.Set("storage.path", cfg.Storage.Path)
	v.Set("group.name", cfg.Group.Name)
	v.Set("group.monthly_saving", cfg.Group.MonthlySaving)
	v.Set("group.interest_rate", cfg.Group.InterestRate)
	v.Set("group.seed_demo", cfg.Group.SeedDemo)
	v.Set("ui.currency_symbol", cfg.UI.CurrencySymbol)
	v.Set("ui.date_format", cfg.UI.DateFormat)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
