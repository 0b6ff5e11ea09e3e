package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete bot configuration.
type Config struct {
	Bot       BotConfig       `yaml:"bot"`
	Market    MarketConfig    `yaml:"market"`
	Wallet    WalletConfig    `yaml:"wallet"`
	Storage   StorageConfig   `yaml:"storage"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Log       LogConfig       `yaml:"log"`
}

// BotConfig controls the trading loop. Zero values defer to the engine
// defaults, so the YAML only needs the knobs the operator wants to move.
type BotConfig struct {
	Collection      string  `yaml:"collection"`
	IntervalSeconds int     `yaml:"interval_seconds"`
	OfferFraction   float64 `yaml:"offer_fraction"`    // max offer as fraction of floor
	OfferMinutes    int     `yaml:"offer_minutes"`     // collection offer lifetime
	SniperThreshold float64 `yaml:"sniper_threshold"`  // buy listings below floor×threshold
	MaxOwned        int     `yaml:"max_owned"`         // volume-trading inventory cap
	FloorTolerance  float64 `yaml:"floor_tolerance"`   // max fraction above floor for a volume buy
	VolumeMarkup    float64 `yaml:"volume_markup"`     // relist markup over buy price
	CooldownSeconds int     `yaml:"cooldown_seconds"`  // gap between volume buys
	RemoveOnSale    bool    `yaml:"remove_on_sale"`    // drop ledger rows for sold tokens
}

// MarketConfig holds the marketplace API credentials and chain selection.
type MarketConfig struct {
	APIKey string `yaml:"api_key"`
	Chain  string `yaml:"chain"`   // ethereum | polygon | base | hyperevm | sepolia
	FeeBps int    `yaml:"fee_bps"` // marketplace fee in basis points
}

// WalletConfig holds the signing key and RPC endpoint.
type WalletConfig struct {
	PrivateKey string `yaml:"private_key"`
	RPCURL     string `yaml:"rpc_url"` // empty uses the chain default
}

// StorageConfig controls where the trade ledger persists.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // SQLite file path, or ":memory:"
}

// DashboardConfig controls the operator dashboard.
type DashboardConfig struct {
	Addr    string `yaml:"addr"`
	Enabled *bool  `yaml:"enabled"` // nil means enabled
}

// LogConfig controls logging format, level and rotation.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
	File   string `yaml:"file"`   // rotated log file; empty logs to stdout only
}

// Load reads the YAML config and the .env file if present. Environment
// variables override the YAML for secrets and deployment-specific keys.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// PollInterval returns the cycle interval as a time.Duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Bot.IntervalSeconds) * time.Second
}

// PurchaseCooldown returns the volume-buy cooldown as a time.Duration.
func (c *Config) PurchaseCooldown() time.Duration {
	return time.Duration(c.Bot.CooldownSeconds) * time.Second
}

// DashboardEnabled reports whether the dashboard should be started.
func (c *Config) DashboardEnabled() bool {
	return c.Dashboard.Enabled == nil || *c.Dashboard.Enabled
}

// applyEnvOverrides replaces values with environment variables when present.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENSEA_API_KEY"); v != "" {
		cfg.Market.APIKey = v
	}
	if v := os.Getenv("WALLET_PRIVATE_KEY"); v != "" {
		cfg.Wallet.PrivateKey = v
	}
	if v := os.Getenv("RPC_URL"); v != "" {
		cfg.Wallet.RPCURL = v
	}
	if v := os.Getenv("CHAIN"); v != "" {
		cfg.Market.Chain = v
	}
	if v := os.Getenv("COLLECTION"); v != "" {
		cfg.Bot.Collection = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults fills required keys with sensible values.
func setDefaults(cfg *Config) {
	if cfg.Bot.IntervalSeconds <= 0 {
		cfg.Bot.IntervalSeconds = 30
	}
	if cfg.Market.Chain == "" {
		cfg.Market.Chain = "base"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "floorbot.db"
	}
	if cfg.Dashboard.Addr == "" {
		cfg.Dashboard.Addr = "127.0.0.1:3000"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// validate rejects configurations the bot cannot run with.
func (c *Config) validate() error {
	if c.Bot.Collection == "" {
		return errors.New("bot.collection is required")
	}
	if c.Market.APIKey == "" {
		return errors.New("market.api_key is required (or set OPENSEA_API_KEY)")
	}
	if c.Wallet.PrivateKey == "" {
		return errors.New("wallet.private_key is required (or set WALLET_PRIVATE_KEY)")
	}
	return nil
}
