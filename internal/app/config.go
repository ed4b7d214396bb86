package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the complete application configuration, loadable from
// environment variables (ADMIN_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"Admin API listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (ADMIN_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	MaxConns    int32  `default:"10" usage:"Maximum PostgreSQL pool connections" flag:"max-conns"`
	Redis       RedisConfig
	CORS        CORSConfig
	Graceful    GracefulConfig
	Preview     PreviewConfig
	LowStock    LowStockConfig
}

// RedisConfig controls the settings cache. An empty URL disables caching.
type RedisConfig struct {
	URL string        `usage:"Redis URL for the settings cache (ADMIN_REDIS_URL or REDIS_URL)" flag:"redis-url"`
	TTL time.Duration `default:"5m" usage:"Settings cache TTL" flag:"redis-ttl"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string      `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool          `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
	MaxAge           time.Duration `default:"24h" usage:"Preflight cache duration" flag:"cors-max-age"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// PreviewConfig controls the settings page fee preview.
type PreviewConfig struct {
	SampleSubtotal string `default:"1000" usage:"Order subtotal priced by the settings preview" flag:"preview-subtotal"`
}

// LowStockConfig controls the inventory alerts on the dashboard.
type LowStockConfig struct {
	Threshold int `default:"5" usage:"Inventory count below which a product is low on stock" flag:"low-stock-threshold"`
	Limit     int `default:"5" usage:"Rows shown in dashboard lists" flag:"dashboard-limit"`
}

// PreviewSubtotal parses Preview.SampleSubtotal.
func (c *Config) PreviewSubtotal() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(c.Preview.SampleSubtotal)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "parse preview subtotal %q", c.Preview.SampleSubtotal)
	}
	if d.IsNegative() {
		return decimal.Zero, errors.Errorf("preview subtotal %s must not be negative", d)
	}
	return d, nil
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	return loadConfig(os.Args[1:])
}

func loadConfig(args []string) (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		Args:      args,
		EnvPrefix: "ADMIN",
		Files:     []string{"config.yaml", "/etc/store-admin/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("database URL is required: set ADMIN_DATABASE_URL or DATABASE_URL")
	}
	if _, err := c.PreviewSubtotal(); err != nil {
		return err
	}
	if c.LowStock.Threshold < 0 || c.LowStock.Limit < 0 {
		return errors.New("low stock threshold and limit must not be negative")
	}
	return nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL, REDIS_URL and PORT
// to the application's ADMIN_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if c.Redis.URL == "" {
		c.Redis.URL = os.Getenv("REDIS_URL")
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}
