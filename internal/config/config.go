package config

import (
	"fmt"
	"log"

	"github.com/spf13/viper"
)

// Config is the runtime configuration, read from .env and the environment.
type Config struct {
	Port              string `mapstructure:"PORT"`
	Env               string `mapstructure:"APP_ENV"`
	DBDriver          string `mapstructure:"DB_DRIVER"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DBAutoMigrate     bool   `mapstructure:"DB_AUTO_MIGRATE"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	JWTExpiryHours    int    `mapstructure:"JWT_EXPIRATION_HOURS"`
	QuantityPolicy    string `mapstructure:"INVOICE_QUANTITY_POLICY"`
	LowStockThreshold int    `mapstructure:"LOW_STOCK_THRESHOLD"`
	DefaultActor      string `mapstructure:"DEFAULT_ACTOR"`
	CORSOrigins       string `mapstructure:"CORS_ORIGINS"`
	AdminEmail        string `mapstructure:"ADMIN_EMAIL"`
	AdminPassword     string `mapstructure:"ADMIN_PASSWORD"`
}

var defaults = map[string]any{
	"PORT":                    "3000",
	"APP_ENV":                 "development",
	"DB_DRIVER":               "postgres",
	"DATABASE_URL":            "",
	"DB_AUTO_MIGRATE":         false,
	"JWT_SECRET":              "",
	"JWT_EXPIRATION_HOURS":    24,
	"INVOICE_QUANTITY_POLICY": "reject",
	"LOW_STOCK_THRESHOLD":     5,
	"DEFAULT_ACTOR":           "Administrator",
	"CORS_ORIGINS":            "*",
	"ADMIN_EMAIL":             "admin@tooltrack.local",
	"ADMIN_PASSWORD":          "",
}

// Load reads configuration from an optional .env file in the working
// directory, overridden by environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Warning: Could not read config file: %v", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	case "sqlite":
		if c.DatabaseURL == "" {
			c.DatabaseURL = "tooltrack.db"
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.JWTExpiryHours <= 0 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be positive")
	}
	return nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
