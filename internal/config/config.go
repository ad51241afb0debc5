package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config contains server configuration parameters.
type Config struct {
	Port         string `env:"PORT" envDefault:"8080"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"zikirmatik.db"`
	JWTSecret    string `env:"JWT_SECRET,required"`
	// CookieSecure defaults to on; disable only for local development.
	CookieSecure bool  `env:"COOKIE_SECURE" envDefault:"true"`
	BcryptCost   int   `env:"BCRYPT_COST" envDefault:"12"`
	Admin        Admin `envPrefix:"ADMIN_"`
}

// Admin holds the bootstrap admin account seeded at startup. Seeding is
// skipped when Email is empty or the account already exists.
type Admin struct {
	Email       string `env:"EMAIL"`
	Password    string `env:"PASSWORD"`
	DisplayName string `env:"NAME" envDefault:"Admin"`
}

// New loads configuration from environment variables and validates it.
func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters for HMAC-SHA256 security")
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 14 {
		return nil, fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", cfg.BcryptCost)
	}

	return cfg, nil
}
