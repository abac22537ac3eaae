package app

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/returnaddress/returnaddress-backend/internal/platform/envutil"
	"github.com/returnaddress/returnaddress-backend/internal/platform/logger"
)

type Config struct {
	Environment string
	AppBaseURL  string

	JWTSecret    string
	AnonIDSecret string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration

	PlatformFeeBps int
	AdminEmails    []string

	MetricsAddr string
}

// fileConfig is the optional yaml overlay loaded from RA_CONFIG_FILE.
// Env vars win over file values; the file only fills blanks.
type fileConfig struct {
	Environment    string   `yaml:"environment"`
	AppBaseURL     string   `yaml:"app_base_url"`
	PlatformFeeBps int      `yaml:"platform_fee_bps"`
	AdminEmails    []string `yaml:"admin_emails"`
	MetricsAddr    string   `yaml:"metrics_addr"`
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Environment:    envutil.String("APP_ENV", "development"),
		AppBaseURL:     envutil.String("APP_BASE_URL", "http://localhost:3000"),
		JWTSecret:      envutil.String("JWT_SECRET", "defaultsecret"),
		AnonIDSecret:   envutil.String("ANON_ID_SECRET", ""),
		AccessTTL:      time.Duration(envutil.Int("ACCESS_TOKEN_TTL", 3600)) * time.Second,
		RefreshTTL:     time.Duration(envutil.Int("REFRESH_TOKEN_TTL", 30*86400)) * time.Second,
		PlatformFeeBps: envutil.Int("PLATFORM_FEE_BPS", 500),
		AdminEmails:    envutil.List("ADMIN_EMAILS"),
		MetricsAddr:    envutil.String("METRICS_ADDR", ""),
	}

	// Forged anon ids reset trial counters, so the signing secret must not
	// silently default to something guessable in production.
	if cfg.AnonIDSecret == "" {
		cfg.AnonIDSecret = cfg.JWTSecret
		if cfg.Environment == "production" {
			log.Warn("ANON_ID_SECRET not set, falling back to JWT_SECRET")
		}
	}

	if path := envutil.String("RA_CONFIG_FILE", ""); path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			log.Warn("config file overlay skipped", "path", path, "error", err)
		}
	}
	return cfg
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func overlayFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if os.Getenv("APP_ENV") == "" && fc.Environment != "" {
		cfg.Environment = fc.Environment
	}
	if os.Getenv("APP_BASE_URL") == "" && fc.AppBaseURL != "" {
		cfg.AppBaseURL = fc.AppBaseURL
	}
	if os.Getenv("PLATFORM_FEE_BPS") == "" && fc.PlatformFeeBps > 0 {
		cfg.PlatformFeeBps = fc.PlatformFeeBps
	}
	if os.Getenv("ADMIN_EMAILS") == "" && len(fc.AdminEmails) > 0 {
		cfg.AdminEmails = fc.AdminEmails
	}
	if os.Getenv("METRICS_ADDR") == "" && fc.MetricsAddr != "" {
		cfg.MetricsAddr = fc.MetricsAddr
	}
	return nil
}
