package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/VaryushinFleksey/Vitka-bot/internal/domain"
)

// staticOwners may always change a chat's date and timezone.
var staticOwners = []int64{661057299, 43680181}

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken    string        `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	StorePath   string        `envconfig:"STORE_PATH" default:"./store.json"`
	OwnerID     int64         `envconfig:"OWNER_ID"`                   // appended to the static owners
	NotifyAt    string        `envconfig:"NOTIFY_AT" default:"08:00"`  // local to each chat
	SendTimeout time.Duration `envconfig:"SEND_TIMEOUT" default:"45s"` // must exceed the long-poll timeout
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`   // debug|info|warn|error
	HTTPAddr    string        `envconfig:"HTTP_ADDR" default:":8080"`  // healthz
}

// Load reads an optional .env file and then environment variables into Config.
func Load() (Config, error) {
	// A missing .env is normal in containers.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	// envconfig treats a present-but-empty variable as set
	if cfg.BotToken == "" {
		return cfg, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if _, err := cfg.FireAt(); err != nil {
		return cfg, fmt.Errorf("NOTIFY_AT: %w", err)
	}
	if cfg.SendTimeout <= 0 {
		return cfg, fmt.Errorf("SEND_TIMEOUT must be positive, got %s", cfg.SendTimeout)
	}
	return cfg, nil
}

// FireAt is the parsed daily notification time.
func (c Config) FireAt() (domain.Clock, error) {
	return domain.ParseClock(c.NotifyAt)
}

// Owners returns the static allow-list plus OWNER_ID when set.
func (c Config) Owners() []int64 {
	owners := append([]int64(nil), staticOwners...)
	if c.OwnerID != 0 {
		owners = append(owners, c.OwnerID)
	}
	return owners
}
