// /internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken     string        `env:"DISCORD_TOKEN,required,notEmpty"`
	CommandPrefix    string        `env:"COMMAND_PREFIX" envDefault:"!"`
	DownloadDir      string        `env:"DOWNLOAD_DIR" envDefault:"downloads"`
	ResolverWorkers  int           `env:"RESOLVER_WORKERS" envDefault:"4"`
	QueuePageSize    int           `env:"QUEUE_PAGE_SIZE" envDefault:"10"`
	QueuePageTimeout time.Duration `env:"QUEUE_PAGE_TIMEOUT" envDefault:"60s"`
	Volume           float64       `env:"VOLUME" envDefault:"0.5"`
	LogFile          string        `env:"LOG_FILE" envDefault:"logs/bot_log.log"`
	YouTubeProxy     string        `env:"YOUTUBE_PROXY"`
	CommandCooldown  time.Duration `env:"COMMAND_COOLDOWN" envDefault:"0s"`
}

// New loads the env file named by ENV_FILE (default .env), if any, and parses
// the environment.
func New() (*Config, error) {
	file := os.Getenv("ENV_FILE")
	if file == "" {
		file = ".env"
	}
	if err := godotenv.Load(file); err != nil {
		log.Printf("[INFO] No %s file found, falling back to system environment variables", file)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.CommandPrefix == "":
		return errors.New("COMMAND_PREFIX must not be empty")
	case c.ResolverWorkers < 1:
		return errors.New("RESOLVER_WORKERS must be at least 1")
	case c.QueuePageSize < 1:
		return errors.New("QUEUE_PAGE_SIZE must be at least 1")
	case c.QueuePageTimeout <= 0:
		return errors.New("QUEUE_PAGE_TIMEOUT must be positive")
	case c.Volume < 0:
		return errors.New("VOLUME must not be negative")
	}
	return nil
}
