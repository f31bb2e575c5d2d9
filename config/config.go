package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type (
	Config struct {
		HTTP        HTTP
		Log         Log
		IdentityPG  IdentityPG
		PortfolioPG PortfolioPG
		RMQ         RMQ
		OutboxRelay OutboxRelay
		Consumer    Consumer
		Swagger     Swagger
	}

	HTTP struct {
		Port           string `env:"HTTP_PORT,required"`
		UsePreforkMode bool   `env:"HTTP_USE_PREFORK_MODE" envDefault:"false"`
	}

	Log struct {
		Level string `env:"LOG_LEVEL,required"`
	}

	// Identity и portfolio - независимые хранилища, общая транзакция
	// между ними невозможна. Отсюда и весь outbox.
	IdentityPG struct {
		PoolMax int    `env:"PG_IDENTITY_POOL_MAX,required"`
		URL     string `env:"PG_IDENTITY_URL,required"`
	}

	PortfolioPG struct {
		PoolMax int    `env:"PG_PORTFOLIO_POOL_MAX,required"`
		URL     string `env:"PG_PORTFOLIO_URL,required"`
	}

	RMQ struct {
		URL string `env:"RMQ_URL,required"`
	}

	OutboxRelay struct {
		PollInterval        time.Duration `env:"OUTBOX_RELAY_POLL_INTERVAL" envDefault:"5s"`
		PoisonFlagInterval  time.Duration `env:"OUTBOX_RELAY_POISON_FLAG_INTERVAL" envDefault:"2m"`
		CleanupInterval     time.Duration `env:"OUTBOX_RELAY_CLEANUP_INTERVAL" envDefault:"24h"`
		Retention           time.Duration `env:"OUTBOX_RELAY_RETENTION" envDefault:"24h"`
		ProcessBatchTimeout time.Duration `env:"OUTBOX_RELAY_PROCESS_BATCH_TIMEOUT" envDefault:"15s"`
		ShutdownTimeout     time.Duration `env:"OUTBOX_RELAY_SHUTDOWN_TIMEOUT" envDefault:"5s"`
		BatchSize           int           `env:"OUTBOX_RELAY_BATCH_SIZE" envDefault:"100"`
		MaxRetries          int           `env:"OUTBOX_RELAY_MAX_RETRIES" envDefault:"5"`
	}

	Consumer struct {
		ProcessTimeout  time.Duration `env:"CONSUMER_PROCESS_TIMEOUT" envDefault:"15s"`
		ShutdownTimeout time.Duration `env:"CONSUMER_SHUTDOWN_TIMEOUT" envDefault:"5s"`
		Prefetch        int           `env:"CONSUMER_PREFETCH" envDefault:"10"`
	}

	Swagger struct {
		Enabled bool `env:"SWAGGER_ENABLED" envDefault:"false"`
	}
)

func New() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return cfg, nil
}
