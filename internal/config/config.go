package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds every tunable the service needs at startup. Values mirror
// the TOML layout documented for the service (server/postgres/redis/telegram
// sections); loading them from the environment instead of a TOML file is
// the one ambient concern this repository does not own (see spec.md §1).
type Config struct {
	Port         string        `envconfig:"SERVER_PORT" default:"8080"`
	AccessExpire time.Duration `envconfig:"SERVER_ACCESS_EXPIRE" default:"24h"`
	AccessSecret string        `envconfig:"SERVER_ACCESS_SECRET" required:"true"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `envconfig:"IDLE_TIMEOUT" default:"120s"`

	PostgresDSN string `envconfig:"POSTGRES_DSN" required:"true"`

	RedisURL   string `envconfig:"REDIS_URL" required:"true"`
	QueueName  string `envconfig:"REDIS_QUEUE_NAME" default:"sps:delay_queue"`

	TelegramURL   string `envconfig:"TELEGRAM_URL" default:"https://api.telegram.org/"`
	TelegramToken string `envconfig:"TELEGRAM_TOKEN" required:"true"`

	WorkerPoolSize int `envconfig:"WORKER_POOL_SIZE" default:"12"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = 1
	}
	return &cfg, nil
}
