package config

import "github.com/caarlos0/env/v9"

type Config struct {
	Port       string `env:"PORT" envDefault:"8080"`
	DBUser     string `env:"DB_USER,required"`
	DBPassword string `env:"DB_PASSWORD,required"`
	DBHost     string `env:"DB_HOST,required"` // e.g. tcp(host:3306) or unix(/path/to/socket)
	DBName     string `env:"DB_NAME,required"`
	DBPort     string `env:"DB_PORT" envDefault:"3306"`

	MarketplaceBaseURL      string `env:"MARKETPLACE_BASE_URL,required"`
	MarketplaceTokenURL     string `env:"MARKETPLACE_TOKEN_URL,required"`
	MarketplaceClientID     string `env:"MARKETPLACE_CLIENT_ID,required"`
	MarketplaceClientSecret string `env:"MARKETPLACE_CLIENT_SECRET,required"`

	// RedisAddr switches the sync lease to redis for multi-instance
	// deployments; empty keeps the database-backed lease.
	RedisAddr string `env:"REDIS_ADDR"`

	SyncPageSize   int `env:"SYNC_PAGE_SIZE" envDefault:"1000"`
	SyncWindowDays int `env:"SYNC_WINDOW_DAYS" envDefault:"90"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
