package config

import "github.com/caarlos0/env/v11"

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"quorum"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`

	// DBDriver selects the Entity Store backend: "postgres" for deployments,
	// "sqlite" for local development.
	DBDriver    string `env:"DB_DRIVER" envDefault:"postgres"`
	PostgresDSN string `env:"POSTGRES_DSN"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"quorum.db"`

	// RoomCodeAttempts bounds join-code generation retries before the
	// operation fails instead of looping.
	RoomCodeAttempts int `env:"ROOM_CODE_ATTEMPTS" envDefault:"1000"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
