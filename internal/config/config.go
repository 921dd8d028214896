// Package config loads service configuration from the environment.
package config

import (
	"os"
	"path/filepath"

	env "github.com/Netflix/go-env"
)

// Config holds everything the service reads from the environment.
type Config struct {
	Host         string `env:"HOST,default=0.0.0.0"`
	Port         int    `env:"PORT,default=3000"`
	DataDir      string `env:"DATA_DIR"`
	LogLevel     string `env:"LOG_LEVEL,default=info"`
	AMQPURL      string `env:"AMQP_URL"`
	AMQPExchange string `env:"AMQP_EXCHANGE,default=pronode.events"`
	Environment  string `env:"ENVIRONMENT,default=development"`
}

// Load reads the configuration. DataDir falls back to a directory under the
// OS temp dir, matching the service's historical default layout.
func Load() (Config, error) {
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(os.TempDir(), "pronode_data")
	}
	return cfg, nil
}
