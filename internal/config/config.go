// Package config loads the service configuration from environment
// variables, optionally seeded from a .env file.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds all runtime settings of the service.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"addressbook-service"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // development, debug, production
	Port        string `env:"PORT" envDefault:"8080"`
	GinLogging  bool   `env:"GIN_LOGGING" envDefault:"true"`

	DBHost     string `env:"DBHOST" envDefault:"localhost:3306"`
	DBUser     string `env:"DBUSER" envDefault:"root"`
	DBPassword string `env:"DBPWD" envDefault:""`
	DBName     string `env:"DBNAME" envDefault:"addressbook"`
}

// Load reads the configuration from the environment. A missing .env
// file is not an error; explicit environment variables always win.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// DSN builds the MySQL data source name for the configured database.
func (c Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true",
		c.DBUser, c.DBPassword, c.DBHost, c.DBName)
}
