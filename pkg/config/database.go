package config

import (
	"fmt"

	dbutils "github.com/tendant/db-utils/db"
)

// DatabaseConfig holds PostgreSQL database configuration
type DatabaseConfig struct {
	Host     string `env:"TASKS_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"TASKS_PG_PORT" env-default:"5432"`
	Database string `env:"TASKS_PG_DATABASE" env-default:"tasks_db"`
	User     string `env:"TASKS_PG_USER" env-default:"tasks"`
	Password string `env:"TASKS_PG_PASSWORD" env-default:"pwd"`
	Schema   string `env:"TASKS_PG_SCHEMA" env-default:"public"`
}

// ToDatabaseURL converts the config to a PostgreSQL connection URL
func (d DatabaseConfig) ToDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s,public",
		d.User, d.Password, d.Host, d.Port, d.Database, d.Schema)
}

// ToDbConfig converts the config to a db-utils DbConfig
func (d DatabaseConfig) ToDbConfig() dbutils.DbConfig {
	return dbutils.DbConfig{
		Host:     d.Host,
		Port:     d.Port,
		Database: d.Database,
		User:     d.User,
		Password: d.Password,
	}
}
