package config

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DatabaseConfig holds PostgreSQL configuration for the installation
// settings store.
type DatabaseConfig struct {
	Host     string `env:"NDN_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"NDN_PG_PORT" env-default:"5432"`
	Database string `env:"NDN_PG_DATABASE" env-default:"newdevice_db"`
	User     string `env:"NDN_PG_USER" env-default:"newdevice"`
	Password string `env:"NDN_PG_PASSWORD" env-default:"pwd"`
	Schema   string `env:"NDN_PG_SCHEMA" env-default:"public"`
}

// ToDatabaseURL converts the config to a PostgreSQL connection URL
func (d DatabaseConfig) ToDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s,public",
		d.User, d.Password, d.Host, d.Port, d.Database, d.Schema)
}

// NewDatabasePool opens a pgx connection pool for the settings store
func (d DatabaseConfig) NewDatabasePool(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, d.ToDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	return pool, nil
}

// NewDatabaseConfigFromEnv creates a DatabaseConfig from environment variables
func NewDatabaseConfigFromEnv() DatabaseConfig {
	return DatabaseConfig{
		Host:     GetEnvOrDefault("NDN_PG_HOST", "localhost"),
		Port:     GetEnvUint16("NDN_PG_PORT", 5432),
		Database: GetEnvOrDefault("NDN_PG_DATABASE", "newdevice_db"),
		User:     GetEnvOrDefault("NDN_PG_USER", "newdevice"),
		Password: GetEnvOrDefault("NDN_PG_PASSWORD", "pwd"),
		Schema:   GetEnvOrDefault("NDN_PG_SCHEMA", "public"),
	}
}
