package config

import (
	"github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis configuration for the dedup cache.
type RedisConfig struct {
	Address  string `env:"NDN_REDIS_ADDRESS" env-default:""`
	Password string `env:"NDN_REDIS_PASSWORD" env-default:""`
	DB       int    `env:"NDN_REDIS_DB" env-default:"0"`
}

// IsConfigured returns true when a Redis address is set; otherwise the
// engine falls back to the in-memory dedup cache.
func (r RedisConfig) IsConfigured() bool {
	return r.Address != ""
}

// ToRedisOptions converts the config to go-redis client options
func (r RedisConfig) ToRedisOptions() *redis.Options {
	return &redis.Options{
		Addr:     r.Address,
		Password: r.Password,
		DB:       r.DB,
	}
}

// NewRedisConfigFromEnv creates a RedisConfig from environment variables
func NewRedisConfigFromEnv() RedisConfig {
	return RedisConfig{
		Address:  GetEnv("NDN_REDIS_ADDRESS"),
		Password: GetEnv("NDN_REDIS_PASSWORD"),
		DB:       GetEnvInt("NDN_REDIS_DB", 0),
	}
}
