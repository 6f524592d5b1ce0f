package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("NDN_TEST_VALUE", "set")
	assert.Equal(t, "set", GetEnvOrDefault("NDN_TEST_VALUE", "default"))
	assert.Equal(t, "default", GetEnvOrDefault("NDN_TEST_MISSING", "default"))
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("NDN_TEST_TRUE", "Yes")
	t.Setenv("NDN_TEST_FALSE", "0")
	t.Setenv("NDN_TEST_JUNK", "maybe")

	assert.True(t, GetEnvBool("NDN_TEST_TRUE", false))
	assert.False(t, GetEnvBool("NDN_TEST_FALSE", true))
	assert.True(t, GetEnvBool("NDN_TEST_JUNK", true), "invalid value falls back to default")
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("NDN_TEST_DUR", "90m")
	assert.Equal(t, 90*time.Minute, GetEnvDuration("NDN_TEST_DUR", time.Hour))
	assert.Equal(t, time.Hour, GetEnvDuration("NDN_TEST_DUR_MISSING", time.Hour))
}

func TestGetEnvSlice(t *testing.T) {
	t.Setenv("NDN_TEST_SLICE", "10.0.0.1, 10.0.0.2 ,,10.0.0.3")
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"}, GetEnvSlice("NDN_TEST_SLICE", nil))
	assert.Equal(t, []string{"fallback"}, GetEnvSlice("NDN_TEST_SLICE_MISSING", []string{"fallback"}))
}

func TestNewDetectorConfigFromEnv(t *testing.T) {
	t.Setenv("NDN_SITE_NAME", "Example Site")
	t.Setenv("NDN_GRACE_PERIOD", "24h")
	t.Setenv("NDN_TRUSTED_NETWORKS", "203.0.113.9,198.51.100.1")

	cfg := NewDetectorConfigFromEnv()
	assert.Equal(t, "Example Site", cfg.SiteName)
	assert.Equal(t, 24*time.Hour, cfg.GracePeriod)
	assert.Equal(t, []string{"203.0.113.9", "198.51.100.1"}, cfg.TrustedNetworks)
	assert.Equal(t, "inmem", cfg.Persistence)
}

func TestEmailConfigToSMTPConfig(t *testing.T) {
	cfg := EmailConfig{Host: "smtp.example.com", Port: 587, Username: "u", Password: "p", From: "noreply@example.com", TLS: true}
	smtp := cfg.ToSMTPConfig()
	assert.Equal(t, "smtp.example.com", smtp.Host)
	assert.Equal(t, 587, smtp.Port)
	assert.True(t, smtp.TLS)
}

func TestDatabaseConfigToDatabaseURL(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: 5432, Database: "ndn", User: "u", Password: "p", Schema: "public"}
	assert.Equal(t, "postgres://u:p@db:5432/ndn?sslmode=disable&search_path=public,public", cfg.ToDatabaseURL())
}

func TestRedisConfigIsConfigured(t *testing.T) {
	assert.False(t, RedisConfig{}.IsConfigured())
	assert.True(t, RedisConfig{Address: "localhost:6379"}.IsConfigured())
}
