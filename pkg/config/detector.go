package config

import (
	"time"
)

// DetectorConfig holds the engine's own tunables.
type DetectorConfig struct {
	SiteName        string        `env:"NDN_SITE_NAME" env-default:"My Site"`
	SiteURL         string        `env:"NDN_SITE_URL" env-default:"http://localhost"`
	AdminEmail      string        `env:"NDN_ADMIN_EMAIL" env-default:"admin@example.com"`
	GracePeriod     time.Duration `env:"NDN_GRACE_PERIOD" env-default:"168h"`
	DedupTTL        time.Duration `env:"NDN_DEDUP_TTL" env-default:"10m"`
	CookieDomains   []string      `env:"NDN_COOKIE_DOMAINS"`
	TrustedNetworks []string      `env:"NDN_TRUSTED_NETWORKS"`
	Persistence     string        `env:"NDN_PERSISTENCE" env-default:"inmem"`
	DataDir         string        `env:"NDN_DATA_DIR" env-default:"./data"`
}

// NewDetectorConfigFromEnv creates a DetectorConfig from environment variables
func NewDetectorConfigFromEnv() DetectorConfig {
	return DetectorConfig{
		SiteName:        GetEnvOrDefault("NDN_SITE_NAME", "My Site"),
		SiteURL:         GetEnvOrDefault("NDN_SITE_URL", "http://localhost"),
		AdminEmail:      GetEnvOrDefault("NDN_ADMIN_EMAIL", "admin@example.com"),
		GracePeriod:     GetEnvDuration("NDN_GRACE_PERIOD", 168*time.Hour),
		DedupTTL:        GetEnvDuration("NDN_DEDUP_TTL", 10*time.Minute),
		CookieDomains:   GetEnvSlice("NDN_COOKIE_DOMAINS", nil),
		TrustedNetworks: GetEnvSlice("NDN_TRUSTED_NETWORKS", nil),
		Persistence:     GetEnvOrDefault("NDN_PERSISTENCE", "inmem"),
		DataDir:         GetEnvOrDefault("NDN_DATA_DIR", "./data"),
	}
}
