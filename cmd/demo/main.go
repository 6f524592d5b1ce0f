// Package main runs the new-device notification engine with in-memory
// backends and a header-based fake identity provider. This is useful for:
// - Quick development and testing
// - Demo/prototype environments
// - Learning the evaluation flow without database or SMTP setup
//
// Note: settings and the dedup window are lost when the server stops.
// Production deployments use the postgres settings repository and the
// Redis dedup cache.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/redis/go-redis/v9"

	"github.com/Automattic/vip-new-device-notification/pkg/config"
	"github.com/Automattic/vip-new-device-notification/pkg/dedup"
	"github.com/Automattic/vip-new-device-notification/pkg/detector"
	"github.com/Automattic/vip-new-device-notification/pkg/identity"
	"github.com/Automattic/vip-new-device-notification/pkg/install"
	"github.com/Automattic/vip-new-device-notification/pkg/notify"
	"github.com/Automattic/vip-new-device-notification/pkg/policy"
)

// DemoConfig collects every tunable the demo reads from the environment.
type DemoConfig struct {
	Port     uint16 `env:"NDN_PORT" env-default:"4000"`
	SMTP     bool   `env:"NDN_SMTP" env-default:"false"`
	Detector config.DetectorConfig
	Email    config.EmailConfig
	Redis    config.RedisConfig
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var cfg DemoConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}

	service, err := buildService(cfg)
	if err != nil {
		slog.Error("Failed to build engine", "err", err)
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(detector.Middleware(service, headerIdentityProvider, detector.NewHTTPCookieTransport(false)))

	r.Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
		id, ok := headerIdentityProvider(r)
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]string{"status": "error", "message": "missing X-Demo-User header"})
			return
		}
		render.JSON(w, r, id)
	})

	slog.Info("New-device notification demo ready", "port", cfg.Port)
	slog.Info("Try: curl -H 'X-Demo-User: 7' localhost:4000/whoami")
	slog.Info("First request flags a new device; repeat with the cookie to be recognized")

	if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.Port), r); err != nil {
		slog.Error("Server stopped", "err", err)
		os.Exit(1)
	}
}

func buildService(cfg DemoConfig) (*detector.Service, error) {
	settingsRepo, err := install.NewSettingsRepository(cfg.Detector.Persistence, install.RepositoryConfig{
		DataDir: cfg.Detector.DataDir,
	})
	if err != nil {
		return nil, err
	}

	var cache dedup.Cache
	if cfg.Redis.IsConfigured() {
		slog.Info("Using Redis dedup cache", "address", cfg.Redis.Address)
		cache = dedup.NewRedisCache(redis.NewClient(cfg.Redis.ToRedisOptions()))
	} else {
		cache = dedup.NewInMemCache()
	}

	var notifier notify.Notifier
	if cfg.SMTP {
		notifier, err = notify.NewEmailNotifier(cfg.Email.ToSMTPConfig())
		if err != nil {
			return nil, err
		}
	} else {
		notifier = notify.LogNotifier{}
	}

	hooks := &policy.Hooks{
		CCActingIdentity: true,
		Observers: []policy.Observer{
			func(dctx policy.DecisionContext, sent bool) {
				slog.Info("Decision", "identityID", dctx.Identity.ID, "remoteAddr", dctx.RemoteAddr, "sent", sent)
			},
		},
	}

	notifications := notify.NewService(
		notify.NewEnricher(nil, nil),
		notify.NewComposer(cfg.Detector.SiteName, cfg.Detector.SiteURL, cfg.Detector.AdminEmail, hooks),
		notifier,
	)

	return detector.NewService(
		install.NewService(settingsRepo),
		cache,
		policy.NewPipeline(policy.TrustedNetworks(cfg.Detector.TrustedNetworks)),
		notifications,
		detector.WithHooks(hooks),
		detector.WithGracePeriod(cfg.Detector.GracePeriod),
		detector.WithDedupTTL(cfg.Detector.DedupTTL),
		detector.WithCookieDomains(cfg.Detector.CookieDomains),
	), nil
}

// headerIdentityProvider fakes an identity provider for the demo: the
// X-Demo-User header value becomes the identity id.
func headerIdentityProvider(r *http.Request) (identity.Identity, bool) {
	userID := r.Header.Get("X-Demo-User")
	if userID == "" {
		return identity.Identity{}, false
	}
	return identity.Identity{
		ID:          userID,
		DisplayName: "Demo User " + userID,
		LoginName:   "demo" + userID,
		Email:       "demo" + userID + "@example.com",
	}, true
}
