package install

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// Service provisions and answers the two installation settings the engine
// needs: the token-derivation secret and the activation timestamp.
type Service struct {
	repo SettingsRepository
}

// NewService creates an installation settings service backed by the given repository.
func NewService(repo SettingsRepository) *Service {
	return &Service{repo: repo}
}

// Secret returns the installation secret, provisioning one on first use.
// Provisioning is a one-time bootstrap, not a per-request failure path:
// once a secret exists this never generates again.
func (s *Service) Secret(ctx context.Context) (string, error) {
	candidate, err := NewSecret()
	if err != nil {
		return "", err
	}
	secret, err := s.repo.GetOrCreate(ctx, SecretSetting, candidate)
	if err != nil {
		return "", fmt.Errorf("failed to load installation secret: %w", err)
	}
	if secret == candidate {
		slog.Info("Provisioned new installation secret")
	}
	return secret, nil
}

// InstalledAt returns the instant the engine was first activated,
// recording now as that instant if nothing is stored yet. Stored as unix
// seconds; sub-second precision is irrelevant at grace-period scale.
func (s *Service) InstalledAt(ctx context.Context, now time.Time) (time.Time, error) {
	stored, err := s.repo.GetOrCreate(ctx, InstalledAtSetting, strconv.FormatInt(now.Unix(), 10))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to load install timestamp: %w", err)
	}
	secs, err := strconv.ParseInt(stored, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt install timestamp %q: %w", stored, err)
	}
	return time.Unix(secs, 0).UTC(), nil
}
