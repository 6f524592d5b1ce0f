package install

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Setting names used by the engine. Both are written once per installation
// and read on every evaluation.
const (
	SecretSetting      = "installation_secret"
	InstalledAtSetting = "installed_time"
)

// SettingsRepository is durable storage for per-installation settings.
//
// GetOrCreate returns the stored value for name, creating it from value if
// absent. Creation must be idempotent: when two concurrent callers race on
// an absent name, both must observe the same stored value afterwards, never
// two different ones. This is the only cross-request mutable state in the
// engine with a real race, so the contract is load-bearing.
type SettingsRepository interface {
	GetOrCreate(ctx context.Context, name, value string) (string, error)
}

// NewSecret generates a fresh installation secret: 32 bytes from the
// system CSPRNG, hex encoded. Generated once per installation and never
// rotated automatically; rotating it would invalidate every outstanding
// device token.
func NewSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate installation secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
