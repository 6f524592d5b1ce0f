package install

import (
	"context"
	"sync"
)

// InMemSettingsRepository implements SettingsRepository using an in-memory map.
// Settings do not survive a restart, so every process start behaves like a
// fresh installation. Useful for development and tests.
type InMemSettingsRepository struct {
	settings map[string]string
	mu       sync.Mutex
}

// NewInMemSettingsRepository creates a new in-memory settings repository.
func NewInMemSettingsRepository() *InMemSettingsRepository {
	return &InMemSettingsRepository{
		settings: make(map[string]string),
	}
}

// GetOrCreate returns the stored value for name, storing value first if absent.
func (r *InMemSettingsRepository) GetOrCreate(ctx context.Context, name, value string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.settings[name]; ok {
		return existing, nil
	}
	r.settings[name] = value
	return value, nil
}
