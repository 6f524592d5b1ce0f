package install

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileSettingsRepository implements SettingsRepository using file-based storage.
// Settings survive process restarts, which is what keeps the installation
// secret stable across deploys on a single host.
type FileSettingsRepository struct {
	dataDir  string
	settings map[string]string
	mutex    sync.RWMutex
}

// settingsData represents the structure of data stored in the JSON file
type settingsData struct {
	Settings map[string]string `json:"settings"`
}

// NewFileSettingsRepository creates a new file-based settings repository.
func NewFileSettingsRepository(dataDir string) (*FileSettingsRepository, error) {
	// Create data directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	repo := &FileSettingsRepository{
		dataDir:  dataDir,
		settings: make(map[string]string),
	}

	// Load existing data
	if err := repo.load(); err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	return repo, nil
}

// GetOrCreate returns the stored value for name, persisting value first if absent.
func (r *FileSettingsRepository) GetOrCreate(ctx context.Context, name, value string) (string, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if existing, ok := r.settings[name]; ok {
		return existing, nil
	}

	r.settings[name] = value
	if err := r.save(); err != nil {
		delete(r.settings, name)
		return "", fmt.Errorf("failed to save: %w", err)
	}

	return value, nil
}

func (r *FileSettingsRepository) filePath() string {
	return filepath.Join(r.dataDir, "install_settings.json")
}

// load reads settings from the JSON file; a missing file means a fresh installation
func (r *FileSettingsRepository) load() error {
	data, err := os.ReadFile(r.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read settings file: %w", err)
	}

	var stored settingsData
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("failed to parse settings file: %w", err)
	}
	if stored.Settings != nil {
		r.settings = stored.Settings
	}
	return nil
}

// save writes settings to the JSON file atomically via a temp file rename
func (r *FileSettingsRepository) save() error {
	data, err := json.MarshalIndent(settingsData{Settings: r.settings}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	tmp := r.filePath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if err := os.Rename(tmp, r.filePath()); err != nil {
		return fmt.Errorf("failed to replace settings file: %w", err)
	}
	return nil
}
