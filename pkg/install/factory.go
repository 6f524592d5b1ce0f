package install

import (
	"fmt"
)

// RepositoryConfig contains configuration for creating a settings repository
type RepositoryConfig struct {
	// DB is required for PostgreSQL repositories (DBTX interface)
	DB DBTX
	// DataDir is required for file-based repositories
	DataDir string
}

// NewSettingsRepository creates a new settings repository based on the persistence type
func NewSettingsRepository(persistenceType string, config RepositoryConfig) (SettingsRepository, error) {
	switch persistenceType {
	case "postgres", "postgresql":
		if config.DB == nil {
			return nil, fmt.Errorf("db required for postgres repository")
		}
		return NewPostgresSettingsRepository(config.DB), nil
	case "file":
		if config.DataDir == "" {
			return nil, fmt.Errorf("dataDir required for file repository")
		}
		return NewFileSettingsRepository(config.DataDir)
	case "inmem", "memory":
		return NewInMemSettingsRepository(), nil
	default:
		return nil, fmt.Errorf("unsupported persistence type: %s (supported: postgres, file, inmem)", persistenceType)
	}
}
