package install

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresSettingsRepository implements SettingsRepository using PostgreSQL.
//
// Expected schema:
//
//	CREATE TABLE install_settings (
//	    name  TEXT PRIMARY KEY,
//	    value TEXT NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type PostgresSettingsRepository struct {
	db DBTX
}

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// NewPostgresSettingsRepository creates a new PostgreSQL settings repository
func NewPostgresSettingsRepository(db DBTX) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{db: db}
}

// GetOrCreate inserts the value for name unless one exists, then returns
// whatever is stored. ON CONFLICT DO NOTHING makes the create idempotent:
// concurrent first requests both end up reading the single winning row, so
// two racing bootstraps can never mint two different secrets.
func (r *PostgresSettingsRepository) GetOrCreate(ctx context.Context, name, value string) (string, error) {
	_, err := r.db.Exec(ctx,
		`INSERT INTO install_settings (name, value) VALUES ($1, $2)
		 ON CONFLICT (name) DO NOTHING`,
		name, value)
	if err != nil {
		return "", fmt.Errorf("failed to insert setting %s: %w", name, err)
	}

	var stored string
	err = r.db.QueryRow(ctx,
		`SELECT value FROM install_settings WHERE name = $1`,
		name).Scan(&stored)
	if err != nil {
		return "", fmt.Errorf("failed to read setting %s: %w", name, err)
	}
	return stored, nil
}
