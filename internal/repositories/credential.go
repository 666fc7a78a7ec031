package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/streamz/internal/shared"
)

// CredentialRepository persists the session token in the credentials table.
//
// The table holds at most one row (slot 1); saving replaces it.
type CredentialRepository struct {
	db *sql.DB
}

// NewCredentialRepository creates a new [CredentialRepository] with the given database connection
func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Open connects to the database at path, applies migrations and returns the repository.
func Open(ctx context.Context, path string) (*CredentialRepository, *sql.DB, error) {
	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, nil, err
	}

	if err := shared.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return NewCredentialRepository(db), db, nil
}

// Load returns the stored token, or "" when none is stored.
func (r *CredentialRepository) Load() (string, error) {
	var token string
	err := r.db.QueryRow(`SELECT token FROM credentials WHERE slot = 1`).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

// Save stores token, replacing any previous one. An empty token clears the store.
func (r *CredentialRepository) Save(token string) error {
	if token == "" {
		return r.Clear()
	}

	query := `
		INSERT INTO credentials (slot, id, token, created_at, updated_at)
		VALUES (1, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(slot) DO UPDATE SET
			id = excluded.id,
			token = excluded.token,
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := r.db.Exec(query, shared.GenerateID(), token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Clear removes the stored token. Clearing an empty store is not an error.
func (r *CredentialRepository) Clear() error {
	if _, err := r.db.Exec(`DELETE FROM credentials`); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}
