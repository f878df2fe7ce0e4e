package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/CreativeUnicorns/shopstate"
)

// sqlOpenFunc is a package-level variable that can be overridden for testing.
var sqlOpenFunc = sql.Open

const (
	createTableSQL = `
		CREATE TABLE IF NOT EXISTS shop_state (
			profile_id TEXT NOT NULL,
			namespace TEXT NOT NULL,
			data BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (profile_id, namespace)
		);
	`

	upsertSQL = `
		INSERT INTO shop_state (profile_id, namespace, data, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (profile_id, namespace)
		DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
	`

	selectSQL = `
		SELECT data FROM shop_state
		WHERE profile_id = $1 AND namespace = $2
	`

	selectNamespacesSQL = `
		SELECT namespace FROM shop_state
		WHERE profile_id = $1
		ORDER BY namespace
	`

	deleteSQL = `
		DELETE FROM shop_state
		WHERE profile_id = $1 AND namespace = $2
	`
)

// PostgresStorage stores blobs in a PostgreSQL table keyed by
// (profile_id, namespace). Several CLI hosts can share one database.
type PostgresStorage struct {
	db *sql.DB
}

// NewPostgresStorage connects using connString and creates the shop_state
// table when missing.
func NewPostgresStorage(connString string) (*PostgresStorage, error) {
	db, err := sqlOpenFunc("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: failed to ping database: %w: %w", shopstate.ErrStorageUnavailable, err)
	}

	storage := &PostgresStorage{db: db}
	if err := storage.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: failed to run migrations: %w", err)
	}

	return storage, nil
}

func (s *PostgresStorage) migrate() error {
	if _, err := s.db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("postgres: failed to execute create table statement: %w", err)
	}
	return nil
}

// Load returns the blob, or shopstate.ErrNotFound.
func (s *PostgresStorage) Load(ctx context.Context, profileID, namespace string) ([]byte, error) {
	if err := validateKey(profileID, namespace); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.QueryRowContext(ctx, selectSQL, profileID, namespace).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shopstate.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to load state: %w", err)
	}
	return data, nil
}

// Save inserts or replaces the blob.
func (s *PostgresStorage) Save(ctx context.Context, profileID, namespace string, data []byte) error {
	if err := validateKey(profileID, namespace); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, upsertSQL, profileID, namespace, data, time.Now().UTC()); err != nil {
		return fmt.Errorf("postgres: failed to save state: %w", err)
	}
	return nil
}

// Delete removes the blob, returning shopstate.ErrNotFound if no row matched.
func (s *PostgresStorage) Delete(ctx context.Context, profileID, namespace string) error {
	result, err := s.db.ExecContext(ctx, deleteSQL, profileID, namespace)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete state: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres: failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return shopstate.ErrNotFound
	}
	return nil
}

// Namespaces lists the profile's namespaces in lexical order.
func (s *PostgresStorage) Namespaces(ctx context.Context, profileID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, selectNamespacesSQL, profileID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query namespaces: %w", err)
	}
	defer rows.Close()

	return scanNamespaces(rows)
}

// Close closes the PostgreSQL database connection.
func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
