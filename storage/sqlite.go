package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/CreativeUnicorns/shopstate"
)

const (
	sqliteCreateTableSQL = `
		CREATE TABLE IF NOT EXISTS shop_state (
			profile_id TEXT NOT NULL,
			namespace TEXT NOT NULL,
			data BLOB NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (profile_id, namespace)
		);
	`

	sqliteUpsertSQL = `
		INSERT INTO shop_state (profile_id, namespace, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(profile_id, namespace)
		DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`

	sqliteSelectSQL = `
		SELECT data FROM shop_state
		WHERE profile_id = ? AND namespace = ?
	`

	sqliteSelectNamespacesSQL = `
		SELECT namespace FROM shop_state
		WHERE profile_id = ?
		ORDER BY namespace
	`

	sqliteDeleteSQL = `
		DELETE FROM shop_state
		WHERE profile_id = ? AND namespace = ?
	`
)

// SQLiteStorage stores blobs in a single SQLite table keyed by
// (profile_id, namespace).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens the database at dbPath, creating it and the
// shop_state table when missing.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w: %w", shopstate.ErrStorageUnavailable, err)
	}

	storage := &SQLiteStorage{db: db}
	if err := storage.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) migrate() error {
	_, err := s.db.Exec(sqliteCreateTableSQL)
	return err
}

// Load returns the blob, or shopstate.ErrNotFound.
func (s *SQLiteStorage) Load(ctx context.Context, profileID, namespace string) ([]byte, error) {
	if err := validateKey(profileID, namespace); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.QueryRowContext(ctx, sqliteSelectSQL, profileID, namespace).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shopstate.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	return data, nil
}

// Save inserts or replaces the blob.
func (s *SQLiteStorage) Save(ctx context.Context, profileID, namespace string, data []byte) error {
	if err := validateKey(profileID, namespace); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, sqliteUpsertSQL, profileID, namespace, data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// Delete removes the blob, returning shopstate.ErrNotFound if no row matched.
func (s *SQLiteStorage) Delete(ctx context.Context, profileID, namespace string) error {
	result, err := s.db.ExecContext(ctx, sqliteDeleteSQL, profileID, namespace)
	if err != nil {
		return fmt.Errorf("failed to delete state: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return shopstate.ErrNotFound
	}
	return nil
}

// Namespaces lists the profile's namespaces in lexical order.
func (s *SQLiteStorage) Namespaces(ctx context.Context, profileID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, sqliteSelectNamespacesSQL, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to query namespaces: %w", err)
	}
	defer rows.Close()

	return scanNamespaces(rows)
}

// Close closes the SQLite database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func scanNamespaces(rows *sql.Rows) ([]string, error) {
	out := []string{}
	for rows.Next() {
		var ns string
		if err := rows.Scan(&ns); err != nil {
			return nil, fmt.Errorf("failed to scan namespace: %w", err)
		}
		out = append(out, ns)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}
