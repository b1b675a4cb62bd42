package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// SQLBackend persists keys in the kv_store table of the embedded database.
type SQLBackend struct {
	db *sql.DB
}

func NewSQLBackend(db *sql.DB) *SQLBackend {
	return &SQLBackend{db: db}
}

func (b *SQLBackend) Get(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT value FROM kv_store WHERE key = ?`

	var value string
	err := b.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		err := fmt.Errorf("could not query kv_store: %w", err)
		log.Error(err)
		return "", false, err
	}
	return value, true, nil
}

func (b *SQLBackend) Set(ctx context.Context, key string, value string) error {
	query := `INSERT INTO kv_store (key, value) VALUES (?, ?)
	          ON CONFLICT(key) DO UPDATE SET value = excluded.value`

	if _, err := b.db.ExecContext(ctx, query, key, value); err != nil {
		err := fmt.Errorf("could not upsert into kv_store: %w", err)
		log.Error(err)
		return err
	}
	return nil
}
