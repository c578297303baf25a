package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/alfredjeanlab/modflags/internal/model"
)

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func querySetEntry(ctx context.Context, db executor, key string, value []byte) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO kv (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = NOW()`,
		key, value,
	)
	return err
}

func queryGetEntry(ctx context.Context, db executor, key string) (*model.Entry, error) {
	row := db.QueryRowContext(ctx, `
		SELECT key, value, updated_at
		FROM kv WHERE key = $1`, key)

	var e model.Entry
	var value []byte
	if err := row.Scan(&e.Key, &value, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Value = json.RawMessage(value)
	return &e, nil
}
