package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/hpungsan/tagdrop/internal/errors"
)

// SetOption stores value as JSON under key, replacing any previous value.
func SetOption(ctx context.Context, db *sql.DB, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.NewInvalidRequest("option value is not JSON-encodable: " + err.Error())
	}

	query := `
		INSERT INTO options (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := db.ExecContext(ctx, query, key, string(data), time.Now().Unix()); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetOption returns the raw JSON stored under key.
func GetOption(ctx context.Context, db *sql.DB, key string) (json.RawMessage, error) {
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM options WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("option", key)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return json.RawMessage(value), nil
}

// DeleteOptions removes the given keys and returns those that existed,
// in argument order.
func DeleteOptions(ctx context.Context, db *sql.DB, keys []string) ([]string, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer tx.Rollback()

	removed := []string{}
	for _, key := range keys {
		result, err := tx.ExecContext(ctx, `DELETE FROM options WHERE key = ?`, key)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		if n > 0 {
			removed = append(removed, key)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return removed, nil
}
