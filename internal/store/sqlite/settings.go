package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
)

// GetValue reads a singleton value. The bool reports whether the key exists.
func GetValue[T any](tx *Tx, key string) (T, bool, error) {
	var out T
	var valueJSON string
	err := tx.tx.QueryRowContext(tx.ctx, `
		SELECT value_json FROM settings WHERE key = ?
	`, key).Scan(&valueJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return out, false, nil
		}
		return out, false, err
	}
	if err := json.Unmarshal([]byte(valueJSON), &out); err != nil {
		return out, false, err
	}
	return out, true, nil
}

// MustValue is GetValue with a missing key reported as ErrNotFound.
func MustValue[T any](tx *Tx, key string) (T, error) {
	v, ok, err := GetValue[T](tx, key)
	if err != nil {
		return v, err
	}
	if !ok {
		return v, ErrNotFound
	}
	return v, nil
}

func PutValue[T any](tx *Tx, key string, v T) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = tx.tx.ExecContext(tx.ctx, `
		INSERT INTO settings (key, value_json, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value_json = excluded.value_json,
			updated_at = excluded.updated_at
	`, key, string(b), tx.now().UnixMilli())
	return err
}
