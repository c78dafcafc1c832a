package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Get decodes the document stored under collection/id.
func Get[T any](tx *Tx, collection, id string) (T, error) {
	var out T
	var body string
	err := tx.tx.QueryRowContext(tx.ctx, `
		SELECT body FROM documents WHERE collection = ? AND id = ?
	`, collection, id).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return out, ErrNotFound
		}
		return out, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return out, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return out, nil
}

// All returns every document of a collection in insertion order.
func All[T any](tx *Tx, collection string) ([]T, error) {
	rows, err := tx.tx.QueryContext(tx.ctx, `
		SELECT id, body FROM documents WHERE collection = ? ORDER BY seq
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(body), &v); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, id, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Put inserts or replaces a document. A new document is appended after the
// existing ones; a replaced document keeps its position.
func Put[T any](tx *Tx, collection, id string, v T) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = tx.tx.ExecContext(tx.ctx, `
		INSERT INTO documents (collection, id, seq, body, updated_at)
		VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM documents WHERE collection = ?), ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			body = excluded.body,
			updated_at = excluded.updated_at
	`, collection, id, collection, string(b), tx.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, id, err)
	}
	return nil
}

// Delete removes a document, returning ErrNotFound when nothing was removed.
func Delete(tx *Tx, collection, id string) error {
	res, err := tx.tx.ExecContext(tx.ctx, `
		DELETE FROM documents WHERE collection = ? AND id = ?
	`, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func Count(tx *Tx, collection string) (int, error) {
	var n int
	err := tx.tx.QueryRowContext(tx.ctx, `
		SELECT COUNT(*) FROM documents WHERE collection = ?
	`, collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}
