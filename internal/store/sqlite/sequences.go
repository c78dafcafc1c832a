package sqlite

import "fmt"

// NextSeq increments and returns the named counter. Counters start at zero.
func (t *Tx) NextSeq(name string) (int64, error) {
	if _, err := t.tx.ExecContext(t.ctx, `
		INSERT INTO sequences (name, value) VALUES (?, 0)
		ON CONFLICT(name) DO NOTHING
	`, name); err != nil {
		return 0, fmt.Errorf("sequence %s: %w", name, err)
	}
	var v int64
	if err := t.tx.QueryRowContext(t.ctx, `
		UPDATE sequences SET value = value + 1 WHERE name = ? RETURNING value
	`, name).Scan(&v); err != nil {
		return 0, fmt.Errorf("sequence %s: %w", name, err)
	}
	return v, nil
}

// SetSeq moves the named counter to v; the next NextSeq returns v+1.
func (t *Tx) SetSeq(name string, v int64) error {
	_, err := t.tx.ExecContext(t.ctx, `
		INSERT INTO sequences (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value
	`, name, v)
	if err != nil {
		return fmt.Errorf("sequence %s: %w", name, err)
	}
	return nil
}
