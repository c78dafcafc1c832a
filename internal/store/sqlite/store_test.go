package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type note struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPutGetAllKeepsInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.Update(ctx, func(tx *Tx) error {
		for _, n := range []note{{"b", "2"}, {"a", "1"}, {"c", "3"}} {
			if err := Put(tx, "notes", n.ID, n); err != nil {
				return err
			}
		}
		// replacing keeps the original position
		return Put(tx, "notes", "b", note{"b", "two"})
	})
	require.NoError(t, err)

	var all []note
	require.NoError(t, s.View(ctx, func(tx *Tx) error {
		var err error
		all, err = All[note](tx, "notes")
		return err
	}))
	require.Len(t, all, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, "two", all[0].Text)
}

func TestGetMissingReturnsErrNotFound(t *testing.T) {
	s := newTestStore(t)
	err := s.View(context.Background(), func(tx *Tx) error {
		_, err := Get[note](tx, "notes", "nope")
		return err
	})
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.Update(context.Background(), func(tx *Tx) error {
		return Delete(tx, "notes", "nope")
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Update(ctx, func(tx *Tx) error {
		if err := Put(tx, "notes", "x", note{"x", "lost"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, s.View(ctx, func(tx *Tx) error {
		n, err := Count(tx, "notes")
		assert.Equal(t, 0, n)
		return err
	}))
}

func TestViewDiscardsWrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.View(ctx, func(tx *Tx) error {
		return Put(tx, "notes", "x", note{"x", "temp"})
	}))
	require.NoError(t, s.View(ctx, func(tx *Tx) error {
		_, err := Get[note](tx, "notes", "x")
		assert.ErrorIs(t, err, ErrNotFound)
		return nil
	}))
}

func TestSequencesAreUniqueUnderConcurrency(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Update(ctx, func(tx *Tx) error { return tx.SetSeq("ids", 5) }))

	const workers = 20
	var (
		mu   sync.Mutex
		seen = map[int64]bool{}
		wg   sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var v int64
			err := s.Update(ctx, func(tx *Tx) error {
				var err error
				v, err = tx.NextSeq("ids")
				return err
			})
			assert.NoError(t, err)
			mu.Lock()
			seen[v] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers)
	for v := int64(6); v < 6+workers; v++ {
		assert.True(t, seen[v], "missing sequence value %d", v)
	}
}

func TestSettingsRoundTripAndPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mock.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Update(ctx, func(tx *Tx) error {
		return PutValue(tx, "wallet", map[string]float64{"balance": 820})
	}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.View(ctx, func(tx *Tx) error {
		v, ok, err := GetValue[map[string]float64](tx, "wallet")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 820.0, v["balance"])

		_, err = MustValue[map[string]float64](tx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
		return nil
	}))
}
