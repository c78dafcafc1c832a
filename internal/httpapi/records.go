package httpapi

import (
	"context"
	"errors"
	"fmt"

	"companion_mock/internal/metrics"
	"companion_mock/internal/model"
	"companion_mock/internal/store/sqlite"
)

var errTransitionRefused = errors.New("status transition refused")

func listAll[T any](ctx context.Context, st *sqlite.Store, collection string) ([]T, error) {
	var out []T
	err := st.View(ctx, func(tx *sqlite.Tx) error {
		var err error
		out, err = sqlite.All[T](tx, collection)
		return err
	})
	return out, err
}

func getOne[T any](ctx context.Context, st *sqlite.Store, collection, id string) (T, error) {
	var out T
	err := st.View(ctx, func(tx *sqlite.Tx) error {
		var err error
		out, err = sqlite.Get[T](tx, collection, id)
		return err
	})
	return out, err
}

func getValue[T any](ctx context.Context, st *sqlite.Store, key string) (T, error) {
	var out T
	err := st.View(ctx, func(tx *sqlite.Tx) error {
		var err error
		out, err = sqlite.MustValue[T](tx, key)
		return err
	})
	return out, err
}

// nextID draws the next value of the collection's sequence and formats it as
// prefix-NNN.
func nextID(tx *sqlite.Tx, collection, prefix string) (string, int64, error) {
	n, err := tx.NextSeq(collection)
	if err != nil {
		return "", 0, err
	}
	return fmt.Sprintf("%s-%03d", prefix, n), n, nil
}

// transition moves a document into target when m allows it from the current
// status, then applies mutate before saving. It returns sqlite.ErrNotFound or
// errTransitionRefused when nothing was changed.
func transition[T any](ctx context.Context, st *sqlite.Store, collection, id string, m model.Machine, target string, status func(*T) *string, mutate func(*T)) error {
	err := st.Update(ctx, func(tx *sqlite.Tx) error {
		v, err := sqlite.Get[T](tx, collection, id)
		if err != nil {
			return err
		}
		cur := status(&v)
		if !m.CanEnter(target, *cur) {
			return errTransitionRefused
		}
		*cur = target
		if mutate != nil {
			mutate(&v)
		}
		return sqlite.Put(tx, collection, id, v)
	})
	switch {
	case err == nil:
		metrics.StatusTransitionsTotal.WithLabelValues(collection, target, "applied").Inc()
	case errors.Is(err, errTransitionRefused):
		metrics.StatusTransitionsTotal.WithLabelValues(collection, target, "refused").Inc()
	}
	return err
}
