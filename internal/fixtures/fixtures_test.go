package fixtures

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companion_mock/internal/model"
	"companion_mock/internal/store/sqlite"
)

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestLoadEmbedded(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)

	assert.NotEmpty(t, s.Tags)
	assert.NotEmpty(t, s.Companions)
	assert.Equal(t, 820.0, s.Accounts.PaymentWallet.Balance)
	assert.Equal(t, 15.0, s.Accounts.PaymentWallet.RemainingHours)
	assert.Len(t, s.Calendar.Days, 6)

	var order001 model.Order
	for _, o := range s.Orders {
		if o.ID == "order-001" {
			order001 = o
		}
	}
	assert.Equal(t, model.OrderCompleted, order001.Status)

	defaults := 0
	for _, a := range s.Addresses {
		if a.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestLoadDirOverridesSingleFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tags.json"),
		[]byte(`[{"id":"tag-x","name":"自定义","category":"SKILL","isActive":true,"sortOrder":1}]`), 0o600))

	s, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, s.Tags, 1)
	assert.Equal(t, "tag-x", s.Tags[0].ID)
	assert.NotEmpty(t, s.Companions)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orders.json"), []byte(`{"not":"a list"}`), 0o600))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestSeedIsIdempotentAndSetsSequences(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	s, err := Load("")
	require.NoError(t, err)

	require.NoError(t, Seed(ctx, st, s))
	require.NoError(t, st.Update(ctx, func(tx *sqlite.Tx) error {
		return sqlite.PutValue(tx, model.KeyPaymentWallet, model.PaymentWallet{Balance: 1})
	}))
	require.NoError(t, Seed(ctx, st, s))

	require.NoError(t, st.Update(ctx, func(tx *sqlite.Tx) error {
		n, err := sqlite.Count(tx, model.CollectionDemands)
		require.NoError(t, err)
		assert.Equal(t, len(s.Demands), n)

		next, err := tx.NextSeq(model.CollectionDemands)
		require.NoError(t, err)
		assert.Equal(t, int64(len(s.Demands)+1), next)

		w, err := sqlite.MustValue[model.PaymentWallet](tx, model.KeyPaymentWallet)
		require.NoError(t, err)
		assert.Equal(t, 1.0, w.Balance)
		return nil
	}))
}
