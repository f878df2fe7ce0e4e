package storage

import (
	"context"
	"testing"

	"github.com/CreativeUnicorns/shopstate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStorage runs the behaviour every backend shares.
func exerciseStorage(t *testing.T, s shopstate.Storage) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Load(ctx, "p1", "cart-storage")
	assert.ErrorIs(t, err, shopstate.ErrNotFound)

	cart := []byte(`{"state":{"items":[]},"version":0}`)
	require.NoError(t, s.Save(ctx, "p1", "cart-storage", cart))
	require.NoError(t, s.Save(ctx, "p1", "ui-storage", []byte(`{"state":{"theme":"dark"},"version":0}`)))

	got, err := s.Load(ctx, "p1", "cart-storage")
	require.NoError(t, err)
	assert.Equal(t, cart, got)

	updated := []byte(`{"state":{"items":[{"id":"1-11","quantity":2}]},"version":0}`)
	require.NoError(t, s.Save(ctx, "p1", "cart-storage", updated))
	got, err = s.Load(ctx, "p1", "cart-storage")
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	_, err = s.Load(ctx, "p2", "cart-storage")
	assert.ErrorIs(t, err, shopstate.ErrNotFound, "profiles must not share blobs")

	namespaces, err := s.Namespaces(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"cart-storage", "ui-storage"}, namespaces)

	require.NoError(t, s.Delete(ctx, "p1", "cart-storage"))
	assert.ErrorIs(t, s.Delete(ctx, "p1", "cart-storage"), shopstate.ErrNotFound)
	_, err = s.Load(ctx, "p1", "cart-storage")
	assert.ErrorIs(t, err, shopstate.ErrNotFound)

	namespaces, err = s.Namespaces(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, namespaces)
}
