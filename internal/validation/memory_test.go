package validation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_PutGet(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "abc", sampleRecord, time.Hour))

	record, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, sampleRecord, *record)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "abc", sampleRecord, 30*24*time.Hour))

	now = now.Add(29 * 24 * time.Hour)
	_, err := store.Get(ctx, "abc")
	require.NoError(t, err)

	now = now.Add(24 * time.Hour)
	_, err = store.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)

	store.removeExpired()
	assert.Equal(t, 0, store.Size())
}

func TestMemoryStore_NotFoundAndMalformed(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()
	ctx := context.Background()

	_, err := store.Get(ctx, "nonexistent-id")
	assert.ErrorIs(t, err, ErrNotFound)

	store.PutRaw("broken", []byte("<xml/>"), time.Hour)
	_, err = store.Get(ctx, "broken")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestMemoryStore_CloseTwice(t *testing.T) {
	store := NewMemoryStore(0)
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
