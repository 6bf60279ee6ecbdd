package state_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motorlot/lotsync/internal/state"
	"github.com/motorlot/lotsync/pkg/wordpress"
)

func openStore(t *testing.T) *state.Store {
	t.Helper()
	store, err := state.Open(filepath.Join(t.TempDir(), "lotsync.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestTokenRoundTrip(t *testing.T) {
	store := openStore(t)

	// Empty store yields a zero token, not an error.
	token, err := store.LoadToken()
	require.NoError(t, err)
	assert.Empty(t, token.Value)

	want := wordpress.Token{
		Value:     "eyJhbGciOi.token.signature",
		ExpiresAt: time.Now().Add(time.Hour).Truncate(time.Second),
	}
	require.NoError(t, store.SaveToken(want))

	got, err := store.LoadToken()
	require.NoError(t, err)
	assert.Equal(t, want.Value, got.Value)
	assert.True(t, want.ExpiresAt.Equal(got.ExpiresAt))
}

func TestTokenOverwrite(t *testing.T) {
	store := openStore(t)

	require.NoError(t, store.SaveToken(wordpress.Token{Value: "old"}))
	require.NoError(t, store.SaveToken(wordpress.Token{Value: "new"}))

	got, err := store.LoadToken()
	require.NoError(t, err)
	assert.Equal(t, "new", got.Value)
}

func TestManualStartRow(t *testing.T) {
	store := openStore(t)

	row, err := store.ManualStartRow()
	require.NoError(t, err)
	assert.Zero(t, row, "no override by default")

	require.NoError(t, store.SetManualStartRow(17))
	row, err = store.ManualStartRow()
	require.NoError(t, err)
	assert.Equal(t, 17, row)

	require.NoError(t, store.ClearManualStartRow())
	row, err = store.ManualStartRow()
	require.NoError(t, err)
	assert.Zero(t, row)
}

func TestManualStartRowRejectsHeaderRow(t *testing.T) {
	store := openStore(t)
	assert.Error(t, store.SetManualStartRow(1))
	assert.Error(t, store.SetManualStartRow(0))
}

func TestRunHistory(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	last, err := store.LastRun(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)

	id := uuid.NewString()
	started := time.Now().Add(-time.Minute)
	require.NoError(t, store.BeginRun(ctx, id, started))
	require.NoError(t, store.FinishRun(ctx, id, 5, 1, nil))

	last, err = store.LastRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, id, last.ID)
	assert.Equal(t, 5, last.Processed)
	assert.Equal(t, 1, last.Failed)
	assert.Empty(t, last.Error)
	assert.False(t, last.FinishedAt.IsZero())
}

func TestRunHistoryRecordsError(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	id := uuid.NewString()
	require.NoError(t, store.BeginRun(ctx, id, time.Now()))
	require.NoError(t, store.FinishRun(ctx, id, 2, 1, assert.AnError))

	last, err := store.LastRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Contains(t, last.Error, assert.AnError.Error())
}

func TestStatePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lotsync.db")

	store, err := state.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.SetManualStartRow(42))
	require.NoError(t, store.Close())

	store2, err := state.Open(path)
	require.NoError(t, err)
	defer store2.Close()

	row, err := store2.ManualStartRow()
	require.NoError(t, err)
	assert.Equal(t, 42, row)
}
