package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_SetGetDelete(t *testing.T) {
	database, err := Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer database.Close()

	ctx := context.Background()

	_, err = database.GetState(ctx, "auth_token")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, database.SetState(ctx, "auth_token", "t1"))
	require.NoError(t, database.SetState(ctx, "auth_token", "t2"))

	value, err := database.GetState(ctx, "auth_token")
	require.NoError(t, err)
	assert.Equal(t, "t2", value)

	require.NoError(t, database.DeleteState(ctx, "auth_token"))
	require.NoError(t, database.DeleteState(ctx, "auth_token"))
	_, err = database.GetState(ctx, "auth_token")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpen_ReopenKeepsState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.db")
	ctx := context.Background()

	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.SetState(ctx, "k", "v"))
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	defer second.Close()

	value, err := second.GetState(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", value)
}
