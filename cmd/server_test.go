package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupStoreDefaultsToSqlite(t *testing.T) {
	store, err := setupStore(context.Background(), &RelayServerConfig{DbFilePath: ":memory:"})
	require.NoError(t, err)
	require.NotNil(t, store)

	d, err := store.GetById(context.Background(), "1")
	assert.NoError(t, err)
	assert.Nil(t, d)
}

func TestSetupStoreRejectsUnknownBackend(t *testing.T) {
	_, err := setupStore(context.Background(), &RelayServerConfig{StoreBackend: "redis"})
	assert.Error(t, err)
}
