package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptoganster/content-pipeline/internal/app"
	"github.com/cryptoganster/content-pipeline/internal/config"
)

type fakeSchemaStore struct {
	failUntil int
	callCount int
}

func (f *fakeSchemaStore) EnsureSchema(ctx context.Context) error {
	f.callCount++
	if f.callCount <= f.failUntil {
		return errors.New("schema error")
	}
	return nil
}

func TestEnsureSchemaWithRetry_Success(t *testing.T) {
	store := &fakeSchemaStore{}
	err := app.EnsureSchemaWithRetry(context.Background(), store, 1, time.Millisecond)
	assert.NoError(t, err)
}

func TestEnsureSchemaWithRetry_Retries(t *testing.T) {
	store := &fakeSchemaStore{failUntil: 2}
	err := app.EnsureSchemaWithRetry(context.Background(), store, 5, time.Millisecond)
	assert.NoError(t, err)
	assert.Equal(t, 3, store.callCount)
}

func TestEnsureSchemaWithRetry_ExhaustsAttempts(t *testing.T) {
	store := &fakeSchemaStore{failUntil: 10}
	err := app.EnsureSchemaWithRetry(context.Background(), store, 3, time.Millisecond)
	assert.Error(t, err)
	assert.Equal(t, 3, store.callCount)
}

func TestBootstrap_MemoryBackendSkipsInfra(t *testing.T) {
	cfg := &config.Config{StoreBackend: "memory"}
	infra, err := app.Bootstrap(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, infra.DB)
	assert.Nil(t, infra.VectorStore)
}

func TestBootstrap_PostgresUnreachable(t *testing.T) {
	cfg := &config.Config{
		StoreBackend:               "postgres",
		DBHost:                     "invalid-host-does-not-exist",
		DBPort:                     5432,
		DBUser:                     "user",
		DBName:                     "db",
		BootstrapRetryAttempts:     1,
		BootstrapRetryDelaySeconds: 0,
	}
	_, err := app.Bootstrap(context.Background(), cfg)
	assert.Error(t, err)
}
