package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cryptoganster/content-pipeline/internal/config"
)

func TestLoadConfig(t *testing.T) {
	os.Setenv("DB_HOST", "test-host")
	os.Setenv("STORE_BACKEND", "postgres")
	os.Setenv("DB_USER", "user")
	os.Setenv("DB_NAME", "db")
	defer os.Unsetenv("DB_HOST")
	defer os.Unsetenv("STORE_BACKEND")
	defer os.Unsetenv("DB_USER")
	defer os.Unsetenv("DB_NAME")

	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, "test-host", cfg.DBHost)
}

func TestLoadConfig_FromEnvFile(t *testing.T) {
	content := []byte("DB_HOST=loaded-from-file\nDB_USER=user\nDB_NAME=db\n")
	err := os.WriteFile(".env", content, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(".env")

	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, "loaded-from-file", cfg.DBHost)
}

func TestLoadConfig_RefinementTunables(t *testing.T) {
	os.Setenv("CHUNK_SIZE", "256")
	os.Setenv("QUALITY_THRESHOLD", "0.5")
	defer os.Unsetenv("CHUNK_SIZE")
	defer os.Unsetenv("QUALITY_THRESHOLD")

	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, 256, cfg.ChunkSize)
	assert.Equal(t, 0.5, cfg.QualityThreshold)
}

func TestLoadConfig_MemoryBackendSkipsDBValidation(t *testing.T) {
	os.Setenv("STORE_BACKEND", "memory")
	os.Setenv("DB_HOST", "")
	defer os.Unsetenv("STORE_BACKEND")
	defer os.Unsetenv("DB_HOST")

	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, "memory", cfg.StoreBackend)
}
