package app_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptoganster/content-pipeline/internal/app"
	"github.com/cryptoganster/content-pipeline/internal/config"
	"github.com/cryptoganster/content-pipeline/internal/store/memory"
)

func testDeps() app.Dependencies {
	return app.Dependencies{
		Jobs:        memory.NewJobRepo(),
		Sources:     memory.NewSourceRepo(),
		Content:     memory.NewContentRepo(),
		Refinements: memory.NewRefinementRepo(),
		Tallies:     memory.NewChunkTallyRepo(),
	}
}

func TestNew_WiresEveryRoute(t *testing.T) {
	cfg := &config.Config{StoreBackend: "memory", ChunkSize: 512, ChunkOverlap: 50, QualityThreshold: 0.3, HTTPPort: 8081}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	application, err := app.New(cfg, testDeps(), logger)
	require.NoError(t, err)
	require.NotNil(t, application.Handler)

	ts := httptest.NewServer(application.Handler)
	defer ts.Close()

	req, _ := http.NewRequest("POST", ts.URL+"/sources", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEqual(t, http.StatusNotFound, resp.StatusCode, "POST /sources should be registered")

	unregistered, _ := http.NewRequest("GET", ts.URL+"/not-a-real-route", nil)
	resp2, err := http.DefaultClient.Do(unregistered)
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestNew_SelfCheckPasses(t *testing.T) {
	cfg := &config.Config{StoreBackend: "memory"}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	application, err := app.New(cfg, testDeps(), logger)
	require.NoError(t, err)
	assert.NotNil(t, application.Commands)
	assert.NotNil(t, application.Events)
	assert.NotNil(t, application.Scheduler)
}
