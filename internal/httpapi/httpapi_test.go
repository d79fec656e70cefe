package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cryptoganster/content-pipeline/internal/bus"
	"github.com/cryptoganster/content-pipeline/internal/domain/content"
	"github.com/cryptoganster/content-pipeline/internal/domain/source"
	"github.com/cryptoganster/content-pipeline/internal/hashing"
	"github.com/cryptoganster/content-pipeline/internal/httpapi"
	ingestioncommands "github.com/cryptoganster/content-pipeline/internal/ingestion/commands"
	"github.com/cryptoganster/content-pipeline/internal/ingestion/dedupcache"
	refinementcommands "github.com/cryptoganster/content-pipeline/internal/refinement/commands"
	"github.com/cryptoganster/content-pipeline/internal/store/memory"
)

type fakeLangDetector struct{}

func (fakeLangDetector) Detect(string) string { return "en" }

// fakeCipher passes credentials through unchanged; AES-GCM correctness is
// covered in internal/crypto, not here.
type fakeCipher struct{}

func (fakeCipher) Encrypt(plaintext, _ []byte) ([]byte, error)  { return plaintext, nil }
func (fakeCipher) Decrypt(ciphertext, _ []byte) ([]byte, error) { return ciphertext, nil }

type fakeKeyProvider struct{}

func (fakeKeyProvider) GetKey(_ context.Context) ([]byte, error) { return []byte("test-key"), nil }

var idSeq int

func nextID() string {
	idSeq++
	return "id-" + strconv.Itoa(idSeq)
}

type testServer struct {
	handler  *httpapi.Handler
	contents *memory.ContentRepo
	sources  *memory.SourceRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	jobs := memory.NewJobRepo()
	sources := memory.NewSourceRepo()
	contents := memory.NewContentRepo()
	refinements := memory.NewRefinementRepo()
	tallies := memory.NewChunkTallyRepo()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cmdBus := bus.NewCommandBus()
	eventBus := bus.NewEventBus(logger)

	ingestionHandlers := &ingestioncommands.Handlers{
		Jobs:        jobs,
		Sources:     sources,
		Content:     contents,
		Hash:        hashing.New(),
		Events:      eventBus,
		Logger:      logger,
		DedupCache:  dedupcache.New(),
		HealthCfg:   source.DefaultHealthConfig(),
		NewID:       nextID,
		Lang:        fakeLangDetector{},
		Cipher:      fakeCipher{},
		KeyProvider: fakeKeyProvider{},
	}
	ingestionHandlers.Register(cmdBus)

	refinementHandlers := &refinementcommands.Handlers{
		Refinements: refinements,
		Content:     contents,
		Tallies:     tallies,
		Events:      eventBus,
		Logger:      logger,
		NewID:       nextID,
		Cfg:         refinementcommands.DefaultConfig(),
	}
	refinementHandlers.Register(cmdBus)

	return &testServer{
		handler:  httpapi.NewHandler(cmdBus, jobs, sources),
		contents: contents,
		sources:  sources,
	}
}

func TestCreateSource(t *testing.T) {
	ts := newTestServer(t)
	body, _ := json.Marshal(map[string]any{"sourceType": "RSS", "name": "test feed"})
	req := httptest.NewRequest("POST", "/sources", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	ts.handler.Mux().ServeHTTP(rec, req)

	require.Equal(t, 201, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	data := resp["data"].(map[string]any)
	require.NotEmpty(t, data["SourceID"])
}

func TestScheduleJob_SourceNotFound(t *testing.T) {
	ts := newTestServer(t)
	req := httptest.NewRequest("POST", "/sources/missing/schedule", nil)
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()

	ts.handler.Mux().ServeHTTP(rec, req)

	require.Equal(t, 404, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Contains(t, resp, "error")
}

func TestJobStatus_NotFound(t *testing.T) {
	ts := newTestServer(t)
	req := httptest.NewRequest("GET", "/jobs/missing", nil)
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()

	ts.handler.Mux().ServeHTTP(rec, req)

	require.Equal(t, 404, rec.Code)
}

func TestProcessContent_StartsRefinement(t *testing.T) {
	ts := newTestServer(t)

	hash := hashing.New().SHA256("raw text")
	item, err := content.New("content-1", "source-1", hash, "raw text", "normalized text about BTC", content.Metadata{}, nil, time.Now())
	require.NoError(t, err)
	require.NoError(t, ts.contents.Save(context.Background(), item))

	req := httptest.NewRequest("POST", "/content/content-1/refine", nil)
	req.SetPathValue("id", "content-1")
	rec := httptest.NewRecorder()

	ts.handler.Mux().ServeHTTP(rec, req)

	require.Equal(t, 202, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	data := resp["data"].(map[string]any)
	require.NotEmpty(t, data["RefinementID"])
}
