package weaviate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"

	"github.com/cryptoganster/content-pipeline/internal/ports"
)

func newMockWeaviateServer(t *testing.T, checkFunc func(r *http.Request, body map[string]any)) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if r.Body != nil {
			json.NewDecoder(r.Body).Decode(&body)
		}
		if r.URL.Path == "/v1/meta" {
			json.NewEncoder(w).Encode(map[string]any{"version": "1.19.0"})
			return
		}
		if r.URL.Path == "/v1/.well-known/live" || r.URL.Path == "/v1/.well-known/ready" {
			w.WriteHeader(http.StatusOK)
			return
		}
		if checkFunc != nil {
			checkFunc(r, body)
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{"id": body["id"]})
	}))
}

func TestSink_StoreChunk(t *testing.T) {
	ts := newMockWeaviateServer(t, func(r *http.Request, body map[string]any) {
		assert.Equal(t, "/v1/objects", r.URL.Path)
		assert.Equal(t, "RefinementChunk", body["class"])
		props := body["properties"].(map[string]any)
		assert.Equal(t, "chunk text", props["content"])
		assert.Equal(t, "item-1", props["contentItemId"])
		assert.Equal(t, "ref-1", props["refinementId"])
	})
	defer ts.Close()

	client, err := weaviate.NewClient(weaviate.Config{Host: ts.Listener.Addr().String(), Scheme: "http"})
	assert.NoError(t, err)

	sink := NewSink(client)
	err = sink.StoreChunk(context.Background(), ports.SinkChunk{
		ChunkID:       "chunk-1",
		ContentItemID: "item-1",
		RefinementID:  "ref-1",
		Content:       "chunk text",
		Index:         0,
		QualityScore:  0.72,
	})
	assert.NoError(t, err)
}
