// Package ports declares the external-collaborator interfaces named in
// spec §6: source adapters, hashing, credential encryption, and NLP
// backends. The core depends only on these; concrete fetchers and NLP
// engines live outside this module and are supplied as fakes in tests.
package ports

import (
	"context"
	"time"
)

// RawItem is one unit of content yielded by a SourceAdapter.
type RawItem struct {
	RawContent  string
	Metadata    map[string]any
	SourceType  string
	CollectedAt time.Time
}

// ConfigValidation is the result of SourceAdapter.ValidateConfig.
type ConfigValidation struct {
	IsValid bool
	Errors  []string
}

// SourceAdapter fetches raw content from one external source type.
type SourceAdapter interface {
	Collect(ctx context.Context, config map[string]any) (<-chan RawItem, <-chan error)
	Supports(sourceType string) bool
	ValidateConfig(config map[string]any) ConfigValidation
}

// AdapterRegistry resolves a SourceAdapter by sourceType string. Registering
// twice under the same key overwrites the previous adapter (spec §6).
type AdapterRegistry interface {
	Register(sourceType string, adapter SourceAdapter)
	Resolve(sourceType string) (SourceAdapter, bool)
}

// HashService computes the content-hash used for deduplication.
type HashService interface {
	SHA256(utf8 string) string // 64-hex
}

// CredentialCipher encrypts/decrypts opaque credential blobs. Ciphertext is
// self-describing: version tag + IV + auth tag + payload.
type CredentialCipher interface {
	Encrypt(plaintext []byte, key []byte) ([]byte, error)
	Decrypt(ciphertext []byte, key []byte) ([]byte, error)
}

// EncryptionKeyProvider sources the key material for CredentialCipher from
// an environment variable or secret store.
type EncryptionKeyProvider interface {
	GetKey(ctx context.Context) ([]byte, error)
}

// CryptoEntity is one entity mention extracted from a chunk.
type CryptoEntity struct {
	Type       string
	Value      string
	Confidence float64
	StartPos   int
	EndPos     int
}

// EntityExtractor extracts named entities from chunk content.
type EntityExtractor interface {
	Extract(ctx context.Context, content string) ([]CryptoEntity, error)
}

// TemporalResult is the optional output of TemporalExtractor.Extract.
type TemporalResult struct {
	PublishedAt    time.Time
	EventTimestamp *time.Time
}

// TemporalExtractor analyzes a chunk's content relative to its content
// item's publication time.
type TemporalExtractor interface {
	Extract(ctx context.Context, content string, publishedAt time.Time) (*TemporalResult, error)
}

// QualityInput bundles the context a QualityAnalyzer needs beyond the raw
// chunk text.
type QualityInput struct {
	TokenCount  int
	Entities    []CryptoEntity
	PublishedAt time.Time
}

// QualityComponents is the un-weighted score breakdown from QualityAnalyzer.
type QualityComponents struct {
	Length    float64
	Coherence float64
	Relevance float64
	Freshness float64
}

// QualityAnalyzer scores a chunk's suitability for downstream indexing.
type QualityAnalyzer interface {
	Analyze(ctx context.Context, content string, input QualityInput) (QualityComponents, error)
}

// LanguageDetector identifies the ISO-639-1 code of normalized content.
// External collaborator (spec §4.4); a deterministic fake is used in core
// tests.
type LanguageDetector interface {
	Detect(content string) string
}

// SinkChunk is the minimal, presentation-agnostic shape a RefinementSink
// needs to forward a completed chunk downstream. Deliberately narrower than
// refinement.Chunk: the sink is an out-of-scope collaborator (vector
// embedding/indexing is a non-goal), so it sees only what a future indexer
// would need to locate and re-embed the chunk, not the full aggregate.
type SinkChunk struct {
	ChunkID       string
	ContentItemID string
	RefinementID  string
	Content       string
	Index         int
	QualityScore  float64
}

// RefinementSink forwards a completed refinement's accepted chunks to a
// downstream indexing system. Embedding/search themselves stay out of
// scope (spec Non-goals); this port only describes handing chunks off.
type RefinementSink interface {
	StoreChunk(ctx context.Context, chunk SinkChunk) error
}
