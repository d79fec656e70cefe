// Package refinement implements the ContentRefinement aggregate and its
// Chunk entities: the per-item enrichment lifecycle from chunking through
// completion or rejection.
package refinement

import (
	"time"

	"github.com/cryptoganster/content-pipeline/internal/errs"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusRejected   Status = "rejected"
)

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusRejected
}

// Position locates a chunk within its parent content.
type Position struct {
	Index       int
	StartOffset int
	EndOffset   int
}

func (p Position) Validate() error {
	if p.Index < 0 {
		return errs.NewValidation("position.index", "must be >= 0")
	}
	if p.EndOffset <= p.StartOffset {
		return errs.NewValidation("position.endOffset", "must be > startOffset")
	}
	return nil
}

func (p Position) Length() int { return p.EndOffset - p.StartOffset }

// Entity is an extracted CryptoEntity mention within a chunk.
type Entity struct {
	Type       string
	Value      string
	Confidence float64
	StartPos   int
	EndPos     int
}

// TemporalContext records when the event described in a chunk occurred,
// relative to the content's publication time.
type TemporalContext struct {
	PublishedAt    time.Time
	EventTimestamp *time.Time
}

// QualityScore holds the four components plus their weighted overall.
type QualityScore struct {
	Overall    float64
	Length     float64
	Coherence  float64
	Relevance  float64
	Freshness  float64
}

// Weights used to combine the quality components into Overall. Fixed and
// documented per spec §9 Open Question 1: length and coherence are the most
// directly measurable from chunk text alone; freshness is weighted lowest
// since many chunks carry no event timestamp at all.
const (
	WeightLength    = 0.35
	WeightCoherence = 0.25
	WeightRelevance = 0.25
	WeightFreshness = 0.15
)

// ComputeOverall applies the fixed weights to the four components.
func ComputeOverall(length, coherence, relevance, freshness float64) float64 {
	return WeightLength*length + WeightCoherence*coherence + WeightRelevance*relevance + WeightFreshness*freshness
}

// Chunk is the entity owned by a ContentRefinement.
type Chunk struct {
	ChunkID          string
	Content          string
	Position         Position
	Hash             string
	Entities         []Entity
	TemporalContext  *TemporalContext
	QualityScore     QualityScore
	PreviousChunkID  *string
	NextChunkID      *string
}

// Refinement is the ContentRefinement aggregate.
type Refinement struct {
	ID                   string
	ContentItemID        string
	Status               Status
	Chunks               []Chunk
	StartedAt            *time.Time
	CompletedAt          *time.Time
	RejectedAt           *time.Time
	RejectionReason      string
	Error                *errs.Record
	PreviousRefinementID *string
	Version              int
}

// New creates a refinement in pending at version 0.
func New(id, contentItemID string) *Refinement {
	return &Refinement{
		ID:            id,
		ContentItemID: contentItemID,
		Status:        StatusPending,
	}
}

// Start transitions pending -> processing.
func (r *Refinement) Start(at time.Time) error {
	if r.Status != StatusPending {
		return errs.NewInvariantViolation("ContentRefinement", "start requires pending, got "+string(r.Status))
	}
	r.Status = StatusProcessing
	r.StartedAt = &at
	return nil
}

// AddChunk appends a chunk that passed quality filtering, enforcing the
// contiguous-index and per-refinement-unique-hash invariants and linking it
// into the doubly-linked chain in index order.
func (r *Refinement) AddChunk(c Chunk) error {
	if r.Status != StatusProcessing {
		return errs.NewInvariantViolation("ContentRefinement", "addChunk requires processing, got "+string(r.Status))
	}
	if err := c.Position.Validate(); err != nil {
		return err
	}
	for _, existing := range r.Chunks {
		if existing.Hash == c.Hash {
			return errs.NewInvariantViolation("ContentRefinement", "duplicate chunk hash within refinement: "+c.Hash)
		}
	}
	r.Chunks = append(r.Chunks, c)
	r.relink()
	return nil
}

// relink recomputes prev/next links. Chunks arrive in arbitrary completion
// order from the fan-out, so it sorts them by Position.Index first and
// links in index order regardless of arrival order.
func (r *Refinement) relink() {
	byIndex := make([]int, len(r.Chunks))
	for i := range r.Chunks {
		byIndex[i] = i
	}
	for i := range byIndex {
		for j := i + 1; j < len(byIndex); j++ {
			if r.Chunks[byIndex[j]].Position.Index < r.Chunks[byIndex[i]].Position.Index {
				byIndex[i], byIndex[j] = byIndex[j], byIndex[i]
			}
		}
	}
	for pos, idx := range byIndex {
		var prev, next *string
		if pos > 0 {
			id := r.Chunks[byIndex[pos-1]].ChunkID
			prev = &id
		}
		if pos < len(byIndex)-1 {
			id := r.Chunks[byIndex[pos+1]].ChunkID
			next = &id
		}
		r.Chunks[idx].PreviousChunkID = prev
		r.Chunks[idx].NextChunkID = next
	}
}

// Complete transitions processing -> completed.
func (r *Refinement) Complete(at time.Time) error {
	if r.Status != StatusProcessing {
		return errs.NewInvariantViolation("ContentRefinement", "complete requires processing, got "+string(r.Status))
	}
	r.Status = StatusCompleted
	r.CompletedAt = &at
	return nil
}

// Fail transitions processing -> failed, recording the cause.
func (r *Refinement) Fail(at time.Time, rec errs.Record) error {
	if r.Status != StatusProcessing {
		return errs.NewInvariantViolation("ContentRefinement", "fail requires processing, got "+string(r.Status))
	}
	r.Status = StatusFailed
	r.CompletedAt = &at
	r.Error = &rec
	return nil
}

// Reject transitions processing -> rejected, e.g. when no chunk clears the
// quality threshold.
func (r *Refinement) Reject(at time.Time, reason string) error {
	if r.Status != StatusProcessing {
		return errs.NewInvariantViolation("ContentRefinement", "reject requires processing, got "+string(r.Status))
	}
	r.Status = StatusRejected
	r.RejectedAt = &at
	r.RejectionReason = reason
	return nil
}

// ArchivedBy records nothing on this refinement. The link between a
// superseded refinement and its successor is held on the successor via
// PreviousRefinementID, which RerefineContent sets without calling this.
func (r *Refinement) ArchivedBy(successorID string) {
	_ = successorID // link is held on the successor via PreviousRefinementID
}

// AverageQualityScore returns the mean Overall score across accepted
// chunks, or 0 if there are none.
func (r Refinement) AverageQualityScore() float64 {
	if len(r.Chunks) == 0 {
		return 0
	}
	var sum float64
	for _, c := range r.Chunks {
		sum += c.QualityScore.Overall
	}
	return sum / float64(len(r.Chunks))
}
