// Package memory implements every store port against mutex-guarded maps,
// for fast unit and integration tests that don't need a real Postgres
// instance. Every Save enforces the same protocol as
// internal/store/postgres (version 0 with no stored row inserts; otherwise
// a CAS update against the aggregate's version), so handler tests exercise
// the real optimistic-concurrency behavior.
package memory

import (
	"context"
	"sync"

	"github.com/cryptoganster/content-pipeline/internal/domain/job"
	"github.com/cryptoganster/content-pipeline/internal/errs"
)

type JobRepo struct {
	mu   sync.Mutex
	jobs map[string]job.Job
}

func NewJobRepo() *JobRepo {
	return &JobRepo{jobs: make(map[string]job.Job)}
}

func (r *JobRepo) Save(ctx context.Context, j *job.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.jobs[j.ID]
	if j.Version == 0 && !ok {
		r.jobs[j.ID] = cloneJob(j)
		return nil
	}
	if !ok || existing.Version != j.Version {
		return errs.NewConcurrency("IngestionJob", j.ID, j.Version)
	}
	j.Version++
	r.jobs[j.ID] = cloneJob(j)
	return nil
}

func (r *JobRepo) Get(ctx context.Context, id string) (*job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, errs.NewNotFound("IngestionJob", id)
	}
	out := cloneJob(&j)
	return &out, nil
}

func (r *JobRepo) ListBySource(ctx context.Context, sourceID string) ([]*job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*job.Job
	for _, j := range r.jobs {
		if j.SourceID == sourceID {
			c := cloneJob(&j)
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *JobRepo) ListByStatus(ctx context.Context, status job.Status) ([]*job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*job.Job
	for _, j := range r.jobs {
		if j.Status == status {
			c := cloneJob(&j)
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *JobRepo) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs), nil
}

func cloneJob(j *job.Job) job.Job {
	out := *j
	out.Errors = append([]errs.Record(nil), j.Errors...)
	if j.SourceConfig.Config != nil {
		cfg := make(map[string]any, len(j.SourceConfig.Config))
		for k, v := range j.SourceConfig.Config {
			cfg[k] = v
		}
		out.SourceConfig.Config = cfg
	}
	return out
}
