package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cryptoganster/content-pipeline/internal/domain/source"
	"github.com/cryptoganster/content-pipeline/internal/errs"
)

type SourceRepo struct {
	mu      sync.Mutex
	sources map[string]source.Source
}

func NewSourceRepo() *SourceRepo {
	return &SourceRepo{sources: make(map[string]source.Source)}
}

func (r *SourceRepo) Save(ctx context.Context, s *source.Source) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.sources[s.ID]
	if s.Version == 0 && !ok {
		r.sources[s.ID] = cloneSource(s)
		return nil
	}
	if !ok || existing.Version != s.Version {
		return errs.NewConcurrency("SourceConfiguration", s.ID, s.Version)
	}
	s.Version++
	r.sources[s.ID] = cloneSource(s)
	return nil
}

func (r *SourceRepo) Get(ctx context.Context, id string) (*source.Source, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sources[id]
	if !ok {
		return nil, errs.NewNotFound("SourceConfiguration", id)
	}
	out := cloneSource(&s)
	return &out, nil
}

func (r *SourceRepo) List(ctx context.Context) ([]*source.Source, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*source.Source, 0, len(r.sources))
	for _, s := range r.sources {
		c := cloneSource(&s)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *SourceRepo) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sources), nil
}

func cloneSource(s *source.Source) source.Source {
	out := *s
	if s.Config != nil {
		cfg := make(map[string]any, len(s.Config))
		for k, v := range s.Config {
			cfg[k] = v
		}
		out.Config = cfg
	}
	out.Credentials = append([]byte(nil), s.Credentials...)
	return out
}
