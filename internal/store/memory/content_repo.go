package memory

import (
	"context"
	"sync"

	"github.com/cryptoganster/content-pipeline/internal/domain/content"
	"github.com/cryptoganster/content-pipeline/internal/errs"
)

type ContentRepo struct {
	mu     sync.Mutex
	items  map[string]content.Item
	byHash map[string]string // contentHash -> id
}

func NewContentRepo() *ContentRepo {
	return &ContentRepo{
		items:  make(map[string]content.Item),
		byHash: make(map[string]string),
	}
}

func (r *ContentRepo) Save(ctx context.Context, c *content.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byHash[c.ContentHash]; ok {
		return errs.NewInvariantViolation("ContentItem", "duplicate contentHash: "+c.ContentHash)
	}
	r.items[c.ID] = cloneContentItem(c)
	r.byHash[c.ContentHash] = c.ID
	return nil
}

func (r *ContentRepo) Get(ctx context.Context, id string) (*content.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return nil, errs.NewNotFound("ContentItem", id)
	}
	out := cloneContentItem(&c)
	return &out, nil
}

func (r *ContentRepo) ExistsByHash(ctx context.Context, hash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byHash[hash]
	return ok, nil
}

func (r *ContentRepo) GetByHash(ctx context.Context, hash string) (*content.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byHash[hash]
	if !ok {
		return nil, errs.NewNotFound("ContentItem", hash)
	}
	c := r.items[id]
	out := cloneContentItem(&c)
	return &out, nil
}

func (r *ContentRepo) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items), nil
}

func cloneContentItem(c *content.Item) content.Item {
	out := *c
	out.AssetTags = append([]content.AssetTag(nil), c.AssetTags...)
	return out
}
