package vault

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Catalog owns the live index for a provider. Index hands out the current
// snapshot, rebuilding it after an Invalidate or an explicit Refresh; the
// snapshots themselves are immutable, so resolutions already holding one are
// unaffected by later changes.
type Catalog struct {
	provider Provider

	mu    sync.Mutex
	index *Index
}

// NewCatalog wraps a provider.
func NewCatalog(provider Provider) *Catalog {
	return &Catalog{
		provider: provider,
	}
}

// Index returns the current snapshot, building one first if needed.
func (c *Catalog) Index(ctx context.Context) (*Index, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.index != nil {
		return c.index, nil
	}

	return c.rebuild(ctx)
}

// Refresh discards the current snapshot and builds a fresh one.
func (c *Catalog) Refresh(ctx context.Context) (*Index, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.rebuild(ctx)
}

// Invalidate marks the snapshot stale. The next Index call rebuilds.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.index = nil
}

// Read returns a document's contents from the underlying provider.
func (c *Catalog) Read(ctx context.Context, document Document) (string, error) {
	return c.provider.Read(ctx, document)
}

func (c *Catalog) rebuild(ctx context.Context) (*Index, error) {
	documents, err := c.provider.List(ctx)

	if err != nil {
		return nil, err
	}

	c.index = NewIndex(documents)

	log.WithField("documents", c.index.Len()).Debug("vault index rebuilt")

	return c.index, nil
}
