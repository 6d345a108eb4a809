package pos

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/azzamfsta/Pharmacy-Management-System/domain"
	"github.com/azzamfsta/Pharmacy-Management-System/internal/cache"
)

// CachedCatalog serves the sellable list from the cache and falls back to
// the store on a miss. Cache failures never fail a read.
type CachedCatalog struct {
	source CatalogSource
	cache  cache.Catalog
	logger *log.Logger
}

func NewCachedCatalog(source CatalogSource, c cache.Catalog, logger *log.Logger) *CachedCatalog {
	if c == nil {
		c = cache.Noop{}
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &CachedCatalog{source: source, cache: c, logger: logger}
}

func (c *CachedCatalog) ListSellable(ctx context.Context) ([]domain.Medicine, error) {
	items, err := c.cache.Get(ctx)
	if err == nil {
		return items, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		c.logger.Printf("catalog: cache read failed: %v", err)
	}
	return c.fill(ctx)
}

// Reload drops the cached list and reads the store again.
func (c *CachedCatalog) Reload(ctx context.Context) ([]domain.Medicine, error) {
	if err := c.cache.Invalidate(ctx); err != nil {
		c.logger.Printf("catalog: cache invalidate failed: %v", err)
	}
	return c.fill(ctx)
}

func (c *CachedCatalog) fill(ctx context.Context) ([]domain.Medicine, error) {
	items, err := c.source.ListSellable(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, items); err != nil {
		c.logger.Printf("catalog: cache write failed: %v", err)
	}
	return items, nil
}
