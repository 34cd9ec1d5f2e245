package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/example/storefront/internal/models"
)

// CatalogSource is the remote side of the catalog.
type CatalogSource interface {
	FetchProducts(ctx context.Context) ([]models.Product, error)
	FetchCategories(ctx context.Context) ([]models.Category, error)
}

type cacheEntry[T any] struct {
	value   []T
	expires time.Time
}

// CatalogService caches catalog lists for a fixed TTL. Concurrent misses for
// the same list share one backend call.
type CatalogService struct {
	source CatalogSource
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	group singleflight.Group

	mu         sync.RWMutex
	products   cacheEntry[models.Product]
	categories cacheEntry[models.Category]
}

// NewCatalogService wraps source. A non-positive ttl disables caching.
func NewCatalogService(source CatalogSource, ttl time.Duration, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{source: source, ttl: ttl, logger: logger, now: time.Now}
}

// Products returns the cached product list, refreshing it when stale.
func (s *CatalogService) Products(ctx context.Context) ([]models.Product, error) {
	return cached(ctx, s, "products", &s.products, s.source.FetchProducts)
}

// Categories returns the cached category list, refreshing it when stale.
func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	return cached(ctx, s, "categories", &s.categories, s.source.FetchCategories)
}

// Product finds a single product by id.
func (s *CatalogService) Product(ctx context.Context, id models.ID) (models.Product, bool, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return models.Product{}, false, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, true, nil
		}
	}
	return models.Product{}, false, nil
}

// Invalidate drops both cached lists.
func (s *CatalogService) Invalidate() {
	s.mu.Lock()
	s.products = cacheEntry[models.Product]{}
	s.categories = cacheEntry[models.Category]{}
	s.mu.Unlock()
}

func cached[T any](ctx context.Context, s *CatalogService, key string, entry *cacheEntry[T], fetch func(context.Context) ([]T, error)) ([]T, error) {
	s.mu.RLock()
	if entry.value != nil && s.now().Before(entry.expires) {
		value := entry.value
		s.mu.RUnlock()
		return value, nil
	}
	s.mu.RUnlock()

	v, err, shared := s.group.Do(key, func() (any, error) {
		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if value == nil {
			value = []T{}
		}
		if s.ttl > 0 {
			s.mu.Lock()
			*entry = cacheEntry[T]{value: value, expires: s.now().Add(s.ttl)}
			s.mu.Unlock()
		}
		return value, nil
	})
	if err != nil {
		s.logger.Warn("catalog fetch failed", zap.String("list", key), zap.Error(err))
		return nil, err
	}
	if shared {
		s.logger.Debug("catalog fetch shared", zap.String("list", key))
	}
	return v.([]T), nil
}
