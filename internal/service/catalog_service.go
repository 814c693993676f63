package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	availableKey       = "available"
	catalogLoadTimeout = 5 * time.Second
)

type CatalogService struct {
	repo  repository.ProductRepository
	cache cache.CatalogCache
	sfg   singleflight.Group // Prevents cache stampede
	log   logrus.FieldLogger
}

func NewCatalogService(repo repository.ProductRepository, cache cache.CatalogCache, log logrus.FieldLogger) *CatalogService {
	return &CatalogService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// ListAvailable serves the listing from cache, loading it once per cache miss
// however many callers are waiting. The shared load does not inherit any
// single caller's cancellation.
func (s *CatalogService) ListAvailable(ctx context.Context) ([]*domain.Product, error) {
	ch := s.sfg.DoChan(availableKey, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), catalogLoadTimeout)
		defer cancel()
		return s.loadAvailable(loadCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]*domain.Product), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *CatalogService) loadAvailable(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.cache.GetAvailable(ctx)
	if err == nil {
		return products, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.WithError(err).Warn("catalog cache get failed")
	}

	// read before the database so an invalidation in between voids the write
	generation, genErr := s.cache.Generation(ctx)

	products, err = s.repo.ListAvailableProducts(ctx)
	if err != nil {
		return nil, err
	}

	if genErr != nil {
		s.log.WithError(genErr).Warn("catalog cache generation unavailable, not caching")
		return products, nil
	}

	go func() {
		setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		errSet := s.cache.SetAvailable(setCtx, generation, products)
		switch {
		case errSet == nil:
		case errors.Is(errSet, cache.ErrStaleWrite):
			s.log.Debug("catalog listing invalidated while loading, not cached")
		default:
			s.log.WithError(errSet).Warn("catalog cache set failed")
		}
	}()

	return products, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return nil, err
	}
	return product, nil
}

// Invalidate drops the cached listing. Failures are logged; the entry
// expires on its own.
func (s *CatalogService) Invalidate() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.WithError(err).Warn("catalog cache invalidate failed")
	}
}
