package cache

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// CatalogCache holds the listing of purchasable products.
//
// Writers read Generation before loading from the database and pass it to
// SetAvailable. Invalidate advances the generation, so a listing loaded
// before an invalidation is never stored after it.
type CatalogCache interface {
	GetAvailable(ctx context.Context) ([]*domain.Product, error)
	Generation(ctx context.Context) (int64, error)
	SetAvailable(ctx context.Context, generation int64, products []*domain.Product) error
	Invalidate(ctx context.Context) error
}

var (
	ErrCacheMiss  = errors.New("cache miss")
	ErrStaleWrite = errors.New("listing invalidated since it was loaded")
)
