package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/metrics"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/sirupsen/logrus"
)

// CatalogInvalidator drops cached catalog listings.
type CatalogInvalidator interface {
	Invalidate()
}

type OrderService struct {
	repo    repository.OrderRepository
	catalog CatalogInvalidator
	log     logrus.FieldLogger
}

func NewOrderService(repo repository.OrderRepository, catalog CatalogInvalidator, log logrus.FieldLogger) *OrderService {
	return &OrderService{
		repo:    repo,
		catalog: catalog,
		log:     log,
	}
}

// Buy purchases productID for userID. Of any number of concurrent buyers of
// one product exactly one succeeds; the rest get ErrUnavailable.
func (s *OrderService) Buy(ctx context.Context, userID, productID int64) (*domain.Order, error) {
	order, err := s.repo.Purchase(ctx, userID, productID)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrProductUnavailable):
		metrics.RecordPurchase(metrics.PurchaseUnavailable)
		return nil, fmt.Errorf("%w: product %d", ErrUnavailable, productID)
	case errors.Is(err, repository.ErrProductNotFound), errors.Is(err, repository.ErrUserNotFound):
		metrics.RecordPurchase(metrics.PurchaseNotFound)
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	default:
		metrics.RecordPurchase(metrics.PurchaseFailed)
		return nil, err
	}

	metrics.RecordPurchase(metrics.PurchaseSucceeded)
	s.catalog.Invalidate()

	s.log.WithFields(logrus.Fields{
		"user_id":    userID,
		"product_id": productID,
		"order_id":   order.ID,
	}).Info("product purchased")
	return order, nil
}

// ItemsBought lists the user's purchases in order of purchase.
func (s *OrderService) ItemsBought(ctx context.Context, userID int64) ([]*domain.Purchase, error) {
	return s.repo.ListPurchases(ctx, userID)
}

// GetOrder returns the order if it belongs to userID. Orders of deleted
// accounts belong to nobody.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID int64) (*domain.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return nil, err
	}
	if !order.OwnedBy(userID) {
		return nil, fmt.Errorf("%w: order %d belongs to another customer", ErrForbidden, orderID)
	}
	return order, nil
}
