package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/sirupsen/logrus"
)

type CartService struct {
	repo repository.CartRepository
	log  logrus.FieldLogger
}

func NewCartService(repo repository.CartRepository, log logrus.FieldLogger) *CartService {
	return &CartService{
		repo: repo,
		log:  log,
	}
}

// AddItem appends productID to the cart. Duplicates are kept and the product
// is not looked up.
func (s *CartService) AddItem(ctx context.Context, userID, productID int64) error {
	if err := s.repo.AddToCart(ctx, userID, productID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		s.log.WithError(err).WithField("user_id", userID).Error("repo add to cart failed")
		return err
	}
	return nil
}

// RemoveItem drops every occurrence of productID from the cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID int64) error {
	if err := s.repo.RemoveFromCart(ctx, userID, productID); err != nil {
		if errors.Is(err, repository.ErrNotInCart) {
			return fmt.Errorf("%w: product %d", ErrNotInCart, productID)
		}
		s.log.WithError(err).WithField("user_id", userID).Error("repo remove from cart failed")
		return err
	}
	return nil
}

func (s *CartService) GetCart(ctx context.Context, userID int64) ([]*domain.Product, error) {
	return s.repo.ListCartProducts(ctx, userID)
}
