package repository

import (
	"context"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// AddToCart appends productID to the cart. Duplicates are kept and the
// product is not checked for existence.
func (r *Repository) AddToCart(ctx context.Context, userID, productID int64) error {
	query := `UPDATE users SET cart = array_append(cart, $1::bigint) WHERE id = $2`

	res, err := r.q().ExecContext(ctx, query, productID, userID)
	if err != nil {
		return fmt.Errorf("append to cart: %w", err)
	}
	return expectAffected(res, ErrUserNotFound)
}

// RemoveFromCart drops every occurrence of productID. The membership check and
// the removal are one statement, so a concurrent remove cannot slip between them.
func (r *Repository) RemoveFromCart(ctx context.Context, userID, productID int64) error {
	query := `UPDATE users
	          SET cart = array_remove(cart, $1::bigint)
	          WHERE id = $2 AND $1::bigint = ANY(cart)`

	res, err := r.q().ExecContext(ctx, query, productID, userID)
	if err != nil {
		return fmt.Errorf("remove from cart: %w", err)
	}
	return expectAffected(res, ErrNotInCart)
}

func (r *Repository) ListCartProducts(ctx context.Context, userID int64) ([]*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY(
			SELECT unnest(cart)
			FROM users
			WHERE id = $1
		)
		ORDER BY id ASC
	`

	rows, err := r.q().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query cart products: %w", err)
	}
	return collectProducts(rows)
}
