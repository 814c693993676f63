package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

const orderColumns = `id, customer_id, product_id, placed, delivered, purchased_on`

func (r *Repository) Purchase(ctx context.Context, userID, productID int64) (*domain.Order, error) {
	var order *domain.Order

	err := r.withTx(ctx, func(q querier) error {
		// Claiming the unit first serializes concurrent buyers on the product row.
		var claimed int64
		err := q.QueryRowContext(ctx,
			`UPDATE products SET availability = false
			 WHERE id = $1 AND availability = true
			 RETURNING id`, productID).Scan(&claimed)
		if errors.Is(err, sql.ErrNoRows) {
			return productClaimError(ctx, q, productID)
		}
		if err != nil {
			return fmt.Errorf("claim product: %w", err)
		}

		o := &domain.Order{
			CustomerID: &userID,
			ProductID:  productID,
			Placed:     true,
		}
		err = q.QueryRowContext(ctx,
			`INSERT INTO orders (customer_id, product_id, placed, delivered, purchased_on)
			 VALUES ($1, $2, true, false, CURRENT_DATE)
			 RETURNING id, purchased_on`, userID, productID).Scan(&o.ID, &o.PurchasedOn)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		res, err := q.ExecContext(ctx,
			`UPDATE users SET purchase_history = array_append(purchase_history, $1::bigint)
			 WHERE id = $2`, productID, userID)
		if err != nil {
			return fmt.Errorf("append purchase history: %w", err)
		}
		if err := expectAffected(res, ErrUserNotFound); err != nil {
			return err
		}

		event := domain.OrderPlacedEvent{
			OrderID:     o.ID,
			CustomerID:  userID,
			ProductID:   productID,
			PurchasedOn: o.PurchasedOn.Format("2006-01-02"),
		}
		if err := insertEvent(ctx, q, strconv.FormatInt(o.ID, 10), domain.EventOrderPlaced, event); err != nil {
			return err
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// productClaimError tells a missing product apart from one already sold.
func productClaimError(ctx context.Context, q querier, productID int64) error {
	var available bool
	err := q.QueryRowContext(ctx, `SELECT availability FROM products WHERE id = $1`, productID).
		Scan(&available)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("query product availability: %w", err)
	}
	return ErrProductUnavailable
}

func (r *Repository) GetOrderByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var order domain.Order
	var customerID sql.NullInt64
	err := r.q().QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&customerID,
		&order.ProductID,
		&order.Placed,
		&order.Delivered,
		&order.PurchasedOn,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}
	if customerID.Valid {
		order.CustomerID = &customerID.Int64
	}
	return &order, nil
}

func (r *Repository) ListPurchases(ctx context.Context, userID int64) ([]*domain.Purchase, error) {
	query := `
		SELECT o.id, o.purchased_on,
		       p.id, p.name, p.description, p.price, p.image_url, p.availability, p.created_at
		FROM orders o
		JOIN products p ON p.id = o.product_id
		WHERE o.customer_id = $1
		ORDER BY o.id ASC
	`

	rows, err := r.q().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query purchases: %w", err)
	}
	defer rows.Close()

	purchases := make([]*domain.Purchase, 0)
	for rows.Next() {
		var p domain.Purchase
		if err := rows.Scan(
			&p.OrderID,
			&p.PurchasedOn,
			&p.Product.ID,
			&p.Product.Name,
			&p.Product.Description,
			&p.Product.Price,
			&p.Product.ImageURL,
			&p.Product.Availability,
			&p.Product.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan purchase row: %w", err)
		}
		purchases = append(purchases, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return purchases, nil
}
