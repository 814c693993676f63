package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type CartService interface {
	AddItem(ctx context.Context, userID, productID int64) error
	RemoveItem(ctx context.Context, userID, productID int64) error
	GetCart(ctx context.Context, userID int64) ([]*domain.Product, error)
}

type CartHandler struct {
	cart    CartService
	timeout time.Duration
	log     logrus.FieldLogger
}

func NewCartHandler(cart CartService, timeout time.Duration, log logrus.FieldLogger) *CartHandler {
	return &CartHandler{
		cart:    cart,
		timeout: timeout,
		log:     log,
	}
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		handleError(w, r, h.log, service.ErrUnauthenticated)
		return
	}

	productID, err := service.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	if err := h.cart.AddItem(ctx, userID, productID); err != nil {
		handleError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, MessageResponse{Message: "Product added to the cart successfully."})
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		handleError(w, r, h.log, service.ErrUnauthenticated)
		return
	}

	products, err := h.cart.GetCart(ctx, userID)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, ProductsResponse{
		Message:  "Products in the cart.",
		Products: products,
	})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		handleError(w, r, h.log, service.ErrUnauthenticated)
		return
	}

	productID, err := service.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	if err := h.cart.RemoveItem(ctx, userID, productID); err != nil {
		handleError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, MessageResponse{Message: "Product deleted from the cart successfully."})
}
