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

const deliveredNote = "order already delivered"

type OrderService interface {
	Buy(ctx context.Context, userID, productID int64) (*domain.Order, error)
	ItemsBought(ctx context.Context, userID int64) ([]*domain.Purchase, error)
	GetOrder(ctx context.Context, userID, orderID int64) (*domain.Order, error)
}

type OrdersHandler struct {
	orders  OrderService
	timeout time.Duration
	log     logrus.FieldLogger
}

func NewOrdersHandler(orders OrderService, timeout time.Duration, log logrus.FieldLogger) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		timeout: timeout,
		log:     log,
	}
}

func (h *OrdersHandler) Buy(w http.ResponseWriter, r *http.Request) {
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

	order, err := h.orders.Buy(ctx, userID, productID)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, BuyResponse{
		Message: "Product bought successfully.",
		OrderID: order.ID,
		Order:   toOrderResponse(order),
	})
}

func (h *OrdersHandler) ItemsBought(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		handleError(w, r, h.log, service.ErrUnauthenticated)
		return
	}

	purchases, err := h.orders.ItemsBought(ctx, userID)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	message := "Items bought."
	if len(purchases) == 0 {
		message = "No items bought yet."
	}
	respondJSON(w, http.StatusOK, ItemsBoughtResponse{
		Message: message,
		Items:   toPurchasedItems(purchases),
	})
}

func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		handleError(w, r, h.log, service.ErrUnauthenticated)
		return
	}

	orderID, err := service.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	order, err := h.orders.GetOrder(ctx, userID, orderID)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	resp := OrderDetailResponse{
		Message: "Order found.",
		Order:   toOrderResponse(order),
	}
	if order.Delivered {
		resp.Note = deliveredNote
	}
	respondJSON(w, http.StatusOK, resp)
}
