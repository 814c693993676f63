package http

import (
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

const dateLayout = "2006-01-02"

type RegisterRequestDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse never carries the password hash.
type UserResponse struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Cart            []int64   `json:"cart"`
	PurchaseHistory []int64   `json:"purchase_history"`
	CreatedAt       time.Time `json:"created_at"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type UserMessageResponse struct {
	Message   string        `json:"message"`
	User      *UserResponse `json:"user"`
	ExpiresAt *time.Time    `json:"expires_at,omitempty"`
}

type ProductsResponse struct {
	Message  string            `json:"message"`
	Products []*domain.Product `json:"products"`
}

type ProductResponse struct {
	Message string          `json:"message"`
	Product *domain.Product `json:"product"`
}

type OrderResponse struct {
	ID          int64  `json:"id"`
	CustomerID  *int64 `json:"customer_id"`
	ProductID   int64  `json:"product_id"`
	Placed      bool   `json:"placed"`
	Delivered   bool   `json:"delivered"`
	PurchasedOn string `json:"purchased_on"`
}

type BuyResponse struct {
	Message string         `json:"message"`
	OrderID int64          `json:"order_id"`
	Order   *OrderResponse `json:"order"`
}

type OrderDetailResponse struct {
	Message string         `json:"message"`
	Order   *OrderResponse `json:"order"`
	Note    string         `json:"note,omitempty"`
}

type PurchasedItem struct {
	OrderID     int64           `json:"order_id"`
	Product     *domain.Product `json:"product"`
	PurchasedOn string          `json:"purchased_on"`
}

type ItemsBoughtResponse struct {
	Message string          `json:"message"`
	Items   []PurchasedItem `json:"items"`
}

func toUserResponse(u *domain.User) *UserResponse {
	resp := &UserResponse{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Cart:            u.Cart,
		PurchaseHistory: u.PurchaseHistory,
		CreatedAt:       u.CreatedAt,
	}
	if resp.Cart == nil {
		resp.Cart = []int64{}
	}
	if resp.PurchaseHistory == nil {
		resp.PurchaseHistory = []int64{}
	}
	return resp
}

func toOrderResponse(o *domain.Order) *OrderResponse {
	return &OrderResponse{
		ID:          o.ID,
		CustomerID:  o.CustomerID,
		ProductID:   o.ProductID,
		Placed:      o.Placed,
		Delivered:   o.Delivered,
		PurchasedOn: o.PurchasedOn.Format(dateLayout),
	}
}

func toPurchasedItems(purchases []*domain.Purchase) []PurchasedItem {
	items := make([]PurchasedItem, 0, len(purchases))
	for _, p := range purchases {
		product := p.Product
		items = append(items, PurchasedItem{
			OrderID:     p.OrderID,
			Product:     &product,
			PurchasedOn: p.PurchasedOn.Format(dateLayout),
		})
	}
	return items
}
