package domain

const (
	EventOrderPlaced = "order.placed"
	EventUserDeleted = "user.deleted"
)

type OrderPlacedEvent struct {
	OrderID     int64  `json:"order_id"`
	CustomerID  int64  `json:"customer_id"`
	ProductID   int64  `json:"product_id"`
	PurchasedOn string `json:"purchased_on"`
}

type UserDeletedEvent struct {
	UserID int64 `json:"user_id"`
}
