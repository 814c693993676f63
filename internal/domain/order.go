package domain

import "time"

// Order is one purchased product. Placed is set when the order row is written;
// Delivered is tracked separately and is false until fulfilment.
type Order struct {
	ID          int64
	CustomerID  *int64 // nil once the customer account is deleted
	ProductID   int64
	Placed      bool
	Delivered   bool
	PurchasedOn time.Time
}

// OwnedBy reports whether the order belongs to userID.
func (o *Order) OwnedBy(userID int64) bool {
	return o.CustomerID != nil && *o.CustomerID == userID
}

// Purchase pairs a bought product with the order that bought it.
type Purchase struct {
	OrderID     int64
	Product     Product
	PurchasedOn time.Time
}
