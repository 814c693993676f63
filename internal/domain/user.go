package domain

import "time"

type User struct {
	ID              int64
	Name            string
	Email           string
	PasswordHash    string
	Cart            []int64
	PurchaseHistory []int64
	CreatedAt       time.Time
}
