package service

import (
	"errors"
	"fmt"
	"strconv"
)

// Errors returned to the transport layer. Repository errors are translated
// into these at the service boundary.
var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrUnavailable        = errors.New("product is not available")
	ErrNotInCart          = errors.New("product is not in the cart")
)

// ParseID parses a path identifier. Only positive base-10 integers are accepted.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id must be a positive integer, got %q", ErrInvalidArgument, raw)
	}
	return id, nil
}
