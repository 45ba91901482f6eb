package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrFailedPrecondition = errors.New("failed precondition")
	ErrPermissionDenied   = errors.New("you do not have permission to perform this action")
	ErrUnauthenticated    = errors.New("authentication credentials were not provided")
	ErrConflict           = errors.New("conflict")
	ErrUnavailable        = errors.New("data store unavailable")
)

var (
	ErrCartNotFound       = fmt.Errorf("cart %w", ErrNotFound)
	ErrCartItemNotFound   = fmt.Errorf("cart item %w", ErrNotFound)
	ErrProductNotFound    = fmt.Errorf("product %w", ErrNotFound)
	ErrCollectionNotFound = fmt.Errorf("collection %w", ErrNotFound)
	ErrOrderNotFound      = fmt.Errorf("order %w", ErrNotFound)
	ErrReviewNotFound     = fmt.Errorf("review %w", ErrNotFound)
	ErrImageNotFound      = fmt.Errorf("product image %w", ErrNotFound)
	ErrCustomerNotFound   = fmt.Errorf("customer %w", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrEntityNotFound     = fmt.Errorf("target entity %w", ErrNotFound)

	ErrCartEmpty           = fmt.Errorf("%w: cart is empty", ErrFailedPrecondition)
	ErrNoCustomerProfile   = fmt.Errorf("%w: user has no customer profile", ErrFailedPrecondition)
	ErrProductProtected    = fmt.Errorf("%w: product is associated with an order item", ErrFailedPrecondition)
	ErrCollectionProtected = fmt.Errorf("%w: collection includes one or more products", ErrFailedPrecondition)
	ErrCustomerHasOrders   = fmt.Errorf("%w: customer has placed orders", ErrFailedPrecondition)

	ErrCartItemExists     = fmt.Errorf("%w: product already in cart", ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("%w: no active account found with the given credentials", ErrUnauthenticated)
)

// ValidationError carries a field -> message map and matches ErrInvalidArgument.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

func (e *ValidationError) Empty() bool { return len(e.Fields) == 0 }

// OrNil returns nil when no field was flagged, so callers can `return v.OrNil()`.
func (e *ValidationError) OrNil() error {
	if e == nil || e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid argument: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidArgument }
