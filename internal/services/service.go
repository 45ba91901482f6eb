package services

import (
	"context"
	"errors"
	"time"

	"storefront-service/internal/domain"
)

// DefaultTimeout bounds every data-store round trip a service call makes.
const DefaultTimeout = 5 * time.Second

func bounded(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

func requireAuth(actor domain.Actor) error {
	if !actor.Authenticated() {
		return domain.ErrUnauthenticated
	}
	return nil
}

func requireStaff(actor domain.Actor) error {
	if err := requireAuth(actor); err != nil {
		return err
	}
	if !actor.IsStaff {
		return domain.ErrPermissionDenied
	}
	return nil
}

func errorsIsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
