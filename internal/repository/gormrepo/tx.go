package gormrepo

import (
	"context"
	"errors"
	"fmt"
	"log"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"

	"gorm.io/gorm"
)

type txKey struct{}

type TxManager struct {
	db *gorm.DB
}

var _ repository.TxManager = (*TxManager)(nil)

func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

func (m *TxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
	return translate(err, nil)
}

// conn returns the transaction bound to ctx, or the pool scoped to ctx.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}

// translate maps driver and gorm errors onto the domain taxonomy.
// notFound replaces gorm.ErrRecordNotFound when non-nil.
func translate(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound) && notFound != nil:
		return notFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", domain.ErrFailedPrecondition, err)
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) || isDomainError(err) {
		return err
	}
	log.Printf("gormrepo: unexpected database error: %v", err)
	return err
}

func isDomainError(err error) bool {
	for _, target := range []error{
		domain.ErrNotFound, domain.ErrInvalidArgument, domain.ErrFailedPrecondition,
		domain.ErrPermissionDenied, domain.ErrUnauthenticated, domain.ErrConflict, domain.ErrUnavailable,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// NewStore wires every gorm repository over db.
func NewStore(db *gorm.DB) repository.Store {
	return repository.Store{
		Tx:          NewTxManager(db),
		Carts:       NewCartRepository(db),
		Orders:      NewOrderRepository(db),
		Products:    NewProductRepository(db),
		Collections: NewCollectionRepository(db),
		Reviews:     NewReviewRepository(db),
		Users:       NewUserRepository(db),
		Customers:   NewCustomerRepository(db),
		Tags:        NewTagRepository(db),
		TaggedItems: NewTaggedItemStore(db),
		LikedItems:  NewLikedItemStore(db),
	}
}
