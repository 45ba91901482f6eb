package repository

import (
	"context"
	"storefront-service/internal/domain"
)

// AssociationStore maps an actor (a tag or a user) to a polymorphic catalog entity.
// Attach is an idempotent upsert and Detach is a no-op when nothing matches.
type AssociationStore interface {
	Attach(ctx context.Context, actorID uint64, target domain.EntityRef) (*domain.Association, error)
	Detach(ctx context.Context, actorID uint64, target domain.EntityRef) error
	// ListForEntity is ordered by creation time.
	ListForEntity(ctx context.Context, target domain.EntityRef) ([]domain.Association, error)
	ListForActor(ctx context.Context, actorID uint64) ([]domain.Association, error)
	CountForEntity(ctx context.Context, target domain.EntityRef) (int64, error)
	DeleteForEntity(ctx context.Context, target domain.EntityRef) error
	DeleteForActor(ctx context.Context, actorID uint64) error
}

type TagRepository interface {
	GetOrCreate(ctx context.Context, label string) (*domain.Tag, error)
	FindByLabel(ctx context.Context, label string) (*domain.Tag, error)
	List(ctx context.Context) ([]domain.Tag, error)
}
