package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"
)

// AssociationService attaches tags and likes to catalog entities.
type AssociationService struct {
	tx          repository.TxManager
	tags        repository.TagRepository
	tagged      repository.AssociationStore
	liked       repository.AssociationStore
	products    repository.ProductRepository
	collections repository.CollectionRepository
	timeout     time.Duration
}

func NewAssociationService(store repository.Store) *AssociationService {
	return &AssociationService{
		tx:          store.Tx,
		tags:        store.Tags,
		tagged:      store.TaggedItems,
		liked:       store.LikedItems,
		products:    store.Products,
		collections: store.Collections,
		timeout:     DefaultTimeout,
	}
}

func (s *AssociationService) SetTimeout(d time.Duration) { s.timeout = d }

// resolve checks that the target exists. Adding a kind means adding a case here.
func (s *AssociationService) resolve(ctx context.Context, target domain.EntityRef) error {
	var err error
	switch target.Kind {
	case domain.EntityProduct:
		_, err = s.products.FindByID(ctx, target.ID)
	case domain.EntityCollection:
		_, err = s.collections.FindByID(ctx, target.ID)
	default:
		return domain.NewValidationError("content_type", fmt.Sprintf("unknown entity kind %q", target.Kind))
	}
	if errorsIsNotFound(err) {
		return fmt.Errorf("%s: %w", target, domain.ErrEntityNotFound)
	}
	return err
}

// Likes is the count and the list of likes on one entity.
type Likes struct {
	Count int64
	Items []domain.Association
}

func (s *AssociationService) Like(ctx context.Context, actor domain.Actor, target domain.EntityRef) (*domain.Association, error) {
	if err := requireAuth(actor); err != nil {
		return nil, err
	}
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	var like *domain.Association
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.resolve(ctx, target); err != nil {
			return err
		}
		var err error
		like, err = s.liked.Attach(ctx, actor.UserID, target)
		return err
	})
	return like, err
}

func (s *AssociationService) Unlike(ctx context.Context, actor domain.Actor, target domain.EntityRef) error {
	if err := requireAuth(actor); err != nil {
		return err
	}
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()
	return s.liked.Detach(ctx, actor.UserID, target)
}

func (s *AssociationService) ListMyLikes(ctx context.Context, actor domain.Actor) ([]domain.Association, error) {
	if err := requireAuth(actor); err != nil {
		return nil, err
	}
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()
	return s.liked.ListForActor(ctx, actor.UserID)
}

func (s *AssociationService) LikesFor(ctx context.Context, target domain.EntityRef) (*Likes, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	var items []domain.Association
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.resolve(ctx, target); err != nil {
			return err
		}
		var err error
		items, err = s.liked.ListForEntity(ctx, target)
		return err
	})
	if err != nil {
		return nil, err
	}
	// count comes from the same read as the list so the two never disagree
	return &Likes{Count: int64(len(items)), Items: items}, nil
}

func normalizeLabel(label string) (string, error) {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return "", domain.NewValidationError("label", "This field may not be blank.")
	}
	if len(label) > 255 {
		return "", domain.NewValidationError("label", "Ensure this field has no more than 255 characters.")
	}
	return label, nil
}

// Tag attaches the label to the target, creating the tag on first use.
func (s *AssociationService) Tag(ctx context.Context, actor domain.Actor, label string, target domain.EntityRef) (*domain.Association, error) {
	if err := requireAuth(actor); err != nil {
		return nil, err
	}
	label, err := normalizeLabel(label)
	if err != nil {
		return nil, err
	}
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	var item *domain.Association
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.resolve(ctx, target); err != nil {
			return err
		}
		tag, err := s.tags.GetOrCreate(ctx, label)
		if err != nil {
			return err
		}
		item, err = s.tagged.Attach(ctx, tag.ID, target)
		if item != nil {
			item.Label = tag.Label
		}
		return err
	})
	return item, err
}

// Untag is a no-op when the label or the tagging does not exist.
func (s *AssociationService) Untag(ctx context.Context, actor domain.Actor, label string, target domain.EntityRef) error {
	if err := requireAuth(actor); err != nil {
		return err
	}
	label, err := normalizeLabel(label)
	if err != nil {
		return err
	}
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	tag, err := s.tags.FindByLabel(ctx, label)
	if errorsIsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.tagged.Detach(ctx, tag.ID, target)
}

func (s *AssociationService) TagsFor(ctx context.Context, target domain.EntityRef) ([]domain.Association, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	if err := s.resolve(ctx, target); err != nil {
		return nil, err
	}
	return s.tagged.ListForEntity(ctx, target)
}

func (s *AssociationService) ListTags(ctx context.Context) ([]domain.Tag, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()
	return s.tags.List(ctx)
}
