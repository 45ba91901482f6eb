package services

import (
	"context"
	"testing"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssociationService_Like(t *testing.T) {
	tests := []struct {
		name          string
		actor         func(f *fixture) domain.Actor
		target        func(f *fixture, p *domain.Product) domain.EntityRef
		expectedError error
	}{
		{
			name:   "product",
			actor:  func(f *fixture) domain.Actor { return f.shopper },
			target: func(f *fixture, p *domain.Product) domain.EntityRef { return domain.EntityRef{Kind: domain.EntityProduct, ID: p.ID} },
		},
		{
			name:  "collection",
			actor: func(f *fixture) domain.Actor { return f.shopper },
			target: func(f *fixture, p *domain.Product) domain.EntityRef {
				return domain.EntityRef{Kind: domain.EntityCollection, ID: f.collection.ID}
			},
		},
		{
			name:          "missing entity",
			actor:         func(f *fixture) domain.Actor { return f.shopper },
			target:        func(f *fixture, p *domain.Product) domain.EntityRef { return domain.EntityRef{Kind: domain.EntityProduct, ID: 9000} },
			expectedError: domain.ErrEntityNotFound,
		},
		{
			name:          "unknown kind",
			actor:         func(f *fixture) domain.Actor { return f.shopper },
			target:        func(f *fixture, p *domain.Product) domain.EntityRef { return domain.EntityRef{Kind: "store.order", ID: 1} },
			expectedError: domain.ErrInvalidArgument,
		},
		{
			name:          "anonymous",
			actor:         func(f *fixture) domain.Actor { return domain.Actor{} },
			target:        func(f *fixture, p *domain.Product) domain.EntityRef { return domain.EntityRef{Kind: domain.EntityProduct, ID: p.ID} },
			expectedError: domain.ErrUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			p := f.product(t, "Tea", "5.00")
			svc := NewAssociationService(f.store)
			target := tt.target(f, p)

			like, err := svc.Like(ctx, tt.actor(f), target)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, like)
				return
			}
			require.NoError(t, err)

			again, err := svc.Like(ctx, tt.actor(f), target)
			require.NoError(t, err)
			assert.Equal(t, like.ID, again.ID, "liking twice keeps one row")

			likes, err := svc.LikesFor(ctx, target)
			require.NoError(t, err)
			assert.Equal(t, int64(1), likes.Count)
			assert.Len(t, likes.Items, 1)

			mine, err := svc.ListMyLikes(ctx, tt.actor(f))
			require.NoError(t, err)
			assert.Len(t, mine, 1)

			require.NoError(t, svc.Unlike(ctx, tt.actor(f), target))
			require.NoError(t, svc.Unlike(ctx, tt.actor(f), target))
			likes, err = svc.LikesFor(ctx, target)
			require.NoError(t, err)
			assert.Zero(t, likes.Count)
		})
	}
}

func TestAssociationService_Tags(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tea := f.product(t, "Tea", "5.00")
	coffee := f.product(t, "Coffee", "7.00")
	svc := NewAssociationService(f.store)
	teaRef := domain.EntityRef{Kind: domain.EntityProduct, ID: tea.ID}
	coffeeRef := domain.EntityRef{Kind: domain.EntityProduct, ID: coffee.ID}

	_, err := svc.Tag(ctx, f.shopper, "   ", teaRef)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	first, err := svc.Tag(ctx, f.shopper, "Organic", teaRef)
	require.NoError(t, err)
	assert.Equal(t, "organic", first.Label)

	_, err = svc.Tag(ctx, f.shopper, " organic ", teaRef)
	require.NoError(t, err)
	_, err = svc.Tag(ctx, f.shopper, "fair-trade", teaRef)
	require.NoError(t, err)
	_, err = svc.Tag(ctx, f.shopper, "organic", coffeeRef)
	require.NoError(t, err)

	tags, err := svc.TagsFor(ctx, teaRef)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "organic", tags[0].Label)
	assert.Equal(t, "fair-trade", tags[1].Label)

	all, err := svc.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2, "labels are shared across entities")

	require.NoError(t, svc.Untag(ctx, f.shopper, "ORGANIC", teaRef))
	require.NoError(t, svc.Untag(ctx, f.shopper, "never-used", teaRef))
	tags, err = svc.TagsFor(ctx, teaRef)
	require.NoError(t, err)
	assert.Len(t, tags, 1)

	tags, err = svc.TagsFor(ctx, coffeeRef)
	require.NoError(t, err)
	assert.Len(t, tags, 1)

	_, err = svc.TagsFor(ctx, domain.EntityRef{Kind: domain.EntityCollection, ID: 404})
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)
}

type staleLikeCount struct {
	repository.AssociationStore
}

func (staleLikeCount) CountForEntity(context.Context, domain.EntityRef) (int64, error) {
	return 99, nil
}

func TestAssociationService_LikesForCountMatchesItems(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "Tea", "5.00")
	target := domain.EntityRef{Kind: domain.EntityProduct, ID: p.ID}
	_, err := NewAssociationService(f.store).Like(ctx, f.shopper, target)
	require.NoError(t, err)

	store := f.store
	store.LikedItems = staleLikeCount{AssociationStore: store.LikedItems}
	likes, err := NewAssociationService(store).LikesFor(ctx, target)
	require.NoError(t, err)
	assert.Len(t, likes.Items, 1)
	assert.Equal(t, int64(len(likes.Items)), likes.Count)
}
