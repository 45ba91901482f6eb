package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"storefront-service/internal/domain"
	"storefront-service/internal/infra/cache"
	"storefront-service/internal/mocks"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

func TestCatalogService_ListProducts(t *testing.T) {
	f := newFixture(t)
	for i, price := range []string{"3.00", "12.00", "7.50", "25.00"} {
		f.product(t, []string{"Green Tea", "Coffee Beans", "Tea Biscuits", "Espresso Machine"}[i], price)
	}
	svc := NewCatalogService(f.store, nil, nil)
	gt, lt := dec("5"), dec("20")

	tests := []struct {
		name          string
		query         ProductQuery
		expectedCount int64
		expectedTitle []string
		expectedError error
	}{
		{
			name:          "default page",
			query:         ProductQuery{},
			expectedCount: 4,
			expectedTitle: []string{"Green Tea", "Coffee Beans", "Tea Biscuits", "Espresso Machine"},
		},
		{
			name:          "search matches title",
			query:         ProductQuery{Search: "tea", Ordering: "unit_price"},
			expectedCount: 2,
			expectedTitle: []string{"Green Tea", "Tea Biscuits"},
		},
		{
			name:          "price range ordered descending",
			query:         ProductQuery{PriceGT: &gt, PriceLT: &lt, Ordering: "-unit_price"},
			expectedCount: 2,
			expectedTitle: []string{"Coffee Beans", "Tea Biscuits"},
		},
		{
			name:          "second page",
			query:         ProductQuery{Ordering: "unit_price", Page: 2, PageSize: 3},
			expectedCount: 4,
			expectedTitle: []string{"Espresso Machine"},
		},
		{
			name:          "unknown ordering",
			query:         ProductQuery{Ordering: "title"},
			expectedError: domain.ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.ListProducts(context.Background(), tt.query)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedCount, page.Count)
			titles := make([]string, 0, len(page.Results))
			for _, p := range page.Results {
				titles = append(titles, p.Title)
			}
			assert.Equal(t, tt.expectedTitle, titles)
		})
	}
}

func TestCatalogService_CreateProduct(t *testing.T) {
	tests := []struct {
		name           string
		actor          domain.Actor
		input          func(f *fixture) ProductInput
		expectedError  error
		expectedFields []string
		expectedSlug   string
	}{
		{
			name:  "staff creates",
			actor: staff,
			input: func(f *fixture) ProductInput {
				return ProductInput{Title: "Oolong Tea", UnitPrice: dec("8.00"), Inventory: 3, CollectionID: f.collection.ID}
			},
			expectedSlug: "oolong-tea",
		},
		{
			name:  "non ascii title",
			actor: staff,
			input: func(f *fixture) ProductInput {
				return ProductInput{Title: "Čaj Šípkový", UnitPrice: dec("8.00"), CollectionID: f.collection.ID}
			},
			expectedSlug: "caj-sipkovy",
		},
		{
			name:  "price with three decimal places",
			actor: staff,
			input: func(f *fixture) ProductInput {
				return ProductInput{Title: "Tea", UnitPrice: dec("1.239"), CollectionID: f.collection.ID}
			},
			expectedError:  domain.ErrInvalidArgument,
			expectedFields: []string{"unit_price"},
		},
		{
			name:  "validation",
			actor: staff,
			input: func(f *fixture) ProductInput {
				return ProductInput{UnitPrice: dec("-1"), Inventory: -2}
			},
			expectedError:  domain.ErrInvalidArgument,
			expectedFields: []string{"collection_id", "inventory", "title", "unit_price"},
		},
		{
			name:  "unknown collection",
			actor: staff,
			input: func(f *fixture) ProductInput {
				return ProductInput{Title: "Tea", UnitPrice: dec("1"), CollectionID: 404}
			},
			expectedError:  domain.ErrInvalidArgument,
			expectedFields: []string{"collection_id"},
		},
		{
			name:  "anonymous",
			input: func(f *fixture) ProductInput { return ProductInput{} },
			expectedError: domain.ErrUnauthenticated,
		},
		{
			name:          "customer",
			actor:         domain.Actor{UserID: 1},
			input:         func(f *fixture) ProductInput { return ProductInput{} },
			expectedError: domain.ErrPermissionDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			svc := NewCatalogService(f.store, nil, nil)
			p, err := svc.CreateProduct(context.Background(), tt.actor, tt.input(f))
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				var verr *domain.ValidationError
				if len(tt.expectedFields) > 0 && assert.True(t, errors.As(err, &verr)) {
					for _, field := range tt.expectedFields {
						assert.Contains(t, verr.Fields, field)
					}
				}
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, p.ID)
			assert.Equal(t, tt.expectedSlug, p.Slug)
			assert.True(t, dec("8.80").Equal(p.PriceWithTax()))
		})
	}
}

func TestCatalogService_DeleteProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("protected by order items", func(t *testing.T) {
		f := newFixture(t)
		tea := f.product(t, "Tea", "5.00")
		cartID := f.cart(t, map[*domain.Product]int{tea: 1})
		_, err := NewOrderService(f.store, nil).PlaceOrder(ctx, f.customer.ID, cartID)
		require.NoError(t, err)

		err = NewCatalogService(f.store, nil, nil).DeleteProduct(ctx, staff, tea.ID)
		assert.ErrorIs(t, err, domain.ErrProductProtected)
		assert.ErrorIs(t, err, domain.ErrFailedPrecondition)
		_, err = f.store.Products.FindByID(ctx, tea.ID)
		assert.NoError(t, err)
	})

	t.Run("cascades associations and cart lines", func(t *testing.T) {
		f := newFixture(t)
		tea := f.product(t, "Tea", "5.00")
		cartID := f.cart(t, map[*domain.Product]int{tea: 2})
		assoc := NewAssociationService(f.store)
		target := domain.EntityRef{Kind: domain.EntityProduct, ID: tea.ID}
		_, err := assoc.Like(ctx, f.shopper, target)
		require.NoError(t, err)
		_, err = assoc.Tag(ctx, f.shopper, "organic", target)
		require.NoError(t, err)

		rdb := new(mocks.MockRedisClient)
		rdb.On("Del", mock.Anything, []string{cache.Key(tea.ID)}).Return(redis.NewIntResult(1, nil))
		svc := NewCatalogService(f.store, cache.NewProductCache(rdb, time.Minute), nil)

		require.NoError(t, svc.DeleteProduct(ctx, staff, tea.ID))

		_, err = f.store.Products.FindByID(ctx, tea.ID)
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
		n, err := f.store.LikedItems.CountForEntity(ctx, target)
		require.NoError(t, err)
		assert.Zero(t, n)
		n, err = f.store.TaggedItems.CountForEntity(ctx, target)
		require.NoError(t, err)
		assert.Zero(t, n)
		items, err := f.store.Carts.ListItems(ctx, cartID)
		require.NoError(t, err)
		assert.Empty(t, items)
		rdb.AssertExpectations(t)
	})

	t.Run("missing", func(t *testing.T) {
		f := newFixture(t)
		err := NewCatalogService(f.store, nil, nil).DeleteProduct(ctx, staff, 31337)
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})
}

func TestCatalogService_GetProductUsesCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tea := f.product(t, "Tea", "5.00")

	rdb := new(mocks.MockRedisClient)
	rdb.On("Get", mock.Anything, cache.Key(tea.ID)).Return(redis.NewStringResult("", redis.Nil)).Once()
	rdb.On("Set", mock.Anything, cache.Key(tea.ID), mock.Anything, time.Minute).Return(redis.NewStatusResult("OK", nil)).Once()

	svc := NewCatalogService(f.store, cache.NewProductCache(rdb, time.Minute), nil)
	got, err := svc.GetProduct(ctx, tea.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tea", got.Title)
	rdb.AssertExpectations(t)
}

func TestCatalogService_Collections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewCatalogService(f.store, nil, nil)

	_, err := svc.CreateCollection(ctx, staff, CollectionInput{Title: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	bad := uint64(404)
	_, err = svc.CreateCollection(ctx, staff, CollectionInput{Title: "Snacks", FeaturedProductID: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	empty, err := svc.CreateCollection(ctx, staff, CollectionInput{Title: "Snacks"})
	require.NoError(t, err)

	f.product(t, "Tea", "5.00")
	full, err := svc.GetCollection(ctx, f.collection.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), full.ProductsCount)

	err = svc.DeleteCollection(ctx, staff, f.collection.ID)
	assert.ErrorIs(t, err, domain.ErrCollectionProtected)

	_, err = NewAssociationService(f.store).Tag(ctx, f.shopper, "seasonal", domain.EntityRef{Kind: domain.EntityCollection, ID: empty.ID})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteCollection(ctx, staff, empty.ID))
	n, err := f.store.TaggedItems.CountForEntity(ctx, domain.EntityRef{Kind: domain.EntityCollection, ID: empty.ID})
	require.NoError(t, err)
	assert.Zero(t, n)

	renamed, err := svc.UpdateCollection(ctx, staff, f.collection.ID, CollectionInput{Title: "Pantry"})
	require.NoError(t, err)
	assert.Equal(t, "Pantry", renamed.Title)

	_, err = svc.UpdateCollection(ctx, f.shopper, f.collection.ID, CollectionInput{Title: "x"})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestCatalogService_Reviews(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tea := f.product(t, "Tea", "5.00")
	other := f.product(t, "Coffee", "7.00")
	svc := NewCatalogService(f.store, nil, nil)

	_, err := svc.CreateReview(ctx, tea.ID, ReviewInput{Name: "", Description: ""})
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "description")

	_, err = svc.CreateReview(ctx, 404, ReviewInput{Name: "a", Description: "b"})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	r, err := svc.CreateReview(ctx, tea.ID, ReviewInput{Name: "Ann", Description: "Lovely"})
	require.NoError(t, err)

	_, err = svc.GetReview(ctx, other.ID, r.ID)
	assert.ErrorIs(t, err, domain.ErrReviewNotFound)

	updated, err := svc.UpdateReview(ctx, tea.ID, r.ID, ReviewInput{Name: "Ann", Description: "Still lovely"})
	require.NoError(t, err)
	assert.Equal(t, "Still lovely", updated.Description)

	list, err := svc.ListReviews(ctx, tea.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteReview(ctx, tea.ID, r.ID))
	assert.ErrorIs(t, svc.DeleteReview(ctx, tea.ID, r.ID), domain.ErrReviewNotFound)
}

func TestCatalogService_Images(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		actor         domain.Actor
		size          int64
		noStore       bool
		setupMocks    func(*mocks.MockImageStore)
		expectedError error
	}{
		{
			name:  "staff uploads",
			actor: staff,
			size:  1024,
			setupMocks: func(s *mocks.MockImageStore) {
				s.On("Put", mock.Anything, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "products/") && strings.HasSuffix(key, ".png")
				}), mock.Anything, "image/png").Return("https://bucket.example/tea.png", nil)
			},
		},
		{
			name:          "too large",
			actor:         staff,
			size:          domain.MaxImageSize + 1,
			setupMocks:    func(s *mocks.MockImageStore) {},
			expectedError: domain.ErrInvalidArgument,
		},
		{
			name:          "customer",
			actor:         domain.Actor{UserID: 1},
			size:          10,
			setupMocks:    func(s *mocks.MockImageStore) {},
			expectedError: domain.ErrPermissionDenied,
		},
		{
			name:          "storage unavailable",
			actor:         staff,
			size:          10,
			noStore:       true,
			setupMocks:    func(s *mocks.MockImageStore) {},
			expectedError: domain.ErrUnavailable,
		},
		{
			name:  "upload fails",
			actor: staff,
			size:  10,
			setupMocks: func(s *mocks.MockImageStore) {
				s.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("s3 down"))
			},
			expectedError: domain.ErrUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tea := f.product(t, "Tea", "5.00")
			images := new(mocks.MockImageStore)
			tt.setupMocks(images)

			svc := NewCatalogService(f.store, nil, images)
			if tt.noStore {
				svc = NewCatalogService(f.store, nil, nil)
			}

			img, err := svc.UploadImage(ctx, tt.actor, tea.ID, ImageUpload{
				Filename:    "tea.PNG",
				ContentType: "image/png",
				Size:        tt.size,
				Body:        bytes.NewReader([]byte("png")),
			})
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, img)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "https://bucket.example/tea.png", img.URL)
				list, err := svc.ListImages(ctx, tea.ID)
				require.NoError(t, err)
				assert.Len(t, list, 1)

				images.On("Delete", mock.Anything, img.Key).Return(nil)
				require.NoError(t, svc.DeleteImage(ctx, staff, tea.ID, img.ID))
			}
			images.AssertExpectations(t)
		})
	}
}

func TestCatalogService_ExportProducts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "Tea", "5.00")
	f.product(t, "Coffee", "7.50")
	svc := NewCatalogService(f.store, nil, nil)

	var buf bytes.Buffer
	assert.ErrorIs(t, svc.ExportProducts(ctx, f.shopper, &buf), domain.ErrPermissionDenied)

	require.NoError(t, svc.ExportProducts(ctx, staff, &buf))
	book, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, book.Sheets, 1)
	rows := book.Sheets[0].Rows
	require.Len(t, rows, 3)
	assert.Equal(t, "Title", rows[0].Cells[1].String())
	assert.Equal(t, "Tea", rows[1].Cells[1].String())
	assert.Equal(t, "5.50", rows[1].Cells[5].String())
}

func TestCatalogService_WarmProductCache(t *testing.T) {
	f := newFixture(t)
	tea := f.product(t, "Tea", "5.00")

	rdb := new(mocks.MockRedisClient)
	rdb.On("Set", mock.Anything, cache.Key(tea.ID), mock.Anything, 5*time.Minute).Return(redis.NewStatusResult("OK", nil))

	svc := NewCatalogService(f.store, cache.NewProductCache(rdb, time.Minute), nil)
	require.NoError(t, svc.WarmProductCache(context.Background(), 10))
	rdb.AssertExpectations(t)
}
