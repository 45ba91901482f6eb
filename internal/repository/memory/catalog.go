package memory

import (
	"context"
	"sort"
	"strings"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"
)

type productRepo struct{ db *DB }

var _ repository.ProductRepository = (*productRepo)(nil)

func (r *productRepo) Create(ctx context.Context, p *domain.Product) error {
	return r.db.write(ctx, func(t *tables) error {
		if _, ok := t.collections[p.CollectionID]; !ok {
			return domain.ErrCollectionNotFound
		}
		p.ID = t.next("products")
		p.LastUpdate = now()
		t.products[p.ID] = bareProduct(*p)
		return nil
	})
}

func (r *productRepo) FindByID(ctx context.Context, id uint64) (*domain.Product, error) {
	var out *domain.Product
	err := r.db.read(ctx, func(t *tables) error {
		p, ok := t.products[id]
		if !ok {
			return domain.ErrProductNotFound
		}
		p.Images = t.imagesOf(id)
		out = &p
		return nil
	})
	return out, err
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []uint64) (map[uint64]domain.Product, error) {
	out := make(map[uint64]domain.Product, len(ids))
	err := r.db.read(ctx, func(t *tables) error {
		for _, id := range ids {
			if p, ok := t.products[id]; ok {
				out[id] = p
			}
		}
		return nil
	})
	return out, err
}

func (r *productRepo) Update(ctx context.Context, p *domain.Product) error {
	return r.db.write(ctx, func(t *tables) error {
		if _, ok := t.products[p.ID]; !ok {
			return domain.ErrProductNotFound
		}
		if _, ok := t.collections[p.CollectionID]; !ok {
			return domain.ErrCollectionNotFound
		}
		p.LastUpdate = now()
		t.products[p.ID] = bareProduct(*p)
		return nil
	})
}

// Delete mirrors the relational constraints: order items restrict, everything else cascades.
func (r *productRepo) Delete(ctx context.Context, id uint64) error {
	return r.db.write(ctx, func(t *tables) error {
		if _, ok := t.products[id]; !ok {
			return domain.ErrProductNotFound
		}
		for _, it := range t.orderItems {
			if it.ProductID == id {
				return domain.ErrProductProtected
			}
		}
		delete(t.products, id)
		for k, it := range t.cartItems {
			if it.ProductID == id {
				delete(t.cartItems, k)
			}
		}
		for k, img := range t.images {
			if img.ProductID == id {
				delete(t.images, k)
			}
		}
		for k, rv := range t.reviews {
			if rv.ProductID == id {
				delete(t.reviews, k)
			}
		}
		return nil
	})
}

func (r *productRepo) List(ctx context.Context, f repository.ProductFilter) ([]domain.Product, int64, error) {
	var matched []domain.Product
	err := r.db.read(ctx, func(t *tables) error {
		for _, p := range t.products {
			if matchProduct(p, f) {
				p.Images = t.imagesOf(p.ID)
				matched = append(matched, p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sortProducts(matched, f.Ordering)

	total := int64(len(matched))
	start := min(max(f.Offset, 0), len(matched))
	end := len(matched)
	if f.Limit > 0 {
		end = min(start+f.Limit, len(matched))
	}
	return matched[start:end], total, nil
}

func matchProduct(p domain.Product, f repository.ProductFilter) bool {
	if f.CollectionID != nil && p.CollectionID != *f.CollectionID {
		return false
	}
	if f.PriceGT != nil && !p.UnitPrice.GreaterThan(*f.PriceGT) {
		return false
	}
	if f.PriceLT != nil && !p.UnitPrice.LessThan(*f.PriceLT) {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Title), q) && !strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	return true
}

func sortProducts(ps []domain.Product, ordering string) {
	var less func(a, b domain.Product) bool
	switch ordering {
	case repository.OrderByPriceAsc:
		less = func(a, b domain.Product) bool { return a.UnitPrice.LessThan(b.UnitPrice) }
	case repository.OrderByPriceDesc:
		less = func(a, b domain.Product) bool { return a.UnitPrice.GreaterThan(b.UnitPrice) }
	case repository.OrderByLastUpdateAsc:
		less = func(a, b domain.Product) bool { return a.LastUpdate.Before(b.LastUpdate) }
	case repository.OrderByLastUpdateDesc:
		less = func(a, b domain.Product) bool { return a.LastUpdate.After(b.LastUpdate) }
	}
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].ID < ps[j].ID })
	if less != nil {
		sort.SliceStable(ps, func(i, j int) bool { return less(ps[i], ps[j]) })
	}
}

func (r *productRepo) CountByCollection(ctx context.Context, collectionID uint64) (int64, error) {
	var n int64
	err := r.db.read(ctx, func(t *tables) error {
		n = t.productsIn(collectionID)
		return nil
	})
	return n, err
}

func (r *productRepo) AddImage(ctx context.Context, img *domain.ProductImage) error {
	return r.db.write(ctx, func(t *tables) error {
		if _, ok := t.products[img.ProductID]; !ok {
			return domain.ErrProductNotFound
		}
		img.ID = t.next("product_images")
		t.images[img.ID] = *img
		return nil
	})
}

func (r *productRepo) ListImages(ctx context.Context, productID uint64) ([]domain.ProductImage, error) {
	var out []domain.ProductImage
	err := r.db.read(ctx, func(t *tables) error {
		out = t.imagesOf(productID)
		return nil
	})
	return out, err
}

func (r *productRepo) FindImage(ctx context.Context, productID, imageID uint64) (*domain.ProductImage, error) {
	var out *domain.ProductImage
	err := r.db.read(ctx, func(t *tables) error {
		img, ok := t.images[imageID]
		if !ok || img.ProductID != productID {
			return domain.ErrImageNotFound
		}
		out = &img
		return nil
	})
	return out, err
}

func (r *productRepo) DeleteImage(ctx context.Context, imageID uint64) error {
	return r.db.write(ctx, func(t *tables) error {
		if _, ok := t.images[imageID]; !ok {
			return domain.ErrImageNotFound
		}
		delete(t.images, imageID)
		return nil
	})
}

func bareProduct(p domain.Product) domain.Product {
	p.Collection = nil
	p.Images = nil
	p.Reviews = nil
	return p
}

func (t *tables) imagesOf(productID uint64) []domain.ProductImage {
	out := make([]domain.ProductImage, 0)
	for _, img := range t.images {
		if img.ProductID == productID {
			out = append(out, img)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (t *tables) productsIn(collectionID uint64) int64 {
	var n int64
	for _, p := range t.products {
		if p.CollectionID == collectionID {
			n++
		}
	}
	return n
}

type collectionRepo struct{ db *DB }

var _ repository.CollectionRepository = (*collectionRepo)(nil)

func (r *collectionRepo) Create(ctx context.Context, c *domain.Collection) error {
	return r.db.write(ctx, func(t *tables) error {
		c.ID = t.next("collections")
		c.ProductsCount = 0
		t.collections[c.ID] = *c
		return nil
	})
}

func (r *collectionRepo) FindByID(ctx context.Context, id uint64) (*domain.Collection, error) {
	var out *domain.Collection
	err := r.db.read(ctx, func(t *tables) error {
		c, ok := t.collections[id]
		if !ok {
			return domain.ErrCollectionNotFound
		}
		c.ProductsCount = t.productsIn(id)
		out = &c
		return nil
	})
	return out, err
}

func (r *collectionRepo) List(ctx context.Context) ([]domain.Collection, error) {
	out := make([]domain.Collection, 0)
	err := r.db.read(ctx, func(t *tables) error {
		for _, c := range t.collections {
			c.ProductsCount = t.productsIn(c.ID)
			out = append(out, c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *collectionRepo) Update(ctx context.Context, c *domain.Collection) error {
	return r.db.write(ctx, func(t *tables) error {
		if _, ok := t.collections[c.ID]; !ok {
			return domain.ErrCollectionNotFound
		}
		row := *c
		row.ProductsCount = 0
		t.collections[c.ID] = row
		return nil
	})
}

func (r *collectionRepo) Delete(ctx context.Context, id uint64) error {
	return r.db.write(ctx, func(t *tables) error {
		if _, ok := t.collections[id]; !ok {
			return domain.ErrCollectionNotFound
		}
		if t.productsIn(id) > 0 {
			return domain.ErrCollectionProtected
		}
		delete(t.collections, id)
		return nil
	})
}

type reviewRepo struct{ db *DB }

var _ repository.ReviewRepository = (*reviewRepo)(nil)

func (r *reviewRepo) Create(ctx context.Context, rv *domain.Review) error {
	return r.db.write(ctx, func(t *tables) error {
		if _, ok := t.products[rv.ProductID]; !ok {
			return domain.ErrProductNotFound
		}
		rv.ID = t.next("reviews")
		if rv.Date.IsZero() {
			rv.Date = now()
		}
		t.reviews[rv.ID] = *rv
		return nil
	})
}

func (r *reviewRepo) FindByID(ctx context.Context, productID, id uint64) (*domain.Review, error) {
	var out *domain.Review
	err := r.db.read(ctx, func(t *tables) error {
		rv, ok := t.reviews[id]
		if !ok || rv.ProductID != productID {
			return domain.ErrReviewNotFound
		}
		out = &rv
		return nil
	})
	return out, err
}

func (r *reviewRepo) ListByProduct(ctx context.Context, productID uint64) ([]domain.Review, error) {
	out := make([]domain.Review, 0)
	err := r.db.read(ctx, func(t *tables) error {
		for _, rv := range t.reviews {
			if rv.ProductID == productID {
				out = append(out, rv)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *reviewRepo) Update(ctx context.Context, rv *domain.Review) error {
	return r.db.write(ctx, func(t *tables) error {
		if _, ok := t.reviews[rv.ID]; !ok {
			return domain.ErrReviewNotFound
		}
		t.reviews[rv.ID] = *rv
		return nil
	})
}

func (r *reviewRepo) Delete(ctx context.Context, id uint64) error {
	return r.db.write(ctx, func(t *tables) error {
		if _, ok := t.reviews[id]; !ok {
			return domain.ErrReviewNotFound
		}
		delete(t.reviews, id)
		return nil
	})
}
