package memory

import (
	"context"
	"sort"
	"strings"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"
)

type userRepo struct{ db *DB }

var _ repository.UserRepository = (*userRepo)(nil)

func (r *userRepo) Create(ctx context.Context, u *domain.User) error {
	return r.db.write(ctx, func(t *tables) error {
		for _, other := range t.users {
			if other.Username == u.Username || strings.EqualFold(other.Email, u.Email) {
				return domain.ErrConflict
			}
		}
		u.ID = t.next("users")
		u.CreatedAt = now()
		t.users[u.ID] = *u
		return nil
	})
}

func (r *userRepo) FindByID(ctx context.Context, id uint64) (*domain.User, error) {
	var out *domain.User
	err := r.db.read(ctx, func(t *tables) error {
		u, ok := t.users[id]
		if !ok {
			return domain.ErrUserNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var out *domain.User
	err := r.db.read(ctx, func(t *tables) error {
		for _, u := range t.users {
			if u.Username == username {
				out = &u
				return nil
			}
		}
		return domain.ErrUserNotFound
	})
	return out, err
}

func (r *userRepo) ExistsEmail(ctx context.Context, email string, exceptID uint64) (bool, error) {
	var found bool
	err := r.db.read(ctx, func(t *tables) error {
		for _, u := range t.users {
			if u.ID != exceptID && strings.EqualFold(u.Email, email) {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r *userRepo) Update(ctx context.Context, u *domain.User) error {
	return r.db.write(ctx, func(t *tables) error {
		if _, ok := t.users[u.ID]; !ok {
			return domain.ErrUserNotFound
		}
		t.users[u.ID] = *u
		return nil
	})
}

// Delete cascades to the customer profile and likes, as the foreign keys do.
func (r *userRepo) Delete(ctx context.Context, id uint64) error {
	return r.db.write(ctx, func(t *tables) error {
		if _, ok := t.users[id]; !ok {
			return domain.ErrUserNotFound
		}
		for cid, c := range t.customers {
			if c.UserID != id {
				continue
			}
			for _, o := range t.orders {
				if o.CustomerID == cid {
					return domain.ErrCustomerHasOrders
				}
			}
			delete(t.customers, cid)
		}
		for lid, l := range t.liked {
			if l.UserID == id {
				delete(t.liked, lid)
			}
		}
		delete(t.users, id)
		return nil
	})
}

type customerRepo struct{ db *DB }

var _ repository.CustomerRepository = (*customerRepo)(nil)

func (r *customerRepo) Create(ctx context.Context, c *domain.Customer) error {
	return r.db.write(ctx, func(t *tables) error {
		if _, ok := t.users[c.UserID]; !ok {
			return domain.ErrUserNotFound
		}
		for _, other := range t.customers {
			if other.UserID == c.UserID {
				return domain.ErrConflict
			}
		}
		if c.Membership == "" {
			c.Membership = domain.MembershipBronze
		}
		c.ID = t.next("customers")
		row := *c
		row.User = nil
		t.customers[c.ID] = row
		return nil
	})
}

func (r *customerRepo) FindByID(ctx context.Context, id uint64) (*domain.Customer, error) {
	var out *domain.Customer
	err := r.db.read(ctx, func(t *tables) error {
		c, ok := t.customers[id]
		if !ok {
			return domain.ErrCustomerNotFound
		}
		out = t.withUser(c)
		return nil
	})
	return out, err
}

func (r *customerRepo) FindByUserID(ctx context.Context, userID uint64) (*domain.Customer, error) {
	var out *domain.Customer
	err := r.db.read(ctx, func(t *tables) error {
		for _, c := range t.customers {
			if c.UserID == userID {
				out = t.withUser(c)
				return nil
			}
		}
		return domain.ErrCustomerNotFound
	})
	return out, err
}

func (r *customerRepo) List(ctx context.Context) ([]domain.Customer, error) {
	out := make([]domain.Customer, 0)
	err := r.db.read(ctx, func(t *tables) error {
		for _, c := range t.customers {
			out = append(out, *t.withUser(c))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *customerRepo) Update(ctx context.Context, c *domain.Customer) error {
	return r.db.write(ctx, func(t *tables) error {
		if _, ok := t.customers[c.ID]; !ok {
			return domain.ErrCustomerNotFound
		}
		row := *c
		row.User = nil
		t.customers[c.ID] = row
		return nil
	})
}

func (r *customerRepo) Delete(ctx context.Context, id uint64) error {
	return r.db.write(ctx, func(t *tables) error {
		if _, ok := t.customers[id]; !ok {
			return domain.ErrCustomerNotFound
		}
		for _, o := range t.orders {
			if o.CustomerID == id {
				return domain.ErrCustomerHasOrders
			}
		}
		delete(t.customers, id)
		return nil
	})
}

func (t *tables) withUser(c domain.Customer) *domain.Customer {
	if u, ok := t.users[c.UserID]; ok {
		c.User = &u
	}
	return &c
}
