package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"
)

// DB is an in-memory relational store. Transactions hold the write lock for their
// whole duration and restore a snapshot of every table when fn fails.
type DB struct {
	mu sync.RWMutex
	t  *tables
}

type tables struct {
	seq         map[string]uint64
	carts       map[string]domain.Cart
	cartItems   map[uint64]domain.CartItem
	orders      map[uint64]domain.Order
	orderItems  map[uint64]domain.OrderItem
	products    map[uint64]domain.Product
	images      map[uint64]domain.ProductImage
	collections map[uint64]domain.Collection
	reviews     map[uint64]domain.Review
	users       map[uint64]domain.User
	customers   map[uint64]domain.Customer
	tags        map[uint64]domain.Tag
	tagged      map[uint64]domain.TaggedItem
	liked       map[uint64]domain.LikedItem
}

func newTables() *tables {
	return &tables{
		seq:         make(map[string]uint64),
		carts:       make(map[string]domain.Cart),
		cartItems:   make(map[uint64]domain.CartItem),
		orders:      make(map[uint64]domain.Order),
		orderItems:  make(map[uint64]domain.OrderItem),
		products:    make(map[uint64]domain.Product),
		images:      make(map[uint64]domain.ProductImage),
		collections: make(map[uint64]domain.Collection),
		reviews:     make(map[uint64]domain.Review),
		users:       make(map[uint64]domain.User),
		customers:   make(map[uint64]domain.Customer),
		tags:        make(map[uint64]domain.Tag),
		tagged:      make(map[uint64]domain.TaggedItem),
		liked:       make(map[uint64]domain.LikedItem),
	}
}

// Stored rows never carry slices or association pointers, so a shallow map copy is a full snapshot.
func (t *tables) clone() *tables {
	return &tables{
		seq:         maps.Clone(t.seq),
		carts:       maps.Clone(t.carts),
		cartItems:   maps.Clone(t.cartItems),
		orders:      maps.Clone(t.orders),
		orderItems:  maps.Clone(t.orderItems),
		products:    maps.Clone(t.products),
		images:      maps.Clone(t.images),
		collections: maps.Clone(t.collections),
		reviews:     maps.Clone(t.reviews),
		users:       maps.Clone(t.users),
		customers:   maps.Clone(t.customers),
		tags:        maps.Clone(t.tags),
		tagged:      maps.Clone(t.tagged),
		liked:       maps.Clone(t.liked),
	}
}

func (t *tables) next(table string) uint64 {
	t.seq[table]++
	return t.seq[table]
}

func NewDB() *DB {
	return &DB{t: newTables()}
}

// NewStore wires every repository over one fresh in-memory DB.
func NewStore() repository.Store {
	return NewStoreOn(NewDB())
}

func NewStoreOn(db *DB) repository.Store {
	return repository.Store{
		Tx:          &TxManager{db: db},
		Carts:       &cartRepo{db: db},
		Orders:      &orderRepo{db: db},
		Products:    &productRepo{db: db},
		Collections: &collectionRepo{db: db},
		Reviews:     &reviewRepo{db: db},
		Users:       &userRepo{db: db},
		Customers:   &customerRepo{db: db},
		Tags:        &tagRepo{db: db},
		TaggedItems: newTaggedStore(db),
		LikedItems:  newLikedStore(db),
	}
}

type txKey struct{}

func (db *DB) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*DB)
	return owner == db
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
}

func (db *DB) read(ctx context.Context, fn func(t *tables) error) error {
	if err := ctx.Err(); err != nil {
		return unavailable(err)
	}
	if !db.inTx(ctx) {
		db.mu.RLock()
		defer db.mu.RUnlock()
	}
	return fn(db.t)
}

func (db *DB) write(ctx context.Context, fn func(t *tables) error) error {
	if err := ctx.Err(); err != nil {
		return unavailable(err)
	}
	if !db.inTx(ctx) {
		db.mu.Lock()
		defer db.mu.Unlock()
	}
	return fn(db.t)
}

type TxManager struct{ db *DB }

var _ repository.TxManager = (*TxManager)(nil)

func (m *TxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.db.inTx(ctx) {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return unavailable(err)
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	snapshot := m.db.t.clone()
	if err := fn(context.WithValue(ctx, txKey{}, m.db)); err != nil {
		m.db.t = snapshot
		return err
	}
	// A deadline that fired mid-transaction still aborts it.
	if err := ctx.Err(); err != nil {
		m.db.t = snapshot
		return unavailable(err)
	}
	return nil
}

func now() time.Time { return time.Now().UTC() }
