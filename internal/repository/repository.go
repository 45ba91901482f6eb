package repository

import (
	"context"
)

// TxManager runs fn inside one transaction. Repositories called with the ctx passed
// to fn take part in it; a nested call joins the outer transaction.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store bundles every repository behind one backend so the server and the tests
// can swap the relational store for the in-memory one.
type Store struct {
	Tx          TxManager
	Carts       CartRepository
	Orders      OrderRepository
	Products    ProductRepository
	Collections CollectionRepository
	Reviews     ReviewRepository
	Users       UserRepository
	Customers   CustomerRepository
	Tags        TagRepository
	TaggedItems AssociationStore
	LikedItems  AssociationStore
}
