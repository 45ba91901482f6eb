package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront-service/internal/auth"
	"storefront-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccounts(f *fixture) *AccountService {
	return NewAccountService(f.store, auth.NewTokenManager("test-secret", time.Hour))
}

func TestAccountService_Register(t *testing.T) {
	tests := []struct {
		name           string
		input          RegisterInput
		expectedFields []string
	}{
		{
			name:  "creates user and customer",
			input: RegisterInput{Username: "bob", Email: "bob@example.com", Password: "long-enough", FirstName: "Bob"},
		},
		{
			name:           "short password and bad email",
			input:          RegisterInput{Username: "bob", Email: "not-an-email", Password: "short"},
			expectedFields: []string{"email", "password"},
		},
		{
			name:           "taken username and email",
			input:          RegisterInput{Username: "alice", Email: "ALICE@example.com", Password: "long-enough"},
			expectedFields: []string{"email", "username"},
		},
		{
			name:           "blank username",
			input:          RegisterInput{Username: " ", Email: "x@example.com", Password: "long-enough"},
			expectedFields: []string{"username"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			svc := newAccounts(f)

			u, err := svc.Register(ctx, tt.input)
			if len(tt.expectedFields) > 0 {
				var verr *domain.ValidationError
				require.True(t, errors.As(err, &verr), "got %v", err)
				for _, field := range tt.expectedFields {
					assert.Contains(t, verr.Fields, field)
				}
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, tt.input.Password, u.PasswordHash)

			c, err := f.store.Customers.FindByUserID(ctx, u.ID)
			require.NoError(t, err)
			assert.Equal(t, domain.MembershipBronze, c.Membership)
		})
	}
}

func TestAccountService_Login(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newAccounts(f)

	token, err := svc.Login(ctx, "alice", "s3cret-pass")
	require.NoError(t, err)
	actor, err := auth.NewTokenManager("test-secret", time.Hour).Parse(token.Access)
	require.NoError(t, err)
	assert.Equal(t, f.shopper, actor)

	_, err = svc.Login(ctx, "alice", "wrong-pass")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody", "s3cret-pass")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestAccountService_UpdateMe(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newAccounts(f)
	_, err := svc.Register(ctx, RegisterInput{Username: "bob", Email: "bob@example.com", Password: "long-enough"})
	require.NoError(t, err)

	taken := "bob@example.com"
	_, err = svc.UpdateMe(ctx, f.shopper, UserUpdate{Email: &taken})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	first, email := "Alice", "alice@new.example.com"
	u, err := svc.UpdateMe(ctx, f.shopper, UserUpdate{FirstName: &first, Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.FirstName)

	me, err := svc.Me(ctx, f.shopper)
	require.NoError(t, err)
	assert.Equal(t, email, me.Email)

	_, err = svc.Me(ctx, domain.Actor{})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestAccountService_DeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("refused with orders", func(t *testing.T) {
		f := newFixture(t)
		cartID := f.cart(t, map[*domain.Product]int{f.product(t, "Tea", "5.00"): 1})
		_, err := NewOrderService(f.store, nil).PlaceOrder(ctx, f.customer.ID, cartID)
		require.NoError(t, err)

		err = newAccounts(f).DeleteUser(ctx, staff, f.shopper.UserID)
		assert.ErrorIs(t, err, domain.ErrCustomerHasOrders)
		_, err = f.store.Users.FindByID(ctx, f.shopper.UserID)
		assert.NoError(t, err)
	})

	t.Run("removes likes and customer", func(t *testing.T) {
		f := newFixture(t)
		tea := f.product(t, "Tea", "5.00")
		target := domain.EntityRef{Kind: domain.EntityProduct, ID: tea.ID}
		_, err := NewAssociationService(f.store).Like(ctx, f.shopper, target)
		require.NoError(t, err)

		svc := newAccounts(f)
		assert.ErrorIs(t, svc.DeleteUser(ctx, f.shopper, f.shopper.UserID), domain.ErrPermissionDenied)
		require.NoError(t, svc.DeleteUser(ctx, staff, f.shopper.UserID))

		_, err = f.store.Customers.FindByID(ctx, f.customer.ID)
		assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
		n, err := f.store.LikedItems.CountForEntity(ctx, target)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestAccountService_Customers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newAccounts(f)

	_, err := svc.ListCustomers(ctx, f.shopper)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	list, err := svc.ListCustomers(ctx, staff)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.CreateCustomer(ctx, staff, CustomerInput{UserID: f.shopper.UserID})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = svc.UpdateMyCustomer(ctx, f.shopper, CustomerInput{Membership: "platinum"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	born := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
	c, err := svc.UpdateMyCustomer(ctx, f.shopper, CustomerInput{Phone: "555-0100", BirthDate: &born, Membership: "gold"})
	require.NoError(t, err)
	assert.Equal(t, domain.MembershipGold, c.Membership)
	require.NotNil(t, c.BirthDate)

	mine, err := svc.GetMyCustomer(ctx, f.shopper)
	require.NoError(t, err)
	assert.Equal(t, "555-0100", mine.Phone)

	_, err = svc.GetMyCustomer(ctx, domain.Actor{UserID: 4242})
	assert.ErrorIs(t, err, domain.ErrNoCustomerProfile)

	updated, err := svc.UpdateCustomer(ctx, staff, f.customer.ID, CustomerInput{Membership: "S"})
	require.NoError(t, err)
	assert.Equal(t, domain.MembershipSilver, updated.Membership)
}

func TestAccountService_EnsureStaff(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newAccounts(f)

	u, err := svc.EnsureStaff(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "whatever1"})
	require.NoError(t, err)
	assert.True(t, u.IsStaff)
	assert.Equal(t, f.shopper.UserID, u.ID)

	admin, err := svc.EnsureStaff(ctx, RegisterInput{Username: "admin", Email: "admin@example.com", Password: "admin-pass"})
	require.NoError(t, err)
	assert.True(t, admin.IsStaff)

	token, err := svc.Login(ctx, "admin", "admin-pass")
	require.NoError(t, err)
	actor, err := auth.NewTokenManager("test-secret", time.Hour).Parse(token.Access)
	require.NoError(t, err)
	assert.True(t, actor.IsStaff)
}
