package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"storefront-service/internal/auth"
	"storefront-service/internal/domain"
	"storefront-service/internal/repository"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"
)

const minPasswordLength = 8

type AccountService struct {
	tx        repository.TxManager
	users     repository.UserRepository
	customers repository.CustomerRepository
	orders    repository.OrderRepository
	liked     repository.AssociationStore
	tokens    *auth.TokenManager
	validate  *validator.Validate
	timeout   time.Duration
}

func NewAccountService(store repository.Store, tokens *auth.TokenManager) *AccountService {
	return &AccountService{
		tx:        store.Tx,
		users:     store.Users,
		customers: store.Customers,
		orders:    store.Orders,
		liked:     store.LikedItems,
		tokens:    tokens,
		validate:  validator.New(),
		timeout:   DefaultTimeout,
	}
}

func (s *AccountService) SetTimeout(d time.Duration) { s.timeout = d }

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

func (s *AccountService) checkEmail(v *domain.ValidationError, email string) {
	if email == "" {
		v.Add("email", "This field may not be blank.")
	} else if err := s.validate.Var(email, "email"); err != nil {
		v.Add("email", "Enter a valid email address.")
	}
}

// Register creates the user and its customer profile in one transaction.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	v := &domain.ValidationError{}
	if in.Username == "" {
		v.Add("username", "This field may not be blank.")
	} else if len(in.Username) > 150 {
		v.Add("username", "Ensure this field has no more than 150 characters.")
	}
	s.checkEmail(v, in.Email)
	if len(in.Password) < minPasswordLength {
		v.Add("password", "This password is too short. It must contain at least 8 characters.")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	u := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	}
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.uniqueIdentity(ctx, u.Username, u.Email, 0); err != nil {
			return err
		}
		if err := s.users.Create(ctx, u); err != nil {
			return err
		}
		return s.customers.Create(ctx, &domain.Customer{UserID: u.ID, Membership: domain.MembershipBronze})
	})
	if err != nil {
		return nil, err
	}
	log.Printf("user %d registered", u.ID)
	return u, nil
}

func (s *AccountService) uniqueIdentity(ctx context.Context, username, email string, exceptID uint64) error {
	v := &domain.ValidationError{}
	if username != "" {
		existing, err := s.users.FindByUsername(ctx, username)
		switch {
		case err == nil && existing.ID != exceptID:
			v.Add("username", "A user with that username already exists.")
		case err != nil && !errorsIsNotFound(err):
			return err
		}
	}
	taken, err := s.users.ExistsEmail(ctx, email, exceptID)
	if err != nil {
		return err
	}
	if taken {
		v.Add("email", "A user with that email already exists.")
	}
	return v.OrNil()
}

type Token struct {
	Access    string
	ExpiresAt time.Time
}

func (s *AccountService) Login(ctx context.Context, username, password string) (*Token, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	u, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if errorsIsNotFound(err) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}
	access, expires, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &Token{Access: access, ExpiresAt: expires}, nil
}

func (s *AccountService) Me(ctx context.Context, actor domain.Actor) (*domain.User, error) {
	if err := requireAuth(actor); err != nil {
		return nil, err
	}
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()
	return s.users.FindByID(ctx, actor.UserID)
}

// UserUpdate is a partial update; nil fields are left unchanged.
type UserUpdate struct {
	Email     *string
	FirstName *string
	LastName  *string
}

func (s *AccountService) UpdateMe(ctx context.Context, actor domain.Actor, in UserUpdate) (*domain.User, error) {
	if err := requireAuth(actor); err != nil {
		return nil, err
	}
	if in.Email != nil {
		*in.Email = strings.TrimSpace(*in.Email)
		v := &domain.ValidationError{}
		s.checkEmail(v, *in.Email)
		if err := v.OrNil(); err != nil {
			return nil, err
		}
	}
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	var u *domain.User
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		if u, err = s.users.FindByID(ctx, actor.UserID); err != nil {
			return err
		}
		if in.Email != nil {
			if err := s.uniqueIdentity(ctx, "", *in.Email, u.ID); err != nil {
				return err
			}
			u.Email = *in.Email
		}
		if in.FirstName != nil {
			u.FirstName = *in.FirstName
		}
		if in.LastName != nil {
			u.LastName = *in.LastName
		}
		return s.users.Update(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteUser is refused while the user's customer has orders. Likes and the
// customer profile go with the user.
func (s *AccountService) DeleteUser(ctx context.Context, actor domain.Actor, id uint64) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.users.FindByID(ctx, id); err != nil {
			return err
		}
		customer, err := s.customers.FindByUserID(ctx, id)
		switch {
		case err == nil:
			n, err := s.orders.CountByCustomer(ctx, customer.ID)
			if err != nil {
				return err
			}
			if n > 0 {
				return domain.ErrCustomerHasOrders
			}
			if err := s.customers.Delete(ctx, customer.ID); err != nil {
				return err
			}
		case !errorsIsNotFound(err):
			return err
		}
		if err := s.liked.DeleteForActor(ctx, id); err != nil {
			return err
		}
		return s.users.Delete(ctx, id)
	})
}

// EnsureStaff registers the account when missing and marks it as staff.
func (s *AccountService) EnsureStaff(ctx context.Context, in RegisterInput) (*domain.User, error) {
	u, err := s.Register(ctx, in)
	var verr *domain.ValidationError
	if errors.As(err, &verr) && verr.Fields["username"] != "" {
		ctx, cancel := bounded(ctx, s.timeout)
		defer cancel()
		u, err = s.users.FindByUsername(ctx, strings.TrimSpace(in.Username))
	}
	if err != nil {
		return nil, err
	}
	if u.IsStaff {
		return u, nil
	}
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()
	u.IsStaff = true
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

type CustomerInput struct {
	UserID     uint64
	Phone      string
	BirthDate  *time.Time
	Membership string
}

func (in CustomerInput) apply(c *domain.Customer) error {
	v := &domain.ValidationError{}
	membership := domain.MembershipBronze
	if in.Membership != "" {
		m, err := domain.ParseMembership(in.Membership)
		if err != nil {
			v.Add("membership", "Select a valid choice.")
		}
		membership = m
	}
	if in.BirthDate != nil && in.BirthDate.After(time.Now()) {
		v.Add("birth_date", "Birth date cannot be in the future.")
	}
	if err := v.OrNil(); err != nil {
		return err
	}
	c.Phone = strings.TrimSpace(in.Phone)
	c.Membership = membership
	c.BirthDate = nil
	if in.BirthDate != nil {
		d := datatypes.Date(*in.BirthDate)
		c.BirthDate = &d
	}
	return nil
}

func (s *AccountService) ListCustomers(ctx context.Context, actor domain.Actor) ([]domain.Customer, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()
	return s.customers.List(ctx)
}

func (s *AccountService) GetCustomer(ctx context.Context, actor domain.Actor, id uint64) (*domain.Customer, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()
	return s.customers.FindByID(ctx, id)
}

func (s *AccountService) CreateCustomer(ctx context.Context, actor domain.Actor, in CustomerInput) (*domain.Customer, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	c := &domain.Customer{UserID: in.UserID}
	if err := in.apply(c); err != nil {
		return nil, err
	}
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.users.FindByID(ctx, in.UserID); err != nil {
			if errorsIsNotFound(err) {
				return domain.NewValidationError("user_id", "Invalid pk - object does not exist.")
			}
			return err
		}
		if _, err := s.customers.FindByUserID(ctx, in.UserID); err == nil {
			return domain.NewValidationError("user_id", "This user already has a customer profile.")
		} else if !errorsIsNotFound(err) {
			return err
		}
		return s.customers.Create(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *AccountService) UpdateCustomer(ctx context.Context, actor domain.Actor, id uint64, in CustomerInput) (*domain.Customer, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	c, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.saveCustomer(ctx, c, in)
}

func (s *AccountService) GetMyCustomer(ctx context.Context, actor domain.Actor) (*domain.Customer, error) {
	if err := requireAuth(actor); err != nil {
		return nil, err
	}
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()
	return s.myCustomer(ctx, actor)
}

func (s *AccountService) UpdateMyCustomer(ctx context.Context, actor domain.Actor, in CustomerInput) (*domain.Customer, error) {
	if err := requireAuth(actor); err != nil {
		return nil, err
	}
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	c, err := s.myCustomer(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.saveCustomer(ctx, c, in)
}

func (s *AccountService) myCustomer(ctx context.Context, actor domain.Actor) (*domain.Customer, error) {
	c, err := s.customers.FindByUserID(ctx, actor.UserID)
	if errorsIsNotFound(err) {
		return nil, domain.ErrNoCustomerProfile
	}
	return c, err
}

func (s *AccountService) saveCustomer(ctx context.Context, c *domain.Customer, in CustomerInput) (*domain.Customer, error) {
	if err := in.apply(c); err != nil {
		return nil, err
	}
	if err := s.customers.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
