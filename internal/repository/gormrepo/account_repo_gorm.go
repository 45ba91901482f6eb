package gormrepo

import (
	"context"
	"errors"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"

	"gorm.io/gorm"
)

type userRepo struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, u *domain.User) error {
	return translate(conn(ctx, r.db).Create(u).Error, nil)
}

func (r *userRepo) FindByID(ctx context.Context, id uint64) (*domain.User, error) {
	var u domain.User
	if err := conn(ctx, r.db).First(&u, id).Error; err != nil {
		return nil, translate(err, domain.ErrUserNotFound)
	}
	return &u, nil
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	if err := conn(ctx, r.db).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translate(err, domain.ErrUserNotFound)
	}
	return &u, nil
}

func (r *userRepo) ExistsEmail(ctx context.Context, email string, exceptID uint64) (bool, error) {
	var n int64
	err := conn(ctx, r.db).Model(&domain.User{}).
		Where("LOWER(email) = LOWER(?) AND id <> ?", email, exceptID).
		Count(&n).Error
	return n > 0, translate(err, nil)
}

func (r *userRepo) Update(ctx context.Context, u *domain.User) error {
	res := conn(ctx, r.db).Model(&domain.User{ID: u.ID}).Updates(map[string]any{
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"is_staff":   u.IsStaff,
	})
	if res.Error != nil {
		return translate(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return exists(ctx, r.db, &domain.User{}, u.ID, domain.ErrUserNotFound)
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id uint64) error {
	res := conn(ctx, r.db).Delete(&domain.User{}, id)
	if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
		return domain.ErrCustomerHasOrders
	}
	if res.Error != nil {
		return translate(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

type customerRepo struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) repository.CustomerRepository {
	return &customerRepo{db: db}
}

func (r *customerRepo) Create(ctx context.Context, c *domain.Customer) error {
	if c.Membership == "" {
		c.Membership = domain.MembershipBronze
	}
	return translate(conn(ctx, r.db).Omit("User").Create(c).Error, nil)
}

func (r *customerRepo) FindByID(ctx context.Context, id uint64) (*domain.Customer, error) {
	var c domain.Customer
	if err := conn(ctx, r.db).Preload("User").First(&c, id).Error; err != nil {
		return nil, translate(err, domain.ErrCustomerNotFound)
	}
	return &c, nil
}

func (r *customerRepo) FindByUserID(ctx context.Context, userID uint64) (*domain.Customer, error) {
	var c domain.Customer
	if err := conn(ctx, r.db).Preload("User").Where("user_id = ?", userID).First(&c).Error; err != nil {
		return nil, translate(err, domain.ErrCustomerNotFound)
	}
	return &c, nil
}

func (r *customerRepo) List(ctx context.Context) ([]domain.Customer, error) {
	out := make([]domain.Customer, 0)
	err := conn(ctx, r.db).Preload("User").Order("id").Find(&out).Error
	return out, translate(err, nil)
}

func (r *customerRepo) Update(ctx context.Context, c *domain.Customer) error {
	res := conn(ctx, r.db).Model(&domain.Customer{ID: c.ID}).Updates(map[string]any{
		"phone":      c.Phone,
		"birth_date": c.BirthDate,
		"membership": c.Membership,
	})
	if res.Error != nil {
		return translate(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return exists(ctx, r.db, &domain.Customer{}, c.ID, domain.ErrCustomerNotFound)
	}
	return nil
}

func (r *customerRepo) Delete(ctx context.Context, id uint64) error {
	res := conn(ctx, r.db).Delete(&domain.Customer{}, id)
	if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
		return domain.ErrCustomerHasOrders
	}
	if res.Error != nil {
		return translate(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}
