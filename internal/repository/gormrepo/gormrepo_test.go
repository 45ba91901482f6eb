package gormrepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront-service/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestCartRepo_LockByID(t *testing.T) {
	tests := []struct {
		name          string
		rows          *sqlmock.Rows
		queryErr      error
		expectedError error
	}{
		{
			name: "locks the row",
			rows: sqlmock.NewRows([]string{"id", "created_at"}).AddRow("c1", time.Now()),
		},
		{
			name:          "missing cart",
			rows:          sqlmock.NewRows([]string{"id", "created_at"}),
			expectedError: domain.ErrCartNotFound,
		},
		{
			name:          "deadline",
			queryErr:      context.DeadlineExceeded,
			expectedError: domain.ErrUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			q := mock.ExpectQuery(`SELECT \* FROM .carts. WHERE id = \? ORDER BY .carts.\..id. LIMIT .+ FOR UPDATE`)
			if tt.queryErr != nil {
				q.WillReturnError(tt.queryErr)
			} else {
				q.WillReturnRows(tt.rows)
			}

			cart, err := NewCartRepository(db).LockByID(context.Background(), "c1")
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, cart)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "c1", cart.ID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCartRepo_LockInsideTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM .carts. .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("c1", time.Now()))
	mock.ExpectExec(`DELETE FROM .cart_items.`).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM .carts.`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	carts := NewCartRepository(db)
	err := NewTxManager(db).WithTransaction(context.Background(), func(ctx context.Context) error {
		if _, err := carts.LockByID(ctx, "c1"); err != nil {
			return err
		}
		return carts.Delete(ctx, "c1")
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepo_DeleteMissing(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM .cart_items.`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM .carts.`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := NewCartRepository(db).Delete(context.Background(), "gone")
	assert.ErrorIs(t, err, domain.ErrCartNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepo_CreateDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO .carts.`).
		WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry 'c1' for key 'PRIMARY'"})
	mock.ExpectRollback()

	err := NewCartRepository(db).Create(context.Background(), &domain.Cart{ID: "c1"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikedItemStore_AttachIsIdempotent(t *testing.T) {
	db, mock := newMockDB(t)
	target := domain.EntityRef{Kind: domain.EntityProduct, ID: 3}
	created := time.Now()
	likedRow := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "user_id", "content_type", "object_id", "created_at"}).
			AddRow(7, 1, string(target.Kind), target.ID, created)
	}

	// first like inserts, second hits the unique key and inserts nothing
	for _, affected := range []int64{1, 0} {
		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO .liked_items. .* ON DUPLICATE KEY UPDATE`).
			WillReturnResult(sqlmock.NewResult(7, affected))
		mock.ExpectCommit()
		mock.ExpectQuery(`SELECT \* FROM .liked_items. WHERE user_id = \? AND content_type = \? AND object_id = \?`).
			WillReturnRows(likedRow())
	}

	store := NewLikedItemStore(db)
	first, err := store.Attach(context.Background(), 1, target)
	require.NoError(t, err)
	second, err := store.Attach(context.Background(), 1, target)
	require.NoError(t, err)

	assert.Equal(t, uint64(7), first.ID)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, target, second.Target)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		notFound      error
		expectedError error
	}{
		{name: "nil", err: nil},
		{name: "record not found", err: gorm.ErrRecordNotFound, notFound: domain.ErrOrderNotFound, expectedError: domain.ErrOrderNotFound},
		{name: "record not found without mapping", err: gorm.ErrRecordNotFound, expectedError: gorm.ErrRecordNotFound},
		{name: "duplicate key", err: gorm.ErrDuplicatedKey, expectedError: domain.ErrConflict},
		{name: "foreign key", err: gorm.ErrForeignKeyViolated, expectedError: domain.ErrFailedPrecondition},
		{name: "deadline", err: context.DeadlineExceeded, expectedError: domain.ErrUnavailable},
		{name: "canceled", err: context.Canceled, expectedError: domain.ErrUnavailable},
		{name: "domain error passes through", err: domain.ErrCartEmpty, expectedError: domain.ErrCartEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := translate(tt.err, tt.notFound)
			if tt.expectedError == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.expectedError)
		})
	}

	raw := errors.New("connection reset")
	assert.Same(t, raw, translate(raw, nil))
}
