package database

import (
	"fmt"
	"log"
	"time"

	"storefront-service/internal/config"
	"storefront-service/internal/domain"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Models lists every table in dependency order for AutoMigrate.
func Models() []any {
	return []any{
		&domain.User{},
		&domain.Customer{},
		&domain.Collection{},
		&domain.Product{},
		&domain.ProductImage{},
		&domain.Review{},
		&domain.Cart{},
		&domain.CartItem{},
		&domain.Order{},
		&domain.OrderItem{},
		&domain.Tag{},
		&domain.TaggedItem{},
		&domain.LikedItem{},
	}
}

func MySQLDSN(c config.MySQL) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local", c.User, c.Password, c.Host, c.Port, c.Database)
}

func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.StorageDriver {
	case config.DriverMySQL:
		if cfg.DatabaseURL != "" {
			return mysql.Open(cfg.DatabaseURL), nil
		}
		return mysql.Open(MySQLDSN(cfg.MySQL)), nil
	case config.DriverPostgres:
		return postgres.Open(cfg.DatabaseURL), nil
	default:
		return nil, fmt.Errorf("database: driver %q has no SQL dialect", cfg.StorageDriver)
	}
}

// Open connects, tunes the pool and migrates the schema.
func Open(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		NamingStrategy: schema.NamingStrategy{
			SingularTable: false,
		},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, err
	}
	log.Printf("database: %s schema migrated", cfg.StorageDriver)
	return db, nil
}
