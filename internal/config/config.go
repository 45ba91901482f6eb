package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type MySQL struct {
	User     string
	Password string
	Host     string
	Port     string
	Database string
}

type Config struct {
	Port          string
	StorageDriver string
	DatabaseURL   string
	MySQL         MySQL
	DBTimeout     time.Duration

	RedisHost     string
	CacheTTL      time.Duration
	RabbitMQURL   string
	OrderExchange string
	S3Bucket      string

	JWTSecret   string
	JWTTTL      time.Duration
	CORSOrigins []string

	// Admin, when Username is set, is created or promoted to staff at startup.
	Admin Admin
}

type Admin struct {
	Username string
	Email    string
	Password string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: .env not loaded: %v", err)
	}

	cfg := &Config{
		Port:          getenv("PORT", "8080"),
		StorageDriver: strings.ToLower(getenv("STORAGE_DRIVER", DriverMySQL)),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		MySQL: MySQL{
			User:     os.Getenv("MYSQL_USER"),
			Password: os.Getenv("MYSQL_PASSWORD"),
			Host:     getenv("MYSQL_HOST", "localhost"),
			Port:     getenv("MYSQL_PORT", "3306"),
			Database: os.Getenv("MYSQL_DATABASE"),
		},
		RedisHost:     os.Getenv("REDIS_HOST"),
		RabbitMQURL:   os.Getenv("RABBITMQ_URL"),
		OrderExchange: getenv("ORDER_EXCHANGE", "order.exchange"),
		S3Bucket:      os.Getenv("S3_BUCKET"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		CORSOrigins:   splitList(getenv("CORS_ORIGINS", "http://localhost:3000")),
		Admin: Admin{
			Username: os.Getenv("ADMIN_USERNAME"),
			Email:    os.Getenv("ADMIN_EMAIL"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
	}

	var err error
	if cfg.DBTimeout, err = durationEnv("DB_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = durationEnv("CACHE_TTL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.JWTTTL, err = durationEnv("JWT_TTL", 24*time.Hour); err != nil {
		return nil, err
	}

	switch cfg.StorageDriver {
	case DriverMySQL, DriverPostgres, DriverMemory:
	default:
		return nil, fmt.Errorf("config: unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	if cfg.StorageDriver == DriverPostgres && cfg.DatabaseURL == "" {
		return nil, errors.New("config: DATABASE_URL is required for the postgres driver")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("config: JWT_SECRET is required")
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
