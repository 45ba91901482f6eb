package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-service/internal/auth"
	"storefront-service/internal/config"
	httpapi "storefront-service/internal/controllers/http"
	"storefront-service/internal/infra/cache"
	"storefront-service/internal/infra/database"
	"storefront-service/internal/infra/events"
	"storefront-service/internal/infra/rabbitmq"
	"storefront-service/internal/infra/storage"
	"storefront-service/internal/infra/ws"
	"storefront-service/internal/repository"
	"storefront-service/internal/repository/gormrepo"
	"storefront-service/internal/repository/memory"
	"storefront-service/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	ctx := context.Background()

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("db: connect: %v", err)
	}

	var publishers []events.Publisher
	if cfg.RabbitMQURL != "" {
		publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.OrderExchange)
		if err != nil {
			log.Fatalf("failed to init publisher: %v", err)
		}
		defer publisher.Close()
		publishers = append(publishers, publisher)
	} else {
		log.Println("RABBITMQ_URL not set, order events stay in process")
	}
	hub := ws.NewHub(cfg.CORSOrigins)
	defer hub.Close()
	publishers = append(publishers, hub)

	var productCache *cache.ProductCache
	if cfg.RedisHost != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:         cfg.RedisHost + ":6379",
			DB:           0,
			PoolSize:     200,
			MinIdleConns: 20,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		})
		defer redisClient.Close()
		productCache = cache.NewProductCache(redisClient, cfg.CacheTTL)
	}

	var images storage.ImageStore
	if cfg.S3Bucket != "" {
		s3Store, err := storage.NewS3ImageStore(ctx, cfg.S3Bucket)
		if err != nil {
			log.Fatalf("storage: %v", err)
		}
		images = s3Store
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	carts := services.NewCartService(store)
	orders := services.NewOrderService(store, events.NewFanOut(publishers...))
	catalog := services.NewCatalogService(store, productCache, images)
	assoc := services.NewAssociationService(store)
	accounts := services.NewAccountService(store, tokens)
	for _, s := range []interface{ SetTimeout(time.Duration) }{carts, orders, catalog, assoc, accounts} {
		s.SetTimeout(cfg.DBTimeout)
	}

	if cfg.Admin.Username != "" {
		if _, err := accounts.EnsureStaff(ctx, services.RegisterInput{
			Username: cfg.Admin.Username,
			Email:    cfg.Admin.Email,
			Password: cfg.Admin.Password,
		}); err != nil {
			log.Fatalf("admin bootstrap: %v", err)
		}
	}

	if productCache != nil {
		go func() {
			time.Sleep(5 * time.Second)
			if err := catalog.WarmProductCache(ctx, services.DefaultPageSize); err != nil {
				log.Printf("Failed to warm up cache: %v", err)
			} else {
				log.Println("Cache warmed up successfully")
			}
		}()
	}

	handler := httpapi.NewHandler(httpapi.Services{
		Carts:        carts,
		Orders:       orders,
		Catalog:      catalog,
		Associations: assoc,
		Accounts:     accounts,
	}, tokens, hub)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.MaxMultipartMemory = 8 << 20

	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting storefront service on port %s (%s storage)", cfg.Port, cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server run: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}

func openStore(cfg *config.Config) (repository.Store, error) {
	if cfg.StorageDriver == config.DriverMemory {
		log.Println("using in-memory storage; data is lost on restart")
		return memory.NewStore(), nil
	}
	db, err := database.Open(cfg)
	if err != nil {
		return repository.Store{}, err
	}
	return gormrepo.NewStore(db), nil
}
