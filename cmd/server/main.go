package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	ratesapp "github.com/storefront/backend/internal/application/rates"
	"github.com/storefront/backend/internal/domain/currency"
	"github.com/storefront/backend/internal/domain/listing"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/exchange"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting storefront backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabaseWithZap(&cfg.Database, log, cfg.Log.Level)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	// Redis backs the persisted slider range and the shared rate cache.
	// Without it everything still works, just per-instance and
	// non-durable.
	var rangeStore listing.RangeStore
	var rateCache ratesapp.Cache
	redisClient := newRedisClient(&cfg.Redis, log)
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		rangeStore = cache.NewRedisRangeStoreWithClient(redisClient, "")
		rateCache = cache.NewRedisRateCache(redisClient, "")
	} else {
		rangeStore = cache.NewInMemoryRangeStore()
	}

	debouncedStore := cache.NewDebouncedRangeStore(rangeStore, cfg.Listing.PersistWindow, log)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		debouncedStore.Flush(ctx)
	}()

	provider := exchange.NewHTTPProvider(exchange.Config{
		URL:     cfg.Exchange.URL,
		Timeout: cfg.Exchange.Timeout,
	}, log)
	rateService := ratesapp.NewService(provider, rateCache, cfg.Exchange.RefreshInterval, log)

	refreshCtx, stopRefresh := context.WithCancel(context.Background())
	defer stopRefresh()
	go rateService.Run(refreshCtx)

	if _, err := rateService.Refresh(refreshCtx); err != nil {
		log.Warn("Initial rate fetch failed, serving built-in defaults", zap.Error(err))
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	queryExecutor := persistence.NewGormProductQueryExecutor(db.DB)

	r := router.NewRouter(engine)
	r.Register(handler.NewProductHandler(queryExecutor, productRepo, categoryRepo, rateService, cfg.Listing.PageSize, log)).
		Register(handler.NewCategoryHandler(categoryRepo)).
		Register(handler.NewRatesHandler(rateService)).
		Register(handler.NewRangeHandler(debouncedStore)).
		Register(handler.NewSystemHandler(db))
	r.Setup()

	if !currency.Code(cfg.Listing.DefaultCurrency).Known() {
		log.Warn("Unknown default currency in config, using base",
			zap.String("configured", cfg.Listing.DefaultCurrency),
			zap.String("base", currency.BaseCode.String()))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newRedisClient connects to Redis if configured, returning nil when
// Redis is absent or unreachable
func newRedisClient(cfg *config.RedisConfig, log *zap.Logger) *redis.Client {
	if cfg.Host == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unreachable, falling back to in-memory range store", zap.Error(err))
		_ = client.Close()
		return nil
	}

	return client
}
