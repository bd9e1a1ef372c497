package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	authapp "github.com/teleshop/storefront/internal/auth/application"
	authhttp "github.com/teleshop/storefront/internal/auth/interfaces/http"
	cartapp "github.com/teleshop/storefront/internal/cart/application"
	cartdomain "github.com/teleshop/storefront/internal/cart/domain"
	cartpg "github.com/teleshop/storefront/internal/cart/infrastructure/persistence/postgres"
	carthttp "github.com/teleshop/storefront/internal/cart/interfaces/http"
	catalogapp "github.com/teleshop/storefront/internal/catalog/application"
	catalogdomain "github.com/teleshop/storefront/internal/catalog/domain"
	catalogmsg "github.com/teleshop/storefront/internal/catalog/infrastructure/messaging"
	catalogpg "github.com/teleshop/storefront/internal/catalog/infrastructure/persistence/postgres"
	cataloghttp "github.com/teleshop/storefront/internal/catalog/interfaces/http"
	favoriteapp "github.com/teleshop/storefront/internal/favorite/application"
	favoritedomain "github.com/teleshop/storefront/internal/favorite/domain"
	favoritepg "github.com/teleshop/storefront/internal/favorite/infrastructure/persistence/postgres"
	favoritehttp "github.com/teleshop/storefront/internal/favorite/interfaces/http"
	orderapp "github.com/teleshop/storefront/internal/order/application"
	orderdomain "github.com/teleshop/storefront/internal/order/domain"
	ordermsg "github.com/teleshop/storefront/internal/order/infrastructure/messaging"
	orderpg "github.com/teleshop/storefront/internal/order/infrastructure/persistence/postgres"
	orderhttp "github.com/teleshop/storefront/internal/order/interfaces/http"
	pricelistapp "github.com/teleshop/storefront/internal/pricelist/application"
	pricelistmsg "github.com/teleshop/storefront/internal/pricelist/infrastructure/messaging"
	pricelistpg "github.com/teleshop/storefront/internal/pricelist/infrastructure/persistence/postgres"
	pricelisthttp "github.com/teleshop/storefront/internal/pricelist/interfaces/http"
	"github.com/teleshop/storefront/pkg/cache"
	"github.com/teleshop/storefront/pkg/config"
	"github.com/teleshop/storefront/pkg/db"
	"github.com/teleshop/storefront/pkg/logger"
	"github.com/teleshop/storefront/pkg/metrics"
	"github.com/teleshop/storefront/pkg/middleware"
	"github.com/teleshop/storefront/pkg/mq"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "configs/storefront/config.toml", "path to config file")
	flag.Parse()

	// 1. Config
	cfg, err := config.Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("load config failed: %v", err))
	}

	// 2. Logger
	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		panic(fmt.Sprintf("init logger failed: %v", err))
	}
	ctx := context.Background()
	logger.Info(ctx, "starting storefront", "environment", cfg.Environment)

	// 3. Database
	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		panic(fmt.Sprintf("connect db failed: %v", err))
	}
	defer database.Close()

	if err := database.AutoMigrate(
		&catalogdomain.Product{},
		&catalogdomain.PriceHistory{},
		&cartdomain.Cart{},
		&cartdomain.CartItem{},
		&favoritedomain.Favorite{},
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
	); err != nil {
		panic(fmt.Sprintf("migrate db failed: %v", err))
	}

	// 4. Optional infrastructure: Redis cache and Kafka producer
	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		redisCache, err = cache.New(cache.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxPoolSize:  cfg.Redis.MaxPoolSize,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			panic(fmt.Sprintf("connect redis failed: %v", err))
		}
		defer redisCache.Close()
	}

	var producer *mq.KafkaProducer
	if cfg.Kafka.Enabled {
		producer, err = mq.NewProducer(mq.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
		})
		if err != nil {
			panic(fmt.Sprintf("connect kafka failed: %v", err))
		}
		defer producer.Close()
	}

	// 5. Infrastructure adapters
	productRepo := catalogpg.NewProductRepository(database.DB)
	historyRepo := catalogpg.NewPriceHistoryRepository(database.DB)
	cartRepo := cartpg.NewCartRepository(database.DB)
	favoriteRepo := favoritepg.NewFavoriteRepository(database.DB)
	orderRepo := orderpg.NewOrderRepository(database.DB)
	priceStore := pricelistpg.NewPriceStore(database)

	var productCache catalogapp.ProductCache
	var priceCache pricelistapp.CacheInvalidator
	if redisCache != nil {
		productCache = redisCache
		priceCache = redisCache
	}

	var catalogPublisher catalogdomain.EventPublisher
	var orderPublisher orderdomain.EventPublisher
	var pricePublisher pricelistapp.EventPublisher
	if producer != nil {
		catalogPublisher = catalogmsg.NewKafkaPublisher(producer)
		orderPublisher = ordermsg.NewKafkaPublisher(producer)
		pricePublisher = pricelistmsg.NewKafkaPublisher(producer)
	}

	// 6. Application services
	catalogSvc := catalogapp.NewCatalogService(productRepo, historyRepo, catalogPublisher, productCache, cfg.Kafka.PriceTopic)
	pricelistSvc := pricelistapp.NewService(priceStore, priceStore, pricePublisher, priceCache, cfg.Kafka.PriceTopic)
	cartSvc := cartapp.NewCartService(cartRepo, productRepo)
	favoriteSvc := favoriteapp.NewFavoriteService(favoriteRepo, productRepo)
	orderSvc := orderapp.NewOrderService(orderRepo, cartRepo, productRepo, orderPublisher, cfg.Kafka.OrderTopic)
	authSvc := authapp.NewAuthService(authapp.Config{
		JWTSecret:         cfg.Auth.JWTSecret,
		TokenTTL:          time.Duration(cfg.Auth.TokenTTL) * time.Second,
		AdminUsername:     cfg.Auth.AdminUsername,
		AdminPasswordHash: cfg.Auth.AdminPasswordHash,
	})

	// 7. HTTP server
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	m := metrics.New(cfg.ServiceName)
	r := gin.New()
	r.Use(middleware.Logging(), middleware.Recovery(), middleware.CORS(), middleware.Metrics(m))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	authhttp.RegisterRoutes(api.Group("/auth"), authSvc)

	// Mini App endpoints require a valid Telegram initData signature.
	user := api.Group("")
	user.Use(authhttp.TelegramAuth(authhttp.TelegramAuthConfig{
		BotToken: cfg.Telegram.BotToken,
		TTL:      time.Duration(cfg.Telegram.InitDataTTL) * time.Second,
		Skip:     cfg.Telegram.SkipInitDataCheck,
	}))

	// Admin endpoints require a bearer token from /api/auth/login.
	admin := api.Group("/admin")
	admin.Use(authhttp.AdminAuth(authSvc))

	// Price-list upload lives under /api/upload and is admin-only as well.
	upload := api.Group("/upload")
	upload.Use(authhttp.AdminAuth(authSvc))
	upload.Use(middleware.RateLimit(middleware.NewRateLimiter(10, 2)))

	cataloghttp.RegisterRoutes(user, admin, catalogSvc)
	carthttp.RegisterRoutes(user, cartSvc)
	favoritehttp.RegisterRoutes(user, favoriteSvc)
	orderhttp.RegisterRoutes(user, admin, orderSvc, m)
	pricelisthttp.RegisterRoutes(upload, pricelistSvc, cfg.Upload.MaxFileSizeMB, m)

	httpSrv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		metricsSrv = m.Serve(cfg.Metrics.Port, cfg.Metrics.Path)
	}

	// 8. Start
	go func() {
		logger.Info(ctx, "HTTP server listening", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(fmt.Sprintf("http server failed: %v", err))
		}
	}()

	// 9. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "http server shutdown failed", "error", err)
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "metrics server shutdown failed", "error", err)
		}
	}
	logger.Info(ctx, "storefront stopped")
}
