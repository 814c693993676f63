package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_cart/storefront/internal/auth"
	c "github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/config"
	h "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/internal/logging"
	"github.com/fjod/go_cart/storefront/internal/publisher"
	"github.com/fjod/go_cart/storefront/internal/repository"
	s "github.com/fjod/go_cart/storefront/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	repo, err := repository.NewRepository(&cfg.DB, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to postgres")
	}
	defer repo.Close()

	if err := repo.RunMigrations(&cfg.DB); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.WithError(err).Fatal("redis connection failed")
	}
	log.Info("redis ping succeeded")

	hasher, err := auth.NewPasswordHasher(cfg.BcryptCost)
	if err != nil {
		log.WithError(err).Fatal("invalid bcrypt cost")
	}
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL, auth.NewRedisRevocationStore(redisClient))

	catalog := s.NewCatalogService(repo, c.NewRedisCache(redisClient), log)
	users := s.NewUserService(repo, hasher, tokens, log)
	cart := s.NewCartService(repo, log)
	orders := s.NewOrderService(repo, catalog, log)

	if len(cfg.KafkaBrokers) > 0 {
		poller := publisher.NewOutboxPoller(repo, publisher.NewKafkaWriter(cfg.KafkaBrokers...), log)
		defer poller.Close()
		go poller.Run(ctx)
		log.WithField("brokers", cfg.KafkaBrokers).Info("outbox publisher started")
	} else {
		log.Info("KAFKA_BROKERS not set, outbox publishing disabled")
	}

	authLimiter := h.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst, log)
	authLimiter.StartCleanup(ctx, 10*time.Minute)

	router := h.NewRouter(h.RouterConfig{
		Auth:               h.NewAuthHandler(users, tokens.TTL(), cfg.CookieSecure, cfg.RequestTimeout, log),
		Products:           h.NewProductHandler(catalog, cfg.RequestTimeout, log),
		Cart:               h.NewCartHandler(cart, cfg.RequestTimeout, log),
		Orders:             h.NewOrdersHandler(orders, cfg.RequestTimeout, log),
		Verifier:           tokens,
		AuthLimiter:        authLimiter,
		Health:             []h.Pinger{repo, redisPinger{redisClient}},
		AllowedOrigins:     cfg.CORSAllowedOrigins,
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		Log:                log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.HTTPPort).Info("storefront starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}

	log.Info("server exited")
}
