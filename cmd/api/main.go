package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utulok/shelter-backend/api/routes"
	"github.com/utulok/shelter-backend/internal/admin"
	"github.com/utulok/shelter-backend/internal/attachments"
	"github.com/utulok/shelter-backend/internal/auth"
	"github.com/utulok/shelter-backend/internal/billing"
	"github.com/utulok/shelter-backend/internal/dogs"
	"github.com/utulok/shelter-backend/internal/payments"
	"github.com/utulok/shelter-backend/internal/shelters"
	"github.com/utulok/shelter-backend/internal/users"
	stripewebhook "github.com/utulok/shelter-backend/internal/webhooks/stripe"
	pkgAuth "github.com/utulok/shelter-backend/pkg/auth"
	"github.com/utulok/shelter-backend/pkg/auth/session"
	"github.com/utulok/shelter-backend/pkg/config"
	"github.com/utulok/shelter-backend/pkg/db"
	"github.com/utulok/shelter-backend/pkg/logger"
	"github.com/utulok/shelter-backend/pkg/metrics"
	"github.com/utulok/shelter-backend/pkg/migrate"
	"github.com/utulok/shelter-backend/pkg/redis"
	"github.com/utulok/shelter-backend/pkg/security"
	"github.com/utulok/shelter-backend/pkg/stripe"
)

const (
	tokenAudience       = "shelter-frontend"
	webhookIdempScope   = "stripe"
	webhookIdempTTL     = 24 * time.Hour
	shutdownGracePeriod = 15 * time.Second
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	gdb, err := db.Connect(context.Background(), cfg.DB)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	dbConn := db.NewConn(gdb)

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, gdb); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.NewClient(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	webhookMetrics := metrics.NewWebhookMetrics(registry)

	userRepo := users.NewRepository(gdb)
	shelterRepo := shelters.NewRepository(gdb)
	dogRepo := dogs.NewRepository(gdb)
	attachmentRepo := attachments.NewRepository(gdb)
	billingRepo := billing.NewRepository(gdb)

	hasher := security.NewPasswordHasher(security.HashParams{
		Time:    uint32(cfg.Password.ArgonTime),
		Memory:  uint32(cfg.Password.ArgonMemoryKB),
		Threads: uint8(cfg.Password.ArgonParallelism),
		KeyLen:  uint32(cfg.Password.ArgonKeyLen),
		SaltLen: uint32(cfg.Password.ArgonSaltLen),
	})
	tokens := pkgAuth.NewTokenIssuer(
		cfg.JWT.Secret,
		cfg.JWT.Issuer,
		tokenAudience,
		time.Duration(cfg.JWT.ExpirationMinutes)*time.Minute,
	)
	sessions := session.NewManager(redisClient, cfg.JWT.RefreshTokenTTL())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:    userRepo,
		ShelterRepo: shelterRepo,
		Hasher:      hasher,
		Tokens:      tokens,
		Sessions:    sessions,
	})
	requireService(logg, "auth", err)

	shelterService, err := shelters.NewService(shelters.ServiceParams{
		Repo:        shelterRepo,
		UserRepo:    userRepo,
		BillingRepo: billingRepo,
		DogRepo:     dogRepo,
	})
	requireService(logg, "shelters", err)

	dogService, err := dogs.NewService(dogs.ServiceParams{
		Repo:        dogRepo,
		ShelterRepo: shelterRepo,
	})
	requireService(logg, "dogs", err)

	storage, err := attachments.NewDiskStorage(cfg.Uploads.Dir)
	if err != nil {
		logg.Error(context.Background(), "failed to prepare uploads directory", err)
		os.Exit(1)
	}
	attachmentService, err := attachments.NewService(attachments.ServiceParams{
		Repo:    attachmentRepo,
		Storage: storage,
		Dogs:    dogService,
		DogRepo: dogRepo,
	})
	requireService(logg, "attachments", err)

	paymentService, err := payments.NewService(payments.ServiceParams{
		BillingRepo:         billingRepo,
		ShelterRepo:         shelterRepo,
		StripeClient:        payments.NewStripeClient(stripeClient),
		FrontendBaseURL:     cfg.Frontend.BaseURL,
		SubscriptionPriceID: stripeClient.SubscriptionPriceID(),
	})
	requireService(logg, "payments", err)

	adminService, err := admin.NewService(admin.ServiceParams{
		UserRepo:    userRepo,
		ShelterRepo: shelterRepo,
		BillingRepo: billingRepo,
	})
	requireService(logg, "admin", err)

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		BillingRepo:       billingRepo,
		ShelterRepo:       shelterRepo,
		TransactionRunner: dbConn,
		Logger:            logg,
	})
	requireService(logg, "webhooks", err)

	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, webhookIdempTTL, webhookIdempScope)
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook idempotency guard", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.Deps{
		Config:         cfg,
		Logger:         logg,
		Redis:          redisClient,
		DBPinger:       dbConn,
		Tokens:         tokens,
		AuthService:    authService,
		ShelterService: shelterService,
		DogService:     dogService,
		AttachService:  attachmentService,
		PaymentService: paymentService,
		AdminService:   adminService,
		StripeClient:   stripeClient,
		WebhookService: webhookService,
		WebhookGuard:   webhookGuard,
		WebhookMetrics: webhookMetrics,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithFields(ctx, map[string]any{"signal": sig.String()}), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+name+" service", err)
	os.Exit(1)
}
