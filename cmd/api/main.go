package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/voltmart/storefront/internal/auth"
	"github.com/voltmart/storefront/internal/cart"
	"github.com/voltmart/storefront/internal/catalog"
	"github.com/voltmart/storefront/internal/checkout"
	"github.com/voltmart/storefront/internal/config"
	"github.com/voltmart/storefront/internal/feedback"
	"github.com/voltmart/storefront/internal/media"
	"github.com/voltmart/storefront/internal/messaging"
	"github.com/voltmart/storefront/internal/orders"
	"github.com/voltmart/storefront/internal/telemetry"
	"github.com/voltmart/storefront/internal/users"
)

const (
	serviceName    = "storefront-api"
	serviceVersion = "0.1.0"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, serviceName, serviceVersion)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(serviceName, serviceVersion)
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	if err := runtime.Start(); err != nil {
		logger.Error("failed to start runtime instrumentation", "error", err)
		os.Exit(1)
	}

	db, err := telemetry.OpenDB(cfg.PostgresURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	var producer *messaging.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = messaging.NewProducer(cfg.KafkaBrokers, messaging.TopicOrderCreated)
		defer func() { _ = producer.Close() }()
	}

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authMW := auth.NewMiddleware(issuer, logger)

	userRepo := users.NewUserRepository(db)
	productRepo := catalog.NewProductRepository(db)
	cartRepo := cart.NewCartRepository(db)
	orderRepo := orders.NewOrderRepository(db)
	checkoutRepo := checkout.NewCheckoutRepository(db)
	mediaRepo := media.NewMediaRepository(db)
	feedbackRepo := feedback.NewFeedbackRepository(db)

	userHandler := users.NewHandler(userRepo, issuer, logger)
	productHandler := catalog.NewHandler(productRepo, mediaRepo, logger)
	cartHandler := cart.NewHandler(cartRepo, productRepo, logger)
	orderHandler := orders.NewHandler(orderRepo, cfg.OrderStatusGuard, logger)
	feedbackHandler := feedback.NewHandler(feedbackRepo, productRepo, logger)

	var checkoutPublisher checkout.Publisher
	if producer != nil {
		checkoutPublisher = producer
	}
	checkoutHandler, err := checkout.NewHandler(checkoutRepo, userRepo, checkoutPublisher, logger)
	if err != nil {
		logger.Error("failed to create checkout handler", "error", err)
		os.Exit(1)
	}

	mediaHandler, err := media.NewHandler(mediaRepo, cfg.MediaDir, logger)
	if err != nil {
		logger.Error("failed to create media handler", "error", err)
		os.Exit(1)
	}

	public := telemetry.WithHTTPRoute
	authed := func(h http.HandlerFunc) http.Handler {
		return authMW.Authenticate(telemetry.WithHTTPRoute(h))
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return authMW.Authenticate(authMW.RequireAdmin(telemetry.WithHTTPRoute(h)))
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("GET /metrics", metricsHandler)

	mux.HandleFunc("POST /signup", public(userHandler.HandleSignup))
	mux.HandleFunc("POST /login", public(userHandler.HandleLogin))
	mux.Handle("GET /me", authed(userHandler.HandleMe))
	mux.Handle("PATCH /me", authed(userHandler.HandleUpdateMe))
	mux.Handle("GET /admin/users", admin(userHandler.HandleList))
	mux.Handle("DELETE /admin/users/{id}", admin(userHandler.HandleDelete))

	mux.HandleFunc("GET /products", public(productHandler.HandleList))
	mux.HandleFunc("GET /products/{id}", public(productHandler.HandleGet))
	mux.Handle("POST /products", admin(productHandler.HandleCreate))
	mux.Handle("PATCH /products/{id}", admin(productHandler.HandleUpdate))
	mux.Handle("DELETE /products/{id}", admin(productHandler.HandleDelete))

	mux.HandleFunc("GET /products/{id}/feedback", public(feedbackHandler.HandleListByProduct))
	mux.Handle("POST /products/{id}/feedback", authed(feedbackHandler.HandleCreate))

	mux.Handle("GET /cart", authed(cartHandler.HandleGet))
	mux.Handle("POST /cart/items", authed(cartHandler.HandleAdd))
	mux.Handle("POST /cart/items/{productId}/increment", authed(cartHandler.HandleIncrement))
	mux.Handle("POST /cart/items/{productId}/decrement", authed(cartHandler.HandleDecrement))
	mux.Handle("DELETE /cart/items/{productId}", authed(cartHandler.HandleRemove))

	mux.Handle("POST /checkout", authed(checkoutHandler.HandleCheckout))

	mux.Handle("GET /orders", authed(orderHandler.HandleListMine))
	mux.Handle("GET /orders/{id}", authed(orderHandler.HandleGet))
	mux.Handle("GET /admin/orders", admin(orderHandler.HandleListAll))
	mux.Handle("PATCH /admin/orders/{id}/status", admin(orderHandler.HandleUpdateStatus))

	mux.Handle("POST /media", admin(mediaHandler.HandleUpload))
	mux.Handle("GET /media/", mediaHandler.FileServer())

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: otelhttp.NewHandler(mux, serviceName,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting storefront api", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
