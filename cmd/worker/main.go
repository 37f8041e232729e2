package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/voltmart/storefront/internal/messaging"
	"github.com/voltmart/storefront/internal/notifier"
	"github.com/voltmart/storefront/internal/telemetry"
)

const (
	serviceName    = "storefront-worker"
	serviceVersion = "0.1.0"
	consumerGroup  = "order-notifications"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	kafkaBrokers := os.Getenv("KAFKA_BROKERS")
	if kafkaBrokers == "" {
		logger.Error("KAFKA_BROKERS environment variable is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, serviceName, serviceVersion)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	var sender notifier.Sender
	if apiKey := os.Getenv("SENDGRID_API_KEY"); apiKey != "" {
		from := os.Getenv("EMAIL_FROM")
		if from == "" {
			from = "orders@voltmart.example"
		}
		sender = notifier.NewSendGridSender(apiKey, from)
		logger.Info("using sendgrid sender", "from", from)
	} else {
		sender = notifier.NewLogSender(logger)
		logger.Info("SENDGRID_API_KEY not set, using log-only sender")
	}

	brokers := strings.Split(kafkaBrokers, ",")
	consumer := messaging.NewConsumer(brokers, messaging.TopicOrderCreated, consumerGroup)
	defer func() { _ = consumer.Close() }()

	handler := notifier.NewOrderHandler(sender, logger)

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	logger.Info("starting notification worker", "brokers", brokers)

	if err := consumer.Consume(ctx, handler.Handle); err != nil {
		if ctx.Err() == context.Canceled {
			logger.Info("consumer stopped")
			return
		}
		logger.Error("consumer error", "error", err)
		os.Exit(1)
	}
}
