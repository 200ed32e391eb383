package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	docs "main/docs"
	appaccounts "main/internal/application/service/accounts"
	appexecution "main/internal/application/service/execution"
	"main/internal/config"
	"main/internal/domain/interfaces"
	"main/internal/infrastructure/events"
	"main/internal/infrastructure/gateway/mt5bridge"
	"main/internal/infrastructure/gateway/sim"
	"main/internal/infrastructure/registry"
	infrahttp "main/internal/interfaces/http"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	docs.SwaggerInfo.Host = cfg.HTTP.Addr()

	var gateway interfaces.TradingGateway
	switch cfg.Gateway.Driver {
	case config.DriverSim:
		gateway = sim.New()
	default:
		gateway = mt5bridge.New(cfg.Gateway.BridgeURL, cfg.Gateway.BridgeToken, cfg.Gateway.CallTimeout, logger)
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	connRegistry := registry.New(redisClient, logger)

	var publisher interfaces.ExecutionPublisher
	if cfg.AMQP.URL != "" {
		amqpPublisher, err := events.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, logger)
		if err != nil {
			logger.Fatalf("failed to init execution publisher: %v", err)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	}

	accountsService := appaccounts.NewService(gateway, connRegistry, logger, cfg.Gateway.CallTimeout)
	executionService := appexecution.NewService(gateway, publisher, logger, cfg.Gateway.CallTimeout)

	handler := infrahttp.NewHandler(accountsService, executionService, logger)

	server := &http.Server{
		Addr:    cfg.HTTP.Addr(),
		Handler: handler,
	}

	go func() {
		logger.Infof("HTTP server listening on %s (gateway driver %q)", cfg.HTTP.Addr(), cfg.Gateway.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown error: %v", err)
	}
	logger.Info("server stopped")
}
