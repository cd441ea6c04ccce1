// main.go
package main

import (
	"context"
	"log"

	"labor-market/cmd"
	"labor-market/internal/data/repository"
	"labor-market/internal/usecase"
	"labor-market/internal/wire"
	"labor-market/internal/worker"
	"labor-market/pkg/database"
	"labor-market/pkg/gateway"
	"labor-market/pkg/lock"
	"labor-market/pkg/mq"
	"labor-market/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Payment lock, Redis when configured
	locker := lock.NewNoopLocker()
	rdb, err := database.InitRedis(config.Redis)
	switch {
	case err != nil:
		logger.Warn("Redis unavailable, payment lock disabled", zap.Error(err))
	case rdb != nil:
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, config.Redis.LockTTL)
		logger.Info("Redis connected successfully")
	}

	// Domain events, RabbitMQ when configured
	var events mq.Publisher
	if config.MQ.URL != "" {
		publisher, err := mq.NewPublisher(config.MQ.URL, config.MQ.Exchange)
		if err != nil {
			logger.Warn("RabbitMQ unavailable, events disabled", zap.Error(err))
		} else {
			defer publisher.Close()
			events = publisher
			logger.Info("RabbitMQ connected successfully", zap.String("exchange", config.MQ.Exchange))
		}
	}

	gw := gateway.NewClient(config.Gateway)
	if !config.Gateway.Configured() {
		logger.Warn("Payment gateway keys missing, checkout disabled")
	}

	charger := gateway.NewCardClient(config.Card)
	if !config.Card.Configured() {
		logger.Warn("Card gateway key missing, direct card payments disabled")
	}

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Wire all dependencies
	app := wire.Wiring(db, repos, config, usecase.Deps{
		Gateway: gw,
		Charger: charger,
		Locker:  locker,
		Events:  events,
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if config.Gateway.Configured() {
		go worker.NewReconciler(gw, repos, config.Reconcile, logger).Run(ctx)
	}

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	if err := cmd.APIServer(app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server error", zap.Error(err))
	}
}
