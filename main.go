package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cinema-ticketing/cmd"
	"cinema-ticketing/internal/data/repository"
	"cinema-ticketing/internal/event"
	"cinema-ticketing/internal/seed"
	"cinema-ticketing/internal/wire"
	"cinema-ticketing/pkg/database"
	"cinema-ticketing/pkg/utils"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const tokenCleanupInterval = time.Hour

func main() {
	envFile := pflag.String("env-file", ".env", "path to an env file with configuration")
	migrate := pflag.Bool("migrate", false, "apply the database schema before starting")
	seedData := pflag.Bool("seed", false, "insert demo users, halls, movies and sessions")
	pflag.Parse()

	config, err := utils.LoadConfig(*envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using production logger.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
		zap.Bool("strict_capacity", config.Booking.StrictCapacity),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(ctx, config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	if *migrate {
		if err := database.Migrate(ctx, db); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}
		logger.Info("Database schema applied")
	}

	repos := repository.NewRepository(db, logger)

	if *seedData {
		if err := seed.Run(ctx, repos, config.Auth.BcryptCost, logger); err != nil {
			logger.Fatal("Failed to seed database", zap.Error(err))
		}
	}

	deps := wire.Deps{DB: db, Publisher: event.NopPublisher{}}

	if config.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unreachable, rate limiting will fail open", zap.Error(err))
		}
		deps.Redis = rdb
	}

	if config.RabbitMQ.Enabled {
		publisher, err := event.NewAMQPPublisher(ctx, config.RabbitMQ.URL, config.RabbitMQ.Queue, logger)
		if err != nil {
			logger.Warn("RabbitMQ unavailable, purchase events disabled", zap.Error(err))
		} else {
			defer publisher.Close()
			deps.Publisher = publisher

			consumer := event.NewConsumer(config.RabbitMQ.URL, config.RabbitMQ.Queue,
				event.LogTicketPurchased(logger), logger)
			go consumer.Run(ctx)
		}
	}

	app := wire.Wiring(repos, deps, config, logger)

	go cmd.RunTokenCleanup(ctx, app.Service.Auth, tokenCleanupInterval, logger)

	if err := cmd.APIServer(ctx, app.Router, config.App.Port, config.App.ShutdownTimeout, logger); err != nil {
		logger.Error("Server stopped", zap.Error(err))
		return
	}
	logger.Info("Server stopped")
}
