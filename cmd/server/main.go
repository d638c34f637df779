package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/javierturcios2607/Proyecto-Tifon/internal/config"
	"github.com/javierturcios2607/Proyecto-Tifon/internal/database"
	"github.com/javierturcios2607/Proyecto-Tifon/internal/handlers"
	"github.com/javierturcios2607/Proyecto-Tifon/internal/hotstore"
	"github.com/javierturcios2607/Proyecto-Tifon/internal/logger"
	"github.com/javierturcios2607/Proyecto-Tifon/internal/pipeline"
	"github.com/javierturcios2607/Proyecto-Tifon/internal/rabbitmq"
	"github.com/javierturcios2607/Proyecto-Tifon/internal/routes"
	"github.com/javierturcios2607/Proyecto-Tifon/internal/warehouse"
)

func main() {
	// .env is optional, real deployments set the environment directly
	_ = godotenv.Load()

	if err := logger.Init(os.Getenv("LOG_LEVEL")); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Cold path: the analytical warehouse
	db, err := database.Connect(&cfg.Database, logger.Logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, logger.Logger); err != nil {
			logger.Error("Error closing database", zap.Error(err))
		}
	}()

	if err := database.RunMigrations(&cfg.Database, logger.Logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Hot path: the low latency profile store
	hot, err := hotstore.New(&cfg.Redis, logger.Logger)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := hot.Close(); err != nil {
			logger.Error("Error closing Redis connection", zap.Error(err))
		}
	}()

	// Event ingress
	rmq := rabbitmq.NewConnection(&cfg.RabbitMQ, logger.Logger)
	if err := rmq.Connect(); err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer rmq.Close()

	router := pipeline.NewRouter(warehouse.NewStore(db, logger.Logger), hot, logger.Logger)

	pipe := pipeline.New(&cfg.Pipeline, rmq, router, logger.Logger)
	if err := pipe.Start(); err != nil {
		logger.Fatal("Failed to start pipeline", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		AppName:      "Ad Events Service",
		ServerHeader: "Fiber",
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	healthHandler := handlers.NewHealthHandler(db, hot, rmq)
	profileHandler := handlers.NewProfileHandler(hot, logger.Logger, cfg.Pipeline.LookupLimit)
	routes.SetupRoutes(app, healthHandler, profileHandler)

	go func() {
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		logger.Info("Server starting",
			zap.String("address", addr),
		)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		logger.Error("Error during server shutdown", zap.Error(err))
	}

	if err := pipe.Stop(); err != nil {
		logger.Error("Error stopping pipeline", zap.Error(err))
	}

	logger.Info("Server stopped")
}
