package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"dispatch/cmd"
	httpadapter "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/postgres/courierrepo"
	"dispatch/internal/adapters/out/postgres/deliveryrepo"
	"dispatch/internal/adapters/out/postgres/offerrepo"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	configs := getConfigs(logger)

	gormDB, err := openDatabase(configs)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	root, err := cmd.NewCompositionRoot(configs, gormDB, logger)
	if err != nil {
		logger.Error("Failed to build application", "error", err)
		os.Exit(1)
	}

	jobManager := root.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		logger.Error("Failed to start jobs", "error", err)
		os.Exit(1)
	}
	defer jobManager.StopAll()
	defer root.Scheduler().Shutdown()

	e := echo.New()
	server := httpadapter.NewServer(
		root.CreateCreateCourierCommandHandler(),
		root.CreateSetCourierAvailabilityCommandHandler(),
		root.CreateReportCourierLocationCommandHandler(),
		root.CreateCreateDeliveryCommandHandler(),
		root.CreateTryNextCourierCommandHandler(),
		root.CreateAcceptOfferCommandHandler(),
		root.CreateDeclineOfferCommandHandler(),
		root.CreateUpdateDeliveryStatusCommandHandler(),
		root.CreateCancelDeliveryCommandHandler(),
		root.CreateGetAllCouriersQueryHandler(),
		root.CreateGetActiveDeliveriesQueryHandler(),
		root.CreateGetCourierStatsQueryHandler(),
	)
	server.RegisterRoutes(e)

	go func() {
		if serveErr := e.Start("0.0.0.0:" + configs.HTTPPort); serveErr != nil {
			logger.Error("HTTP server stopped", "error", serveErr)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	if err = e.Shutdown(context.Background()); err != nil {
		logger.Error("HTTP shutdown failed", "error", err)
	}
}

func getConfigs(logger *slog.Logger) cmd.Config {
	if err := godotenv.Load(".env"); err != nil {
		logger.Warn("No .env file found, relying on environment")
	}

	return cmd.Config{
		HTTPPort:          os.Getenv("HTTP_PORT"),
		DBHost:            os.Getenv("DB_HOST"),
		DBPort:            os.Getenv("DB_PORT"),
		DBUser:            os.Getenv("DB_USER"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBName:            os.Getenv("DB_NAME"),
		DBSslMode:         os.Getenv("DB_SSLMODE"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		OfferTTLSeconds:   os.Getenv("OFFER_TTL_SECONDS"),
		SelectionStrategy: os.Getenv("SELECTION_STRATEGY"),
	}
}

func openDatabase(configs cmd.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser,
		configs.DBPassword, configs.DBName, configs.DBSslMode)

	gormDB, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err = gormDB.AutoMigrate(
		&courierrepo.CourierDTO{},
		&deliveryrepo.DeliveryDTO{},
		&offerrepo.OfferDTO{},
	); err != nil {
		return nil, err
	}

	return gormDB, nil
}
