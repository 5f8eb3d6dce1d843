package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v9"
	"yardwatch/internal/alert"
	"yardwatch/internal/client"
	"yardwatch/internal/configuration"
	"yardwatch/internal/database"
	"yardwatch/internal/inventory"
	"yardwatch/internal/logger"
	"yardwatch/internal/server"
)

func runApp() error {
	appContext := context.Background()
	logOutput := io.Writer(os.Stdout)
	appLogger := logger.NewLogger(logger.LevelError, logOutput)

	defer func() {
		if r := recover(); r != nil {
			appLogger.Errorf("APPLICATION CRASHED: %+v", r)
		}
	}()

	config, err := configuration.GetConfig("config.toml")
	if err != nil {
		appLogger.Error("Error getting configuration from config.toml:", err)
		return err
	}

	if config.LogToFile {
		logFile, err := os.OpenFile("yardwatch_backend.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			appLogger.Error("Error opening log file:", err)
			return err
		}
		defer func() {
			if err := logFile.Close(); err != nil {
				appLogger.Error("Error closing log file:", err)
			}
		}()
		logOutput = io.MultiWriter(logOutput, logFile)
	}
	appLogger = logger.NewLogger(config.LogLevel, logOutput)

	appLogger.Info("Connecting to DB at", config.DatabaseURI)
	dbConn, err := database.ConnectDB(appContext, config.DatabaseURI)
	if err != nil {
		appLogger.Error("Error connecting to DB:", err)
		return err
	}
	defer func() {
		if err := dbConn.Disconnect(appContext); err != nil {
			appLogger.Error("Error disconnecting from DB:", err)
		}
	}()
	db := database.Database{Database: dbConn.Database(database.Name)}

	vapid, err := db.VapidLoadOrCreate(appContext, client.GenerateVAPIDKeys)
	if err != nil {
		appLogger.Error("Error loading VAPID key pair:", err)
		return err
	}

	httpClient := client.Client{
		Client:      &http.Client{Timeout: 15 * time.Second},
		Redis:       redis.NewClient(&redis.Options{Addr: config.RedisAddress}),
		PushContact: config.PushContact,
		VapidPublic: vapid.PublicKey,
		VapidSecret: vapid.PrivateKey,
		Logger:      appLogger,
	}

	aggregator := inventory.Aggregator{
		Sources:  inventory.Sources(config.Yards, httpClient),
		PoolSize: inventory.DefaultPoolSize,
		Logger:   appLogger,
	}

	engine := alert.Engine{
		Store:        db,
		Searcher:     aggregator,
		Pusher:       httpClient,
		Logger:       appLogger,
		SweepTrigger: config.SweepSchedule,
	}

	srv := server.Server{
		Engine:         engine,
		Aggregator:     aggregator,
		VapidPublicKey: vapid.PublicKey,
		OwnerSalt:      config.OwnerSalt,
		Logger:         appLogger,
	}

	appLogger.Info("Starting daily sweep with schedule:", config.SweepSchedule, "UTC")
	go srv.SweepInSchedule(appContext, config.SweepSchedule)

	httpSrv := &http.Server{
		Handler:      srv.Router(),
		Addr:         config.ServerAddress,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	appLogger.Info("Serving on", httpSrv.Addr)
	return httpSrv.ListenAndServe()
}
