package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"warbler/config"
	"warbler/database"
	"warbler/handlers"
	"warbler/logger"
	"warbler/repositories"
	"warbler/routes"
	"warbler/session"
)

func main() {
	cfg := config.Load()
	logger.InitLogger(cfg.LogLevel, cfg.LogFile)

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logrus.WithError(err).Fatal("Failed to migrate database")
	}

	userRepo := repositories.NewUserRepository(db.DB)
	messageRepo := repositories.NewMessageRepository(db.DB)
	sessions := session.NewManager([]byte(cfg.SecretKey), cfg.SessionMaxAge, cfg.IsProduction())

	base := handlers.NewBase(userRepo, messageRepo, sessions)
	router := routes.SetupRoutes(base, db)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logrus.WithFields(logrus.Fields{
			"port": cfg.Port,
			"env":  cfg.Environment,
		}).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Server failed")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Server forced to shutdown")
	}
	logrus.Info("Server exited")
}
