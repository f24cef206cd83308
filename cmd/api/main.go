package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/library-service/internal/config"
	"github.com/Dan9191/library-service/internal/db"
	"github.com/Dan9191/library-service/internal/handler"
	"github.com/Dan9191/library-service/internal/repository"
	"github.com/Dan9191/library-service/internal/scheduler"
	"github.com/Dan9191/library-service/internal/service"
	"github.com/Dan9191/library-service/internal/utils"
	"github.com/Dan9191/library-service/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	logger.Infof("Configuration loaded: %v", cfg)

	// Initialize database
	conn, err := db.Open(cfg.DB.Driver, cfg.DB.Conn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	// Initialize layers
	repo := repository.NewRepository(conn, cfg.DB.Driver)
	hasher := utils.NewPasswordHasher(cfg.Auth.BcryptCost)
	tokens := utils.NewTokenManager(utils.TokenConfig{
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		Secret:   []byte(cfg.JWT.Secret),
		TTL:      time.Duration(cfg.JWT.ExpiresMinutes) * time.Minute,
	})
	authSvc := service.NewAuthService(repo, hasher, tokens, cfg.Auth, logger)
	bookSvc := service.NewBookService(repo, cfg.Paging, logger)

	if cfg.SeedData {
		if err := service.NewSeeder(repo, repo, hasher, logger).Seed(context.Background()); err != nil {
			logger.Fatalf("Failed to seed database: %v", err)
		}
	}

	sched, err := scheduler.NewScheduler(cfg.Report, bookSvc, email.NewSender(cfg.SMTP, logger), logger)
	if err != nil {
		logger.Fatalf("Failed to configure scheduler: %v", err)
	}
	sched.Start()

	h := handler.NewHandler(authSvc, bookSvc, repo, logger)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler.NewRouter(h, tokens, cfg.CORSAllowedOrigins, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Shutdown error: %v", err)
	}
	if err := sched.Stop(ctx); err != nil {
		logger.Errorf("Scheduler shutdown error: %v", err)
	}
	logger.Info("Server stopped")
}
