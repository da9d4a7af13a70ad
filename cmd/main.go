package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Madiyar04/fantasy-league/config"
	"github.com/Madiyar04/fantasy-league/db"
	"github.com/Madiyar04/fantasy-league/handlers"
	"github.com/Madiyar04/fantasy-league/realtime"
	"github.com/Madiyar04/fantasy-league/repositories"
	api "github.com/Madiyar04/fantasy-league/routes"
	"github.com/Madiyar04/fantasy-league/services"
	"github.com/Madiyar04/fantasy-league/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

// Интервал очистки приглашений, оставшихся от удаленных лиг.
const inviteCleanupInterval = 1 * time.Hour

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Инициализация загрузчика файлов (Cloudflare R2)
	uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2Config{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	// WebSocket Hub для комнат лиг
	wsHub := realtime.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	driverRepo := repositories.NewPostgresDriverRepository(dbConn)
	constructorRepo := repositories.NewPostgresConstructorRepository(dbConn)
	rosterRepo := repositories.NewPostgresRosterRepository(dbConn)
	leagueRepo := repositories.NewPostgresLeagueRepository(dbConn)
	inviteRepo := repositories.NewPostgresInviteRepository(dbConn)
	standingRepo := repositories.NewPostgresStandingRepository(dbConn)
	logger.Info("repositories initialized")

	// Инициализация сервисов
	authService := services.NewAuthService(userRepo)
	userService := services.NewUserService(userRepo, uploader)
	teamService := services.NewTeamService(teamRepo, userRepo, rosterRepo, leagueRepo, standingRepo, uploader, logger)
	rosterService := services.NewRosterService(rosterRepo, teamRepo, driverRepo, constructorRepo, uploader)
	catalogService := services.NewCatalogService(driverRepo, constructorRepo, userRepo, uploader)
	leagueService := services.NewLeagueService(leagueRepo, teamRepo, userRepo, inviteRepo, standingRepo, wsHub, logger)
	inviteService := services.NewInviteService(inviteRepo, leagueRepo, teamRepo, userRepo, wsHub)
	emailService := services.NewEmailService(cfg)
	logger.Info("services initialized")

	// Фоновая очистка приглашений удаленных лиг
	go func() {
		ticker := time.NewTicker(inviteCleanupInterval)
		defer ticker.Stop()
		logger.Info("invite cleanup job started", slog.Duration("interval", inviteCleanupInterval))

		for range ticker.C {
			removed, err := inviteRepo.DeleteOrphaned(context.Background())
			if err != nil {
				logger.Error("invite cleanup failed", slog.Any("error", err))
				continue
			}
			if removed > 0 {
				logger.Info("orphaned invites removed", slog.Int64("count", removed))
			}
		}
	}()

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	userHandler := handlers.NewUserHandler(userService)
	teamHandler := handlers.NewTeamHandler(teamService)
	rosterHandler := handlers.NewRosterHandler(rosterService)
	leagueHandler := handlers.NewLeagueHandler(leagueService)
	inviteHandler := handlers.NewInviteHandler(inviteService, emailService, cfg.PublicURL)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		cfg.AllowedOrigins,
		authHandler,
		userHandler,
		teamHandler,
		rosterHandler,
		leagueHandler,
		inviteHandler,
		catalogHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
