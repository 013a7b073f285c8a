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

	_ "github.com/lib/pq"

	"github.com/ladder-gg/ladder/config"
	"github.com/ladder-gg/ladder/db"
	"github.com/ladder-gg/ladder/handlers"
	"github.com/ladder-gg/ladder/leaderboard"
	"github.com/ladder-gg/ladder/realtime"
	"github.com/ladder-gg/ladder/repositories"
	api "github.com/ladder-gg/ladder/routes"
	"github.com/ladder-gg/ladder/services"
	"github.com/ladder-gg/ladder/storage"
)

const banSweepInterval = 60 * time.Second

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

	// Хранилище доказательств (Cloudflare R2). Опционально: без
	// конфигурации заявки принимаются без скриншотов.
	var uploader storage.FileUploader
	if cfg.R2AccountID != "" {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
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
	} else {
		logger.Warn("R2 storage not configured, evidence uploads disabled")
	}

	// WebSocket Hub
	hub := realtime.NewHub(logger)
	go hub.Run()
	logger.Info("WebSocket Hub started")

	// Справочник режимов и серверов
	catalog := config.DefaultCatalog()

	// Репозитории
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	lobbyRepo := repositories.NewPostgresLobbyRepository(dbConn)
	memberRepo := repositories.NewPostgresLobbyMemberRepository(dbConn)
	lobbyBanRepo := repositories.NewPostgresLobbyBanRepository(dbConn)
	messageRepo := repositories.NewPostgresLobbyMessageRepository(dbConn)
	inviteRepo := repositories.NewPostgresInviteRepository(dbConn)
	partyRepo := repositories.NewPostgresPartyRepository(dbConn)
	submissionRepo := repositories.NewPostgresSubmissionRepository(dbConn)
	banRepo := repositories.NewPostgresBanRepository(dbConn)
	actionRepo := repositories.NewPostgresAdminActionRepository(dbConn)
	logger.Info("repositories initialized")

	txManager := db.NewTxManager(dbConn)

	// Кеш лидерборда (Redis). Тоже опционален.
	var board *leaderboard.Leaderboard
	if cfg.RedisAddr != "" {
		client, err := leaderboard.Connect(cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.Error("failed to connect to Redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer client.Close()
		board = leaderboard.New(client, playerRepo, logger)
		if err := board.Warm(context.Background()); err != nil {
			logger.Warn("leaderboard warmup failed", slog.Any("error", err))
		}
		logger.Info("leaderboard cache connected", slog.String("addr", cfg.RedisAddr))
	} else {
		board = leaderboard.New(nil, playerRepo, logger)
		logger.Warn("Redis not configured, leaderboard served from Postgres only")
	}

	// Сервисы
	ratingService := services.NewRatingService(playerRepo, catalog.Rating)
	searchService := services.NewSearchService(playerRepo, catalog)
	partyService := services.NewPartyService(partyRepo, lobbyRepo, txManager, catalog)
	lobbyService := services.NewLobbyService(lobbyRepo, memberRepo, lobbyBanRepo, inviteRepo, messageRepo, playerRepo, txManager, catalog, hub)
	inviteService := services.NewInviteService(inviteRepo, lobbyRepo, memberRepo)
	adjudicationService := services.NewAdjudicationService(submissionRepo, lobbyRepo, memberRepo, actionRepo, ratingService, txManager, hub, board)
	moderationService := services.NewModerationService(playerRepo, banRepo, lobbyRepo, lobbyBanRepo, actionRepo, txManager, hub)
	logger.Info("services initialized")

	// Фоновый сброс истекших временных банов
	go func() {
		ticker := time.NewTicker(banSweepInterval)
		defer ticker.Stop()
		logger.Info("expired ban sweeper started", slog.Duration("interval", banSweepInterval))
		for range ticker.C {
			cleared, err := moderationService.SweepExpiredBans(context.Background())
			if err != nil {
				logger.Error("ban sweep failed", slog.Any("error", err))
				continue
			}
			if cleared > 0 {
				logger.Info("expired bans cleared", slog.Int64("count", cleared))
			}
		}
	}()

	// HTTP-обработчики и маршруты
	router := api.SetupRoutes(api.Deps{
		JWTSecret:   cfg.JWTSecretKey,
		Lobby:       handlers.NewLobbyHandler(lobbyService),
		Party:       handlers.NewPartyHandler(partyService),
		Search:      handlers.NewSearchHandler(searchService, catalog),
		Invite:      handlers.NewInviteHandler(inviteService),
		Submission:  handlers.NewSubmissionHandler(adjudicationService, uploader),
		Admin:       handlers.NewAdminHandler(moderationService),
		Leaderboard: handlers.NewLeaderboardHandler(board),
		Realtime:    handlers.NewRealtimeHandler(hub, lobbyService),
	})
	logger.Info("routes configured")

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
