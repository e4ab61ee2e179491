package main

import (
	"context"
	"fmt"
	"os"

	"github.com/wavebreaker/wavebreaker/internal/clients/musicbrainz"
	redisclient "github.com/wavebreaker/wavebreaker/internal/clients/redis"
	"github.com/wavebreaker/wavebreaker/internal/clients/steam"
	"github.com/wavebreaker/wavebreaker/internal/config"
	"github.com/wavebreaker/wavebreaker/internal/db"
	wbhttp "github.com/wavebreaker/wavebreaker/internal/http"
	"github.com/wavebreaker/wavebreaker/internal/http/handlers"
	"github.com/wavebreaker/wavebreaker/internal/http/middleware"
	"github.com/wavebreaker/wavebreaker/internal/logger"
	"github.com/wavebreaker/wavebreaker/internal/observability"
	"github.com/wavebreaker/wavebreaker/internal/repos"
	"github.com/wavebreaker/wavebreaker/internal/services"
	"github.com/wavebreaker/wavebreaker/internal/sse"
	"github.com/wavebreaker/wavebreaker/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Config
	log.Info("Loading configuration from main...")
	cfg, err := config.Load(log)
	if err != nil {
		log.Fatal("Config load failed", "error", err)
	}

	// Tracing
	shutdownOTel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "wavebreaker",
		Environment: utils.GetEnv("ENVIRONMENT", "development", log),
		Version:     utils.GetEnv("SERVICE_VERSION", "dev", log),
	})
	if shutdownOTel != nil {
		defer func() { _ = shutdownOTel(context.Background()) }()
	}

	// Database
	dbService, err := db.NewDatabaseService(cfg.Database, log)
	if err != nil {
		log.Fatal("Database init failed", "error", err)
	}
	if err = dbService.AutoMigrateAll(); err != nil {
		log.Fatal("Database auto migration failed", "error", err)
	}
	theDB := dbService.DB()

	// Redis (optional: without it the leaderboard cache is skipped and
	// notifications stay instance-local)
	var (
		leaderboardCache redisclient.LeaderboardCache
		notifyBus        redisclient.NotifyBus
	)
	if cfg.Redis.Addr != "" {
		rdb, rErr := redisclient.NewClient(cfg.Redis.Addr)
		if rErr != nil {
			log.Warn("Redis unavailable, continuing without it", "addr", cfg.Redis.Addr, "error", rErr)
		} else {
			leaderboardCache = redisclient.NewLeaderboardCache(log, rdb)
			notifyBus, rErr = redisclient.NewNotifyBus(log, rdb, cfg.Redis.Channel)
			if rErr != nil {
				log.Warn("Notify bus init failed", "error", rErr)
			}
		}
	}

	// External clients
	steamClient := steam.NewClient(log, cfg.Steam.APIKey, cfg.Steam.AppID)
	var mbClient musicbrainz.Client
	if cfg.MusicBrainz.Enabled {
		mbClient = musicbrainz.NewClient(log, cfg.MusicBrainz.BaseURL, cfg.MusicBrainz.UserAgent)
	}

	// Repos
	log.Info("Setting up repos from main...")
	playerRepo := repos.NewPlayerRepo(theDB, log)
	songRepo := repos.NewSongRepo(theDB, log)
	extraSongInfoRepo := repos.NewExtraSongInfoRepo(theDB, log)
	scoreRepo := repos.NewScoreRepo(theDB, log)
	rivalryRepo := repos.NewRivalryRepo(theDB, log)
	shoutRepo := repos.NewShoutRepo(theDB, log)
	webTokenRepo := repos.NewWebTokenRepo(theDB, log)

	// SSE
	sseHub := sse.NewHub(log)

	// Services
	log.Info("Setting up services from main...")
	avatarService, err := services.NewAvatarService(log, cfg.Media.Dir)
	if err != nil {
		log.Fatal("Avatar service init failed", "error", err)
	}
	notifierService := services.NewNotifierService(log, notifyBus, sseHub)
	playerService := services.NewPlayerService(theDB, log, playerRepo, scoreRepo, steamClient, avatarService, cfg.Server.ExternalURL)
	songService := services.NewSongService(theDB, log, songRepo, extraSongInfoRepo, shoutRepo, mbClient, cfg.MusicBrainz.Enabled)
	scoreService := services.NewScoreService(theDB, log, scoreRepo, songRepo, playerRepo, rivalryRepo, leaderboardCache)
	rivalryService := services.NewRivalryService(theDB, log, rivalryRepo, playerRepo, notifierService)
	shoutService := services.NewShoutService(theDB, log, shoutRepo, songRepo)
	authService := services.NewAuthService(theDB, log, playerService, webTokenRepo, cfg.Auth.JWTSecretKey, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)

	// Forward cross-instance notifications into the local hub.
	if err := notifierService.StartForwarding(context.Background()); err != nil {
		log.Warn("Notification forwarding unavailable", "error", err)
	}

	// Handlers
	log.Info("Setting up handlers from main...")
	gameAuthHandler := handlers.NewGameAuthHandler(log, playerService)
	gameplayHandler := handlers.NewGameplayHandler(log, playerService, songService, scoreService, notifierService)
	gameShoutHandler := handlers.NewGameShoutHandler(log, playerService, shoutService)
	gameNewsHandler := handlers.NewGameNewsHandler(cfg.News)
	authHandler := handlers.NewAuthHandler(log, authService)
	playerHandler := handlers.NewPlayerHandler(log, playerService)
	songHandler := handlers.NewSongHandler(log, songService, shoutService)
	leaderboardHandler := handlers.NewLeaderboardHandler(log, scoreService)
	rivalryHandler := handlers.NewRivalryHandler(log, rivalryService)
	realtimeHandler := handlers.NewRealtimeHandler(log, sseHub)
	healthHandler := handlers.NewHealthHandler()

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Server
	log.Info("Setting up router from main...")
	server := wbhttp.NewServer(wbhttp.RouterConfig{
		Log:                log,
		GameAuthHandler:    gameAuthHandler,
		GameplayHandler:    gameplayHandler,
		GameShoutHandler:   gameShoutHandler,
		GameNewsHandler:    gameNewsHandler,
		AuthHandler:        authHandler,
		AuthMiddleware:     authMiddleware,
		PlayerHandler:      playerHandler,
		SongHandler:        songHandler,
		LeaderboardHandler: leaderboardHandler,
		RivalryHandler:     rivalryHandler,
		RealtimeHandler:    realtimeHandler,
		HealthHandler:      healthHandler,
		MediaDir:           cfg.Media.Dir,
	})

	log.Info("Server listening", "addr", cfg.Server.Listen)
	if err := server.Run(cfg.Server.Listen); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
