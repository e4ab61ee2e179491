package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/wavebreaker/wavebreaker/internal/http/handlers"
	httpMW "github.com/wavebreaker/wavebreaker/internal/http/middleware"
	"github.com/wavebreaker/wavebreaker/internal/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	GameAuthHandler  *httpH.GameAuthHandler
	GameplayHandler  *httpH.GameplayHandler
	GameShoutHandler *httpH.GameShoutHandler
	GameNewsHandler  *httpH.GameNewsHandler

	AuthHandler        *httpH.AuthHandler
	AuthMiddleware     *httpMW.AuthMiddleware
	PlayerHandler      *httpH.PlayerHandler
	SongHandler        *httpH.SongHandler
	LeaderboardHandler *httpH.LeaderboardHandler
	RivalryHandler     *httpH.RivalryHandler
	RealtimeHandler    *httpH.RealtimeHandler

	HealthHandler *httpH.HealthHandler

	// MediaDir, when set, is served under /media (avatars, covers).
	MediaDir string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("wavebreaker"))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	// Static media (fallback avatars, cached cover art)
	if cfg.MediaDir != "" {
		r.Static("/media", cfg.MediaDir)
	}

	// Game surface. The client authenticates every request with a
	// Steam ticket inside the form body, so there is no middleware.
	game := r.Group("/as_steamlogin")
	{
		if cfg.GameAuthHandler != nil {
			game.POST("/game_AttemptLoginSteamVerified.php", cfg.GameAuthHandler.Login)
		}
		if cfg.GameplayHandler != nil {
			game.POST("/game_fetchsongid_unicode.php", cfg.GameplayHandler.FetchSongID)
			game.POST("/game_SendRideSteamVerified.php", cfg.GameplayHandler.SendRide)
			game.POST("/game_GetRidesSteamVerified.php", cfg.GameplayHandler.GetRides)
		}
		if cfg.GameShoutHandler != nil {
			game.POST("/game_fetchshouts_unicode.php", cfg.GameShoutHandler.FetchShouts)
			game.POST("/game_sendShoutSteamVerified.php", cfg.GameShoutHandler.SendShout)
		}
		if cfg.GameNewsHandler != nil {
			game.POST("/game_CustomNews.php", cfg.GameNewsHandler.CustomNews)
		}
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/auth/steam", cfg.AuthHandler.LoginSteam)
			api.POST("/auth/refresh", cfg.AuthHandler.Refresh)
			api.POST("/auth/logout", cfg.AuthHandler.Logout)
		}

		// Public reads
		if cfg.PlayerHandler != nil {
			api.GET("/players/:id", cfg.PlayerHandler.GetPlayer)
			api.GET("/players/:id/scores", cfg.PlayerHandler.GetPlayerScores)
		}
		if cfg.SongHandler != nil {
			api.GET("/songs/:id", cfg.SongHandler.GetSong)
			api.GET("/songs/:id/shouts", cfg.SongHandler.GetShouts)
		}
		if cfg.LeaderboardHandler != nil {
			api.GET("/songs/:id/leaderboard", cfg.LeaderboardHandler.GetLeaderboard)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.PlayerHandler != nil {
			protected.GET("/me", cfg.PlayerHandler.GetMe)
		}
		if cfg.SongHandler != nil {
			protected.POST("/songs/:id/shouts", cfg.SongHandler.PostShout)
		}
		if cfg.RivalryHandler != nil {
			protected.GET("/rivals", cfg.RivalryHandler.List)
			protected.POST("/rivals", cfg.RivalryHandler.Add)
			protected.DELETE("/rivals/:id", cfg.RivalryHandler.Remove)
		}
		if cfg.RealtimeHandler != nil {
			protected.GET("/sse/stream", cfg.RealtimeHandler.Stream)
		}
	}

	return r
}
