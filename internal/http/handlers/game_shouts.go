package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wavebreaker/wavebreaker/internal/logger"
	apperrors "github.com/wavebreaker/wavebreaker/internal/pkg/errors"
	"github.com/wavebreaker/wavebreaker/internal/services"
	"github.com/wavebreaker/wavebreaker/internal/types"
)

type GameShoutHandler struct {
	log           *logger.Logger
	playerService services.PlayerService
	shoutService  services.ShoutService
}

func NewGameShoutHandler(log *logger.Logger, playerService services.PlayerService, shoutService services.ShoutService) *GameShoutHandler {
	return &GameShoutHandler{
		log:           log.With("handler", "GameShoutHandler"),
		playerService: playerService,
		shoutService:  shoutService,
	}
}

// POST /as_steamlogin/game_fetchshouts_unicode.php
func (h *GameShoutHandler) FetchShouts(c *gin.Context) {
	var req struct {
		SongID int32 `form:"songid"`
	}
	if err := c.ShouldBind(&req); err != nil {
		gameFail(c, http.StatusBadRequest)
		return
	}

	shouts, err := h.shoutService.ListBySong(c.Request.Context(), req.SongID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			gameFail(c, http.StatusNotFound)
			return
		}
		h.log.Error("Shout fetch failed", "song_id", req.SongID, "error", err)
		gameFail(c, http.StatusInternalServerError)
		return
	}

	c.String(http.StatusOK, renderShouts(shouts))
}

// POST /as_steamlogin/game_sendShoutSteamVerified.php
func (h *GameShoutHandler) SendShout(c *gin.Context) {
	var req struct {
		Ticket string `form:"ticket"`
		SongID int32  `form:"songid"`
		Shout  string `form:"shout"`
	}
	if err := c.ShouldBind(&req); err != nil {
		gameFail(c, http.StatusBadRequest)
		return
	}

	player, err := h.playerService.TicketAuth(c.Request.Context(), req.Ticket)
	if err != nil {
		gameFail(c, http.StatusUnauthorized)
		return
	}

	if _, err := h.shoutService.Post(c.Request.Context(), player.ID, req.SongID, req.Shout); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			gameFail(c, http.StatusNotFound)
		case errors.Is(err, apperrors.ErrInvalidArgument):
			gameFail(c, http.StatusBadRequest)
		default:
			h.log.Error("Shout post failed", "error", err)
			gameFail(c, http.StatusInternalServerError)
		}
		return
	}

	// The client replaces its shout pane with whatever comes back.
	shouts, err := h.shoutService.ListBySong(c.Request.Context(), req.SongID)
	if err != nil {
		h.log.Error("Shout refresh failed", "song_id", req.SongID, "error", err)
		gameFail(c, http.StatusInternalServerError)
		return
	}
	c.String(http.StatusOK, renderShouts(shouts))
}

// renderShouts produces the plain-text block the game displays as-is.
func renderShouts(shouts []types.Shout) string {
	var b strings.Builder
	for _, s := range shouts {
		username := ""
		if s.Player != nil {
			username = s.Player.Username
		}
		fmt.Fprintf(&b, "%s (at %s):\n%s\n", username, s.PostedAt.UTC().Format("2006-01-02 15:04"), s.Content)
	}
	return b.String()
}
