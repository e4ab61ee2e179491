package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wavebreaker/wavebreaker/internal/logger"
	"github.com/wavebreaker/wavebreaker/internal/services"
)

type GameAuthHandler struct {
	log           *logger.Logger
	playerService services.PlayerService
}

func NewGameAuthHandler(log *logger.Logger, playerService services.PlayerService) *GameAuthHandler {
	return &GameAuthHandler{log: log.With("handler", "GameAuthHandler"), playerService: playerService}
}

// POST /as_steamlogin/game_AttemptLoginSteamVerified.php
func (h *GameAuthHandler) Login(c *gin.Context) {
	var req struct {
		Ticket string `form:"ticket"`
	}
	if err := c.ShouldBind(&req); err != nil || req.Ticket == "" {
		gameFail(c, http.StatusBadRequest)
		return
	}

	player, err := h.playerService.TicketAuth(c.Request.Context(), req.Ticket)
	if err != nil {
		h.log.Warn("Game login rejected", "error", err)
		gameFail(c, http.StatusUnauthorized)
		return
	}

	c.XML(http.StatusOK, loginResponse{
		Status:     gameStatusOK,
		UserID:     player.ID,
		Username:   player.Username,
		LocationID: player.LocationID,
		SteamID:    player.SteamID64(),
	})
}
