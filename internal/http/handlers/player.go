package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wavebreaker/wavebreaker/internal/http/middleware"
	"github.com/wavebreaker/wavebreaker/internal/http/response"
	"github.com/wavebreaker/wavebreaker/internal/logger"
	"github.com/wavebreaker/wavebreaker/internal/services"
)

type PlayerHandler struct {
	log           *logger.Logger
	playerService services.PlayerService
}

func NewPlayerHandler(log *logger.Logger, playerService services.PlayerService) *PlayerHandler {
	return &PlayerHandler{log: log.With("handler", "PlayerHandler"), playerService: playerService}
}

// GET /api/me
func (h *PlayerHandler) GetMe(c *gin.Context) {
	playerID, ok := middleware.PlayerID(c)
	if !ok {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	player, err := h.playerService.GetByID(c.Request.Context(), playerID)
	if err != nil {
		response.RespondForError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"player": player})
}

// GET /api/players/:id
func (h *PlayerHandler) GetPlayer(c *gin.Context) {
	id, err := paramInt32(c, "id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	player, err := h.playerService.GetByID(c.Request.Context(), id)
	if err != nil {
		response.RespondForError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"player": player})
}

// GET /api/players/:id/scores
func (h *PlayerHandler) GetPlayerScores(c *gin.Context) {
	id, err := paramInt32(c, "id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	scores, err := h.playerService.GetScores(c.Request.Context(), id)
	if err != nil {
		response.RespondForError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"scores": scores})
}

func paramInt32(c *gin.Context, name string) (int32, error) {
	v, err := strconv.ParseInt(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}
