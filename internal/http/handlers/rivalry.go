package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wavebreaker/wavebreaker/internal/http/middleware"
	"github.com/wavebreaker/wavebreaker/internal/http/response"
	"github.com/wavebreaker/wavebreaker/internal/logger"
	"github.com/wavebreaker/wavebreaker/internal/services"
)

type RivalryHandler struct {
	log            *logger.Logger
	rivalryService services.RivalryService
}

func NewRivalryHandler(log *logger.Logger, rivalryService services.RivalryService) *RivalryHandler {
	return &RivalryHandler{log: log.With("handler", "RivalryHandler"), rivalryService: rivalryService}
}

// GET /api/rivals
func (h *RivalryHandler) List(c *gin.Context) {
	playerID, ok := middleware.PlayerID(c)
	if !ok {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	rivals, err := h.rivalryService.List(c.Request.Context(), playerID)
	if err != nil {
		response.RespondForError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"rivals": rivals})
}

// POST /api/rivals
// body: { "rival_id": n }
func (h *RivalryHandler) Add(c *gin.Context) {
	playerID, ok := middleware.PlayerID(c)
	if !ok {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req struct {
		RivalID int32 `json:"rival_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	rivalry, err := h.rivalryService.Add(c.Request.Context(), playerID, req.RivalID)
	if err != nil {
		response.RespondForError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"rivalry": rivalry})
}

// DELETE /api/rivals/:id
func (h *RivalryHandler) Remove(c *gin.Context) {
	playerID, ok := middleware.PlayerID(c)
	if !ok {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	rivalID, err := paramInt32(c, "id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	if err := h.rivalryService.Remove(c.Request.Context(), playerID, rivalID); err != nil {
		response.RespondForError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
