package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wavebreaker/wavebreaker/internal/http/response"
	"github.com/wavebreaker/wavebreaker/internal/logger"
	"github.com/wavebreaker/wavebreaker/internal/services"
)

type AuthHandler struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService) *AuthHandler {
	return &AuthHandler{log: log.With("handler", "AuthHandler"), authService: authService}
}

// POST /api/auth/steam
// body: { "ticket": "<hex steam auth ticket>" }
func (h *AuthHandler) LoginSteam(c *gin.Context) {
	var req struct {
		Ticket string `json:"ticket"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Ticket == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	player, tokens, err := h.authService.LoginWithTicket(c.Request.Context(), req.Ticket)
	if err != nil {
		response.RespondForError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"player": player, "tokens": tokens})
}

// POST /api/auth/refresh
// body: { "refresh_token": "..." }
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	tokens, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.RespondForError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"tokens": tokens})
}

// POST /api/auth/logout
// body: { "refresh_token": "..." }
func (h *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		response.RespondForError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
