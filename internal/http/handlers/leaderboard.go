package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wavebreaker/wavebreaker/internal/game"
	"github.com/wavebreaker/wavebreaker/internal/http/response"
	"github.com/wavebreaker/wavebreaker/internal/logger"
	apperrors "github.com/wavebreaker/wavebreaker/internal/pkg/errors"
	"github.com/wavebreaker/wavebreaker/internal/services"
)

type LeaderboardHandler struct {
	log          *logger.Logger
	scoreService services.ScoreService
}

func NewLeaderboardHandler(log *logger.Logger, scoreService services.ScoreService) *LeaderboardHandler {
	return &LeaderboardHandler{log: log.With("handler", "LeaderboardHandler"), scoreService: scoreService}
}

// GET /api/songs/:id/leaderboard?league=0
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	songID, err := paramInt32(c, "id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	leagueParam, err := strconv.ParseInt(c.DefaultQuery("league", "0"), 10, 16)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	league := game.League(leagueParam)
	if !league.Valid() {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", apperrors.ErrInvalidArgument)
		return
	}

	scores, err := h.scoreService.Leaderboard(c.Request.Context(), songID, league)
	if err != nil {
		response.RespondForError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"league": league.String(), "scores": scores})
}
