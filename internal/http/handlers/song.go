package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wavebreaker/wavebreaker/internal/http/middleware"
	"github.com/wavebreaker/wavebreaker/internal/http/response"
	"github.com/wavebreaker/wavebreaker/internal/logger"
	"github.com/wavebreaker/wavebreaker/internal/services"
)

type SongHandler struct {
	log          *logger.Logger
	songService  services.SongService
	shoutService services.ShoutService
}

func NewSongHandler(log *logger.Logger, songService services.SongService, shoutService services.ShoutService) *SongHandler {
	return &SongHandler{
		log:          log.With("handler", "SongHandler"),
		songService:  songService,
		shoutService: shoutService,
	}
}

// GET /api/songs/:id
func (h *SongHandler) GetSong(c *gin.Context) {
	id, err := paramInt32(c, "id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	song, err := h.songService.GetByID(c.Request.Context(), id)
	if err != nil {
		response.RespondForError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"song": song})
}

// GET /api/songs/:id/shouts
func (h *SongHandler) GetShouts(c *gin.Context) {
	id, err := paramInt32(c, "id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	shouts, err := h.shoutService.ListBySong(c.Request.Context(), id)
	if err != nil {
		response.RespondForError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"shouts": shouts})
}

// POST /api/songs/:id/shouts
// body: { "content": "..." }
func (h *SongHandler) PostShout(c *gin.Context) {
	playerID, ok := middleware.PlayerID(c)
	if !ok {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	id, err := paramInt32(c, "id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	shout, err := h.shoutService.Post(c.Request.Context(), playerID, id, req.Content)
	if err != nil {
		response.RespondForError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"shout": shout})
}
