package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wavebreaker/wavebreaker/internal/http/middleware"
	"github.com/wavebreaker/wavebreaker/internal/logger"
	"github.com/wavebreaker/wavebreaker/internal/sse"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *sse.Hub
}

func NewRealtimeHandler(log *logger.Logger, hub *sse.Hub) *RealtimeHandler {
	return &RealtimeHandler{log: log.With("handler", "RealtimeHandler"), hub: hub}
}

// GET /api/sse/stream
func (h *RealtimeHandler) Stream(c *gin.Context) {
	playerID, ok := middleware.PlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	client := h.hub.Subscribe(playerID)
	defer h.hub.Unsubscribe(client)
	h.log.Info("SSE stream open", "player_id", playerID, "client_id", client.ID)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, open := <-client.Outbound:
			if !open {
				return false
			}
			c.SSEvent(string(msg.Event), msg.Data)
			return true
		case <-client.Done():
			return false
		case <-c.Request.Context().Done():
			return false
		}
	})

	h.log.Info("SSE stream closed", "player_id", playerID, "client_id", client.ID)
}
