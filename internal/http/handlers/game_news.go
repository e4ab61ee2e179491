package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type GameNewsHandler struct {
	news string
}

func NewGameNewsHandler(news string) *GameNewsHandler {
	return &GameNewsHandler{news: news}
}

// POST /as_steamlogin/game_CustomNews.php
func (h *GameNewsHandler) CustomNews(c *gin.Context) {
	c.XML(http.StatusOK, newsResponse{Text: h.news})
}
