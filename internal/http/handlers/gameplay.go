package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wavebreaker/wavebreaker/internal/game"
	"github.com/wavebreaker/wavebreaker/internal/logger"
	apperrors "github.com/wavebreaker/wavebreaker/internal/pkg/errors"
	"github.com/wavebreaker/wavebreaker/internal/services"
)

type GameplayHandler struct {
	log           *logger.Logger
	playerService services.PlayerService
	songService   services.SongService
	scoreService  services.ScoreService
	notifier      services.NotifierService
}

func NewGameplayHandler(
	log *logger.Logger,
	playerService services.PlayerService,
	songService services.SongService,
	scoreService services.ScoreService,
	notifier services.NotifierService,
) *GameplayHandler {
	return &GameplayHandler{
		log:           log.With("handler", "GameplayHandler"),
		playerService: playerService,
		songService:   songService,
		scoreService:  scoreService,
		notifier:      notifier,
	}
}

// POST /as_steamlogin/game_fetchsongid_unicode.php
func (h *GameplayHandler) FetchSongID(c *gin.Context) {
	var req struct {
		Artist      string `form:"artist"`
		Song        string `form:"song"`
		Ticket      string `form:"ticket"`
		MBID        string `form:"mbid"`
		ReleaseMBID string `form:"releasembid"`
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
	h.log.Info("Song ID request", "player_id", player.ID, "artist", req.Artist, "title", req.Song)

	song, err := h.songService.LookupOrRegister(c.Request.Context(), services.SongLookupRequest{
		Artist:      req.Artist,
		Title:       req.Song,
		MBID:        req.MBID,
		ReleaseMBID: req.ReleaseMBID,
	})
	if err != nil {
		h.log.Error("Song lookup failed", "error", err)
		gameFail(c, http.StatusInternalServerError)
		return
	}

	c.XML(http.StatusOK, songIDResponse{Status: gameStatusOK, SongID: song.ID})
}

// POST /as_steamlogin/game_SendRideSteamVerified.php
func (h *GameplayHandler) SendRide(c *gin.Context) {
	var req struct {
		Ticket        string         `form:"ticket"`
		SongID        int32          `form:"songid"`
		Score         int32          `form:"score"`
		Vehicle       game.Character `form:"vehicle"`
		League        game.League    `form:"league"`
		Feats         string         `form:"feats"`
		SongLength    int32          `form:"songlength"`
		TrackShape    string         `form:"trackshape"`
		Density       int32          `form:"density"`
		XStats        string         `form:"xstats"`
		GoldThreshold int32          `form:"goldthreshold"`
		ISS           int32          `form:"iss"`
		ISJ           int32          `form:"isj"`
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
	h.log.Info("Ride submit", "player_id", player.ID, "song_id", req.SongID, "score", req.Score, "league", req.League.String())

	score, beat, err := h.scoreService.SubmitRide(c.Request.Context(), player, services.RideSubmission{
		SongID:        req.SongID,
		Score:         req.Score,
		Vehicle:       req.Vehicle,
		League:        req.League,
		Feats:         req.Feats,
		SongLength:    req.SongLength,
		TrackShape:    req.TrackShape,
		XStats:        req.XStats,
		Density:       req.Density,
		GoldThreshold: req.GoldThreshold,
		ISS:           req.ISS,
		ISJ:           req.ISJ,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			gameFail(c, http.StatusNotFound)
		case errors.Is(err, apperrors.ErrInvalidArgument):
			gameFail(c, http.StatusBadRequest)
		default:
			h.log.Error("Ride submit failed", "error", err)
			gameFail(c, http.StatusInternalServerError)
		}
		return
	}

	// Song length arrives in centiseconds; MusicBrainz wants ms.
	if err := h.songService.AutoAddMetadata(c.Request.Context(), req.SongID, req.SongLength*10); err != nil {
		h.log.Warn("Metadata enrichment failed", "song_id", req.SongID, "error", err)
	}

	if beat.Dethroned && beat.DethronedPlayerID != 0 {
		h.notifyDethrone(c, player.Username, req.SongID, beat)
	}

	c.XML(http.StatusOK, sendRideResponse{
		Status: gameStatusOK,
		SongID: score.SongID,
		BeatScore: beatScoreXML{
			Dethroned:    beat.Dethroned,
			Friend:       beat.Friend,
			RivalName:    beat.RivalName,
			RivalScore:   beat.RivalScore,
			MyScore:      beat.MyScore,
			ReignSeconds: beat.ReignSeconds,
		},
	})
}

func (h *GameplayHandler) notifyDethrone(c *gin.Context, byUsername string, songID int32, beat *services.BeatScore) {
	song, err := h.songService.GetByID(c.Request.Context(), songID)
	if err != nil {
		h.log.Warn("Dethrone notify skipped, song load failed", "song_id", songID, "error", err)
		return
	}
	h.notifier.NotifyDethrone(c.Request.Context(), beat.DethronedPlayerID, services.DethroneNotification{
		SongID:       songID,
		SongTitle:    song.Title,
		SongArtist:   song.Artist,
		ByUsername:   byUsername,
		NewScore:     beat.MyScore,
		OldScore:     beat.RivalScore,
		ReignSeconds: beat.ReignSeconds,
	})
}

// POST /as_steamlogin/game_GetRidesSteamVerified.php
func (h *GameplayHandler) GetRides(c *gin.Context) {
	var req struct {
		SongID int32  `form:"songid"`
		Ticket string `form:"ticket"`
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
	h.log.Info("Rides request", "player_id", player.ID, "song_id", req.SongID)

	boards, err := h.scoreService.GetRides(c.Request.Context(), player, req.SongID)
	if err != nil {
		h.log.Error("Rides fetch failed", "error", err)
		gameFail(c, http.StatusInternalServerError)
		return
	}

	global := responseScore{ScoreType: game.LeaderboardGlobal}
	rival := responseScore{ScoreType: game.LeaderboardFriend}
	nearby := responseScore{ScoreType: game.LeaderboardNearby}
	for i, league := range game.AllLeagues {
		global.Leagues = append(global.Leagues, buildLeagueRides(league, boards.Global[i]))
		rival.Leagues = append(rival.Leagues, buildLeagueRides(league, boards.Rival[i]))
		nearby.Leagues = append(nearby.Leagues, buildLeagueRides(league, boards.Nearby[i]))
	}

	c.XML(http.StatusOK, getRidesResponse{
		Status:     gameStatusOK,
		Scores:     []responseScore{global, rival, nearby},
		ServerTime: gameServerTime,
	})
}
