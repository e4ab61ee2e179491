package handlers

import (
	"encoding/xml"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wavebreaker/wavebreaker/internal/game"
	"github.com/wavebreaker/wavebreaker/internal/types"
)

// The game client consumes these exact element and attribute names.

const (
	gameStatusOK     = "allgood"
	gameStatusFailed = "failed"

	// The client ignores the value but wants the element present. 143
	// is what it has always been served.
	gameServerTime = 143
)

type gameFailureResponse struct {
	XMLName xml.Name `xml:"RESULT"`
	Status  string   `xml:"status,attr"`
}

func gameFail(c *gin.Context, status int) {
	c.XML(status, gameFailureResponse{Status: gameStatusFailed})
}

type loginResponse struct {
	XMLName    xml.Name `xml:"RESULT"`
	Status     string   `xml:"status,attr"`
	UserID     int32    `xml:"userid"`
	Username   string   `xml:"username"`
	LocationID int32    `xml:"locationid"`
	SteamID    string   `xml:"steamid"`
}

type songIDResponse struct {
	XMLName xml.Name `xml:"RESULT"`
	Status  string   `xml:"status,attr"`
	SongID  int32    `xml:"songid"`
}

type sendRideResponse struct {
	XMLName   xml.Name     `xml:"RESULT"`
	Status    string       `xml:"status,attr"`
	SongID    int32        `xml:"songid"`
	BeatScore beatScoreXML `xml:"beatscore"`
}

type beatScoreXML struct {
	Dethroned    bool   `xml:"dethroned,attr"`
	Friend       bool   `xml:"friend,attr"`
	RivalName    string `xml:"rivalname"`
	RivalScore   int32  `xml:"rivalscore"`
	MyScore      int32  `xml:"myscore"`
	ReignSeconds int64  `xml:"reignseconds"`
}

type getRidesResponse struct {
	XMLName    xml.Name        `xml:"RESULTS"`
	Status     string          `xml:"status,attr"`
	Scores     []responseScore `xml:"scores"`
	ServerTime uint64          `xml:"servertime"`
}

type responseScore struct {
	ScoreType game.Leaderboard `xml:"scoretype,attr"`
	Leagues   []leagueRides    `xml:"league"`
}

type leagueRides struct {
	LeagueID game.League `xml:"leagueid,attr"`
	Rides    []ride      `xml:"ride"`
}

type ride struct {
	Username string `xml:"username"`
	Score    int32  `xml:"score"`
	// VehicleID is the character the score was ridden with.
	VehicleID game.Character `xml:"vehicleid"`
	RideTime  int64          `xml:"ridetime"`
	Feats     string         `xml:"feats"`
	// SongLength is in centiseconds.
	SongLength int32 `xml:"songlength"`
	// TrafficCount doubles as the server-side score ID.
	TrafficCount int32 `xml:"trafficcount"`
}

type newsResponse struct {
	XMLName xml.Name `xml:"RESULTS"`
	Text    string   `xml:"TEXT"`
}

func buildLeagueRides(league game.League, scores []types.Score) leagueRides {
	lr := leagueRides{LeagueID: league, Rides: []ride{}}
	for _, s := range scores {
		username := ""
		if s.Player != nil {
			username = s.Player.Username
		}
		lr.Rides = append(lr.Rides, ride{
			Username:     username,
			Score:        s.Score,
			VehicleID:    s.Vehicle,
			RideTime:     s.SubmittedAt.Unix(),
			Feats:        strings.Join(s.Feats, ", "),
			SongLength:   s.SongLength,
			TrafficCount: s.ID,
		})
	}
	return lr
}
