package types

import (
	"time"

	"gorm.io/datatypes"

	"github.com/wavebreaker/wavebreaker/internal/game"
)

type Score struct {
	ID       int32       `gorm:"primaryKey;autoIncrement" json:"id"`
	PlayerID int32       `gorm:"column:player_id;not null;index:idx_score_identity,unique,priority:1" json:"player_id"`
	SongID   int32       `gorm:"column:song_id;not null;index:idx_score_identity,unique,priority:2" json:"song_id"`
	League   game.League `gorm:"column:league;not null;index:idx_score_identity,unique,priority:3" json:"league"`

	Score     int32 `gorm:"column:score;not null;index" json:"score"`
	PlayCount int32 `gorm:"column:play_count;not null;default:1" json:"play_count"`

	Vehicle    game.Character              `gorm:"column:vehicle;not null" json:"vehicle"`
	Feats      datatypes.JSONSlice[string] `gorm:"column:feats" json:"feats"`
	TrackShape datatypes.JSONSlice[int32]  `gorm:"column:track_shape" json:"track_shape"`
	XStats     datatypes.JSONSlice[int32]  `gorm:"column:xstats" json:"xstats"`
	Density    int32                       `gorm:"column:density;not null" json:"density"`
	// SongLength is in centiseconds, as sent by the game.
	SongLength    int32 `gorm:"column:song_length;not null" json:"song_length"`
	GoldThreshold int32 `gorm:"column:gold_threshold;not null" json:"gold_threshold"`
	ISS           int32 `gorm:"column:iss;not null" json:"iss"`
	ISJ           int32 `gorm:"column:isj;not null" json:"isj"`

	SubmittedAt time.Time `gorm:"column:submitted_at;not null" json:"submitted_at"`

	Player *Player `gorm:"foreignKey:PlayerID;references:ID" json:"player,omitempty"`
	Song   *Song   `gorm:"foreignKey:SongID;references:ID" json:"song,omitempty"`
}

func (Score) TableName() string { return "scores" }

// ScoreWithPlayer pairs a score row with its owning player for
// leaderboard responses.
type ScoreWithPlayer struct {
	Score  Score  `json:"score"`
	Player Player `json:"player"`
}
