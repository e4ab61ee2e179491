package types

import (
	"time"
)

// Rivalry is a one-way edge: the challenger has declared the rival.
// When the reverse edge exists too, the pair counts as friends in the
// game's beatscore response.
type Rivalry struct {
	ChallengerID int32 `gorm:"column:challenger_id;primaryKey" json:"challenger_id"`
	RivalID      int32 `gorm:"column:rival_id;primaryKey" json:"rival_id"`

	EstablishedAt time.Time `gorm:"column:established_at;not null" json:"established_at"`

	Challenger *Player `gorm:"foreignKey:ChallengerID;references:ID" json:"challenger,omitempty"`
	Rival      *Player `gorm:"foreignKey:RivalID;references:ID" json:"rival,omitempty"`
}

func (Rivalry) TableName() string { return "rivalries" }
