package types

import (
	"time"

	"gorm.io/datatypes"
)

type Song struct {
	ID     int32  `gorm:"primaryKey;autoIncrement" json:"id"`
	Title  string `gorm:"column:title;not null;index:idx_song_identity,priority:1" json:"title"`
	Artist string `gorm:"column:artist;not null;index:idx_song_identity,priority:2" json:"artist"`
	// Modifiers are the trailing [bracket] tags the game appends to the
	// title for ironmode and the like. Two songs that differ only in
	// modifiers are distinct songs with distinct leaderboards.
	Modifiers datatypes.JSONSlice[string] `gorm:"column:modifiers" json:"modifiers,omitempty"`
	CreatedAt time.Time                   `gorm:"not null" json:"created_at"`

	ExtraInfo *ExtraSongInfo `gorm:"foreignKey:SongID;references:ID" json:"extra_info,omitempty"`
}

func (Song) TableName() string { return "songs" }

// HasModifiers reports whether the song carries any modifier tags.
func (s Song) HasModifiers() bool { return len(s.Modifiers) > 0 }
