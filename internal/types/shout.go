package types

import (
	"time"
)

type Shout struct {
	ID       int32  `gorm:"primaryKey;autoIncrement" json:"id"`
	PlayerID int32  `gorm:"column:player_id;not null;index" json:"player_id"`
	SongID   int32  `gorm:"column:song_id;not null;index" json:"song_id"`
	Content  string `gorm:"column:content;not null" json:"content"`

	PostedAt time.Time `gorm:"column:posted_at;not null" json:"posted_at"`

	Player *Player `gorm:"foreignKey:PlayerID;references:ID" json:"player,omitempty"`
	Song   *Song   `gorm:"foreignKey:SongID;references:ID" json:"song,omitempty"`
}

func (Shout) TableName() string { return "shouts" }
