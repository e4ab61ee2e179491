package types

import (
	"strconv"
	"time"
)

type Player struct {
	ID         int32     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username   string    `gorm:"column:username;not null" json:"username"`
	SteamID    int64     `gorm:"column:steam_id;not null;uniqueIndex" json:"-"`
	LocationID int32     `gorm:"column:location_id;not null;default:0;index" json:"location_id"`
	AvatarURL  string    `gorm:"column:avatar_url" json:"avatar_url"`
	JoinedAt   time.Time `gorm:"not null" json:"joined_at"`
}

func (Player) TableName() string { return "players" }

// SteamID64 is the printable form used in API payloads.
func (p Player) SteamID64() string {
	return strconv.FormatInt(p.SteamID, 10)
}
