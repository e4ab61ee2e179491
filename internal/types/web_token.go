package types

import (
	"time"

	"github.com/google/uuid"
)

// WebToken is a refresh-token record for the web API. Only the bcrypt
// hash of the refresh token is stored; the plaintext goes to the
// client once.
type WebToken struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlayerID    int32     `gorm:"column:player_id;not null;index" json:"player_id"`
	RefreshHash string    `gorm:"column:refresh_hash;not null" json:"-"`
	ExpiresAt   time.Time `gorm:"column:expires_at;not null" json:"expires_at"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`

	Player *Player `gorm:"foreignKey:PlayerID;references:ID" json:"player,omitempty"`
}

func (WebToken) TableName() string { return "web_tokens" }
