package types

import (
	"time"

	"gorm.io/datatypes"
)

// ExtraSongInfo holds MusicBrainz enrichment for a song. At most one
// row per song; rows are created lazily when a client supplies an MBID
// or when metadata search succeeds after a ride submit.
type ExtraSongInfo struct {
	ID     int32 `gorm:"primaryKey;autoIncrement" json:"id"`
	SongID int32 `gorm:"column:song_id;not null;uniqueIndex" json:"song_id"`

	MBID        *string `gorm:"column:mbid;uniqueIndex" json:"mbid,omitempty"`
	ReleaseMBID *string `gorm:"column:release_mbid" json:"release_mbid,omitempty"`

	MusicBrainzTitle  *string `gorm:"column:musicbrainz_title" json:"musicbrainz_title,omitempty"`
	MusicBrainzArtist *string `gorm:"column:musicbrainz_artist" json:"musicbrainz_artist,omitempty"`
	MusicBrainzLength *int32  `gorm:"column:musicbrainz_length" json:"musicbrainz_length,omitempty"`

	CoverURL      *string `gorm:"column:cover_url" json:"cover_url,omitempty"`
	SmallCoverURL *string `gorm:"column:small_cover_url" json:"small_cover_url,omitempty"`

	// MistagLock pins the metadata so automatic enrichment never
	// overwrites a manual correction.
	MistagLock bool `gorm:"column:mistag_lock;not null;default:false" json:"mistag_lock"`

	AliasesTitle  datatypes.JSONSlice[string] `gorm:"column:aliases_title" json:"aliases_title,omitempty"`
	AliasesArtist datatypes.JSONSlice[string] `gorm:"column:aliases_artist" json:"aliases_artist,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ExtraSongInfo) TableName() string { return "extra_song_info" }
