package repos

import (
	"context"
	"errors"
	"slices"

	"gorm.io/gorm"

	apperrors "github.com/wavebreaker/wavebreaker/internal/pkg/errors"
	"github.com/wavebreaker/wavebreaker/internal/logger"
	"github.com/wavebreaker/wavebreaker/internal/types"
)

type SongRepo interface {
	Create(ctx context.Context, tx *gorm.DB, song *types.Song) (*types.Song, error)
	GetByID(ctx context.Context, tx *gorm.DB, id int32) (*types.Song, error)
	// FindByIdentity matches on title, artist and the exact modifier
	// set; nil modifiers only match songs without modifiers.
	FindByIdentity(ctx context.Context, tx *gorm.DB, title, artist string, modifiers []string) (*types.Song, error)
	// FindByMBID matches a song through its MusicBrainz recording ID
	// plus the modifier set.
	FindByMBID(ctx context.Context, tx *gorm.DB, mbid string, modifiers []string) (*types.Song, error)
}

type songRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSongRepo(db *gorm.DB, baseLog *logger.Logger) SongRepo {
	return &songRepo{db: db, log: baseLog.With("repo", "SongRepo")}
}

func (sr *songRepo) Create(ctx context.Context, tx *gorm.DB, song *types.Song) (*types.Song, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if err := transaction.WithContext(ctx).Create(song).Error; err != nil {
		return nil, err
	}
	return song, nil
}

func (sr *songRepo) GetByID(ctx context.Context, tx *gorm.DB, id int32) (*types.Song, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var song types.Song
	if err := transaction.WithContext(ctx).
		Preload("ExtraInfo").
		First(&song, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &song, nil
}

func (sr *songRepo) FindByIdentity(ctx context.Context, tx *gorm.DB, title, artist string, modifiers []string) (*types.Song, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	// Modifier lists are stored as JSON, so equality is resolved here
	// after narrowing on the indexed columns. A (title, artist) pair
	// rarely has more than a couple of modifier variants.
	var candidates []types.Song
	if err := transaction.WithContext(ctx).
		Where("title = ? AND artist = ?", title, artist).
		Find(&candidates).Error; err != nil {
		return nil, err
	}
	for i := range candidates {
		if modifiersEqual(candidates[i].Modifiers, modifiers) {
			return &candidates[i], nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (sr *songRepo) FindByMBID(ctx context.Context, tx *gorm.DB, mbid string, modifiers []string) (*types.Song, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var candidates []types.Song
	if err := transaction.WithContext(ctx).
		Joins("JOIN extra_song_info ON extra_song_info.song_id = songs.id").
		Where("extra_song_info.mbid = ?", mbid).
		Preload("ExtraInfo").
		Find(&candidates).Error; err != nil {
		return nil, err
	}
	for i := range candidates {
		if modifiersEqual(candidates[i].Modifiers, modifiers) {
			return &candidates[i], nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func modifiersEqual(a, b []string) bool {
	return slices.Equal(a, b)
}
