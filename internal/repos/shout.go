package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/wavebreaker/wavebreaker/internal/logger"
	"github.com/wavebreaker/wavebreaker/internal/types"
)

// ShoutLimit caps how many shouts the game surface returns per song.
const ShoutLimit = 10

type ShoutRepo interface {
	Create(ctx context.Context, tx *gorm.DB, shout *types.Shout) (*types.Shout, error)
	ListBySong(ctx context.Context, tx *gorm.DB, songID int32, limit int) ([]types.Shout, error)
}

type shoutRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewShoutRepo(db *gorm.DB, baseLog *logger.Logger) ShoutRepo {
	return &shoutRepo{db: db, log: baseLog.With("repo", "ShoutRepo")}
}

func (sr *shoutRepo) Create(ctx context.Context, tx *gorm.DB, shout *types.Shout) (*types.Shout, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if err := transaction.WithContext(ctx).Create(shout).Error; err != nil {
		return nil, err
	}
	return shout, nil
}

func (sr *shoutRepo) ListBySong(ctx context.Context, tx *gorm.DB, songID int32, limit int) ([]types.Shout, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if limit <= 0 {
		limit = ShoutLimit
	}
	var shouts []types.Shout
	if err := transaction.WithContext(ctx).
		Preload("Player").
		Where("song_id = ?", songID).
		Order("posted_at DESC").
		Limit(limit).
		Find(&shouts).Error; err != nil {
		return nil, err
	}
	return shouts, nil
}
