package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "github.com/wavebreaker/wavebreaker/internal/pkg/errors"
	"github.com/wavebreaker/wavebreaker/internal/logger"
	"github.com/wavebreaker/wavebreaker/internal/types"
)

type ExtraSongInfoRepo interface {
	Create(ctx context.Context, tx *gorm.DB, info *types.ExtraSongInfo) (*types.ExtraSongInfo, error)
	GetBySongID(ctx context.Context, tx *gorm.DB, songID int32) (*types.ExtraSongInfo, error)
	Update(ctx context.Context, tx *gorm.DB, info *types.ExtraSongInfo) error
}

type extraSongInfoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExtraSongInfoRepo(db *gorm.DB, baseLog *logger.Logger) ExtraSongInfoRepo {
	return &extraSongInfoRepo{db: db, log: baseLog.With("repo", "ExtraSongInfoRepo")}
}

func (er *extraSongInfoRepo) Create(ctx context.Context, tx *gorm.DB, info *types.ExtraSongInfo) (*types.ExtraSongInfo, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	if err := transaction.WithContext(ctx).Create(info).Error; err != nil {
		return nil, err
	}
	return info, nil
}

func (er *extraSongInfoRepo) GetBySongID(ctx context.Context, tx *gorm.DB, songID int32) (*types.ExtraSongInfo, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	var info types.ExtraSongInfo
	if err := transaction.WithContext(ctx).
		Where("song_id = ?", songID).
		First(&info).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &info, nil
}

func (er *extraSongInfoRepo) Update(ctx context.Context, tx *gorm.DB, info *types.ExtraSongInfo) error {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	return transaction.WithContext(ctx).Save(info).Error
}
