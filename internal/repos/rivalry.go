package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "github.com/wavebreaker/wavebreaker/internal/pkg/errors"
	"github.com/wavebreaker/wavebreaker/internal/logger"
	"github.com/wavebreaker/wavebreaker/internal/types"
)

type RivalryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rivalry *types.Rivalry) (*types.Rivalry, error)
	Get(ctx context.Context, tx *gorm.DB, challengerID, rivalID int32) (*types.Rivalry, error)
	Delete(ctx context.Context, tx *gorm.DB, challengerID, rivalID int32) error
	ListByChallenger(ctx context.Context, tx *gorm.DB, challengerID int32) ([]types.Rivalry, error)
	// IsMutual reports whether the reverse edge exists too, which the
	// game treats as friendship.
	IsMutual(ctx context.Context, tx *gorm.DB, rivalry *types.Rivalry) (bool, error)
}

type rivalryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRivalryRepo(db *gorm.DB, baseLog *logger.Logger) RivalryRepo {
	return &rivalryRepo{db: db, log: baseLog.With("repo", "RivalryRepo")}
}

func (rr *rivalryRepo) Create(ctx context.Context, tx *gorm.DB, rivalry *types.Rivalry) (*types.Rivalry, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	if err := transaction.WithContext(ctx).Create(rivalry).Error; err != nil {
		return nil, err
	}
	return rivalry, nil
}

func (rr *rivalryRepo) Get(ctx context.Context, tx *gorm.DB, challengerID, rivalID int32) (*types.Rivalry, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	var rivalry types.Rivalry
	if err := transaction.WithContext(ctx).
		Where("challenger_id = ? AND rival_id = ?", challengerID, rivalID).
		First(&rivalry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &rivalry, nil
}

func (rr *rivalryRepo) Delete(ctx context.Context, tx *gorm.DB, challengerID, rivalID int32) error {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	res := transaction.WithContext(ctx).
		Where("challenger_id = ? AND rival_id = ?", challengerID, rivalID).
		Delete(&types.Rivalry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (rr *rivalryRepo) ListByChallenger(ctx context.Context, tx *gorm.DB, challengerID int32) ([]types.Rivalry, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	var rivalries []types.Rivalry
	if err := transaction.WithContext(ctx).
		Preload("Rival").
		Where("challenger_id = ?", challengerID).
		Order("established_at ASC").
		Find(&rivalries).Error; err != nil {
		return nil, err
	}
	return rivalries, nil
}

func (rr *rivalryRepo) IsMutual(ctx context.Context, tx *gorm.DB, rivalry *types.Rivalry) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Rivalry{}).
		Where("challenger_id = ? AND rival_id = ?", rivalry.RivalID, rivalry.ChallengerID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
