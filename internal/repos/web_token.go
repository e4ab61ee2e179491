package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/wavebreaker/wavebreaker/internal/pkg/errors"
	"github.com/wavebreaker/wavebreaker/internal/logger"
	"github.com/wavebreaker/wavebreaker/internal/types"
)

type WebTokenRepo interface {
	Create(ctx context.Context, tx *gorm.DB, token *types.WebToken) (*types.WebToken, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.WebToken, error)
	DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	DeleteByPlayerID(ctx context.Context, tx *gorm.DB, playerID int32) error
	DeleteExpired(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error)
}

type webTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWebTokenRepo(db *gorm.DB, baseLog *logger.Logger) WebTokenRepo {
	return &webTokenRepo{db: db, log: baseLog.With("repo", "WebTokenRepo")}
}

func (wr *webTokenRepo) Create(ctx context.Context, tx *gorm.DB, token *types.WebToken) (*types.WebToken, error) {
	transaction := tx
	if transaction == nil {
		transaction = wr.db
	}
	if err := transaction.WithContext(ctx).Create(token).Error; err != nil {
		return nil, err
	}
	return token, nil
}

func (wr *webTokenRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.WebToken, error) {
	transaction := tx
	if transaction == nil {
		transaction = wr.db
	}
	var token types.WebToken
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &token, nil
}

func (wr *webTokenRepo) DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = wr.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.WebToken{}).Error
}

func (wr *webTokenRepo) DeleteByPlayerID(ctx context.Context, tx *gorm.DB, playerID int32) error {
	transaction := tx
	if transaction == nil {
		transaction = wr.db
	}
	return transaction.WithContext(ctx).
		Where("player_id = ?", playerID).
		Delete(&types.WebToken{}).Error
}

func (wr *webTokenRepo) DeleteExpired(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = wr.db
	}
	res := transaction.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&types.WebToken{})
	return res.RowsAffected, res.Error
}
