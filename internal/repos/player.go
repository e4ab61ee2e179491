package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "github.com/wavebreaker/wavebreaker/internal/pkg/errors"
	"github.com/wavebreaker/wavebreaker/internal/logger"
	"github.com/wavebreaker/wavebreaker/internal/types"
)

type PlayerRepo interface {
	Create(ctx context.Context, tx *gorm.DB, player *types.Player) (*types.Player, error)
	GetByID(ctx context.Context, tx *gorm.DB, id int32) (*types.Player, error)
	GetBySteamID(ctx context.Context, tx *gorm.DB, steamID int64) (*types.Player, error)
	Update(ctx context.Context, tx *gorm.DB, player *types.Player) error
	GetRivals(ctx context.Context, tx *gorm.DB, challengerID int32) ([]*types.Player, error)
}

type playerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlayerRepo(db *gorm.DB, baseLog *logger.Logger) PlayerRepo {
	return &playerRepo{db: db, log: baseLog.With("repo", "PlayerRepo")}
}

func (pr *playerRepo) Create(ctx context.Context, tx *gorm.DB, player *types.Player) (*types.Player, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	if err := transaction.WithContext(ctx).Create(player).Error; err != nil {
		return nil, err
	}
	return player, nil
}

func (pr *playerRepo) GetByID(ctx context.Context, tx *gorm.DB, id int32) (*types.Player, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var player types.Player
	if err := transaction.WithContext(ctx).First(&player, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &player, nil
}

func (pr *playerRepo) GetBySteamID(ctx context.Context, tx *gorm.DB, steamID int64) (*types.Player, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var player types.Player
	if err := transaction.WithContext(ctx).
		Where("steam_id = ?", steamID).
		First(&player).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &player, nil
}

func (pr *playerRepo) Update(ctx context.Context, tx *gorm.DB, player *types.Player) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	return transaction.WithContext(ctx).Save(player).Error
}

func (pr *playerRepo) GetRivals(ctx context.Context, tx *gorm.DB, challengerID int32) ([]*types.Player, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var rivals []*types.Player
	if err := transaction.WithContext(ctx).
		Joins("JOIN rivalries ON rivalries.rival_id = players.id").
		Where("rivalries.challenger_id = ?", challengerID).
		Find(&rivals).Error; err != nil {
		return nil, err
	}
	return rivals, nil
}
