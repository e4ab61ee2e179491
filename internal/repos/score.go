package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/wavebreaker/wavebreaker/internal/game"
	apperrors "github.com/wavebreaker/wavebreaker/internal/pkg/errors"
	"github.com/wavebreaker/wavebreaker/internal/logger"
	"github.com/wavebreaker/wavebreaker/internal/types"
)

// LeaderboardLimit is how many rides the game shows per scoretype and
// league block.
const LeaderboardLimit = 11

type ScoreRepo interface {
	Create(ctx context.Context, tx *gorm.DB, score *types.Score) (*types.Score, error)
	Update(ctx context.Context, tx *gorm.DB, score *types.Score) error
	// GetForPlayer returns the player's existing score on a
	// (song, league), if any.
	GetForPlayer(ctx context.Context, tx *gorm.DB, playerID, songID int32, league game.League) (*types.Score, error)
	// GetTopExcluding returns the highest score on (song, league) that
	// was not submitted by the given player, with its player preloaded.
	GetTopExcluding(ctx context.Context, tx *gorm.DB, songID int32, league game.League, excludePlayerID int32) (*types.Score, error)
	GetGlobal(ctx context.Context, tx *gorm.DB, songID int32, league game.League) ([]types.Score, error)
	GetRivals(ctx context.Context, tx *gorm.DB, songID int32, league game.League, playerIDs []int32) ([]types.Score, error)
	GetNearby(ctx context.Context, tx *gorm.DB, songID int32, league game.League, locationID int32) ([]types.Score, error)
	ListByPlayer(ctx context.Context, tx *gorm.DB, playerID int32) ([]types.Score, error)
}

type scoreRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScoreRepo(db *gorm.DB, baseLog *logger.Logger) ScoreRepo {
	return &scoreRepo{db: db, log: baseLog.With("repo", "ScoreRepo")}
}

func (sr *scoreRepo) Create(ctx context.Context, tx *gorm.DB, score *types.Score) (*types.Score, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if err := transaction.WithContext(ctx).Create(score).Error; err != nil {
		return nil, err
	}
	return score, nil
}

func (sr *scoreRepo) Update(ctx context.Context, tx *gorm.DB, score *types.Score) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	return transaction.WithContext(ctx).Save(score).Error
}

func (sr *scoreRepo) GetForPlayer(ctx context.Context, tx *gorm.DB, playerID, songID int32, league game.League) (*types.Score, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var score types.Score
	if err := transaction.WithContext(ctx).
		Where("player_id = ? AND song_id = ? AND league = ?", playerID, songID, league).
		First(&score).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &score, nil
}

func (sr *scoreRepo) GetTopExcluding(ctx context.Context, tx *gorm.DB, songID int32, league game.League, excludePlayerID int32) (*types.Score, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var score types.Score
	if err := transaction.WithContext(ctx).
		Preload("Player").
		Where("song_id = ? AND league = ? AND player_id <> ?", songID, league, excludePlayerID).
		Order("score DESC").
		First(&score).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &score, nil
}

func (sr *scoreRepo) GetGlobal(ctx context.Context, tx *gorm.DB, songID int32, league game.League) ([]types.Score, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var scores []types.Score
	if err := transaction.WithContext(ctx).
		Preload("Player").
		Where("song_id = ? AND league = ?", songID, league).
		Order("score DESC").
		Limit(LeaderboardLimit).
		Find(&scores).Error; err != nil {
		return nil, err
	}
	return scores, nil
}

func (sr *scoreRepo) GetRivals(ctx context.Context, tx *gorm.DB, songID int32, league game.League, playerIDs []int32) ([]types.Score, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var scores []types.Score
	if len(playerIDs) == 0 {
		return scores, nil
	}
	if err := transaction.WithContext(ctx).
		Preload("Player").
		Where("song_id = ? AND league = ? AND player_id IN ?", songID, league, playerIDs).
		Order("score DESC").
		Limit(LeaderboardLimit).
		Find(&scores).Error; err != nil {
		return nil, err
	}
	return scores, nil
}

func (sr *scoreRepo) GetNearby(ctx context.Context, tx *gorm.DB, songID int32, league game.League, locationID int32) ([]types.Score, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var scores []types.Score
	if err := transaction.WithContext(ctx).
		Preload("Player").
		Joins("JOIN players ON players.id = scores.player_id").
		Where("scores.song_id = ? AND scores.league = ? AND players.location_id = ?", songID, league, locationID).
		Order("scores.score DESC").
		Limit(LeaderboardLimit).
		Find(&scores).Error; err != nil {
		return nil, err
	}
	return scores, nil
}

func (sr *scoreRepo) ListByPlayer(ctx context.Context, tx *gorm.DB, playerID int32) ([]types.Score, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var scores []types.Score
	if err := transaction.WithContext(ctx).
		Preload("Song").
		Where("player_id = ?", playerID).
		Order("submitted_at DESC").
		Find(&scores).Error; err != nil {
		return nil, err
	}
	return scores, nil
}
