package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/wavebreaker/wavebreaker/internal/logger"
	apperrors "github.com/wavebreaker/wavebreaker/internal/pkg/errors"
	"github.com/wavebreaker/wavebreaker/internal/repos"
	"github.com/wavebreaker/wavebreaker/internal/types"
)

// RivalEntry is a rivalry edge decorated with whether the rival has
// declared the challenger back.
type RivalEntry struct {
	Rivalry types.Rivalry `json:"rivalry"`
	Mutual  bool          `json:"mutual"`
}

type RivalryService interface {
	Add(ctx context.Context, challengerID, rivalID int32) (*types.Rivalry, error)
	Remove(ctx context.Context, challengerID, rivalID int32) error
	List(ctx context.Context, challengerID int32) ([]RivalEntry, error)
}

type rivalryService struct {
	db          *gorm.DB
	log         *logger.Logger
	rivalryRepo repos.RivalryRepo
	playerRepo  repos.PlayerRepo
	notifier    NotifierService
}

func NewRivalryService(
	db *gorm.DB,
	log *logger.Logger,
	rivalryRepo repos.RivalryRepo,
	playerRepo repos.PlayerRepo,
	notifier NotifierService,
) RivalryService {
	return &rivalryService{
		db:          db,
		log:         log.With("service", "RivalryService"),
		rivalryRepo: rivalryRepo,
		playerRepo:  playerRepo,
		notifier:    notifier,
	}
}

func (rs *rivalryService) Add(ctx context.Context, challengerID, rivalID int32) (*types.Rivalry, error) {
	if challengerID == rivalID {
		return nil, fmt.Errorf("%w: cannot rival yourself", apperrors.ErrInvalidArgument)
	}
	challenger, err := rs.playerRepo.GetByID(ctx, nil, challengerID)
	if err != nil {
		return nil, err
	}
	if _, err := rs.playerRepo.GetByID(ctx, nil, rivalID); err != nil {
		return nil, err
	}
	if _, err := rs.rivalryRepo.Get(ctx, nil, challengerID, rivalID); err == nil {
		return nil, fmt.Errorf("%w: rivalry already declared", apperrors.ErrConflict)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	rivalry, err := rs.rivalryRepo.Create(ctx, nil, &types.Rivalry{
		ChallengerID:  challengerID,
		RivalID:       rivalID,
		EstablishedAt: time.Now(),
	})
	if err != nil {
		if repos.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: rivalry already declared", apperrors.ErrConflict)
		}
		return nil, err
	}
	rs.log.Info("Rivalry declared", "challenger_id", challengerID, "rival_id", rivalID)

	if rs.notifier != nil {
		rs.notifier.NotifyRivalAdded(ctx, rivalID, challenger.Username)
	}
	return rivalry, nil
}

func (rs *rivalryService) Remove(ctx context.Context, challengerID, rivalID int32) error {
	return rs.rivalryRepo.Delete(ctx, nil, challengerID, rivalID)
}

func (rs *rivalryService) List(ctx context.Context, challengerID int32) ([]RivalEntry, error) {
	rivalries, err := rs.rivalryRepo.ListByChallenger(ctx, nil, challengerID)
	if err != nil {
		return nil, err
	}
	entries := make([]RivalEntry, 0, len(rivalries))
	for i := range rivalries {
		mutual, mErr := rs.rivalryRepo.IsMutual(ctx, nil, &rivalries[i])
		if mErr != nil {
			return nil, mErr
		}
		entries = append(entries, RivalEntry{Rivalry: rivalries[i], Mutual: mutual})
	}
	return entries, nil
}
