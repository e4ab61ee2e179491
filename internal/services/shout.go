package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/wavebreaker/wavebreaker/internal/logger"
	apperrors "github.com/wavebreaker/wavebreaker/internal/pkg/errors"
	"github.com/wavebreaker/wavebreaker/internal/repos"
	"github.com/wavebreaker/wavebreaker/internal/types"
)

const maxShoutLength = 255

type ShoutService interface {
	Post(ctx context.Context, playerID, songID int32, content string) (*types.Shout, error)
	ListBySong(ctx context.Context, songID int32) ([]types.Shout, error)
}

type shoutService struct {
	db        *gorm.DB
	log       *logger.Logger
	shoutRepo repos.ShoutRepo
	songRepo  repos.SongRepo
}

func NewShoutService(db *gorm.DB, log *logger.Logger, shoutRepo repos.ShoutRepo, songRepo repos.SongRepo) ShoutService {
	return &shoutService{
		db:        db,
		log:       log.With("service", "ShoutService"),
		shoutRepo: shoutRepo,
		songRepo:  songRepo,
	}
}

func (ss *shoutService) Post(ctx context.Context, playerID, songID int32, content string) (*types.Shout, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: empty shout", apperrors.ErrInvalidArgument)
	}
	if len(content) > maxShoutLength {
		cut := maxShoutLength
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		content = content[:cut]
	}
	if _, err := ss.songRepo.GetByID(ctx, nil, songID); err != nil {
		return nil, err
	}

	shout, err := ss.shoutRepo.Create(ctx, nil, &types.Shout{
		PlayerID: playerID,
		SongID:   songID,
		Content:  content,
		PostedAt: time.Now(),
	})
	if err != nil {
		return nil, err
	}
	ss.log.Info("Shout posted", "player_id", playerID, "song_id", songID)
	return shout, nil
}

func (ss *shoutService) ListBySong(ctx context.Context, songID int32) ([]types.Shout, error) {
	if _, err := ss.songRepo.GetByID(ctx, nil, songID); err != nil {
		return nil, err
	}
	return ss.shoutRepo.ListBySong(ctx, nil, songID, repos.ShoutLimit)
}
