package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/wavebreaker/wavebreaker/internal/clients/steam"
	"github.com/wavebreaker/wavebreaker/internal/logger"
	apperrors "github.com/wavebreaker/wavebreaker/internal/pkg/errors"
	"github.com/wavebreaker/wavebreaker/internal/repos"
	"github.com/wavebreaker/wavebreaker/internal/types"
)

// PlayerService owns player identity: exchanging game auth tickets for
// player rows, creating players on first contact, and profile reads.
type PlayerService interface {
	// TicketAuth verifies a Steam auth ticket and returns the matching
	// player, creating one on first login.
	TicketAuth(ctx context.Context, ticket string) (*types.Player, error)
	GetByID(ctx context.Context, id int32) (*types.Player, error)
	GetScores(ctx context.Context, playerID int32) ([]types.Score, error)
}

type playerService struct {
	db            *gorm.DB
	log           *logger.Logger
	playerRepo    repos.PlayerRepo
	scoreRepo     repos.ScoreRepo
	steamClient   steam.Client
	avatarService AvatarService
	mediaBaseURL  string
}

func NewPlayerService(
	db *gorm.DB,
	log *logger.Logger,
	playerRepo repos.PlayerRepo,
	scoreRepo repos.ScoreRepo,
	steamClient steam.Client,
	avatarService AvatarService,
	mediaBaseURL string,
) PlayerService {
	return &playerService{
		db:            db,
		log:           log.With("service", "PlayerService"),
		playerRepo:    playerRepo,
		scoreRepo:     scoreRepo,
		steamClient:   steamClient,
		avatarService: avatarService,
		mediaBaseURL:  mediaBaseURL,
	}
}

func (ps *playerService) TicketAuth(ctx context.Context, ticket string) (*types.Player, error) {
	steamID, err := ps.steamClient.AuthenticateTicket(ctx, ticket)
	if err != nil {
		ps.log.Warn("Ticket auth failed", "error", err)
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnauthorized, err)
	}
	return ps.findOrCreateBySteamID(ctx, steamID)
}

func (ps *playerService) findOrCreateBySteamID(ctx context.Context, steamID int64) (*types.Player, error) {
	player, err := ps.playerRepo.GetBySteamID(ctx, nil, steamID)
	if err == nil {
		return player, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	newPlayer := &types.Player{
		SteamID:  steamID,
		Username: "Player " + strconv.FormatInt(steamID%100000, 10),
	}

	// Best effort: Steam knows the persona name and avatar. Failure
	// here must not block a first login.
	if summary, sumErr := ps.steamClient.GetPlayerSummary(ctx, steamID); sumErr == nil {
		if summary.PersonaName != "" {
			newPlayer.Username = summary.PersonaName
		}
		newPlayer.AvatarURL = summary.AvatarFull
	} else {
		ps.log.Warn("Player summary fetch failed on first login", "steam_id", steamID, "error", sumErr)
	}

	if newPlayer.AvatarURL == "" && ps.avatarService != nil {
		// Reserve the row first so the avatar file can be named after
		// the player ID.
		created, cErr := ps.create(ctx, newPlayer, steamID)
		if cErr != nil {
			return nil, cErr
		}
		if rel, aErr := ps.avatarService.GenerateFallbackAvatar(created.Username, created.ID); aErr == nil {
			created.AvatarURL = ps.mediaBaseURL + "/media/" + rel
			if uErr := ps.playerRepo.Update(ctx, nil, created); uErr != nil {
				ps.log.Warn("Failed to persist fallback avatar URL", "player_id", created.ID, "error", uErr)
			}
		} else {
			ps.log.Warn("Fallback avatar generation failed", "player_id", created.ID, "error", aErr)
		}
		return created, nil
	}

	return ps.create(ctx, newPlayer, steamID)
}

func (ps *playerService) create(ctx context.Context, player *types.Player, steamID int64) (*types.Player, error) {
	created, err := ps.playerRepo.Create(ctx, nil, player)
	if err != nil {
		// Two first-login requests can race; the loser rereads.
		if repos.IsUniqueViolation(err) {
			return ps.playerRepo.GetBySteamID(ctx, nil, steamID)
		}
		return nil, err
	}
	ps.log.Info("New player registered", "player_id", created.ID, "steam_id", steamID, "username", created.Username)
	return created, nil
}

func (ps *playerService) GetByID(ctx context.Context, id int32) (*types.Player, error) {
	return ps.playerRepo.GetByID(ctx, nil, id)
}

func (ps *playerService) GetScores(ctx context.Context, playerID int32) ([]types.Score, error) {
	if _, err := ps.playerRepo.GetByID(ctx, nil, playerID); err != nil {
		return nil, err
	}
	return ps.scoreRepo.ListByPlayer(ctx, nil, playerID)
}
