package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/wavebreaker/wavebreaker/internal/clients/redis"
	"github.com/wavebreaker/wavebreaker/internal/game"
	"github.com/wavebreaker/wavebreaker/internal/logger"
	apperrors "github.com/wavebreaker/wavebreaker/internal/pkg/errors"
	"github.com/wavebreaker/wavebreaker/internal/repos"
	"github.com/wavebreaker/wavebreaker/internal/types"
)

// RideSubmission is a parsed score submit from the game. TrackShape,
// XStats and Feats arrive in the game's packed string formats and are
// decoded here.
type RideSubmission struct {
	SongID        int32
	Score         int32
	Vehicle       game.Character
	League        game.League
	Feats         string
	SongLength    int32
	TrackShape    string
	XStats        string
	Density       int32
	GoldThreshold int32
	ISS           int32
	ISJ           int32
}

// BeatScore is the dethrone block of the ride response: who held the
// top spot, whether the submitter took it, and for how long the old
// score reigned.
type BeatScore struct {
	Dethroned    bool
	Friend       bool
	RivalName    string
	RivalScore   int32
	MyScore      int32
	ReignSeconds int64
	// DethronedPlayerID is set when somebody actually lost their crown,
	// for notification fan-out. Zero otherwise.
	DethronedPlayerID int32
}

// SongLeaderboards is the full GetRides answer: one score list per
// league for each of the three scoretypes.
type SongLeaderboards struct {
	Global [len(game.AllLeagues)][]types.Score
	Rival  [len(game.AllLeagues)][]types.Score
	Nearby [len(game.AllLeagues)][]types.Score
}

type ScoreService interface {
	// SubmitRide stores or improves the player's score and reports the
	// dethrone outcome computed against the pre-submit top score.
	SubmitRide(ctx context.Context, player *types.Player, sub RideSubmission) (*types.Score, *BeatScore, error)
	// GetRides assembles the global/rival/nearby leaderboards the game
	// shows on a song page.
	GetRides(ctx context.Context, player *types.Player, songID int32) (*SongLeaderboards, error)
	// Leaderboard serves the web API: Redis ZSET cache first, database
	// fallthrough with repopulation.
	Leaderboard(ctx context.Context, songID int32, league game.League) ([]types.Score, error)
}

type scoreService struct {
	db         *gorm.DB
	log        *logger.Logger
	scoreRepo  repos.ScoreRepo
	songRepo   repos.SongRepo
	playerRepo repos.PlayerRepo
	rivalryRepo repos.RivalryRepo
	cache      redis.LeaderboardCache
}

func NewScoreService(
	db *gorm.DB,
	log *logger.Logger,
	scoreRepo repos.ScoreRepo,
	songRepo repos.SongRepo,
	playerRepo repos.PlayerRepo,
	rivalryRepo repos.RivalryRepo,
	cache redis.LeaderboardCache,
) ScoreService {
	return &scoreService{
		db:          db,
		log:         log.With("service", "ScoreService"),
		scoreRepo:   scoreRepo,
		songRepo:    songRepo,
		playerRepo:  playerRepo,
		rivalryRepo: rivalryRepo,
		cache:       cache,
	}
}

func (ss *scoreService) SubmitRide(ctx context.Context, player *types.Player, sub RideSubmission) (*types.Score, *BeatScore, error) {
	if !sub.League.Valid() {
		return nil, nil, fmt.Errorf("%w: league %d", apperrors.ErrInvalidArgument, sub.League)
	}

	song, err := ss.songRepo.GetByID(ctx, nil, sub.SongID)
	if err != nil {
		return nil, nil, err
	}

	trackShape, err := game.SplitXSeparated(sub.TrackShape)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: trackshape: %s", apperrors.ErrInvalidArgument, err)
	}
	xstats, err := game.SplitCommaSeparated(sub.XStats)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: xstats: %s", apperrors.ErrInvalidArgument, err)
	}
	feats := game.SplitFeats(sub.Feats)

	beat, err := ss.beatScore(ctx, player, song.ID, sub)
	if err != nil {
		return nil, nil, err
	}

	score, err := ss.createOrImprove(ctx, player, song.ID, sub, trackShape, xstats, feats)
	if err != nil {
		return nil, nil, err
	}

	if ss.cache != nil {
		if cErr := ss.cache.RecordScore(ctx, song.ID, sub.League, player.ID, score.Score); cErr != nil {
			ss.log.Warn("Leaderboard cache update failed", "song_id", song.ID, "error", cErr)
		}
	}

	return score, beat, nil
}

// beatScore evaluates the dethrone outcome against the current top
// score, before the submission is stored.
func (ss *scoreService) beatScore(ctx context.Context, player *types.Player, songID int32, sub RideSubmission) (*BeatScore, error) {
	top, err := ss.scoreRepo.GetTopExcluding(ctx, nil, songID, sub.League, player.ID)
	if errors.Is(err, apperrors.ErrNotFound) {
		ss.log.Info("Player set a fresh top score", "player_id", player.ID, "song_id", songID, "score", sub.Score)
		return &BeatScore{
			Dethroned:    false,
			Friend:       false,
			RivalName:    "No one",
			RivalScore:   143,
			MyScore:      0,
			ReignSeconds: 0,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	dethroned := top.Score < sub.Score
	if dethroned {
		ss.log.Info("Player dethroned the top score",
			"player_id", player.ID, "dethroned_player_id", top.PlayerID,
			"song_id", songID, "score", sub.Score, "old_score", top.Score)
	}

	// Mutual rivalry counts as friendship for the Brutus condition.
	mutual := false
	if rivalry, rErr := ss.rivalryRepo.Get(ctx, nil, player.ID, top.PlayerID); rErr == nil {
		if mutual, rErr = ss.rivalryRepo.IsMutual(ctx, nil, rivalry); rErr != nil {
			return nil, rErr
		}
	} else if !errors.Is(rErr, apperrors.ErrNotFound) {
		return nil, rErr
	}

	rivalName := ""
	if top.Player != nil {
		rivalName = top.Player.Username
	}

	beat := &BeatScore{
		Dethroned:    dethroned,
		Friend:       mutual,
		RivalName:    rivalName,
		RivalScore:   top.Score,
		MyScore:      sub.Score,
		ReignSeconds: int64(time.Since(top.SubmittedAt).Seconds()),
	}
	if dethroned {
		beat.DethronedPlayerID = top.PlayerID
	}
	return beat, nil
}

// createOrImprove upserts the player's score on (song, league): the
// stored score never regresses and the play count always grows.
func (ss *scoreService) createOrImprove(
	ctx context.Context,
	player *types.Player,
	songID int32,
	sub RideSubmission,
	trackShape, xstats []int32,
	feats []string,
) (*types.Score, error) {
	var result *types.Score
	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := ss.scoreRepo.GetForPlayer(ctx, tx, player.ID, songID, sub.League)
		if errors.Is(err, apperrors.ErrNotFound) {
			created, cErr := ss.scoreRepo.Create(ctx, tx, &types.Score{
				PlayerID:      player.ID,
				SongID:        songID,
				League:        sub.League,
				Score:         sub.Score,
				PlayCount:     1,
				Vehicle:       sub.Vehicle,
				Feats:         feats,
				TrackShape:    trackShape,
				XStats:        xstats,
				Density:       sub.Density,
				SongLength:    sub.SongLength,
				GoldThreshold: sub.GoldThreshold,
				ISS:           sub.ISS,
				ISJ:           sub.ISJ,
				SubmittedAt:   time.Now(),
			})
			if cErr != nil {
				return cErr
			}
			result = created
			return nil
		}
		if err != nil {
			return err
		}

		existing.PlayCount++
		if sub.Score > existing.Score {
			existing.Score = sub.Score
			existing.Vehicle = sub.Vehicle
			existing.Feats = feats
			existing.TrackShape = trackShape
			existing.XStats = xstats
			existing.Density = sub.Density
			existing.SongLength = sub.SongLength
			existing.GoldThreshold = sub.GoldThreshold
			existing.ISS = sub.ISS
			existing.ISJ = sub.ISJ
			existing.SubmittedAt = time.Now()
		}
		if uErr := ss.scoreRepo.Update(ctx, tx, existing); uErr != nil {
			return uErr
		}
		result = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (ss *scoreService) GetRides(ctx context.Context, player *types.Player, songID int32) (*SongLeaderboards, error) {
	// An unknown song serves empty boards, not an error.
	rivals, err := ss.playerRepo.GetRivals(ctx, nil, player.ID)
	if err != nil {
		return nil, err
	}
	rivalIDs := make([]int32, 0, len(rivals)+1)
	for _, r := range rivals {
		rivalIDs = append(rivalIDs, r.ID)
	}
	// The player sees themself in the rival list.
	rivalIDs = append(rivalIDs, player.ID)

	var boards SongLeaderboards
	g, gctx := errgroup.WithContext(ctx)
	for i, league := range game.AllLeagues {
		i, league := i, league
		g.Go(func() error {
			scores, err := ss.scoreRepo.GetGlobal(gctx, nil, songID, league)
			if err != nil {
				return err
			}
			boards.Global[i] = scores
			return nil
		})
		g.Go(func() error {
			scores, err := ss.scoreRepo.GetRivals(gctx, nil, songID, league, rivalIDs)
			if err != nil {
				return err
			}
			boards.Rival[i] = scores
			return nil
		})
		g.Go(func() error {
			scores, err := ss.scoreRepo.GetNearby(gctx, nil, songID, league, player.LocationID)
			if err != nil {
				return err
			}
			boards.Nearby[i] = scores
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &boards, nil
}

func (ss *scoreService) Leaderboard(ctx context.Context, songID int32, league game.League) ([]types.Score, error) {
	if !league.Valid() {
		return nil, fmt.Errorf("%w: league %d", apperrors.ErrInvalidArgument, league)
	}
	if _, err := ss.songRepo.GetByID(ctx, nil, songID); err != nil {
		return nil, err
	}

	if ss.cache != nil {
		if ok, err := ss.cache.Exists(ctx, songID, league); err == nil && ok {
			if entries, tErr := ss.cache.Top(ctx, songID, league, repos.LeaderboardLimit); tErr == nil {
				return ss.hydrate(ctx, songID, league, entries)
			}
		}
	}

	scores, err := ss.scoreRepo.GetGlobal(ctx, nil, songID, league)
	if err != nil {
		return nil, err
	}

	if ss.cache != nil && len(scores) > 0 {
		entries := make([]redis.RankedEntry, 0, len(scores))
		for _, s := range scores {
			entries = append(entries, redis.RankedEntry{PlayerID: s.PlayerID, Score: s.Score})
		}
		if fErr := ss.cache.Fill(ctx, songID, league, entries); fErr != nil {
			ss.log.Warn("Leaderboard cache fill failed", "song_id", songID, "error", fErr)
		}
	}
	return scores, nil
}

// hydrate resolves cached (player, score) pairs back into full score
// rows for the response.
func (ss *scoreService) hydrate(ctx context.Context, songID int32, league game.League, entries []redis.RankedEntry) ([]types.Score, error) {
	ids := make([]int32, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.PlayerID)
	}
	scores, err := ss.scoreRepo.GetRivals(ctx, nil, songID, league, ids)
	if err != nil {
		return nil, err
	}
	return scores, nil
}
