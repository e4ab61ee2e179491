package redis

import (
	"context"
	"fmt"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	"github.com/wavebreaker/wavebreaker/internal/game"
	"github.com/wavebreaker/wavebreaker/internal/logger"
)

// LeaderboardCache keeps a ZSET of (player ID, score) per song and
// league. Submissions update it with ZADD GT, so it never regresses;
// readers fall back to the database and repopulate on a miss.
type LeaderboardCache interface {
	RecordScore(ctx context.Context, songID int32, league game.League, playerID int32, score int32) error
	Top(ctx context.Context, songID int32, league game.League, limit int64) ([]RankedEntry, error)
	Fill(ctx context.Context, songID int32, league game.League, entries []RankedEntry) error
	Exists(ctx context.Context, songID int32, league game.League) (bool, error)
}

type RankedEntry struct {
	PlayerID int32
	Score    int32
}

type leaderboardCache struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewLeaderboardCache(log *logger.Logger, rdb *goredis.Client) LeaderboardCache {
	return &leaderboardCache{
		log: log.With("service", "LeaderboardCache"),
		rdb: rdb,
	}
}

func leaderboardKey(songID int32, league game.League) string {
	return fmt.Sprintf("leaderboard:%d:%d", songID, int16(league))
}

func (c *leaderboardCache) RecordScore(ctx context.Context, songID int32, league game.League, playerID int32, score int32) error {
	key := leaderboardKey(songID, league)
	err := c.rdb.ZAddGT(ctx, key, goredis.Z{
		Score:  float64(score),
		Member: strconv.Itoa(int(playerID)),
	}).Err()
	if err != nil {
		return fmt.Errorf("zadd %s: %w", key, err)
	}
	return nil
}

func (c *leaderboardCache) Top(ctx context.Context, songID int32, league game.League, limit int64) ([]RankedEntry, error) {
	key := leaderboardKey(songID, league)
	zs, err := c.rdb.ZRevRangeWithScores(ctx, key, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("zrevrange %s: %w", key, err)
	}
	entries := make([]RankedEntry, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		id, err := strconv.Atoi(member)
		if err != nil {
			c.log.Warn("Skipping malformed leaderboard member", "key", key, "member", member)
			continue
		}
		entries = append(entries, RankedEntry{PlayerID: int32(id), Score: int32(z.Score)})
	}
	return entries, nil
}

func (c *leaderboardCache) Fill(ctx context.Context, songID int32, league game.League, entries []RankedEntry) error {
	if len(entries) == 0 {
		return nil
	}
	key := leaderboardKey(songID, league)
	zs := make([]goredis.Z, 0, len(entries))
	for _, e := range entries {
		zs = append(zs, goredis.Z{Score: float64(e.Score), Member: strconv.Itoa(int(e.PlayerID))})
	}
	if err := c.rdb.ZAddGT(ctx, key, zs...).Err(); err != nil {
		return fmt.Errorf("fill %s: %w", key, err)
	}
	return nil
}

func (c *leaderboardCache) Exists(ctx context.Context, songID int32, league game.League) (bool, error) {
	n, err := c.rdb.Exists(ctx, leaderboardKey(songID, league)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
