package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/wavebreaker/wavebreaker/internal/clients/redis"
	"github.com/wavebreaker/wavebreaker/internal/game"
	apperrors "github.com/wavebreaker/wavebreaker/internal/pkg/errors"
	"github.com/wavebreaker/wavebreaker/internal/repos"
	"github.com/wavebreaker/wavebreaker/internal/types"
)

// fakeLeaderboardCache is an in-memory stand-in for the Redis ZSET
// cache, with ZADD GT semantics on RecordScore.
type fakeLeaderboardCache struct {
	boards  map[string][]redis.RankedEntry
	fills   int
	tops    int
	records int
}

func newFakeLeaderboardCache() *fakeLeaderboardCache {
	return &fakeLeaderboardCache{boards: make(map[string][]redis.RankedEntry)}
}

func (f *fakeLeaderboardCache) key(songID int32, league game.League) string {
	return fmt.Sprintf("%d:%d", songID, int16(league))
}

func (f *fakeLeaderboardCache) RecordScore(_ context.Context, songID int32, league game.League, playerID int32, score int32) error {
	f.records++
	key := f.key(songID, league)
	for i, e := range f.boards[key] {
		if e.PlayerID == playerID {
			if score > e.Score {
				f.boards[key][i].Score = score
			}
			return nil
		}
	}
	f.boards[key] = append(f.boards[key], redis.RankedEntry{PlayerID: playerID, Score: score})
	return nil
}

func (f *fakeLeaderboardCache) Top(_ context.Context, songID int32, league game.League, limit int64) ([]redis.RankedEntry, error) {
	f.tops++
	entries := append([]redis.RankedEntry(nil), f.boards[f.key(songID, league)]...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })
	if int64(len(entries)) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (f *fakeLeaderboardCache) Fill(_ context.Context, songID int32, league game.League, entries []redis.RankedEntry) error {
	f.fills++
	f.boards[f.key(songID, league)] = append([]redis.RankedEntry(nil), entries...)
	return nil
}

func (f *fakeLeaderboardCache) Exists(_ context.Context, songID int32, league game.League) (bool, error) {
	return len(f.boards[f.key(songID, league)]) > 0, nil
}

func baseSubmission(songID int32) RideSubmission {
	return RideSubmission{
		SongID:        songID,
		Score:         50000,
		Vehicle:       game.CharacterEraser,
		League:        game.LeagueCasual,
		Feats:         "Match 21, Stealth",
		SongLength:    18000,
		TrackShape:    "10x20x30",
		XStats:        "1,2,3",
		Density:       42,
		GoldThreshold: 45000,
		ISS:           5,
		ISJ:           7,
	}
}

func TestSubmitRideFreshTopScore(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	scoreRepo := repos.NewScoreRepo(db, log)
	svc := NewScoreService(db, log, scoreRepo, repos.NewSongRepo(db, log), repos.NewPlayerRepo(db, log), repos.NewRivalryRepo(db, log), nil)

	player := createTestPlayer(t, db, "alice", 76561198000000001)
	song := createTestSong(t, db, "Test Song", "Test Artist")

	score, beat, err := svc.SubmitRide(context.Background(), player, baseSubmission(song.ID))
	if err != nil {
		t.Fatalf("SubmitRide: %v", err)
	}

	if score.PlayCount != 1 {
		t.Errorf("play count = %d, want 1", score.PlayCount)
	}
	if score.Score != 50000 {
		t.Errorf("score = %d, want 50000", score.Score)
	}
	if got := []int32(score.TrackShape); len(got) != 3 || got[0] != 10 || got[2] != 30 {
		t.Errorf("track shape = %v, want [10 20 30]", got)
	}
	if got := []string(score.Feats); len(got) != 2 || got[0] != "Match 21" {
		t.Errorf("feats = %v, want [Match 21 Stealth]", got)
	}

	// Nobody to dethrone: the canned fallback block.
	if beat.Dethroned || beat.Friend {
		t.Errorf("dethroned=%v friend=%v, want false/false", beat.Dethroned, beat.Friend)
	}
	if beat.RivalName != "No one" || beat.RivalScore != 143 || beat.MyScore != 0 || beat.ReignSeconds != 0 {
		t.Errorf("fallback beatscore = %+v", beat)
	}
}

func TestSubmitRideDethrone(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	scoreRepo := repos.NewScoreRepo(db, log)
	rivalryRepo := repos.NewRivalryRepo(db, log)
	svc := NewScoreService(db, log, scoreRepo, repos.NewSongRepo(db, log), repos.NewPlayerRepo(db, log), rivalryRepo, nil)

	champ := createTestPlayer(t, db, "champ", 76561198000000001)
	challenger := createTestPlayer(t, db, "challenger", 76561198000000002)
	song := createTestSong(t, db, "Test Song", "Test Artist")

	reignStart := time.Now().Add(-10 * time.Minute)
	if err := db.Create(&types.Score{
		PlayerID:    champ.ID,
		SongID:      song.ID,
		League:      game.LeagueCasual,
		Score:       40000,
		PlayCount:   1,
		SubmittedAt: reignStart,
	}).Error; err != nil {
		t.Fatalf("seed champ score: %v", err)
	}

	sub := baseSubmission(song.ID)
	_, beat, err := svc.SubmitRide(context.Background(), challenger, sub)
	if err != nil {
		t.Fatalf("SubmitRide: %v", err)
	}

	if !beat.Dethroned {
		t.Fatal("expected dethrone")
	}
	if beat.DethronedPlayerID != champ.ID {
		t.Errorf("dethroned player = %d, want %d", beat.DethronedPlayerID, champ.ID)
	}
	if beat.RivalName != "champ" || beat.RivalScore != 40000 || beat.MyScore != 50000 {
		t.Errorf("beatscore = %+v", beat)
	}
	if beat.ReignSeconds < 590 || beat.ReignSeconds > 610 {
		t.Errorf("reign seconds = %d, want about 600", beat.ReignSeconds)
	}
	if beat.Friend {
		t.Error("no rivalry declared, friend should be false")
	}
}

func TestSubmitRideMutualRivalIsFriend(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	svc := NewScoreService(db, log, repos.NewScoreRepo(db, log), repos.NewSongRepo(db, log), repos.NewPlayerRepo(db, log), repos.NewRivalryRepo(db, log), nil)

	champ := createTestPlayer(t, db, "champ", 76561198000000001)
	challenger := createTestPlayer(t, db, "challenger", 76561198000000002)
	song := createTestSong(t, db, "Test Song", "Test Artist")

	for _, edge := range []types.Rivalry{
		{ChallengerID: champ.ID, RivalID: challenger.ID, EstablishedAt: time.Now()},
		{ChallengerID: challenger.ID, RivalID: champ.ID, EstablishedAt: time.Now()},
	} {
		if err := db.Create(&edge).Error; err != nil {
			t.Fatalf("seed rivalry: %v", err)
		}
	}
	if err := db.Create(&types.Score{
		PlayerID: champ.ID, SongID: song.ID, League: game.LeagueCasual,
		Score: 40000, PlayCount: 1, SubmittedAt: time.Now(),
	}).Error; err != nil {
		t.Fatalf("seed champ score: %v", err)
	}

	_, beat, err := svc.SubmitRide(context.Background(), challenger, baseSubmission(song.ID))
	if err != nil {
		t.Fatalf("SubmitRide: %v", err)
	}
	if !beat.Dethroned || !beat.Friend {
		t.Errorf("dethroned=%v friend=%v, want true/true", beat.Dethroned, beat.Friend)
	}
}

func TestSubmitRideNeverRegresses(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	svc := NewScoreService(db, log, repos.NewScoreRepo(db, log), repos.NewSongRepo(db, log), repos.NewPlayerRepo(db, log), repos.NewRivalryRepo(db, log), nil)

	player := createTestPlayer(t, db, "alice", 76561198000000001)
	song := createTestSong(t, db, "Test Song", "Test Artist")

	first := baseSubmission(song.ID)
	if _, _, err := svc.SubmitRide(context.Background(), player, first); err != nil {
		t.Fatalf("first SubmitRide: %v", err)
	}

	worse := baseSubmission(song.ID)
	worse.Score = 20000
	worse.Vehicle = game.CharacterNinjaMono
	score, _, err := svc.SubmitRide(context.Background(), player, worse)
	if err != nil {
		t.Fatalf("second SubmitRide: %v", err)
	}

	if score.Score != 50000 {
		t.Errorf("score regressed to %d", score.Score)
	}
	if score.Vehicle != game.CharacterEraser {
		t.Errorf("vehicle changed on worse ride: %v", score.Vehicle)
	}
	if score.PlayCount != 2 {
		t.Errorf("play count = %d, want 2", score.PlayCount)
	}

	better := baseSubmission(song.ID)
	better.Score = 60000
	better.Vehicle = game.CharacterNinjaMono
	score, _, err = svc.SubmitRide(context.Background(), player, better)
	if err != nil {
		t.Fatalf("third SubmitRide: %v", err)
	}
	if score.Score != 60000 || score.Vehicle != game.CharacterNinjaMono || score.PlayCount != 3 {
		t.Errorf("improved score not stored: %+v", score)
	}
}

func TestSubmitRideUnknownSong(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	svc := NewScoreService(db, log, repos.NewScoreRepo(db, log), repos.NewSongRepo(db, log), repos.NewPlayerRepo(db, log), repos.NewRivalryRepo(db, log), nil)

	player := createTestPlayer(t, db, "alice", 76561198000000001)
	_, _, err := svc.SubmitRide(context.Background(), player, baseSubmission(9999))
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSubmitRideInvalidInput(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	svc := NewScoreService(db, log, repos.NewScoreRepo(db, log), repos.NewSongRepo(db, log), repos.NewPlayerRepo(db, log), repos.NewRivalryRepo(db, log), nil)

	player := createTestPlayer(t, db, "alice", 76561198000000001)
	song := createTestSong(t, db, "Test Song", "Test Artist")

	badLeague := baseSubmission(song.ID)
	badLeague.League = game.League(7)
	if _, _, err := svc.SubmitRide(context.Background(), player, badLeague); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Errorf("league err = %v, want ErrInvalidArgument", err)
	}

	badShape := baseSubmission(song.ID)
	badShape.TrackShape = "10xfoox30"
	if _, _, err := svc.SubmitRide(context.Background(), player, badShape); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Errorf("trackshape err = %v, want ErrInvalidArgument", err)
	}
}

func TestGetRidesIncludesSelfInRivalBoard(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	svc := NewScoreService(db, log, repos.NewScoreRepo(db, log), repos.NewSongRepo(db, log), repos.NewPlayerRepo(db, log), repos.NewRivalryRepo(db, log), nil)

	player := createTestPlayer(t, db, "alice", 76561198000000001)
	other := createTestPlayer(t, db, "bob", 76561198000000002)
	song := createTestSong(t, db, "Test Song", "Test Artist")

	for _, s := range []types.Score{
		{PlayerID: player.ID, SongID: song.ID, League: game.LeagueCasual, Score: 100, PlayCount: 1, SubmittedAt: time.Now()},
		{PlayerID: other.ID, SongID: song.ID, League: game.LeagueCasual, Score: 200, PlayCount: 1, SubmittedAt: time.Now()},
	} {
		if err := db.Create(&s).Error; err != nil {
			t.Fatalf("seed score: %v", err)
		}
	}

	boards, err := svc.GetRides(context.Background(), player, song.ID)
	if err != nil {
		t.Fatalf("GetRides: %v", err)
	}

	casual := int(game.LeagueCasual)
	if len(boards.Global[casual]) != 2 {
		t.Errorf("global casual = %d scores, want 2", len(boards.Global[casual]))
	}
	// No rivalries declared, but the player sees their own ride.
	if len(boards.Rival[casual]) != 1 || boards.Rival[casual][0].PlayerID != player.ID {
		t.Errorf("rival casual = %+v, want only own score", boards.Rival[casual])
	}
	if len(boards.Global[int(game.LeaguePro)]) != 0 {
		t.Error("pro league should be empty")
	}
}

func TestGetRidesUnknownSongServesEmptyBoards(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	svc := NewScoreService(db, log, repos.NewScoreRepo(db, log), repos.NewSongRepo(db, log), repos.NewPlayerRepo(db, log), repos.NewRivalryRepo(db, log), nil)

	player := createTestPlayer(t, db, "alice", 76561198000000001)
	boards, err := svc.GetRides(context.Background(), player, 9999)
	if err != nil {
		t.Fatalf("GetRides: %v", err)
	}
	for i := range game.AllLeagues {
		if len(boards.Global[i]) != 0 || len(boards.Rival[i]) != 0 || len(boards.Nearby[i]) != 0 {
			t.Errorf("league %d boards not empty: %d/%d/%d",
				i, len(boards.Global[i]), len(boards.Rival[i]), len(boards.Nearby[i]))
		}
	}
}

func TestLeaderboardCacheMissFillsAndHitServes(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	cache := newFakeLeaderboardCache()
	svc := NewScoreService(db, log, repos.NewScoreRepo(db, log), repos.NewSongRepo(db, log), repos.NewPlayerRepo(db, log), repos.NewRivalryRepo(db, log), cache)

	alice := createTestPlayer(t, db, "alice", 76561198000000001)
	bob := createTestPlayer(t, db, "bob", 76561198000000002)
	song := createTestSong(t, db, "Test Song", "Test Artist")
	for _, s := range []types.Score{
		{PlayerID: alice.ID, SongID: song.ID, League: game.LeagueCasual, Score: 30000, PlayCount: 1, SubmittedAt: time.Now()},
		{PlayerID: bob.ID, SongID: song.ID, League: game.LeagueCasual, Score: 40000, PlayCount: 1, SubmittedAt: time.Now()},
	} {
		if err := db.Create(&s).Error; err != nil {
			t.Fatalf("seed score: %v", err)
		}
	}
	ctx := context.Background()

	// Cold cache: the database answers and the ZSET gets filled.
	scores, err := svc.Leaderboard(ctx, song.ID, game.LeagueCasual)
	if err != nil {
		t.Fatalf("Leaderboard (cold): %v", err)
	}
	if len(scores) != 2 || scores[0].PlayerID != bob.ID {
		t.Fatalf("cold leaderboard = %+v, want bob first of 2", scores)
	}
	if cache.fills != 1 || cache.tops != 0 {
		t.Errorf("cold pass fills=%d tops=%d, want 1/0", cache.fills, cache.tops)
	}

	// Warm cache: the ZSET answers. Drop bob from the cached board so a
	// database read would disagree with what comes back.
	cache.boards[cache.key(song.ID, game.LeagueCasual)] = []redis.RankedEntry{{PlayerID: alice.ID, Score: 30000}}
	scores, err = svc.Leaderboard(ctx, song.ID, game.LeagueCasual)
	if err != nil {
		t.Fatalf("Leaderboard (warm): %v", err)
	}
	if len(scores) != 1 || scores[0].PlayerID != alice.ID {
		t.Fatalf("warm leaderboard = %+v, want only alice", scores)
	}
	if cache.tops != 1 || cache.fills != 1 {
		t.Errorf("warm pass tops=%d fills=%d, want 1/1", cache.tops, cache.fills)
	}
}

func TestSubmitRideRecordsScoreInCache(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	cache := newFakeLeaderboardCache()
	svc := NewScoreService(db, log, repos.NewScoreRepo(db, log), repos.NewSongRepo(db, log), repos.NewPlayerRepo(db, log), repos.NewRivalryRepo(db, log), cache)

	player := createTestPlayer(t, db, "alice", 76561198000000001)
	song := createTestSong(t, db, "Test Song", "Test Artist")
	ctx := context.Background()

	if _, _, err := svc.SubmitRide(ctx, player, baseSubmission(song.ID)); err != nil {
		t.Fatalf("SubmitRide: %v", err)
	}
	if cache.records != 1 {
		t.Fatalf("cache records = %d, want 1", cache.records)
	}
	entries, _ := cache.Top(ctx, song.ID, game.LeagueCasual, repos.LeaderboardLimit)
	if len(entries) != 1 || entries[0].PlayerID != player.ID || entries[0].Score != 50000 {
		t.Errorf("cached entries = %+v, want alice at 50000", entries)
	}

	// A worse ride still updates play count but must not lower the
	// cached score.
	worse := baseSubmission(song.ID)
	worse.Score = 20000
	if _, _, err := svc.SubmitRide(ctx, player, worse); err != nil {
		t.Fatalf("SubmitRide (worse): %v", err)
	}
	entries, _ = cache.Top(ctx, song.ID, game.LeagueCasual, repos.LeaderboardLimit)
	if len(entries) != 1 || entries[0].Score != 50000 {
		t.Errorf("cached entries after worse ride = %+v, want alice still at 50000", entries)
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	svc := NewScoreService(db, log, repos.NewScoreRepo(db, log), repos.NewSongRepo(db, log), repos.NewPlayerRepo(db, log), repos.NewRivalryRepo(db, log), nil)

	song := createTestSong(t, db, "Test Song", "Test Artist")
	for i := int64(1); i <= 3; i++ {
		p := createTestPlayer(t, db, "p", 76561198000000000+i)
		if err := db.Create(&types.Score{
			PlayerID: p.ID, SongID: song.ID, League: game.LeagueElite,
			Score: int32(i * 1000), PlayCount: 1, SubmittedAt: time.Now(),
		}).Error; err != nil {
			t.Fatalf("seed score: %v", err)
		}
	}

	scores, err := svc.Leaderboard(context.Background(), song.ID, game.LeagueElite)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("got %d scores, want 3", len(scores))
	}
	for i := 1; i < len(scores); i++ {
		if scores[i].Score > scores[i-1].Score {
			t.Fatalf("scores not descending: %d before %d", scores[i-1].Score, scores[i].Score)
		}
	}

	if _, err := svc.Leaderboard(context.Background(), song.ID, game.League(9)); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Errorf("invalid league err = %v, want ErrInvalidArgument", err)
	}
}
