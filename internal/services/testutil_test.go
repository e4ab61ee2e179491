package services

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wavebreaker/wavebreaker/internal/logger"
	"github.com/wavebreaker/wavebreaker/internal/types"
)

var testDBCounter atomic.Int64

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

// newTestDB opens a private in-memory sqlite database and migrates the
// full schema into it.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, testDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	err = db.AutoMigrate(
		&types.Player{},
		&types.Song{},
		&types.ExtraSongInfo{},
		&types.Score{},
		&types.Rivalry{},
		&types.Shout{},
		&types.WebToken{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func createTestPlayer(t *testing.T, db *gorm.DB, username string, steamID int64) *types.Player {
	t.Helper()
	p := &types.Player{
		Username: username,
		SteamID:  steamID,
		JoinedAt: time.Now(),
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create player %s: %v", username, err)
	}
	return p
}

func createTestSong(t *testing.T, db *gorm.DB, title, artist string) *types.Song {
	t.Helper()
	s := &types.Song{
		Title:     title,
		Artist:    artist,
		CreatedAt: time.Now(),
	}
	if err := db.Create(s).Error; err != nil {
		t.Fatalf("create song %s: %v", title, err)
	}
	return s
}
