package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	apperrors "github.com/wavebreaker/wavebreaker/internal/pkg/errors"
	"github.com/wavebreaker/wavebreaker/internal/repos"
)

func TestShoutPostValidation(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	svc := NewShoutService(db, log, repos.NewShoutRepo(db, log), repos.NewSongRepo(db, log))

	player := createTestPlayer(t, db, "alice", 76561198000000001)
	song := createTestSong(t, db, "Test Song", "Test Artist")
	ctx := context.Background()

	if _, err := svc.Post(ctx, player.ID, song.ID, "   "); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Errorf("blank shout err = %v, want ErrInvalidArgument", err)
	}
	if _, err := svc.Post(ctx, player.ID, 9999, "hello"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("unknown song err = %v, want ErrNotFound", err)
	}

	shout, err := svc.Post(ctx, player.ID, song.ID, "  nice track  ")
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if shout.Content != "nice track" {
		t.Errorf("content = %q, want trimmed", shout.Content)
	}

	long, err := svc.Post(ctx, player.ID, song.ID, strings.Repeat("a", 400))
	if err != nil {
		t.Fatalf("Post long: %v", err)
	}
	if len(long.Content) != 255 {
		t.Errorf("long content = %d bytes, want 255", len(long.Content))
	}

	// Truncation lands on a rune boundary, never inside a multibyte rune.
	multibyte, err := svc.Post(ctx, player.ID, song.ID, strings.Repeat("ä", 200))
	if err != nil {
		t.Fatalf("Post multibyte: %v", err)
	}
	if !utf8.ValidString(multibyte.Content) {
		t.Errorf("truncated content is not valid UTF-8: %q", multibyte.Content)
	}
	if len(multibyte.Content) != 254 {
		t.Errorf("multibyte content = %d bytes, want 254", len(multibyte.Content))
	}
}

func TestShoutListNewestFirstCapped(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	svc := NewShoutService(db, log, repos.NewShoutRepo(db, log), repos.NewSongRepo(db, log))

	player := createTestPlayer(t, db, "alice", 76561198000000001)
	song := createTestSong(t, db, "Test Song", "Test Artist")
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		if _, err := svc.Post(ctx, player.ID, song.ID, strings.Repeat("x", i+1)); err != nil {
			t.Fatalf("Post %d: %v", i, err)
		}
	}

	shouts, err := svc.ListBySong(ctx, song.ID)
	if err != nil {
		t.Fatalf("ListBySong: %v", err)
	}
	if len(shouts) != repos.ShoutLimit {
		t.Fatalf("got %d shouts, want %d", len(shouts), repos.ShoutLimit)
	}
	for i := 1; i < len(shouts); i++ {
		if shouts[i].PostedAt.After(shouts[i-1].PostedAt) {
			t.Fatal("shouts not newest first")
		}
	}
}
