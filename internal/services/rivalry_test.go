package services

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/wavebreaker/wavebreaker/internal/pkg/errors"
	"github.com/wavebreaker/wavebreaker/internal/repos"
	"github.com/wavebreaker/wavebreaker/internal/sse"
)

func TestRivalryAdd(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	hub := sse.NewHub(log)
	svc := NewRivalryService(db, log, repos.NewRivalryRepo(db, log), repos.NewPlayerRepo(db, log), NewNotifierService(log, nil, hub))

	alice := createTestPlayer(t, db, "alice", 76561198000000001)
	bob := createTestPlayer(t, db, "bob", 76561198000000002)
	ctx := context.Background()

	if _, err := svc.Add(ctx, alice.ID, alice.ID); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Errorf("self-rivalry err = %v, want ErrInvalidArgument", err)
	}
	if _, err := svc.Add(ctx, alice.ID, 9999); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("unknown rival err = %v, want ErrNotFound", err)
	}

	// Bob gets notified when Alice declares the rivalry.
	bobClient := hub.Subscribe(bob.ID)
	defer hub.Unsubscribe(bobClient)

	rivalry, err := svc.Add(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if rivalry.ChallengerID != alice.ID || rivalry.RivalID != bob.ID {
		t.Errorf("rivalry = %+v", rivalry)
	}

	select {
	case msg := <-bobClient.Outbound:
		if msg.Event != sse.EventRivalAdded {
			t.Errorf("event = %q, want %q", msg.Event, sse.EventRivalAdded)
		}
	default:
		t.Error("no rival-added notification delivered")
	}

	if _, err := svc.Add(ctx, alice.ID, bob.ID); !errors.Is(err, apperrors.ErrConflict) {
		t.Errorf("duplicate err = %v, want ErrConflict", err)
	}
}

func TestRivalryMutualFlagAndRemove(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	hub := sse.NewHub(log)
	svc := NewRivalryService(db, log, repos.NewRivalryRepo(db, log), repos.NewPlayerRepo(db, log), NewNotifierService(log, nil, hub))

	alice := createTestPlayer(t, db, "alice", 76561198000000001)
	bob := createTestPlayer(t, db, "bob", 76561198000000002)
	ctx := context.Background()

	if _, err := svc.Add(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("Add: %v", err)
	}

	entries, err := svc.List(ctx, alice.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].Mutual {
		t.Fatalf("entries = %+v, want one non-mutual", entries)
	}

	if _, err := svc.Add(ctx, bob.ID, alice.ID); err != nil {
		t.Fatalf("reverse Add: %v", err)
	}
	entries, err = svc.List(ctx, alice.ID)
	if err != nil {
		t.Fatalf("List after reverse: %v", err)
	}
	if len(entries) != 1 || !entries[0].Mutual {
		t.Fatalf("entries = %+v, want one mutual", entries)
	}

	if err := svc.Remove(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := svc.Remove(ctx, alice.ID, bob.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("double remove err = %v, want ErrNotFound", err)
	}
}
