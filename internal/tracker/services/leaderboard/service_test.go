package leaderboard

import (
	"context"
	"testing"
	"time"

	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/user"
	"github.com/valkaylee/wildlifetracker/internal/tracker/storage/memory"
)

func seed(t *testing.T, store *memory.Store, username string, total, unique int, activity *time.Time) user.User {
	t.Helper()
	u, err := store.CreateUser(context.Background(), user.User{
		Username:           username,
		TotalAnimalsLogged: total,
		UniqueSpeciesCount: unique,
		LastActivityDate:   activity,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func TestLeaderboardAssignsDenseRanks(t *testing.T) {
	store := memory.New()
	now := time.Now().UTC()
	earlier := now.Add(-time.Hour)

	seed(t, store, "third", 1, 1, &now)
	seed(t, store, "first", 5, 4, &now)
	seed(t, store, "second", 5, 3, &earlier)

	svc := New(store, nil)
	entries, err := svc.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	order := []string{"first", "second", "third"}
	for i, want := range order {
		if entries[i].Username != want {
			t.Fatalf("position %d: got %s, want %s", i, entries[i].Username, want)
		}
		if entries[i].Rank != i+1 {
			t.Fatalf("%s: rank %d, want %d", want, entries[i].Rank, i+1)
		}
	}
}

func TestLeaderboardTiesKeepDistinctRanks(t *testing.T) {
	store := memory.New()
	now := time.Now().UTC()

	a := seed(t, store, "tied-a", 3, 2, &now)
	b := seed(t, store, "tied-b", 3, 2, &now)

	svc := New(store, nil)
	entries, err := svc.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if entries[0].Rank != 1 || entries[1].Rank != 2 {
		t.Fatalf("tied ranks: %d, %d", entries[0].Rank, entries[1].Rank)
	}
	// Equal tuples order deterministically by creation.
	if entries[0].UserID != a.ID || entries[1].UserID != b.ID {
		t.Fatalf("tie order: %d then %d", entries[0].UserID, entries[1].UserID)
	}
}

func TestLeaderboardDisplayNameFallsBackToUsername(t *testing.T) {
	store := memory.New()
	seed(t, store, "nameless", 1, 1, nil)

	svc := New(store, nil)
	entries, err := svc.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if entries[0].DisplayName != "nameless" {
		t.Fatalf("display name: %q", entries[0].DisplayName)
	}
}

func TestTopNClampsToPopulation(t *testing.T) {
	store := memory.New()
	seed(t, store, "only", 1, 1, nil)

	svc := New(store, nil)
	top, err := svc.TopN(context.Background(), 10)
	if err != nil {
		t.Fatalf("topn: %v", err)
	}
	if len(top) != 1 {
		t.Fatalf("got %d entries, want 1", len(top))
	}
}

func TestUserRankAbsentUser(t *testing.T) {
	store := memory.New()
	u := seed(t, store, "present", 2, 1, nil)

	svc := New(store, nil)

	entry, found, err := svc.UserRank(context.Background(), u.ID)
	if err != nil || !found || entry.Rank != 1 {
		t.Fatalf("present user: entry=%+v found=%v err=%v", entry, found, err)
	}

	_, found, err = svc.UserRank(context.Background(), 999)
	if err != nil {
		t.Fatalf("absent user: %v", err)
	}
	if found {
		t.Fatal("absent user reported as ranked")
	}
}
