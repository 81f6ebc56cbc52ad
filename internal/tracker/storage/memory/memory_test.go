package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/report"
	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/sighting"
	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/user"
	"github.com/valkaylee/wildlifetracker/internal/tracker/storage"
)

func TestUserLookupsWrapNotFound(t *testing.T) {
	store := New()
	ctx := context.Background()

	if _, err := store.GetUser(ctx, 1); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get user: %v", err)
	}
	if _, err := store.GetUserByUsername(ctx, "nobody"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get by username: %v", err)
	}
	if _, err := store.UpdateUser(ctx, user.User{ID: 1}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("update user: %v", err)
	}
}

func TestCreateUserRejectsDuplicateUsername(t *testing.T) {
	store := New()
	ctx := context.Background()

	if _, err := store.CreateUser(ctx, user.User{Username: "taken"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.CreateUser(ctx, user.User{Username: "taken"}); err == nil {
		t.Fatal("expected duplicate username error")
	}
}

func TestListUsersRankedOrdersByTuple(t *testing.T) {
	store := New()
	ctx := context.Background()
	now := time.Now().UTC()
	older := now.Add(-time.Hour)

	mk := func(name string, total, unique int, activity *time.Time) user.User {
		u, err := store.CreateUser(ctx, user.User{
			Username:           name,
			TotalAnimalsLogged: total,
			UniqueSpeciesCount: unique,
			LastActivityDate:   activity,
		})
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		return u
	}

	mk("low", 1, 1, nil)
	mk("high", 9, 2, &older)
	mk("fresh", 9, 2, &now)
	mk("dormant", 9, 2, nil)

	users, err := store.ListUsersRanked(ctx)
	if err != nil {
		t.Fatalf("list ranked: %v", err)
	}

	want := []string{"fresh", "high", "dormant", "low"}
	for i, name := range want {
		if users[i].Username != name {
			t.Fatalf("position %d: got %s, want %s", i, users[i].Username, name)
		}
	}
}

func TestSightingOwnershipQueries(t *testing.T) {
	store := New()
	ctx := context.Background()

	u, err := store.CreateUser(ctx, user.User{Username: "owner"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	if _, err := store.CreateSighting(ctx, sighting.Sighting{Species: "Wolf", UserID: &u.ID}); err != nil {
		t.Fatalf("create sighting: %v", err)
	}
	if _, err := store.CreateSighting(ctx, sighting.Sighting{Species: "Drifter"}); err != nil {
		t.Fatalf("create anonymous sighting: %v", err)
	}

	owned, err := store.ListSightingsByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(owned) != 1 || owned[0].Species != "Wolf" {
		t.Fatalf("owned: %+v", owned)
	}

	all, err := store.ListSightings(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("list all: %v (%d)", err, len(all))
	}
}

func TestDeleteSightingRemovesRecord(t *testing.T) {
	store := New()
	ctx := context.Background()

	sg, err := store.CreateSighting(ctx, sighting.Sighting{Species: "Ephemeral"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.DeleteSighting(ctx, sg.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.DeleteSighting(ctx, sg.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("re-delete: %v", err)
	}
}

func TestSightingReadsDoNotShareStoredPointers(t *testing.T) {
	store := New()
	ctx := context.Background()

	x, y, owner := 10, 20, int64(3)
	created, err := store.CreateSighting(ctx, sighting.Sighting{
		Species: "Wolf",
		PixelX:  &x,
		PixelY:  &y,
		UserID:  &owner,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Writing through the caller's original pointers must not reach the store.
	x, y, owner = 99, 99, 99
	got, err := store.GetSighting(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if *got.PixelX != 10 || *got.PixelY != 20 || *got.UserID != 3 {
		t.Fatalf("stored record shares caller memory: %+v", got)
	}

	// Writing through a returned record must not reach the store either.
	*got.PixelX = 77
	*got.UserID = 77
	again, err := store.GetSighting(ctx, created.ID)
	if err != nil {
		t.Fatalf("re-get: %v", err)
	}
	if *again.PixelX != 10 || *again.UserID != 3 {
		t.Fatalf("stored record shares returned memory: %+v", again)
	}

	listed, err := store.ListSightings(ctx)
	if err != nil || len(listed) != 1 {
		t.Fatalf("list: %v (%d)", err, len(listed))
	}
	*listed[0].PixelY = 77
	final, err := store.GetSighting(ctx, created.ID)
	if err != nil || *final.PixelY != 20 {
		t.Fatalf("stored record shares listed memory: %v %+v", err, final)
	}
}

func TestReportLifecycleMaintainsTimestamps(t *testing.T) {
	store := New()
	ctx := context.Background()

	created, err := store.CreateReport(ctx, report.Report{SightingID: 1, UserID: 2, Reason: "spam"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.CreatedAt.IsZero() || !created.UpdatedAt.Equal(created.CreatedAt) {
		t.Fatalf("create timestamps: %+v", created)
	}

	time.Sleep(time.Millisecond)
	created.Status = report.StatusReviewed
	updated, err := store.UpdateReport(ctx, created)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("update changed CreatedAt: %+v", updated)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("update did not advance UpdatedAt: %+v", updated)
	}
}
