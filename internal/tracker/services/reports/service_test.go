package reports

import (
	"context"
	"testing"

	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/report"
	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/sighting"
	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/user"
	"github.com/valkaylee/wildlifetracker/internal/tracker/storage/memory"
)

func newFixture(t *testing.T) (*Service, user.User, sighting.Sighting) {
	t.Helper()
	store := memory.New()
	ctx := context.Background()

	u, err := store.CreateUser(ctx, user.User{Username: "flagger"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	sg, err := store.CreateSighting(ctx, sighting.Sighting{Species: "Dragon"})
	if err != nil {
		t.Fatalf("create sighting: %v", err)
	}
	return New(store, store, store, nil), u, sg
}

func TestFileValidations(t *testing.T) {
	svc, u, sg := newFixture(t)
	ctx := context.Background()

	if _, err := svc.File(ctx, sg.ID, u.ID, "  "); err == nil {
		t.Fatal("expected error for blank reason")
	}
	if _, err := svc.File(ctx, 999, u.ID, "missing sighting"); err == nil {
		t.Fatal("expected error for unknown sighting")
	}
	if _, err := svc.File(ctx, sg.ID, 999, "missing user"); err == nil {
		t.Fatal("expected error for unknown user")
	}
}

func TestFileRejectsDuplicatePerUser(t *testing.T) {
	svc, u, sg := newFixture(t)
	ctx := context.Background()

	filed, err := svc.File(ctx, sg.ID, u.ID, "species looks fabricated")
	if err != nil {
		t.Fatalf("file: %v", err)
	}
	if filed.Status != report.StatusPending {
		t.Fatalf("status: %q", filed.Status)
	}

	if _, err := svc.File(ctx, sg.ID, u.ID, "second attempt"); err == nil {
		t.Fatal("expected duplicate report rejection")
	}
}

func TestSetStatusValidatesTransitionTarget(t *testing.T) {
	svc, u, sg := newFixture(t)
	ctx := context.Background()

	filed, err := svc.File(ctx, sg.ID, u.ID, "needs review")
	if err != nil {
		t.Fatalf("file: %v", err)
	}

	updated, err := svc.SetStatus(ctx, filed.ID, report.StatusReviewed)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if updated.Status != report.StatusReviewed {
		t.Fatalf("status: %q", updated.Status)
	}

	if _, err := svc.SetStatus(ctx, filed.ID, report.Status("escalated")); err == nil {
		t.Fatal("expected rejection of unknown status")
	}
}

func TestListsByDimension(t *testing.T) {
	svc, u, sg := newFixture(t)
	ctx := context.Background()

	if _, err := svc.File(ctx, sg.ID, u.ID, "only report"); err != nil {
		t.Fatalf("file: %v", err)
	}

	bySighting, err := svc.BySighting(ctx, sg.ID)
	if err != nil || len(bySighting) != 1 {
		t.Fatalf("by sighting: %v (%d)", err, len(bySighting))
	}
	byUser, err := svc.ByUser(ctx, u.ID)
	if err != nil || len(byUser) != 1 {
		t.Fatalf("by user: %v (%d)", err, len(byUser))
	}
	all, err := svc.List(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("list: %v (%d)", err, len(all))
	}
}
