package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/lib/pq"

	"github.com/valkaylee/wildlifetracker/internal/platform/migrations"
	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/report"
	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/sighting"
	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/user"
	"github.com/valkaylee/wildlifetracker/internal/tracker/storage"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func TestGetUserMapsNoRowsToNotFound(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectQuery("SELECT .* FROM tracker_users").
		WithArgs(int64(7)).
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetUser(context.Background(), 7)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get user: got %v, want ErrNotFound", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateUserZeroRowsIsNotFound(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectExec("UPDATE tracker_users").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := store.UpdateUser(context.Background(), user.User{ID: 12, Username: "ghost"})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("update user: got %v, want ErrNotFound", err)
	}
}

func TestListUsersRankedScansNullActivity(t *testing.T) {
	store, mock := newMock(t)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "username", "password_hash", "display_name", "bio", "profile_picture_url",
		"total_animals_logged", "unique_species_count", "last_activity_date", "created_at", "updated_at",
	}).
		AddRow(1, "active", "", "Active", "", "", 5, 3, now, now, now).
		AddRow(2, "dormant", "", "Dormant", "", "", 0, 0, nil, now, now)

	mock.ExpectQuery("SELECT .* FROM tracker_users").WillReturnRows(rows)

	users, err := store.ListUsersRanked(context.Background())
	if err != nil {
		t.Fatalf("list users ranked: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("got %d users, want 2", len(users))
	}
	if users[0].LastActivityDate == nil {
		t.Fatal("active user lost activity date")
	}
	if users[1].LastActivityDate != nil {
		t.Fatal("dormant user grew an activity date")
	}
}

func TestDeleteSightingZeroRowsIsNotFound(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectExec("DELETE FROM tracker_sightings").
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.DeleteSighting(context.Background(), 9)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("delete sighting: got %v, want ErrNotFound", err)
	}
}

func TestScanSightingNullableColumns(t *testing.T) {
	store, mock := newMock(t)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "species", "location", "description", "image_url", "observed_at", "pixel_x", "pixel_y", "user_id",
	}).
		AddRow(1, "Wolf", "ridge", "", "", now, 10, 20, int64(3)).
		AddRow(2, "Owl", "", "", "", now, nil, nil, nil)

	mock.ExpectQuery("SELECT .* FROM tracker_sightings").WillReturnRows(rows)

	list, err := store.ListSightings(context.Background())
	if err != nil {
		t.Fatalf("list sightings: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d sightings, want 2", len(list))
	}
	if list[0].PixelX == nil || *list[0].PixelX != 10 || list[0].UserID == nil {
		t.Fatalf("pinned sighting lost coordinates or owner: %+v", list[0])
	}
	if list[1].PixelX != nil || list[1].UserID != nil {
		t.Fatalf("anonymous sighting grew values: %+v", list[1])
	}
}

func TestCreateReportStampsBothTimestamps(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectQuery("INSERT INTO tracker_reports").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(4)))

	r, err := store.CreateReport(context.Background(), report.Report{
		SightingID: 1, UserID: 2, Reason: "spam", Status: report.StatusPending,
	})
	if err != nil {
		t.Fatalf("create report: %v", err)
	}
	if r.ID != 4 || r.CreatedAt.IsZero() || !r.UpdatedAt.Equal(r.CreatedAt) {
		t.Fatalf("report timestamps: %+v", r)
	}
}

func TestScanReportRoundTripsStatusAndTimestamps(t *testing.T) {
	store, mock := newMock(t)

	created := time.Now().UTC().Add(-time.Hour)
	updated := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "sighting_id", "user_id", "reason", "status", "created_at", "updated_at",
	}).AddRow(4, 1, 2, "spam", "reviewed", created, updated)

	mock.ExpectQuery("SELECT .* FROM tracker_reports").
		WithArgs(int64(4)).
		WillReturnRows(rows)

	r, err := store.GetReport(context.Background(), 4)
	if err != nil {
		t.Fatalf("get report: %v", err)
	}
	if r.Status != report.StatusReviewed {
		t.Fatalf("status: %q", r.Status)
	}
	if !r.CreatedAt.Equal(created) || !r.UpdatedAt.Equal(updated) {
		t.Fatalf("timestamps: %+v", r)
	}
}

// TestStoreIntegration exercises the real schema end to end. It only runs
// against a disposable database named by TEST_POSTGRES_DSN.
func TestStoreIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := migrations.Apply(ctx, db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	store := New(db)

	u, err := store.CreateUser(ctx, user.User{Username: "integration", DisplayName: "Integration"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	sg, err := store.CreateSighting(ctx, sighting.Sighting{Species: "Wolf", Location: "ridge", UserID: &u.ID})
	if err != nil {
		t.Fatalf("create sighting: %v", err)
	}

	owned, err := store.ListSightingsByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("list sightings by user: %v", err)
	}
	if len(owned) != 1 || owned[0].ID != sg.ID {
		t.Fatalf("owned sightings: %+v", owned)
	}

	if err := store.DeleteSighting(ctx, sg.ID); err != nil {
		t.Fatalf("delete sighting: %v", err)
	}
	if _, err := store.GetSighting(ctx, sg.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get deleted sighting: got %v, want ErrNotFound", err)
	}
}
