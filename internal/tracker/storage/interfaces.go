package storage

import (
	"context"
	"errors"

	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/notification"
	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/report"
	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/sighting"
	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/species"
	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/user"
)

// ErrNotFound is wrapped by every store implementation when a referenced
// record does not exist, so callers can test presence without matching
// message strings.
var ErrNotFound = errors.New("not found")

// UserStore persists user records.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	UpdateUser(ctx context.Context, u user.User) (user.User, error)
	GetUser(ctx context.Context, id int64) (user.User, error)
	GetUserByUsername(ctx context.Context, username string) (user.User, error)

	// ListUsersRanked returns every user ordered by the leaderboard tuple:
	// total animals logged desc, unique species desc, last activity desc.
	// The ordering contract lives here so SQL backends can sort in the
	// database; the leaderboard service only assigns ranks.
	ListUsersRanked(ctx context.Context) ([]user.User, error)
}

// SightingStore persists sighting records.
type SightingStore interface {
	CreateSighting(ctx context.Context, s sighting.Sighting) (sighting.Sighting, error)
	UpdateSighting(ctx context.Context, s sighting.Sighting) (sighting.Sighting, error)
	GetSighting(ctx context.Context, id int64) (sighting.Sighting, error)
	DeleteSighting(ctx context.Context, id int64) error
	ListSightings(ctx context.Context) ([]sighting.Sighting, error)
	ListSightingsByUser(ctx context.Context, userID int64) ([]sighting.Sighting, error)
}

// NotificationStore persists user notifications.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error)
	UpdateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error)
	GetNotification(ctx context.Context, id int64) (notification.Notification, error)

	// ListNotificationsByUser returns the user's notifications newest first.
	ListNotificationsByUser(ctx context.Context, userID int64) ([]notification.Notification, error)
}

// SpeciesStore persists the species catalog.
type SpeciesStore interface {
	CreateSpecies(ctx context.Context, sp species.Species) (species.Species, error)
	UpdateSpecies(ctx context.Context, sp species.Species) (species.Species, error)
	GetSpecies(ctx context.Context, id int64) (species.Species, error)
	GetSpeciesByName(ctx context.Context, name string) (species.Species, error)
	SearchSpeciesByName(ctx context.Context, query string) ([]species.Species, error)
	SearchSpeciesByCategory(ctx context.Context, query string) ([]species.Species, error)
	ListSpecies(ctx context.Context) ([]species.Species, error)
}

// ReportStore persists moderation reports.
type ReportStore interface {
	CreateReport(ctx context.Context, r report.Report) (report.Report, error)
	UpdateReport(ctx context.Context, r report.Report) (report.Report, error)
	GetReport(ctx context.Context, id int64) (report.Report, error)
	HasReport(ctx context.Context, sightingID, userID int64) (bool, error)
	ListReportsBySighting(ctx context.Context, sightingID int64) ([]report.Report, error)
	ListReportsByUser(ctx context.Context, userID int64) ([]report.Report, error)
	ListReports(ctx context.Context) ([]report.Report, error)
}
