package tracker

import (
	"context"
	"fmt"

	"github.com/valkaylee/wildlifetracker/internal/tracker/command"
	lbsvc "github.com/valkaylee/wildlifetracker/internal/tracker/services/leaderboard"
	"github.com/valkaylee/wildlifetracker/internal/tracker/services/notifications"
	"github.com/valkaylee/wildlifetracker/internal/tracker/services/reports"
	"github.com/valkaylee/wildlifetracker/internal/tracker/services/sightings"
	speciessvc "github.com/valkaylee/wildlifetracker/internal/tracker/services/species"
	"github.com/valkaylee/wildlifetracker/internal/tracker/services/users"
	"github.com/valkaylee/wildlifetracker/internal/tracker/storage"
	"github.com/valkaylee/wildlifetracker/internal/tracker/storage/memory"
	"github.com/valkaylee/wildlifetracker/internal/tracker/system"
	"github.com/valkaylee/wildlifetracker/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Users         storage.UserStore
	Sightings     storage.SightingStore
	Notifications storage.NotificationStore
	Species       storage.SpeciesStore
	Reports       storage.ReportStore
}

// Options carries the non-store knobs of the application.
type Options struct {
	// UploadsDir is where profile pictures land. Empty disables uploads.
	UploadsDir string
}

// Application ties domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Users         *users.Service
	Sightings     *sightings.Service
	Notifications *notifications.Service
	Leaderboard   *lbsvc.Service
	Species       *speciessvc.Service
	Reports       *reports.Service
	Router        *command.Router
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, opts Options, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("tracker")
	}

	mem := memory.New()
	if stores.Users == nil {
		stores.Users = mem
	}
	if stores.Sightings == nil {
		stores.Sightings = mem
	}
	if stores.Notifications == nil {
		stores.Notifications = mem
	}
	if stores.Species == nil {
		stores.Species = mem
	}
	if stores.Reports == nil {
		stores.Reports = mem
	}

	manager := system.NewManager()

	userService := users.New(stores.Users, opts.UploadsDir, log)
	sightingService := sightings.New(stores.Users, stores.Sightings, log)
	notificationService := notifications.New(stores.Users, stores.Notifications, log)
	leaderboardService := lbsvc.New(stores.Users, log)
	speciesService := speciessvc.New(stores.Species, log)
	reportService := reports.New(stores.Users, stores.Sightings, stores.Reports, log)

	router := command.NewRouter(userService, sightingService, notificationService, leaderboardService, log)

	reconciler := sightings.NewReconciler(sightingService, stores.Users, log)
	if err := manager.Register(reconciler); err != nil {
		return nil, fmt.Errorf("register %s: %w", reconciler.Name(), err)
	}

	return &Application{
		manager:       manager,
		log:           log,
		Users:         userService,
		Sightings:     sightingService,
		Notifications: notificationService,
		Leaderboard:   leaderboardService,
		Species:       speciesService,
		Reports:       reportService,
		Router:        router,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
