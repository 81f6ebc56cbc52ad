package sightings

import (
	"context"
	"fmt"
	"time"

	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/sighting"
	"github.com/valkaylee/wildlifetracker/internal/tracker/storage"
	"github.com/valkaylee/wildlifetracker/pkg/logger"
)

// Service manages sighting records and the denormalized reporter statistics
// derived from them. Every mutation of an owned sighting recomputes the
// owner's counters from the full sighting set; incremental deltas would go
// stale on species edits and deletes.
type Service struct {
	users storage.UserStore
	store storage.SightingStore
	log   *logger.Logger
}

// New constructs a sighting service.
func New(users storage.UserStore, store storage.SightingStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("sightings")
	}
	return &Service{users: users, store: store, log: log}
}

// Create stores a sighting and refreshes the owner's statistics. Ownerless
// sightings skip the recomputation.
func (s *Service) Create(ctx context.Context, sg sighting.Sighting) (sighting.Sighting, error) {
	if sg.Timestamp.IsZero() {
		sg.Timestamp = time.Now().UTC()
	}
	created, err := s.store.CreateSighting(ctx, sg)
	if err != nil {
		return sighting.Sighting{}, err
	}

	if created.UserID != nil {
		if err := s.Recalculate(ctx, *created.UserID); err != nil {
			return sighting.Sighting{}, err
		}
	}

	s.log.WithField("sighting_id", created.ID).WithField("species", created.Species).Info("sighting created")
	return created, nil
}

// Get returns one sighting.
func (s *Service) Get(ctx context.Context, id int64) (sighting.Sighting, error) {
	return s.store.GetSighting(ctx, id)
}

// List returns every sighting.
func (s *Service) List(ctx context.Context) ([]sighting.Sighting, error) {
	return s.store.ListSightings(ctx)
}

// Update overwrites the mutable fields of a sighting. Ownership never
// changes through an update; the owner's statistics are refreshed in case
// the species did.
func (s *Service) Update(ctx context.Context, id int64, upd sighting.Sighting) (sighting.Sighting, error) {
	existing, err := s.store.GetSighting(ctx, id)
	if err != nil {
		return sighting.Sighting{}, err
	}

	existing.Species = upd.Species
	existing.Location = upd.Location
	existing.Description = upd.Description
	existing.ImageURL = upd.ImageURL
	existing.PixelX = upd.PixelX
	existing.PixelY = upd.PixelY
	if upd.Timestamp.IsZero() {
		existing.Timestamp = time.Now().UTC()
	} else {
		existing.Timestamp = upd.Timestamp
	}

	saved, err := s.store.UpdateSighting(ctx, existing)
	if err != nil {
		return sighting.Sighting{}, err
	}

	if saved.UserID != nil {
		if err := s.Recalculate(ctx, *saved.UserID); err != nil {
			return sighting.Sighting{}, err
		}
	}
	return saved, nil
}

// Delete removes a sighting and refreshes the former owner's statistics.
func (s *Service) Delete(ctx context.Context, id int64) error {
	sg, err := s.store.GetSighting(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.DeleteSighting(ctx, id); err != nil {
		return err
	}

	if sg.UserID != nil {
		if err := s.Recalculate(ctx, *sg.UserID); err != nil {
			return err
		}
	}
	s.log.WithField("sighting_id", id).Info("sighting deleted")
	return nil
}

// Recalculate recomputes a user's aggregates from their current sightings:
// total count, distinct non-empty species, and last activity set to now.
// A vanished user is a hard failure; stats for nobody are meaningless.
func (s *Service) Recalculate(ctx context.Context, userID int64) error {
	return s.recompute(ctx, userID, true)
}

// recompute does the actual counter refresh. touchActivity distinguishes a
// user mutation (which counts as activity) from a background reconciliation
// sweep (which must not).
func (s *Service) recompute(ctx context.Context, userID int64, touchActivity bool) error {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("recalculate stats: %w", err)
	}

	owned, err := s.store.ListSightingsByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("recalculate stats: %w", err)
	}

	distinct := make(map[string]struct{})
	for _, sg := range owned {
		if sg.Species != "" {
			distinct[sg.Species] = struct{}{}
		}
	}

	if !touchActivity && u.TotalAnimalsLogged == len(owned) && u.UniqueSpeciesCount == len(distinct) {
		return nil
	}

	u.TotalAnimalsLogged = len(owned)
	u.UniqueSpeciesCount = len(distinct)
	if touchActivity {
		now := time.Now().UTC()
		u.LastActivityDate = &now
	}

	if _, err := s.users.UpdateUser(ctx, u); err != nil {
		return fmt.Errorf("recalculate stats: %w", err)
	}
	return nil
}
