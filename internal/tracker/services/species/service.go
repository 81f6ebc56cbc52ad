package species

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/species"
	"github.com/valkaylee/wildlifetracker/internal/tracker/storage"
	"github.com/valkaylee/wildlifetracker/pkg/logger"
)

// Service manages the species catalog.
type Service struct {
	store storage.SpeciesStore
	log   *logger.Logger
}

// New constructs a species service.
func New(store storage.SpeciesStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("species")
	}
	return &Service{store: store, log: log}
}

// Create adds a catalog entry. Names are unique.
func (s *Service) Create(ctx context.Context, name, category string) (species.Species, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return species.Species{}, fmt.Errorf("species name is required")
	}

	if _, err := s.store.GetSpeciesByName(ctx, name); err == nil {
		return species.Species{}, fmt.Errorf("species already exists: %s", name)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return species.Species{}, err
	}

	created, err := s.store.CreateSpecies(ctx, species.Species{Name: name, Category: strings.TrimSpace(category)})
	if err != nil {
		return species.Species{}, err
	}
	s.log.WithField("species_id", created.ID).WithField("name", created.Name).Info("species created")
	return created, nil
}

// Get returns one catalog entry.
func (s *Service) Get(ctx context.Context, id int64) (species.Species, error) {
	return s.store.GetSpecies(ctx, id)
}

// GetByName returns the entry with an exact name match.
func (s *Service) GetByName(ctx context.Context, name string) (species.Species, error) {
	return s.store.GetSpeciesByName(ctx, name)
}

// SearchByName finds entries whose name contains the query,
// case-insensitively.
func (s *Service) SearchByName(ctx context.Context, query string) ([]species.Species, error) {
	return s.store.SearchSpeciesByName(ctx, query)
}

// SearchByCategory finds entries whose category contains the query,
// case-insensitively.
func (s *Service) SearchByCategory(ctx context.Context, query string) ([]species.Species, error) {
	return s.store.SearchSpeciesByCategory(ctx, query)
}

// List returns the full catalog.
func (s *Service) List(ctx context.Context) ([]species.Species, error) {
	return s.store.ListSpecies(ctx)
}

// Update renames or recategorizes an entry. Empty arguments leave the field
// unchanged.
func (s *Service) Update(ctx context.Context, id int64, name, category string) (species.Species, error) {
	sp, err := s.store.GetSpecies(ctx, id)
	if err != nil {
		return species.Species{}, err
	}

	if name = strings.TrimSpace(name); name != "" {
		sp.Name = name
	}
	if category = strings.TrimSpace(category); category != "" {
		sp.Category = category
	}
	return s.store.UpdateSpecies(ctx, sp)
}
