package reports

import (
	"context"
	"fmt"
	"strings"

	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/report"
	"github.com/valkaylee/wildlifetracker/internal/tracker/storage"
	"github.com/valkaylee/wildlifetracker/pkg/logger"
)

// Service manages moderation reports filed against sightings.
type Service struct {
	users     storage.UserStore
	sightings storage.SightingStore
	store     storage.ReportStore
	log       *logger.Logger
}

// New constructs a report service.
func New(users storage.UserStore, sightings storage.SightingStore, store storage.ReportStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("reports")
	}
	return &Service{users: users, sightings: sightings, store: store, log: log}
}

// File creates a report after checking the sighting and reporter exist and
// that the reporter has not already flagged this sighting.
func (s *Service) File(ctx context.Context, sightingID, userID int64, reason string) (report.Report, error) {
	if strings.TrimSpace(reason) == "" {
		return report.Report{}, fmt.Errorf("reason is required")
	}

	already, err := s.store.HasReport(ctx, sightingID, userID)
	if err != nil {
		return report.Report{}, err
	}
	if already {
		return report.Report{}, fmt.Errorf("user %d already reported sighting %d", userID, sightingID)
	}

	if _, err := s.sightings.GetSighting(ctx, sightingID); err != nil {
		return report.Report{}, err
	}
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return report.Report{}, err
	}

	created, err := s.store.CreateReport(ctx, report.Report{
		SightingID: sightingID,
		UserID:     userID,
		Reason:     reason,
		Status:     report.StatusPending,
	})
	if err != nil {
		return report.Report{}, err
	}
	s.log.WithField("report_id", created.ID).
		WithField("sighting_id", sightingID).
		WithField("user_id", userID).
		Info("report filed")
	return created, nil
}

// Get returns one report.
func (s *Service) Get(ctx context.Context, id int64) (report.Report, error) {
	return s.store.GetReport(ctx, id)
}

// BySighting returns every report filed against a sighting.
func (s *Service) BySighting(ctx context.Context, sightingID int64) ([]report.Report, error) {
	return s.store.ListReportsBySighting(ctx, sightingID)
}

// ByUser returns every report a user has filed.
func (s *Service) ByUser(ctx context.Context, userID int64) ([]report.Report, error) {
	return s.store.ListReportsByUser(ctx, userID)
}

// List returns all reports.
func (s *Service) List(ctx context.Context) ([]report.Report, error) {
	return s.store.ListReports(ctx)
}

// SetStatus moves a report through moderation.
func (s *Service) SetStatus(ctx context.Context, id int64, status report.Status) (report.Report, error) {
	if !status.Valid() {
		return report.Report{}, fmt.Errorf("unsupported report status %q", status)
	}
	r, err := s.store.GetReport(ctx, id)
	if err != nil {
		return report.Report{}, err
	}
	r.Status = status
	updated, err := s.store.UpdateReport(ctx, r)
	if err != nil {
		return report.Report{}, err
	}
	s.log.WithField("report_id", id).WithField("status", string(status)).Info("report status changed")
	return updated, nil
}
