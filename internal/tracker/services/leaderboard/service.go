package leaderboard

import (
	"context"

	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/leaderboard"
	"github.com/valkaylee/wildlifetracker/internal/tracker/storage"
	"github.com/valkaylee/wildlifetracker/pkg/logger"
)

// Service derives the ranked leaderboard from user statistics. Rankings are
// recomputed on every read; nothing here is cached or persisted.
type Service struct {
	users storage.UserStore
	log   *logger.Logger
}

// New constructs a leaderboard service.
func New(users storage.UserStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("leaderboard")
	}
	return &Service{users: users, log: log}
}

// Leaderboard returns every user as a ranked entry. The store delivers users
// already ordered by the ranking tuple; this only assigns dense 1-based
// ranks in order of appearance. Ties stay distinct consecutive ranks.
func (s *Service) Leaderboard(ctx context.Context) ([]leaderboard.Entry, error) {
	users, err := s.users.ListUsersRanked(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]leaderboard.Entry, 0, len(users))
	for i, u := range users {
		display := u.DisplayName
		if display == "" {
			display = u.Username
		}
		entries = append(entries, leaderboard.Entry{
			UserID:             u.ID,
			Username:           u.Username,
			DisplayName:        display,
			ProfilePictureURL:  u.ProfilePictureURL,
			TotalAnimalsLogged: u.TotalAnimalsLogged,
			UniqueSpeciesCount: u.UniqueSpeciesCount,
			LastActivityDate:   u.LastActivityDate,
			Rank:               i + 1,
		})
	}
	return entries, nil
}

// TopN returns the first min(n, total) entries. Bounds on n are the
// caller's responsibility; the router enforces 1..100.
func (s *Service) TopN(ctx context.Context, n int) ([]leaderboard.Entry, error) {
	entries, err := s.Leaderboard(ctx)
	if err != nil {
		return nil, err
	}
	if n > len(entries) {
		n = len(entries)
	}
	return entries[:n], nil
}

// UserRank finds a single user's entry by linear scan over the full
// ranking. A user absent from the ranking set reports false, not an error.
func (s *Service) UserRank(ctx context.Context, userID int64) (leaderboard.Entry, bool, error) {
	entries, err := s.Leaderboard(ctx)
	if err != nil {
		return leaderboard.Entry{}, false, err
	}
	for _, e := range entries {
		if e.UserID == userID {
			return e, true, nil
		}
	}
	return leaderboard.Entry{}, false, nil
}
