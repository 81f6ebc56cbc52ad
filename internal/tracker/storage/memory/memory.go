package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/notification"
	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/report"
	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/sighting"
	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/species"
	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/user"
	"github.com/valkaylee/wildlifetracker/internal/tracker/storage"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use and is primarily intended for tests and local
// development.
type Store struct {
	mu              sync.RWMutex
	nextID          int64
	users           map[int64]user.User
	usersByName     map[string]int64
	sightings       map[int64]sighting.Sighting
	notifications   map[int64]notification.Notification
	speciesCatalog  map[int64]species.Species
	speciesByName   map[string]int64
	reports         map[int64]report.Report
	reportsBySubmit map[string]int64
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.SightingStore = (*Store)(nil)
var _ storage.NotificationStore = (*Store)(nil)
var _ storage.SpeciesStore = (*Store)(nil)
var _ storage.ReportStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID:          1,
		users:           make(map[int64]user.User),
		usersByName:     make(map[string]int64),
		sightings:       make(map[int64]sighting.Sighting),
		notifications:   make(map[int64]notification.Notification),
		speciesCatalog:  make(map[int64]species.Species),
		speciesByName:   make(map[string]int64),
		reports:         make(map[int64]report.Report),
		reportsBySubmit: make(map[string]int64),
	}
}

func (s *Store) nextIDLocked() int64 {
	id := s.nextID
	s.nextID++
	return id
}

func submitKey(sightingID, userID int64) string {
	return fmt.Sprintf("%d:%d", sightingID, userID)
}

// UserStore implementation ----------------------------------------------------

// cloneUser replaces the pointer fields with fresh copies so callers and the
// store never share mutable memory.
func cloneUser(u user.User) user.User {
	if u.LastActivityDate != nil {
		t := *u.LastActivityDate
		u.LastActivityDate = &t
	}
	return u
}

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usersByName[u.Username]; taken {
		return user.User{}, fmt.Errorf("username %s already exists", u.Username)
	}
	if u.ID == 0 {
		u.ID = s.nextIDLocked()
	} else if _, exists := s.users[u.ID]; exists {
		return user.User{}, fmt.Errorf("user %d already exists", u.ID)
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	s.users[u.ID] = cloneUser(u)
	s.usersByName[u.Username] = u.ID
	return u, nil
}

func (s *Store) UpdateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.users[u.ID]
	if !ok {
		return user.User{}, fmt.Errorf("user %d %w", u.ID, storage.ErrNotFound)
	}

	u.Username = original.Username
	u.CreatedAt = original.CreatedAt
	u.UpdatedAt = time.Now().UTC()

	s.users[u.ID] = cloneUser(u)
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id int64) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, fmt.Errorf("user %d %w", id, storage.ErrNotFound)
	}
	return cloneUser(u), nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByName[username]
	if !ok {
		return user.User{}, fmt.Errorf("user %s %w", username, storage.ErrNotFound)
	}
	return cloneUser(s.users[id]), nil
}

func (s *Store) ListUsersRanked(_ context.Context) ([]user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]user.User, 0, len(s.users))
	for _, u := range s.users {
		result = append(result, cloneUser(u))
	}
	// Stable sort keyed on insertion order so ties keep a deterministic
	// order, matching what a SQL ORDER BY over the id-clustered table does.
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.TotalAnimalsLogged != b.TotalAnimalsLogged {
			return a.TotalAnimalsLogged > b.TotalAnimalsLogged
		}
		if a.UniqueSpeciesCount != b.UniqueSpeciesCount {
			return a.UniqueSpeciesCount > b.UniqueSpeciesCount
		}
		return laterActivity(a.LastActivityDate, b.LastActivityDate)
	})
	return result, nil
}

// laterActivity orders non-nil timestamps descending; users with no recorded
// activity sort last.
func laterActivity(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.After(*b)
	}
}

// SightingStore implementation ------------------------------------------------

// cloneSighting replaces the pointer fields with fresh copies so callers and
// the store never share mutable memory.
func cloneSighting(sg sighting.Sighting) sighting.Sighting {
	if sg.PixelX != nil {
		x := *sg.PixelX
		sg.PixelX = &x
	}
	if sg.PixelY != nil {
		y := *sg.PixelY
		sg.PixelY = &y
	}
	if sg.UserID != nil {
		id := *sg.UserID
		sg.UserID = &id
	}
	return sg
}

func (s *Store) CreateSighting(_ context.Context, sg sighting.Sighting) (sighting.Sighting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sg.ID == 0 {
		sg.ID = s.nextIDLocked()
	} else if _, exists := s.sightings[sg.ID]; exists {
		return sighting.Sighting{}, fmt.Errorf("sighting %d already exists", sg.ID)
	}
	if sg.Timestamp.IsZero() {
		sg.Timestamp = time.Now().UTC()
	}

	s.sightings[sg.ID] = cloneSighting(sg)
	return sg, nil
}

func (s *Store) UpdateSighting(_ context.Context, sg sighting.Sighting) (sighting.Sighting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sightings[sg.ID]; !ok {
		return sighting.Sighting{}, fmt.Errorf("sighting %d %w", sg.ID, storage.ErrNotFound)
	}
	s.sightings[sg.ID] = cloneSighting(sg)
	return sg, nil
}

func (s *Store) GetSighting(_ context.Context, id int64) (sighting.Sighting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sg, ok := s.sightings[id]
	if !ok {
		return sighting.Sighting{}, fmt.Errorf("sighting %d %w", id, storage.ErrNotFound)
	}
	return cloneSighting(sg), nil
}

func (s *Store) DeleteSighting(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sightings[id]; !ok {
		return fmt.Errorf("sighting %d %w", id, storage.ErrNotFound)
	}
	delete(s.sightings, id)
	return nil
}

func (s *Store) ListSightings(_ context.Context) ([]sighting.Sighting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]sighting.Sighting, 0, len(s.sightings))
	for _, sg := range s.sightings {
		result = append(result, cloneSighting(sg))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Store) ListSightingsByUser(_ context.Context, userID int64) ([]sighting.Sighting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]sighting.Sighting, 0)
	for _, sg := range s.sightings {
		if sg.UserID != nil && *sg.UserID == userID {
			result = append(result, cloneSighting(sg))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// NotificationStore implementation --------------------------------------------

func (s *Store) CreateNotification(_ context.Context, n notification.Notification) (notification.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.ID == 0 {
		n.ID = s.nextIDLocked()
	} else if _, exists := s.notifications[n.ID]; exists {
		return notification.Notification{}, fmt.Errorf("notification %d already exists", n.ID)
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now().UTC()
	}

	s.notifications[n.ID] = n
	return n, nil
}

func (s *Store) UpdateNotification(_ context.Context, n notification.Notification) (notification.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notifications[n.ID]; !ok {
		return notification.Notification{}, fmt.Errorf("notification %d %w", n.ID, storage.ErrNotFound)
	}
	s.notifications[n.ID] = n
	return n, nil
}

func (s *Store) GetNotification(_ context.Context, id int64) (notification.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notifications[id]
	if !ok {
		return notification.Notification{}, fmt.Errorf("notification %d %w", id, storage.ErrNotFound)
	}
	return n, nil
}

func (s *Store) ListNotificationsByUser(_ context.Context, userID int64) ([]notification.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]notification.Notification, 0)
	for _, n := range s.notifications {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].ID > result[j].ID
		}
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	return result, nil
}

// SpeciesStore implementation -------------------------------------------------

func (s *Store) CreateSpecies(_ context.Context, sp species.Species) (species.Species, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The index is keyed lowercased so lookups match the SQL backend's
	// case-insensitive uniqueness.
	if _, taken := s.speciesByName[strings.ToLower(sp.Name)]; taken {
		return species.Species{}, fmt.Errorf("species %s already exists", sp.Name)
	}
	if sp.ID == 0 {
		sp.ID = s.nextIDLocked()
	}
	sp.CreatedAt = time.Now().UTC()

	s.speciesCatalog[sp.ID] = sp
	s.speciesByName[strings.ToLower(sp.Name)] = sp.ID
	return sp, nil
}

func (s *Store) UpdateSpecies(_ context.Context, sp species.Species) (species.Species, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.speciesCatalog[sp.ID]
	if !ok {
		return species.Species{}, fmt.Errorf("species %d %w", sp.ID, storage.ErrNotFound)
	}
	if !strings.EqualFold(sp.Name, original.Name) {
		if _, taken := s.speciesByName[strings.ToLower(sp.Name)]; taken {
			return species.Species{}, fmt.Errorf("species %s already exists", sp.Name)
		}
		delete(s.speciesByName, strings.ToLower(original.Name))
		s.speciesByName[strings.ToLower(sp.Name)] = sp.ID
	}
	sp.CreatedAt = original.CreatedAt

	s.speciesCatalog[sp.ID] = sp
	return sp, nil
}

func (s *Store) GetSpecies(_ context.Context, id int64) (species.Species, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sp, ok := s.speciesCatalog[id]
	if !ok {
		return species.Species{}, fmt.Errorf("species %d %w", id, storage.ErrNotFound)
	}
	return sp, nil
}

func (s *Store) GetSpeciesByName(_ context.Context, name string) (species.Species, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.speciesByName[strings.ToLower(name)]
	if !ok {
		return species.Species{}, fmt.Errorf("species %s %w", name, storage.ErrNotFound)
	}
	return s.speciesCatalog[id], nil
}

func (s *Store) SearchSpeciesByName(_ context.Context, query string) ([]species.Species, error) {
	return s.searchSpecies(func(sp species.Species) string { return sp.Name }, query), nil
}

func (s *Store) SearchSpeciesByCategory(_ context.Context, query string) ([]species.Species, error) {
	return s.searchSpecies(func(sp species.Species) string { return sp.Category }, query), nil
}

func (s *Store) searchSpecies(field func(species.Species) string, query string) []species.Species {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query = strings.ToLower(query)
	result := make([]species.Species, 0)
	for _, sp := range s.speciesCatalog {
		if strings.Contains(strings.ToLower(field(sp)), query) {
			result = append(result, sp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (s *Store) ListSpecies(_ context.Context) ([]species.Species, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]species.Species, 0, len(s.speciesCatalog))
	for _, sp := range s.speciesCatalog {
		result = append(result, sp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// ReportStore implementation --------------------------------------------------

func (s *Store) CreateReport(_ context.Context, r report.Report) (report.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := submitKey(r.SightingID, r.UserID)
	if _, exists := s.reportsBySubmit[key]; exists {
		return report.Report{}, fmt.Errorf("user %d already reported sighting %d", r.UserID, r.SightingID)
	}
	if r.ID == 0 {
		r.ID = s.nextIDLocked()
	}
	if r.Status == "" {
		r.Status = report.StatusPending
	}
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now

	s.reports[r.ID] = r
	s.reportsBySubmit[key] = r.ID
	return r, nil
}

func (s *Store) UpdateReport(_ context.Context, r report.Report) (report.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.reports[r.ID]
	if !ok {
		return report.Report{}, fmt.Errorf("report %d %w", r.ID, storage.ErrNotFound)
	}
	r.SightingID = original.SightingID
	r.UserID = original.UserID
	r.CreatedAt = original.CreatedAt
	r.UpdatedAt = time.Now().UTC()

	s.reports[r.ID] = r
	return r, nil
}

func (s *Store) GetReport(_ context.Context, id int64) (report.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reports[id]
	if !ok {
		return report.Report{}, fmt.Errorf("report %d %w", id, storage.ErrNotFound)
	}
	return r, nil
}

func (s *Store) HasReport(_ context.Context, sightingID, userID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.reportsBySubmit[submitKey(sightingID, userID)]
	return exists, nil
}

func (s *Store) ListReportsBySighting(_ context.Context, sightingID int64) ([]report.Report, error) {
	return s.filterReports(func(r report.Report) bool { return r.SightingID == sightingID }), nil
}

func (s *Store) ListReportsByUser(_ context.Context, userID int64) ([]report.Report, error) {
	return s.filterReports(func(r report.Report) bool { return r.UserID == userID }), nil
}

func (s *Store) ListReports(_ context.Context) ([]report.Report, error) {
	return s.filterReports(func(report.Report) bool { return true }), nil
}

func (s *Store) filterReports(keep func(report.Report) bool) []report.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]report.Report, 0)
	for _, r := range s.reports {
		if keep(r) {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}
