package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/notification"
	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/report"
	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/sighting"
	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/species"
	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/user"
	"github.com/valkaylee/wildlifetracker/internal/tracker/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.SightingStore = (*Store)(nil)
var _ storage.NotificationStore = (*Store)(nil)
var _ storage.SpeciesStore = (*Store)(nil)
var _ storage.ReportStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func notFound(entity string, key any) error {
	return fmt.Errorf("%s %v %w", entity, key, storage.ErrNotFound)
}

// --- UserStore --------------------------------------------------------------

const userColumns = `id, username, password_hash, display_name, bio, profile_picture_url,
	total_animals_logged, unique_species_count, last_activity_date, created_at, updated_at`

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tracker_users (username, password_hash, display_name, bio, profile_picture_url,
			total_animals_logged, unique_species_count, last_activity_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`, u.Username, u.PasswordHash, u.DisplayName, u.Bio, u.ProfilePictureURL,
		u.TotalAnimalsLogged, u.UniqueSpeciesCount, toNullTimePtr(u.LastActivityDate), u.CreatedAt, u.UpdatedAt).Scan(&u.ID)
	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u user.User) (user.User, error) {
	u.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE tracker_users
		SET username = $2, password_hash = $3, display_name = $4, bio = $5, profile_picture_url = $6,
			total_animals_logged = $7, unique_species_count = $8, last_activity_date = $9, updated_at = $10
		WHERE id = $1
	`, u.ID, u.Username, u.PasswordHash, u.DisplayName, u.Bio, u.ProfilePictureURL,
		u.TotalAnimalsLogged, u.UniqueSpeciesCount, toNullTimePtr(u.LastActivityDate), u.UpdatedAt)
	if err != nil {
		return user.User{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return user.User{}, notFound("user", u.ID)
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (user.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM tracker_users
		WHERE id = $1
	`, id)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return user.User{}, notFound("user", id)
	}
	return u, err
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM tracker_users
		WHERE username = $1
	`, username)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return user.User{}, notFound("user", username)
	}
	return u, err
}

func (s *Store) ListUsersRanked(ctx context.Context) ([]user.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM tracker_users
		ORDER BY total_animals_logged DESC, unique_species_count DESC, last_activity_date DESC NULLS LAST, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (user.User, error) {
	var (
		u            user.User
		lastActivity sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.DisplayName, &u.Bio, &u.ProfilePictureURL,
		&u.TotalAnimalsLogged, &u.UniqueSpeciesCount, &lastActivity, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return user.User{}, err
	}
	if lastActivity.Valid {
		t := lastActivity.Time.UTC()
		u.LastActivityDate = &t
	}
	return u, nil
}

// --- SightingStore ----------------------------------------------------------

const sightingColumns = `id, species, location, description, image_url, observed_at, pixel_x, pixel_y, user_id`

func (s *Store) CreateSighting(ctx context.Context, sg sighting.Sighting) (sighting.Sighting, error) {
	if sg.Timestamp.IsZero() {
		sg.Timestamp = time.Now().UTC()
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tracker_sightings (species, location, description, image_url, observed_at, pixel_x, pixel_y, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, sg.Species, sg.Location, sg.Description, sg.ImageURL, sg.Timestamp, sg.PixelX, sg.PixelY, sg.UserID).Scan(&sg.ID)
	if err != nil {
		return sighting.Sighting{}, err
	}
	return sg, nil
}

func (s *Store) UpdateSighting(ctx context.Context, sg sighting.Sighting) (sighting.Sighting, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE tracker_sightings
		SET species = $2, location = $3, description = $4, image_url = $5, observed_at = $6,
			pixel_x = $7, pixel_y = $8, user_id = $9
		WHERE id = $1
	`, sg.ID, sg.Species, sg.Location, sg.Description, sg.ImageURL, sg.Timestamp, sg.PixelX, sg.PixelY, sg.UserID)
	if err != nil {
		return sighting.Sighting{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sighting.Sighting{}, notFound("sighting", sg.ID)
	}
	return sg, nil
}

func (s *Store) GetSighting(ctx context.Context, id int64) (sighting.Sighting, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+sightingColumns+`
		FROM tracker_sightings
		WHERE id = $1
	`, id)

	sg, err := scanSighting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return sighting.Sighting{}, notFound("sighting", id)
	}
	return sg, err
}

func (s *Store) DeleteSighting(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM tracker_sightings WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return notFound("sighting", id)
	}
	return nil
}

func (s *Store) ListSightings(ctx context.Context) ([]sighting.Sighting, error) {
	return s.querySightings(ctx, `
		SELECT `+sightingColumns+`
		FROM tracker_sightings
		ORDER BY observed_at DESC, id DESC
	`)
}

func (s *Store) ListSightingsByUser(ctx context.Context, userID int64) ([]sighting.Sighting, error) {
	return s.querySightings(ctx, `
		SELECT `+sightingColumns+`
		FROM tracker_sightings
		WHERE user_id = $1
		ORDER BY observed_at DESC, id DESC
	`, userID)
}

func (s *Store) querySightings(ctx context.Context, query string, args ...any) ([]sighting.Sighting, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []sighting.Sighting
	for rows.Next() {
		sg, err := scanSighting(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, sg)
	}
	return result, rows.Err()
}

func scanSighting(row rowScanner) (sighting.Sighting, error) {
	var (
		sg     sighting.Sighting
		pixelX sql.NullInt64
		pixelY sql.NullInt64
		userID sql.NullInt64
	)
	err := row.Scan(&sg.ID, &sg.Species, &sg.Location, &sg.Description, &sg.ImageURL, &sg.Timestamp, &pixelX, &pixelY, &userID)
	if err != nil {
		return sighting.Sighting{}, err
	}
	if pixelX.Valid {
		x := int(pixelX.Int64)
		sg.PixelX = &x
	}
	if pixelY.Valid {
		y := int(pixelY.Int64)
		sg.PixelY = &y
	}
	if userID.Valid {
		id := userID.Int64
		sg.UserID = &id
	}
	return sg, nil
}

// --- NotificationStore ------------------------------------------------------

func (s *Store) CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now().UTC()
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tracker_notifications (user_id, message, created_at, read)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, n.UserID, n.Message, n.Timestamp, n.Read).Scan(&n.ID)
	if err != nil {
		return notification.Notification{}, err
	}
	return n, nil
}

func (s *Store) UpdateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE tracker_notifications
		SET message = $2, read = $3
		WHERE id = $1
	`, n.ID, n.Message, n.Read)
	if err != nil {
		return notification.Notification{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return notification.Notification{}, notFound("notification", n.ID)
	}
	return n, nil
}

func (s *Store) GetNotification(ctx context.Context, id int64) (notification.Notification, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, message, created_at, read
		FROM tracker_notifications
		WHERE id = $1
	`, id)

	var n notification.Notification
	err := row.Scan(&n.ID, &n.UserID, &n.Message, &n.Timestamp, &n.Read)
	if errors.Is(err, sql.ErrNoRows) {
		return notification.Notification{}, notFound("notification", id)
	}
	if err != nil {
		return notification.Notification{}, err
	}
	return n, nil
}

func (s *Store) ListNotificationsByUser(ctx context.Context, userID int64) ([]notification.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, message, created_at, read
		FROM tracker_notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []notification.Notification
	for rows.Next() {
		var n notification.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Timestamp, &n.Read); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

// --- SpeciesStore -----------------------------------------------------------

func (s *Store) CreateSpecies(ctx context.Context, sp species.Species) (species.Species, error) {
	sp.CreatedAt = time.Now().UTC()

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tracker_species (name, category, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`, sp.Name, sp.Category, sp.CreatedAt).Scan(&sp.ID)
	if err != nil {
		return species.Species{}, err
	}
	return sp, nil
}

func (s *Store) UpdateSpecies(ctx context.Context, sp species.Species) (species.Species, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE tracker_species
		SET name = $2, category = $3
		WHERE id = $1
	`, sp.ID, sp.Name, sp.Category)
	if err != nil {
		return species.Species{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return species.Species{}, notFound("species", sp.ID)
	}
	return sp, nil
}

func (s *Store) GetSpecies(ctx context.Context, id int64) (species.Species, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, category, created_at
		FROM tracker_species
		WHERE id = $1
	`, id)

	sp, err := scanSpecies(row)
	if errors.Is(err, sql.ErrNoRows) {
		return species.Species{}, notFound("species", id)
	}
	return sp, err
}

func (s *Store) GetSpeciesByName(ctx context.Context, name string) (species.Species, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, category, created_at
		FROM tracker_species
		WHERE lower(name) = lower($1)
	`, name)

	sp, err := scanSpecies(row)
	if errors.Is(err, sql.ErrNoRows) {
		return species.Species{}, notFound("species", name)
	}
	return sp, err
}

func (s *Store) SearchSpeciesByName(ctx context.Context, query string) ([]species.Species, error) {
	return s.querySpecies(ctx, `
		SELECT id, name, category, created_at
		FROM tracker_species
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY name
	`, query)
}

func (s *Store) SearchSpeciesByCategory(ctx context.Context, query string) ([]species.Species, error) {
	return s.querySpecies(ctx, `
		SELECT id, name, category, created_at
		FROM tracker_species
		WHERE category ILIKE '%' || $1 || '%'
		ORDER BY name
	`, query)
}

func (s *Store) ListSpecies(ctx context.Context) ([]species.Species, error) {
	return s.querySpecies(ctx, `
		SELECT id, name, category, created_at
		FROM tracker_species
		ORDER BY name
	`)
}

func (s *Store) querySpecies(ctx context.Context, query string, args ...any) ([]species.Species, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []species.Species
	for rows.Next() {
		sp, err := scanSpecies(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, sp)
	}
	return result, rows.Err()
}

func scanSpecies(row rowScanner) (species.Species, error) {
	var sp species.Species
	if err := row.Scan(&sp.ID, &sp.Name, &sp.Category, &sp.CreatedAt); err != nil {
		return species.Species{}, err
	}
	return sp, nil
}

// --- ReportStore ------------------------------------------------------------

const reportColumns = `id, sighting_id, user_id, reason, status, created_at, updated_at`

func (s *Store) CreateReport(ctx context.Context, r report.Report) (report.Report, error) {
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tracker_reports (sighting_id, user_id, reason, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, r.SightingID, r.UserID, r.Reason, r.Status, r.CreatedAt, r.UpdatedAt).Scan(&r.ID)
	if err != nil {
		return report.Report{}, err
	}
	return r, nil
}

func (s *Store) UpdateReport(ctx context.Context, r report.Report) (report.Report, error) {
	r.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE tracker_reports
		SET reason = $2, status = $3, updated_at = $4
		WHERE id = $1
	`, r.ID, r.Reason, r.Status, r.UpdatedAt)
	if err != nil {
		return report.Report{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return report.Report{}, notFound("report", r.ID)
	}
	return r, nil
}

func (s *Store) GetReport(ctx context.Context, id int64) (report.Report, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+reportColumns+`
		FROM tracker_reports
		WHERE id = $1
	`, id)

	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return report.Report{}, notFound("report", id)
	}
	return r, err
}

func (s *Store) HasReport(ctx context.Context, sightingID, userID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM tracker_reports WHERE sighting_id = $1 AND user_id = $2
		)
	`, sightingID, userID).Scan(&exists)
	return exists, err
}

func (s *Store) ListReportsBySighting(ctx context.Context, sightingID int64) ([]report.Report, error) {
	return s.queryReports(ctx, `
		SELECT `+reportColumns+`
		FROM tracker_reports
		WHERE sighting_id = $1
		ORDER BY created_at DESC
	`, sightingID)
}

func (s *Store) ListReportsByUser(ctx context.Context, userID int64) ([]report.Report, error) {
	return s.queryReports(ctx, `
		SELECT `+reportColumns+`
		FROM tracker_reports
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
}

func (s *Store) ListReports(ctx context.Context) ([]report.Report, error) {
	return s.queryReports(ctx, `
		SELECT `+reportColumns+`
		FROM tracker_reports
		ORDER BY created_at DESC
	`)
}

func (s *Store) queryReports(ctx context.Context, query string, args ...any) ([]report.Report, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []report.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func scanReport(row rowScanner) (report.Report, error) {
	var r report.Report
	if err := row.Scan(&r.ID, &r.SightingID, &r.UserID, &r.Reason, &r.Status, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return report.Report{}, err
	}
	return r, nil
}

func toNullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
