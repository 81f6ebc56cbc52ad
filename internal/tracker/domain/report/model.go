package report

import "time"

// Status tracks a report through moderation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusReviewed  Status = "reviewed"
	StatusDismissed Status = "dismissed"
)

// Valid reports whether s is a known moderation status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusReviewed, StatusDismissed:
		return true
	}
	return false
}

// Report flags a sighting for moderator attention. A user may report a given
// sighting at most once.
type Report struct {
	ID         int64     `json:"id"`
	SightingID int64     `json:"sightingId"`
	UserID     int64     `json:"userId"`
	Reason     string    `json:"reason"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
