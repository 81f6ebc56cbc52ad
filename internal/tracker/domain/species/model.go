package species

import "time"

// Species is a catalog entry reporters can match sightings against.
type Species struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
