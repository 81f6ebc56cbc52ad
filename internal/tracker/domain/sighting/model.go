package sighting

import "time"

// Sighting is a geotagged wildlife observation. UserID is nil for anonymous
// submissions; only owned sightings feed the reporter's statistics.
type Sighting struct {
	ID          int64     `json:"id"`
	Species     string    `json:"species,omitempty"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	PixelX      *int      `json:"pixelX,omitempty"`
	PixelY      *int      `json:"pixelY,omitempty"`
	UserID      *int64    `json:"userId,omitempty"`
}
