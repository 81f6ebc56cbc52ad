package leaderboard

import "time"

// Entry is one row of the ranked leaderboard. Entries are derived on every
// read and never persisted.
type Entry struct {
	UserID             int64      `json:"userId"`
	Username           string     `json:"username"`
	DisplayName        string     `json:"displayName"`
	ProfilePictureURL  string     `json:"profilePictureUrl,omitempty"`
	TotalAnimalsLogged int        `json:"totalAnimalsLogged"`
	UniqueSpeciesCount int        `json:"uniqueSpeciesCount"`
	LastActivityDate   *time.Time `json:"lastActivityDate,omitempty"`
	Rank               int        `json:"rank"`
}
