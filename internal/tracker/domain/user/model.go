package user

import "time"

// User is a registered reporter of wildlife sightings. The logged-animal and
// unique-species counters are denormalized aggregates owned by the sighting
// service; nothing else writes them.
type User struct {
	ID                 int64      `json:"id"`
	Username           string     `json:"username"`
	PasswordHash       string     `json:"-"`
	DisplayName        string     `json:"displayName,omitempty"`
	Bio                string     `json:"bio,omitempty"`
	ProfilePictureURL  string     `json:"profilePictureUrl,omitempty"`
	TotalAnimalsLogged int        `json:"totalAnimalsLogged"`
	UniqueSpeciesCount int        `json:"uniqueSpeciesCount"`
	LastActivityDate   *time.Time `json:"lastActivityDate,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// View is the externally visible shape of a user record.
type View struct {
	ID                 int64      `json:"id"`
	Username           string     `json:"username"`
	DisplayName        string     `json:"displayName,omitempty"`
	Bio                string     `json:"bio,omitempty"`
	ProfilePictureURL  string     `json:"profilePictureUrl,omitempty"`
	TotalAnimalsLogged int        `json:"totalAnimalsLogged"`
	UniqueSpeciesCount int        `json:"uniqueSpeciesCount"`
	LastActivityDate   *time.Time `json:"lastActivityDate,omitempty"`
}

// AsView strips credential material from a user record.
func (u User) AsView() View {
	return View{
		ID:                 u.ID,
		Username:           u.Username,
		DisplayName:        u.DisplayName,
		Bio:                u.Bio,
		ProfilePictureURL:  u.ProfilePictureURL,
		TotalAnimalsLogged: u.TotalAnimalsLogged,
		UniqueSpeciesCount: u.UniqueSpeciesCount,
		LastActivityDate:   u.LastActivityDate,
	}
}
