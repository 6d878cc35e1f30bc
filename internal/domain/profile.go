package domain

// ProfileCount holds the relation counters of a profile
type ProfileCount struct {
	Venues   int `json:"venues"`
	Bookings int `json:"bookings"`
}

// Profile is a user of the Holidaze API. Name is the identity key.
type Profile struct {
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	Bio          string        `json:"bio,omitempty"`
	Avatar       *Media        `json:"avatar,omitempty"`
	Banner       *Media        `json:"banner,omitempty"`
	VenueManager bool          `json:"venueManager"`
	Count        *ProfileCount `json:"_count,omitempty"`

	// Present only when requested with _venues / _bookings
	Venues   []Venue   `json:"venues,omitempty"`
	Bookings []Booking `json:"bookings,omitempty"`
}

// Session is the bearer token plus the cached profile summary of the logged in user
type Session struct {
	AccessToken string  `json:"accessToken"`
	Profile     Profile `json:"profile"`
}

// IsManager reports whether the session user can manage venues
func (s *Session) IsManager() bool {
	return s != nil && s.Profile.VenueManager
}
