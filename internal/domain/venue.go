package domain

import (
	"time"
)

// Media is an image reference attached to a venue or profile
type Media struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

// Facilities are the amenity flags of a venue
type Facilities struct {
	Wifi      bool `json:"wifi"`
	Parking   bool `json:"parking"`
	Breakfast bool `json:"breakfast"`
	Pets      bool `json:"pets"`
}

// Location is the postal and geographic location of a venue.
// Text fields may be null on the wire and decode to "".
type Location struct {
	Address   string  `json:"address"`
	City      string  `json:"city"`
	Zip       string  `json:"zip"`
	Country   string  `json:"country"`
	Continent string  `json:"continent"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
}

// Venue represents a bookable listing
type Venue struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Media       []Media    `json:"media"`
	Price       float64    `json:"price"`
	MaxGuests   int        `json:"maxGuests"`
	Rating      float64    `json:"rating"`
	Meta        Facilities `json:"meta"`
	Location    Location   `json:"location"`
	Created     time.Time  `json:"created"`
	Updated     time.Time  `json:"updated"`

	// Present only when requested with _owner / _bookings
	Owner    *Profile  `json:"owner,omitempty"`
	Bookings []Booking `json:"bookings,omitempty"`
}

// CoverImage returns the first media entry, if any
func (v *Venue) CoverImage() (Media, bool) {
	if len(v.Media) == 0 {
		return Media{}, false
	}
	return v.Media[0], true
}

// OwnedBy reports whether the venue belongs to the named profile
func (v *Venue) OwnedBy(name string) bool {
	return v.Owner != nil && name != "" && v.Owner.Name == name
}
