package domain

import (
	"time"
)

// Booking is a guest's reservation of a venue for a range of calendar days
type Booking struct {
	ID       string    `json:"id"`
	DateFrom time.Time `json:"dateFrom"`
	DateTo   time.Time `json:"dateTo"`
	Guests   int       `json:"guests"`
	Created  time.Time `json:"created"`
	Updated  time.Time `json:"updated"`

	// Present only when requested with _venue / _customer
	Venue    *Venue   `json:"venue,omitempty"`
	Customer *Profile `json:"customer,omitempty"`
}

// VenueName returns the embedded venue's name, or a placeholder when the venue was not expanded
func (b *Booking) VenueName() string {
	if b.Venue != nil && b.Venue.Name != "" {
		return b.Venue.Name
	}
	return "Venue"
}
