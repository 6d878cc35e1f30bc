package dto

import (
	"time"
)

// CreateBookingRequest represents the request to book a venue
type CreateBookingRequest struct {
	DateFrom time.Time `json:"dateFrom" binding:"required"`
	DateTo   time.Time `json:"dateTo" binding:"required"`
	Guests   int       `json:"guests" binding:"required,min=1"`
	VenueID  string    `json:"venueId" binding:"required"`
}

// Validate validates the create booking request
func (r *CreateBookingRequest) Validate() (bool, string) {
	if r.VenueID == "" {
		return false, "Venue is required"
	}
	return validateRange(r.DateFrom, r.DateTo, r.Guests)
}

// UpdateBookingRequest represents the request to change a booking
type UpdateBookingRequest struct {
	DateFrom time.Time `json:"dateFrom" binding:"required"`
	DateTo   time.Time `json:"dateTo" binding:"required"`
	Guests   int       `json:"guests" binding:"required,min=1"`
}

// Validate validates the update booking request
func (r *UpdateBookingRequest) Validate() (bool, string) {
	return validateRange(r.DateFrom, r.DateTo, r.Guests)
}

func validateRange(from, to time.Time, guests int) (bool, string) {
	if from.IsZero() || to.IsZero() {
		return false, "Please select start and end dates"
	}
	if to.Before(from) {
		return false, "End date must be after start date"
	}
	if guests < 1 {
		return false, "Guests must be at least 1"
	}
	return true, ""
}
