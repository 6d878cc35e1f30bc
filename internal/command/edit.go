package command

import (
	"errors"
	"math"
	"net/url"
	"strings"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/availability"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/domain"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/dto"
)

var ErrNegativePrice = errors.New("invalid price")

// EditBooking changes the dates and guest count of a booking
type EditBooking struct {
	ID       string
	DateFrom availability.Day
	DateTo   availability.Day
	Guests   int
	// MaxGuests of the venue, 0 when unknown
	MaxGuests int
}

// EditBookingFrom prefills an edit with the booking's current values
func EditBookingFrom(b domain.Booking) EditBooking {
	e := EditBooking{
		ID:       b.ID,
		DateFrom: availability.DayOf(b.DateFrom),
		DateTo:   availability.DayOf(b.DateTo),
		Guests:   b.Guests,
	}
	if b.Venue != nil {
		e.MaxGuests = b.Venue.MaxGuests
	}
	return e
}

// Validate checks the edit on its own. Availability is left to the server.
func (e EditBooking) Validate() error {
	if e.DateFrom.IsZero() || e.DateTo.IsZero() {
		return domain.ErrDatesRequired
	}
	if e.DateTo.Before(e.DateFrom) {
		return domain.ErrInvalidDateRange
	}
	if e.Guests < 1 {
		return domain.ErrInvalidGuests
	}
	if e.MaxGuests > 0 && e.Guests > e.MaxGuests {
		return domain.ErrTooManyGuests
	}
	return nil
}

// Request builds the update payload with whole-day timestamps
func (e EditBooking) Request() *dto.UpdateBookingRequest {
	return &dto.UpdateBookingRequest{
		DateFrom: e.DateFrom.Time(),
		DateTo:   e.DateTo.EndOfDay(),
		Guests:   e.Guests,
	}
}

// Apply returns b with the edit applied, for optimistic display
func (e EditBooking) Apply(b domain.Booking) domain.Booking {
	b.DateFrom = e.DateFrom.Time()
	b.DateTo = e.DateTo.EndOfDay()
	b.Guests = e.Guests
	return b
}

// EditVenue is the quick edit of a venue from the manager's list
type EditVenue struct {
	ID       string
	Name     string
	Price    float64
	City     string
	Country  string
	ImageURL string
}

// EditVenueFrom prefills an edit with the venue's current values
func EditVenueFrom(v domain.Venue) EditVenue {
	e := EditVenue{
		ID:      v.ID,
		Name:    v.Name,
		Price:   v.Price,
		City:    v.Location.City,
		Country: v.Location.Country,
	}
	if m, ok := v.CoverImage(); ok {
		e.ImageURL = m.URL
	}
	return e
}

func (e EditVenue) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return domain.ErrNameRequired
	}
	if math.IsNaN(e.Price) || math.IsInf(e.Price, 0) || e.Price < 0 {
		return ErrNegativePrice
	}
	if img := strings.TrimSpace(e.ImageURL); img != "" {
		u, err := url.Parse(img)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return domain.ErrInvalidMedia
		}
	}
	return nil
}

func (e EditVenue) media() []domain.Media {
	img := strings.TrimSpace(e.ImageURL)
	if img == "" {
		return []domain.Media{}
	}
	return []domain.Media{{URL: img, Alt: strings.TrimSpace(e.Name)}}
}

// Request builds the update payload. The image replaces all media.
func (e EditVenue) Request() *dto.UpdateVenueRequest {
	name := strings.TrimSpace(e.Name)
	price := e.Price
	media := e.media()
	return &dto.UpdateVenueRequest{
		Name:  &name,
		Price: &price,
		Media: &media,
		Location: &dto.LocationInput{
			City:    strings.TrimSpace(e.City),
			Country: strings.TrimSpace(e.Country),
		},
	}
}

// Apply returns v with the edit applied, for optimistic display
func (e EditVenue) Apply(v domain.Venue) domain.Venue {
	v.Name = strings.TrimSpace(e.Name)
	v.Price = e.Price
	v.Media = e.media()
	v.Location.City = strings.TrimSpace(e.City)
	v.Location.Country = strings.TrimSpace(e.Country)
	return v
}
