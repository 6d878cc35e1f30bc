// Package bookingform holds the state of a create or edit booking form and gates its submission.
package bookingform

import (
	"time"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/availability"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/domain"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/dto"
)

// Form is a booking form bound to one venue
type Form struct {
	VenueID   string
	ExcludeID string
	MaxGuests int

	start  availability.Day
	end    availability.Day
	guests int

	existing []availability.Range
	clock    func() time.Time

	// keptStart is the edited booking's own start, which may already be past
	keptStart availability.Day
}

// New creates an empty form for venue. existing are the venue's bookings; excludeID
// names the booking being edited, if any. A nil clock means time.Now.
func New(venue *domain.Venue, excludeID string, clock func() time.Time) *Form {
	if clock == nil {
		clock = time.Now
	}
	f := &Form{
		VenueID:   venue.ID,
		ExcludeID: excludeID,
		MaxGuests: venue.MaxGuests,
		guests:    1,
		clock:     clock,
	}
	f.Refresh(venue.Bookings)
	return f
}

// ForBooking creates a form prefilled from an existing booking of venue
func ForBooking(b *domain.Booking, venue *domain.Venue, clock func() time.Time) *Form {
	f := New(venue, b.ID, clock)
	f.start = availability.DayOf(b.DateFrom)
	f.keptStart = f.start
	f.end = availability.DayOf(b.DateTo)
	f.guests = ClampGuests(b.Guests, f.MaxGuests)
	return f
}

// Refresh swaps in a newer set of the venue's bookings. Selected dates are kept;
// Validate will catch any conflict the new set introduces.
func (f *Form) Refresh(bookings []domain.Booking) {
	f.existing = availability.RangesFromBookings(bookings, f.ExcludeID)
}

// Start returns the selected start day
func (f *Form) Start() availability.Day { return f.start }

// End returns the selected end day
func (f *Form) End() availability.Day { return f.end }

// Guests returns the clamped guest count
func (f *Form) Guests() int { return f.guests }

// Booked returns the other bookings' ranges, sorted by start
func (f *Form) Booked() []availability.Range {
	out := make([]availability.Range, len(f.existing))
	copy(out, f.existing)
	return out
}

// Today is the first selectable day
func (f *Form) Today() availability.Day {
	return availability.Today(f.clock)
}

// Range returns the selected range
func (f *Form) Range() availability.Range {
	return availability.NewRange(f.start, f.end)
}

// SetStart selects the start day. A zero day clears it. If the chosen end no longer
// fits after the change it is cleared and endCleared is true.
func (f *Form) SetStart(d availability.Day) (endCleared bool, err error) {
	if d.IsZero() {
		f.start = availability.Day{}
		return false, nil
	}
	if f.startInPast(d) {
		return false, domain.ErrStartInPast
	}
	if availability.IsDayBooked(f.existing, d, f.ExcludeID) {
		return false, domain.ErrStartDateBooked
	}

	f.start = d
	if !f.end.IsZero() {
		r := availability.NewRange(f.start, f.end)
		if f.end.Before(f.start) || !availability.Check(f.existing, r, f.ExcludeID).Available {
			f.end = availability.Day{}
			return true, nil
		}
	}
	return false, nil
}

// SetEnd selects the end day. A zero day clears it. The end is rejected, and the
// previous value kept, when it precedes the start or the range overlaps a booking.
func (f *Form) SetEnd(d availability.Day) error {
	if d.IsZero() {
		f.end = availability.Day{}
		return nil
	}
	if f.start.IsZero() {
		return domain.ErrStartRequired
	}
	res := availability.Check(f.existing, availability.NewRange(f.start, d), f.ExcludeID)
	if !res.Available {
		return res.Err
	}
	f.end = d
	return nil
}

// SetGuests clamps n into [1, MaxGuests] and stores it
func (f *Form) SetGuests(n int) int {
	f.guests = ClampGuests(n, f.MaxGuests)
	return f.guests
}

// ClampGuests clamps n into [1, maxGuests]. maxGuests <= 0 means no upper bound.
func ClampGuests(n, maxGuests int) int {
	if maxGuests > 0 && n > maxGuests {
		n = maxGuests
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Validate re-checks the whole form against the current booking set
func (f *Form) Validate() error {
	if f.start.IsZero() || f.end.IsZero() {
		return domain.ErrDatesRequired
	}
	if f.startInPast(f.start) {
		return domain.ErrStartInPast
	}
	if f.guests < 1 {
		return domain.ErrInvalidGuests
	}
	if f.MaxGuests > 0 && f.guests > f.MaxGuests {
		return domain.ErrTooManyGuests
	}
	return availability.Check(f.existing, f.Range(), f.ExcludeID).Err
}

// startInPast reports a start before today, unless it is the edited booking's
// unchanged start
func (f *Form) startInPast(d availability.Day) bool {
	if !f.keptStart.IsZero() && d.Equal(f.keptStart) {
		return false
	}
	return d.Before(f.Today())
}

// CreateRequest builds the create payload. dateFrom is the start of the first day
// and dateTo the last millisecond of the last day, both UTC.
func (f *Form) CreateRequest() *dto.CreateBookingRequest {
	return &dto.CreateBookingRequest{
		DateFrom: f.start.Time(),
		DateTo:   f.end.EndOfDay(),
		Guests:   f.guests,
		VenueID:  f.VenueID,
	}
}

// UpdateRequest builds the update payload for the booking being edited
func (f *Form) UpdateRequest() *dto.UpdateBookingRequest {
	return &dto.UpdateBookingRequest{
		DateFrom: f.start.Time(),
		DateTo:   f.end.EndOfDay(),
		Guests:   f.guests,
	}
}
