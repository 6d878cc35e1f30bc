// Package availability decides whether a proposed range of calendar days can be
// booked on a venue given the venue's other bookings. Everything here is pure.
package availability

import (
	"slices"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/domain"
)

// Reasons reported by Check
const (
	ReasonInvalidRange = "end date must be after start date"
	ReasonOverlap      = "overlaps another booking"
	ReasonMissingDates = "start and end dates are required"
)

// Range is a closed interval of calendar days, optionally tagged with the booking it came from
type Range struct {
	BookingID string
	Start     Day
	End       Day
}

// NewRange builds an untagged range
func NewRange(start, end Day) Range {
	return Range{Start: start, End: end}
}

// Valid reports whether both ends are set and Start <= End
func (r Range) Valid() bool {
	return !r.Start.IsZero() && !r.End.IsZero() && !r.End.Before(r.Start)
}

// Nights is the number of nights between Start and End
func (r Range) Nights() int {
	if !r.Valid() {
		return 0
	}
	return int(r.End.Time().Sub(r.Start.Time()).Hours() / 24)
}

func (r Range) String() string {
	return r.Start.String() + " → " + r.End.String()
}

// Overlaps reports whether a and b share at least one day. Touching ends count.
func Overlaps(a, b Range) bool {
	return !(a.End.Before(b.Start) || a.Start.After(b.End))
}

// Contains reports whether d falls inside r, ends included
func Contains(r Range, d Day) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// FromBooking converts a booking to a range of UTC civil days
func FromBooking(b domain.Booking) Range {
	return Range{
		BookingID: b.ID,
		Start:     DayOf(b.DateFrom),
		End:       DayOf(b.DateTo),
	}
}

// RangesFromBookings normalizes bookings to day ranges, drops excludeID, and sorts by start then end
func RangesFromBookings(bookings []domain.Booking, excludeID string) []Range {
	ranges := make([]Range, 0, len(bookings))
	for _, b := range bookings {
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		ranges = append(ranges, FromBooking(b))
	}
	Sort(ranges)
	return ranges
}

// Sort orders ranges by start ascending, ties by end
func Sort(ranges []Range) {
	slices.SortStableFunc(ranges, func(a, b Range) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return a.End.Compare(b.End)
	})
}

// Result is the outcome of Check
type Result struct {
	Available bool
	Reason    string
	// Err is the matching domain error, nil when available
	Err error
	// Conflict is the first existing range that overlaps, if any
	Conflict *Range
}

// Check decides whether proposed can be booked against existing. Ranges tagged
// with excludeID are ignored so a booking being edited never conflicts with itself.
func Check(existing []Range, proposed Range, excludeID string) Result {
	if proposed.Start.IsZero() || proposed.End.IsZero() {
		return Result{Reason: ReasonMissingDates, Err: domain.ErrDatesRequired}
	}
	if proposed.End.Before(proposed.Start) {
		return Result{Reason: ReasonInvalidRange, Err: domain.ErrInvalidDateRange}
	}

	if c, ok := FirstConflict(existing, proposed, excludeID); ok {
		return Result{Reason: ReasonOverlap, Err: domain.ErrDateOverlap, Conflict: &c}
	}
	return Result{Available: true}
}

// FirstConflict returns the earliest-starting range in existing that overlaps proposed
func FirstConflict(existing []Range, proposed Range, excludeID string) (Range, bool) {
	var (
		found Range
		ok    bool
	)
	for _, r := range existing {
		if excludeID != "" && r.BookingID == excludeID {
			continue
		}
		if !Overlaps(r, proposed) {
			continue
		}
		if !ok || r.Start.Before(found.Start) {
			found, ok = r, true
		}
	}
	return found, ok
}

// IsDayBooked reports whether d falls inside any existing range
func IsDayBooked(existing []Range, d Day, excludeID string) bool {
	for _, r := range existing {
		if excludeID != "" && r.BookingID == excludeID {
			continue
		}
		if Contains(r, d) {
			return true
		}
	}
	return false
}

// CheckBookings is Check over raw bookings
func CheckBookings(bookings []domain.Booking, proposed Range, excludeID string) Result {
	return Check(RangesFromBookings(bookings, excludeID), proposed, excludeID)
}
