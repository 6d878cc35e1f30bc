package domain

import "errors"

// Domain errors
var (
	// Date range errors
	ErrDatesRequired    = errors.New("start and end dates are required")
	ErrStartRequired    = errors.New("pick a start date first")
	ErrStartInPast      = errors.New("start date cannot be in the past")
	ErrStartDateBooked  = errors.New("that start date is already booked")
	ErrInvalidDateRange = errors.New("end date must be after start date")
	ErrDateOverlap      = errors.New("your date range overlaps an existing booking")
	ErrInvalidDate      = errors.New("invalid date, expected YYYY-MM-DD")

	// Booking errors
	ErrBookingNotFound = errors.New("booking not found")
	ErrInvalidGuests   = errors.New("guests must be at least 1")
	ErrTooManyGuests   = errors.New("guests exceed the venue maximum")

	// Venue errors
	ErrVenueNotFound       = errors.New("venue not found")
	ErrNameRequired        = errors.New("name is required")
	ErrDescriptionRequired = errors.New("description is required")
	ErrInvalidPrice        = errors.New("price must be greater than zero")
	ErrInvalidMaxGuests    = errors.New("max guests must be a whole number of at least 1")
	ErrInvalidMedia        = errors.New("media must be url|alt lines with an http(s) url")

	// Profile / auth errors
	ErrProfileNotFound    = errors.New("profile not found")
	ErrNotAuthenticated   = errors.New("please log in")
	ErrNotVenueManager    = errors.New("venue manager access required")
	ErrInvalidEmail       = errors.New("email must be a valid stud.noroff.no address")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrCredentialsMissing = errors.New("email and password are required")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrBookingNotFound) ||
		errors.Is(err, ErrVenueNotFound) ||
		errors.Is(err, ErrProfileNotFound)
}

// IsValidationError checks if the error is a client-side validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrDatesRequired) ||
		errors.Is(err, ErrStartRequired) ||
		errors.Is(err, ErrStartInPast) ||
		errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidGuests) ||
		errors.Is(err, ErrTooManyGuests) ||
		errors.Is(err, ErrNameRequired) ||
		errors.Is(err, ErrDescriptionRequired) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrInvalidMaxGuests) ||
		errors.Is(err, ErrInvalidMedia) ||
		errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrPasswordTooShort) ||
		errors.Is(err, ErrCredentialsMissing)
}

// IsConflictError checks if the error is a booking conflict
func IsConflictError(err error) bool {
	return errors.Is(err, ErrStartDateBooked) ||
		errors.Is(err, ErrDateOverlap)
}

// IsAuthError checks if the error requires the user to log in or elevate
func IsAuthError(err error) bool {
	return errors.Is(err, ErrNotAuthenticated) ||
		errors.Is(err, ErrNotVenueManager)
}
