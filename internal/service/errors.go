package service

import (
	"errors"
	"strings"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/api"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/command"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/domain"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/session"
)

// Messages shown for access failures
const (
	MsgLoginRequired   = "Please log in."
	MsgManagerRequired = "Only venue managers can access this page."
	msgUnexpected      = "Something went wrong. Please try again."
)

var (
	// ErrLoginRequired means the caller should send the user to the login page
	ErrLoginRequired   = errors.New("login required")
	ErrManagerRequired = errors.New("venue manager required")
	ErrNotVenueOwner   = errors.New("you can only manage your own venues")
	ErrMissingVenue    = errors.New("booking has no venue")
)

// LoginRequiredError wraps the failure that ended the session
type LoginRequiredError struct {
	Cause error
}

func (e *LoginRequiredError) Error() string {
	return ErrLoginRequired.Error()
}

func (e *LoginRequiredError) Is(target error) bool {
	return target == ErrLoginRequired
}

func (e *LoginRequiredError) Unwrap() error {
	return e.Cause
}

// ValidationError is a failed client-side check, carrying the message to show
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validate(req interface{ Validate() (bool, string) }) error {
	if ok, msg := req.Validate(); !ok {
		return &ValidationError{Message: msg}
	}
	return nil
}

// authRequired turns 401s and missing sessions into ErrLoginRequired
func authRequired(err error) error {
	if err == nil {
		return nil
	}
	if api.IsUnauthorized(err) || errors.Is(err, session.ErrNoSession) {
		return &LoginRequiredError{Cause: err}
	}
	return err
}

// IsValidation reports whether err is a client-side validation failure
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) || domain.IsValidationError(err) || domain.IsConflictError(err) ||
		errors.Is(err, command.ErrNegativePrice)
}

// UserMessage returns the text to show for err
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrLoginRequired):
		return MsgLoginRequired
	case errors.Is(err, ErrManagerRequired):
		return MsgManagerRequired
	case errors.Is(err, command.ErrDeclined):
		return "Cancelled."
	}
	if _, ok := api.AsAPIError(err); ok {
		return api.UserMessage(err, msgUnexpected)
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	if IsValidation(err) || domain.IsNotFoundError(err) || errors.Is(err, ErrNotVenueOwner) {
		return sentence(err.Error())
	}
	return api.UserMessage(err, msgUnexpected)
}

func sentence(s string) string {
	if s == "" {
		return s
	}
	s = strings.ToUpper(s[:1]) + s[1:]
	if !strings.HasSuffix(s, ".") && !strings.HasSuffix(s, "?") {
		s += "."
	}
	return s
}
