package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/api"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/bookingform"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/domain"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/session"
	"github.com/Skr3d3/holidaze-project-exam-2/pkg/logger"
	"github.com/Skr3d3/holidaze-project-exam-2/pkg/telemetry"
)

// BookingService handles creating and editing bookings through a booking form
type BookingService struct {
	client *api.Client
	store  session.Store
	clock  func() time.Time
	log    *logger.Logger
}

// NewBookingService creates a new BookingService
func NewBookingService(client *api.Client, store session.Store, opts Options) *BookingService {
	return &BookingService{
		client: client,
		store:  store,
		clock:  opts.clock(),
		log:    logger.OrNop(opts.Logger).Named("bookings"),
	}
}

// EditSession is a loaded booking with a form prefilled for editing it
type EditSession struct {
	Booking *domain.Booking
	Venue   *domain.Venue
	Form    *bookingform.Form
}

// NewForm loads a venue with its bookings and returns an empty booking form for it
func (s *BookingService) NewForm(ctx context.Context, venueID string) (*bookingform.Form, *domain.Venue, error) {
	v, err := s.client.GetVenue(ctx, venueID, api.VenueInclude{Bookings: true, Owner: true})
	if err != nil {
		if api.IsNotFound(err) {
			return nil, nil, domain.ErrVenueNotFound
		}
		return nil, nil, err
	}
	return bookingform.New(v, "", s.clock), v, nil
}

// Book re-validates the form and creates the booking. The server checks
// availability again and may still answer with a conflict.
func (s *BookingService) Book(ctx context.Context, form *bookingform.Form) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.bookings.book")
	defer span.End()

	if err := s.requireSession(ctx); err != nil {
		return nil, err
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}
	b, err := s.client.CreateBooking(ctx, form.CreateRequest())
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, authRequired(err)
	}
	s.log.Info("booking created", zap.String("booking_id", b.ID), zap.String("venue_id", form.VenueID))
	return b, nil
}

// LoadEdit loads a booking and its venue's current bookings, and builds a form
// that ignores the booking itself when checking availability
func (s *BookingService) LoadEdit(ctx context.Context, bookingID string) (*EditSession, error) {
	if err := s.requireSession(ctx); err != nil {
		return nil, err
	}
	b, err := s.client.GetBooking(ctx, bookingID, api.BookingInclude{Venue: true, Fresh: true})
	if err != nil {
		if api.IsNotFound(err) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, authRequired(err)
	}
	if b.Venue == nil || b.Venue.ID == "" {
		return nil, ErrMissingVenue
	}
	v, err := s.client.GetVenue(ctx, b.Venue.ID, api.VenueInclude{Bookings: true, Fresh: true})
	if err != nil {
		return nil, authRequired(err)
	}
	return &EditSession{
		Booking: b,
		Venue:   v,
		Form:    bookingform.ForBooking(b, v, s.clock),
	}, nil
}

// SaveEdit re-validates the form and updates the booking it was built for
func (s *BookingService) SaveEdit(ctx context.Context, form *bookingform.Form) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.bookings.save_edit")
	defer span.End()

	if form.ExcludeID == "" {
		return nil, domain.ErrBookingNotFound
	}
	if err := s.requireSession(ctx); err != nil {
		return nil, err
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}
	b, err := s.client.UpdateBooking(ctx, form.ExcludeID, form.UpdateRequest())
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, authRequired(err)
	}
	return b, nil
}

func (s *BookingService) requireSession(ctx context.Context) error {
	token, err := s.store.Token(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return &LoginRequiredError{Cause: domain.ErrNotAuthenticated}
	}
	return nil
}
