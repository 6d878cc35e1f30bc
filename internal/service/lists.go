package service

import (
	"context"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/api"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/command"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/domain"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/listview"
)

func bookingID(b domain.Booking) string { return b.ID }
func venueID(v domain.Venue) string     { return v.ID }

// BookingList is an optimistic list of bookings with confirm-then-delete and edit
type BookingList struct {
	*listview.Controller[domain.Booking]
	client *api.Client
}

func newBookingList(client *api.Client, fetch listview.Fetcher[domain.Booking], opts listview.Options) *BookingList {
	return &BookingList{
		Controller: listview.New(fetch, bookingID, opts),
		client:     client,
	}
}

// Delete asks for confirmation, then removes the booking optimistically
func (l *BookingList) Delete(ctx context.Context, id string, confirmer command.Confirmer) error {
	return command.Confirm{
		Prompt: command.PromptDeleteBooking,
		Action: func(ctx context.Context) error {
			return l.Controller.Delete(ctx, id, func(ctx context.Context) error {
				return l.client.DeleteBooking(ctx, id)
			})
		},
	}.Run(ctx, confirmer)
}

// Edit validates cmd, then applies it optimistically
func (l *BookingList) Edit(ctx context.Context, cmd command.EditBooking) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	return l.Controller.Edit(ctx, cmd.ID, cmd.Apply, func(ctx context.Context) error {
		_, err := l.client.UpdateBooking(ctx, cmd.ID, cmd.Request())
		return err
	})
}

// VenueList is an optimistic list of venues with confirm-then-delete and quick edit
type VenueList struct {
	*listview.Controller[domain.Venue]
	client *api.Client
}

func newVenueList(client *api.Client, fetch listview.Fetcher[domain.Venue], opts listview.Options) *VenueList {
	return &VenueList{
		Controller: listview.New(fetch, venueID, opts),
		client:     client,
	}
}

// Delete asks for confirmation, then removes the venue optimistically
func (l *VenueList) Delete(ctx context.Context, id string, confirmer command.Confirmer) error {
	return command.Confirm{
		Prompt: command.PromptDeleteVenue,
		Action: func(ctx context.Context) error {
			return l.Controller.Delete(ctx, id, func(ctx context.Context) error {
				return l.client.DeleteVenue(ctx, id)
			})
		},
	}.Run(ctx, confirmer)
}

// Edit validates cmd, then applies it optimistically
func (l *VenueList) Edit(ctx context.Context, cmd command.EditVenue) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	return l.Controller.Edit(ctx, cmd.ID, cmd.Apply, func(ctx context.Context) error {
		_, err := l.client.UpdateVenue(ctx, cmd.ID, cmd.Request())
		return err
	})
}

// DashboardService builds the logged in user's booking list
type DashboardService struct {
	client *api.Client
	auth   *AuthService
	opts   Options
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(client *api.Client, auth *AuthService, opts Options) *DashboardService {
	return &DashboardService{client: client, auth: auth, opts: opts}
}

// Bookings returns an unloaded list of the current user's bookings with their venues
func (s *DashboardService) Bookings(ctx context.Context) (*BookingList, error) {
	sess, err := s.auth.Current(ctx)
	if err != nil {
		return nil, err
	}
	name := sess.Profile.Name
	return newBookingList(s.client, func(ctx context.Context) ([]domain.Booking, error) {
		return s.client.ProfileBookings(ctx, name, api.BookingInclude{Venue: true, Fresh: true})
	}, s.opts.listOptions("dashboard.bookings")), nil
}

// ManageVenuesService builds the venue manager's list of owned venues
type ManageVenuesService struct {
	client *api.Client
	auth   *AuthService
	opts   Options
}

// NewManageVenuesService creates a new ManageVenuesService
func NewManageVenuesService(client *api.Client, auth *AuthService, opts Options) *ManageVenuesService {
	return &ManageVenuesService{client: client, auth: auth, opts: opts}
}

// Venues returns an unloaded list of the current manager's venues, newest first
func (s *ManageVenuesService) Venues(ctx context.Context) (*VenueList, error) {
	sess, err := s.auth.RequireManager(ctx)
	if err != nil {
		return nil, err
	}
	name := sess.Profile.Name
	return newVenueList(s.client, func(ctx context.Context) ([]domain.Venue, error) {
		opts := api.NewestFirst()
		opts.Limit = 100
		opts.Fresh = true
		return s.client.ProfileVenues(ctx, name, opts)
	}, s.opts.listOptions("manage.venues")), nil
}
