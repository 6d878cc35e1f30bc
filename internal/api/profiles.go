package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/domain"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/dto"
)

// ProfileInclude selects the relations expanded on a profile
type ProfileInclude struct {
	Venues   bool
	Bookings bool
	Fresh    bool
}

// GetProfile fetches a profile by name
func (c *Client) GetProfile(ctx context.Context, name string, inc ProfileInclude) (*domain.Profile, error) {
	q := url.Values{}
	if inc.Venues {
		q.Set("_venues", "true")
	}
	if inc.Bookings {
		q.Set("_bookings", "true")
	}
	env, err := call[domain.Profile](ctx, c, request{
		op:           "get_profile",
		method:       http.MethodGet,
		path:         "/profiles/" + escape(name),
		query:        q,
		fresh:        inc.Fresh,
		requireToken: true,
	})
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// ProfileBookings lists the bookings made by a profile
func (c *Client) ProfileBookings(ctx context.Context, name string, inc BookingInclude) ([]domain.Booking, error) {
	env, err := call[[]domain.Booking](ctx, c, request{
		op:           "profile_bookings",
		method:       http.MethodGet,
		path:         "/profiles/" + escape(name) + "/bookings",
		query:        inc.values(),
		fresh:        inc.Fresh,
		requireToken: true,
	})
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// ProfileVenues lists the venues owned by a profile
func (c *Client) ProfileVenues(ctx context.Context, name string, opts ListOptions) ([]domain.Venue, error) {
	env, err := call[[]domain.Venue](ctx, c, request{
		op:           "profile_venues",
		method:       http.MethodGet,
		path:         "/profiles/" + escape(name) + "/venues",
		query:        opts.values(),
		fresh:        opts.Fresh,
		requireToken: true,
	})
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// UpdateProfile changes the fields set in req
func (c *Client) UpdateProfile(ctx context.Context, name string, req *dto.UpdateProfileRequest) (*domain.Profile, error) {
	env, err := call[domain.Profile](ctx, c, request{
		op:           "update_profile",
		method:       http.MethodPut,
		path:         "/profiles/" + escape(name),
		body:         req,
		requireToken: true,
	})
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}
