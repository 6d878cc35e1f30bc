package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/domain"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/dto"
)

// BookingInclude selects the relations expanded on a booking
type BookingInclude struct {
	Venue    bool
	Customer bool
	Fresh    bool
}

func (i BookingInclude) values() url.Values {
	q := url.Values{}
	if i.Venue {
		q.Set("_venue", "true")
	}
	if i.Customer {
		q.Set("_customer", "true")
	}
	return q
}

// GetBooking fetches one booking
func (c *Client) GetBooking(ctx context.Context, id string, inc BookingInclude) (*domain.Booking, error) {
	env, err := call[domain.Booking](ctx, c, request{
		op:           "get_booking",
		method:       http.MethodGet,
		path:         "/bookings/" + escape(id),
		query:        inc.values(),
		fresh:        inc.Fresh,
		requireToken: true,
	})
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// CreateBooking books a venue for the logged in user
func (c *Client) CreateBooking(ctx context.Context, req *dto.CreateBookingRequest) (*domain.Booking, error) {
	env, err := call[domain.Booking](ctx, c, request{
		op:           "create_booking",
		method:       http.MethodPost,
		path:         "/bookings",
		body:         req,
		requireToken: true,
	})
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// UpdateBooking changes the dates and guests of a booking
func (c *Client) UpdateBooking(ctx context.Context, id string, req *dto.UpdateBookingRequest) (*domain.Booking, error) {
	env, err := call[domain.Booking](ctx, c, request{
		op:           "update_booking",
		method:       http.MethodPut,
		path:         "/bookings/" + escape(id),
		body:         req,
		requireToken: true,
	})
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// DeleteBooking cancels a booking
func (c *Client) DeleteBooking(ctx context.Context, id string) error {
	_, err := call[struct{}](ctx, c, request{
		op:           "delete_booking",
		method:       http.MethodDelete,
		path:         "/bookings/" + escape(id),
		requireToken: true,
	})
	return err
}
