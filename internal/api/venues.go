package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/domain"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/dto"
)

// ListOptions control paging and sorting of list endpoints
type ListOptions struct {
	Limit     int
	Page      int
	Sort      string
	SortOrder string
	// Expand relations
	Bookings bool
	Owner    bool
	// Fresh bypasses caches, for refetches after a mutation
	Fresh bool
}

func (o ListOptions) values() url.Values {
	q := url.Values{}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.Sort != "" {
		q.Set("sort", o.Sort)
	}
	if o.SortOrder != "" {
		q.Set("sortOrder", o.SortOrder)
	}
	if o.Bookings {
		q.Set("_bookings", "true")
	}
	if o.Owner {
		q.Set("_owner", "true")
	}
	return q
}

// NewestFirst sorts by creation date, newest first
func NewestFirst() ListOptions {
	return ListOptions{Sort: "created", SortOrder: "desc"}
}

// VenueInclude selects the relations expanded on a venue
type VenueInclude struct {
	Bookings bool
	Owner    bool
	Fresh    bool
}

// ListVenues lists venues
func (c *Client) ListVenues(ctx context.Context, opts ListOptions) (*Envelope[[]domain.Venue], error) {
	return call[[]domain.Venue](ctx, c, request{
		op:     "list_venues",
		method: http.MethodGet,
		path:   "/venues",
		query:  opts.values(),
		fresh:  opts.Fresh,
	})
}

// SearchVenues runs the server-side search over venue names and descriptions
func (c *Client) SearchVenues(ctx context.Context, q string, opts ListOptions) (*Envelope[[]domain.Venue], error) {
	query := opts.values()
	query.Set("q", q)
	return call[[]domain.Venue](ctx, c, request{
		op:     "search_venues",
		method: http.MethodGet,
		path:   "/venues/search",
		query:  query,
	})
}

// GetVenue fetches one venue
func (c *Client) GetVenue(ctx context.Context, id string, inc VenueInclude) (*domain.Venue, error) {
	env, err := call[domain.Venue](ctx, c, request{
		op:     "get_venue",
		method: http.MethodGet,
		path:   "/venues/" + escape(id),
		query:  ListOptions{Bookings: inc.Bookings, Owner: inc.Owner}.values(),
		fresh:  inc.Fresh,
	})
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// CreateVenue creates a venue owned by the logged in manager
func (c *Client) CreateVenue(ctx context.Context, req *dto.VenueRequest) (*domain.Venue, error) {
	env, err := call[domain.Venue](ctx, c, request{
		op:           "create_venue",
		method:       http.MethodPost,
		path:         "/venues",
		body:         req,
		requireToken: true,
	})
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// UpdateVenue changes the fields set in req
func (c *Client) UpdateVenue(ctx context.Context, id string, req *dto.UpdateVenueRequest) (*domain.Venue, error) {
	env, err := call[domain.Venue](ctx, c, request{
		op:           "update_venue",
		method:       http.MethodPut,
		path:         "/venues/" + escape(id),
		body:         req,
		requireToken: true,
	})
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// DeleteVenue deletes a venue and, server side, its bookings
func (c *Client) DeleteVenue(ctx context.Context, id string) error {
	_, err := call[struct{}](ctx, c, request{
		op:           "delete_venue",
		method:       http.MethodDelete,
		path:         "/venues/" + escape(id),
		requireToken: true,
	})
	return err
}
