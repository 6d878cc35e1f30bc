package service

import (
	"context"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/api"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/availability"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/domain"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/dto"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/session"
	"github.com/Skr3d3/holidaze-project-exam-2/pkg/logger"
	"github.com/Skr3d3/holidaze-project-exam-2/pkg/telemetry"
)

// maxSearchPages bounds how many pages Search loads before filtering
const maxSearchPages = 10

// VenueService handles browsing and authoring venues
type VenueService struct {
	client *api.Client
	store  session.Store
	auth   *AuthService
	log    *logger.Logger
}

// NewVenueService creates a new VenueService
func NewVenueService(client *api.Client, store session.Store, auth *AuthService, opts Options) *VenueService {
	return &VenueService{
		client: client,
		store:  store,
		auth:   auth,
		log:    logger.OrNop(opts.Logger).Named("venues"),
	}
}

// VenueDetail is a venue with its booked ranges
type VenueDetail struct {
	Venue *domain.Venue
	// Booked is sorted by start day
	Booked []availability.Range
	// CanManage is set when the logged in user owns the venue
	CanManage bool
}

// List returns one page of venues, newest first unless opts says otherwise
func (s *VenueService) List(ctx context.Context, opts api.ListOptions) (*api.Envelope[[]domain.Venue], error) {
	if opts.Sort == "" {
		def := api.NewestFirst()
		opts.Sort, opts.SortOrder = def.Sort, def.SortOrder
	}
	return s.client.ListVenues(ctx, opts)
}

// Search loads venues and keeps those matching q on name, description, city or
// country, ignoring case and accents
func (s *VenueService) Search(ctx context.Context, q string) ([]domain.Venue, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.venues.search")
	defer span.End()

	opts := api.NewestFirst()
	opts.Limit = 100
	var all []domain.Venue
	for page := 1; page <= maxSearchPages; page++ {
		opts.Page = page
		env, err := s.client.ListVenues(ctx, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, env.Data...)
		if env.Meta == nil || env.Meta.IsLastPage || len(env.Data) == 0 {
			break
		}
	}
	return FilterVenues(all, q), nil
}

// ServerSearch uses the API's own search, which matches name and description only
func (s *VenueService) ServerSearch(ctx context.Context, q string) ([]domain.Venue, error) {
	env, err := s.client.SearchVenues(ctx, q, api.NewestFirst())
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// Detail loads a venue with its owner and bookings
func (s *VenueService) Detail(ctx context.Context, id string) (*VenueDetail, error) {
	v, err := s.client.GetVenue(ctx, id, api.VenueInclude{Bookings: true, Owner: true})
	if err != nil {
		if api.IsNotFound(err) {
			return nil, domain.ErrVenueNotFound
		}
		return nil, err
	}
	d := &VenueDetail{
		Venue:  v,
		Booked: availability.RangesFromBookings(v.Bookings, ""),
	}
	if sess, err := s.store.Get(ctx); err == nil {
		d.CanManage = v.OwnedBy(sess.Profile.Name)
	}
	return d, nil
}

// Create validates and creates a venue. Only venue managers may create venues.
func (s *VenueService) Create(ctx context.Context, req *dto.VenueRequest) (*domain.Venue, error) {
	if _, err := s.auth.RequireManager(ctx); err != nil {
		return nil, err
	}
	req.Normalize()
	if err := validate(req); err != nil {
		return nil, err
	}
	v, err := s.client.CreateVenue(ctx, req)
	return v, authRequired(err)
}

// Update validates req and replaces the venue's fields with it
func (s *VenueService) Update(ctx context.Context, id string, req *dto.VenueRequest) (*domain.Venue, error) {
	if _, err := s.auth.RequireManager(ctx); err != nil {
		return nil, err
	}
	req.Normalize()
	if err := validate(req); err != nil {
		return nil, err
	}
	v, err := s.client.UpdateVenue(ctx, id, req.AsUpdate())
	return v, authRequired(err)
}

// LoadForEdit loads a venue owned by the current manager for the edit form
func (s *VenueService) LoadForEdit(ctx context.Context, id string) (*dto.VenueRequest, error) {
	sess, err := s.auth.RequireManager(ctx)
	if err != nil {
		return nil, err
	}
	v, err := s.client.GetVenue(ctx, id, api.VenueInclude{Owner: true, Fresh: true})
	if err != nil {
		return nil, authRequired(err)
	}
	if !v.OwnedBy(sess.Profile.Name) {
		return nil, ErrNotVenueOwner
	}
	return dto.FromVenue(v), nil
}
