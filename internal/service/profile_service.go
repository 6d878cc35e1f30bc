package service

import (
	"context"
	"slices"
	"strings"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/api"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/domain"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/dto"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/session"
	"github.com/Skr3d3/holidaze-project-exam-2/pkg/logger"
)

// ProfileService handles the profile page
type ProfileService struct {
	client *api.Client
	store  session.Store
	auth   *AuthService
	opts   Options
	log    *logger.Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(client *api.Client, store session.Store, auth *AuthService, opts Options) *ProfileService {
	return &ProfileService{
		client: client,
		store:  store,
		auth:   auth,
		opts:   opts,
		log:    logger.OrNop(opts.Logger).Named("profile"),
	}
}

// ProfilePage is the loaded profile plus optimistic lists over its bookings and venues
type ProfilePage struct {
	Profile  *domain.Profile
	Bookings *BookingList
	// Venues is nil unless the profile is a venue manager
	Venues *VenueList
}

// Close releases both lists
func (p *ProfilePage) Close() {
	p.Bookings.Close()
	if p.Venues != nil {
		p.Venues.Close()
	}
}

// Load fetches the current user's profile with venues and bookings and seeds the
// lists with them. Refetches go back to the profile endpoint.
func (s *ProfileService) Load(ctx context.Context) (*ProfilePage, error) {
	sess, err := s.auth.Current(ctx)
	if err != nil {
		return nil, err
	}
	name := sess.Profile.Name

	fetchProfile := func(ctx context.Context) (*domain.Profile, error) {
		return s.client.GetProfile(ctx, name, api.ProfileInclude{Venues: true, Bookings: true, Fresh: true})
	}
	p, err := fetchProfile(ctx)
	if err != nil {
		return nil, authRequired(err)
	}

	page := &ProfilePage{
		Profile: p,
		Bookings: newBookingList(s.client, func(ctx context.Context) ([]domain.Booking, error) {
			p, err := fetchProfile(ctx)
			if err != nil {
				return nil, err
			}
			return p.Bookings, nil
		}, s.opts.listOptions("profile.bookings")),
	}
	if p.VenueManager {
		page.Venues = newVenueList(s.client, func(ctx context.Context) ([]domain.Venue, error) {
			p, err := fetchProfile(ctx)
			if err != nil {
				return nil, err
			}
			return p.Venues, nil
		}, s.opts.listOptions("profile.venues"))
	}
	return page, nil
}

// UpdateAvatar sets the avatar image and refreshes the stored session profile.
// An empty url removes the avatar.
func (s *ProfileService) UpdateAvatar(ctx context.Context, url string) (*domain.Profile, error) {
	sess, err := s.auth.Current(ctx)
	if err != nil {
		return nil, err
	}
	req := &dto.UpdateProfileRequest{ClearAvatar: true}
	if url = strings.TrimSpace(url); url != "" {
		req = &dto.UpdateProfileRequest{Avatar: &domain.Media{URL: url, Alt: sess.Profile.Name}}
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	p, err := s.client.UpdateProfile(ctx, sess.Profile.Name, req)
	if err != nil {
		return nil, authRequired(err)
	}

	sess.Profile.Avatar = p.Avatar
	if err := s.store.Set(ctx, sess); err != nil {
		return p, err
	}
	return p, nil
}

// VenueBookingsService shows a manager the bookings of one of their venues
type VenueBookingsService struct {
	client *api.Client
	auth   *AuthService
}

// NewVenueBookingsService creates a new VenueBookingsService
func NewVenueBookingsService(client *api.Client, auth *AuthService) *VenueBookingsService {
	return &VenueBookingsService{client: client, auth: auth}
}

// VenueBookings is an owned venue and its bookings, earliest first
type VenueBookings struct {
	Venue    *domain.Venue
	Bookings []domain.Booking
}

// Load returns the bookings of venueID, which the current manager must own
func (s *VenueBookingsService) Load(ctx context.Context, venueID string) (*VenueBookings, error) {
	sess, err := s.auth.RequireManager(ctx)
	if err != nil {
		return nil, err
	}
	v, err := s.client.GetVenue(ctx, venueID, api.VenueInclude{Bookings: true, Owner: true, Fresh: true})
	if err != nil {
		if api.IsNotFound(err) {
			return nil, domain.ErrVenueNotFound
		}
		return nil, authRequired(err)
	}
	if !v.OwnedBy(sess.Profile.Name) {
		return nil, ErrNotVenueOwner
	}

	bookings := slices.Clone(v.Bookings)
	slices.SortStableFunc(bookings, func(a, b domain.Booking) int {
		return a.DateFrom.Compare(b.DateFrom)
	})
	return &VenueBookings{Venue: v, Bookings: bookings}, nil
}
