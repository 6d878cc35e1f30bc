package mockapi

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/availability"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/domain"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/dto"
)

var (
	ErrProfileExists      = errors.New("profile already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotOwner           = errors.New("you do not have permission to change this resource")
)

type account struct {
	profile      domain.Profile
	passwordHash []byte
}

type venueRecord struct {
	venue domain.Venue
	owner string
}

type bookingRecord struct {
	booking  domain.Booking
	venueID  string
	customer string
}

// include selects the relations expanded on returned entities
type include struct {
	owner    bool
	bookings bool
	venue    bool
	customer bool
	venues   bool
}

// Store is the in-memory state of the fake API. Every write holds the lock for its
// whole check-then-act sequence, so two overlapping bookings can never both land.
type Store struct {
	mu         sync.RWMutex
	accounts   map[string]*account // by name
	emails     map[string]string   // lower-cased email -> name
	venues     map[string]*venueRecord
	bookings   map[string]*bookingRecord
	apiKeys    map[string]string // key -> profile name
	bcryptCost int
	now        func() time.Time
}

// NewStore creates an empty store
func NewStore(bcryptCost int, now func() time.Time) *Store {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if now == nil {
		now = time.Now
	}
	return &Store{
		accounts:   make(map[string]*account),
		emails:     make(map[string]string),
		venues:     make(map[string]*venueRecord),
		bookings:   make(map[string]*bookingRecord),
		apiKeys:    make(map[string]string),
		bcryptCost: bcryptCost,
		now:        now,
	}
}

// Register creates a profile
func (s *Store) Register(req *dto.RegisterRequest) (domain.Profile, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return domain.Profile{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, ok := s.accounts[req.Name]; ok {
		return domain.Profile{}, ErrProfileExists
	}
	if _, ok := s.emails[email]; ok {
		return domain.Profile{}, ErrProfileExists
	}

	p := domain.Profile{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Bio:          req.Bio,
		Avatar:       req.Avatar,
		Banner:       req.Banner,
		VenueManager: req.VenueManager,
	}
	s.accounts[p.Name] = &account{profile: p, passwordHash: hash}
	s.emails[email] = p.Name
	return s.profileLocked(p.Name, include{}), nil
}

// Authenticate checks credentials and returns the profile
func (s *Store) Authenticate(email, password string) (domain.Profile, error) {
	s.mu.RLock()
	name, ok := s.emails[strings.ToLower(strings.TrimSpace(email))]
	var acc *account
	if ok {
		acc = s.accounts[name]
	}
	s.mu.RUnlock()

	if acc == nil {
		return domain.Profile{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)); err != nil {
		return domain.Profile{}, ErrInvalidCredentials
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profileLocked(name, include{}), nil
}

// CreateAPIKey issues a new key for name
func (s *Store) CreateAPIKey(name, label string) dto.APIKeyResponse {
	key := uuid.NewString()
	s.mu.Lock()
	s.apiKeys[key] = name
	s.mu.Unlock()
	if label == "" {
		label = "API Key"
	}
	return dto.APIKeyResponse{Name: label, Status: "ACTIVE", Key: key}
}

// KnownAPIKey reports whether key was issued by CreateAPIKey
func (s *Store) KnownAPIKey(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.apiKeys[key]
	return ok
}

// Profile returns a profile by name
func (s *Store) Profile(name string, inc include) (domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.accounts[name]; !ok {
		return domain.Profile{}, domain.ErrProfileNotFound
	}
	return s.profileLocked(name, inc), nil
}

// UpdateProfile applies a partial update
func (s *Store) UpdateProfile(name string, req *dto.UpdateProfileRequest) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[name]
	if !ok {
		return domain.Profile{}, domain.ErrProfileNotFound
	}
	if req.Bio != nil {
		acc.profile.Bio = *req.Bio
	}
	if req.ClearAvatar {
		acc.profile.Avatar = nil
	} else if req.Avatar != nil {
		m := *req.Avatar
		acc.profile.Avatar = &m
	}
	if req.Banner != nil {
		m := *req.Banner
		acc.profile.Banner = &m
	}
	if req.VenueManager != nil {
		acc.profile.VenueManager = *req.VenueManager
	}
	return s.profileLocked(name, include{}), nil
}

// Venues returns every venue, unsorted
func (s *Store) Venues(inc include) []domain.Venue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Venue, 0, len(s.venues))
	for id := range s.venues {
		out = append(out, s.venueLocked(id, inc))
	}
	return out
}

// VenuesOf returns the venues owned by name
func (s *Store) VenuesOf(name string, inc include) ([]domain.Venue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.accounts[name]; !ok {
		return nil, domain.ErrProfileNotFound
	}
	return s.venuesOfLocked(name, inc), nil
}

// Venue returns one venue
func (s *Store) Venue(id string, inc include) (domain.Venue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.venues[id]; !ok {
		return domain.Venue{}, domain.ErrVenueNotFound
	}
	return s.venueLocked(id, inc), nil
}

// CreateVenue creates a venue owned by owner, who must be a venue manager
func (s *Store) CreateVenue(owner string, req *dto.VenueRequest) (domain.Venue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[owner]
	if !ok {
		return domain.Venue{}, domain.ErrProfileNotFound
	}
	if !acc.profile.VenueManager {
		return domain.Venue{}, domain.ErrNotVenueManager
	}

	now := s.now().UTC()
	v := domain.Venue{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Media:       slices.Clone(req.Media),
		Price:       req.Price,
		MaxGuests:   req.MaxGuests,
		Created:     now,
		Updated:     now,
	}
	if v.Media == nil {
		v.Media = []domain.Media{}
	}
	if req.Rating != nil {
		v.Rating = *req.Rating
	}
	if req.Meta != nil {
		v.Meta = *req.Meta
	}
	req.Location.ApplyTo(&v.Location)

	s.venues[v.ID] = &venueRecord{venue: v, owner: owner}
	return s.venueLocked(v.ID, include{}), nil
}

// UpdateVenue applies a partial update on behalf of actor
func (s *Store) UpdateVenue(actor, id string, req *dto.UpdateVenueRequest) (domain.Venue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.venues[id]
	if !ok {
		return domain.Venue{}, domain.ErrVenueNotFound
	}
	if rec.owner != actor {
		return domain.Venue{}, ErrNotOwner
	}

	v := &rec.venue
	if req.Name != nil {
		v.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		v.Description = strings.TrimSpace(*req.Description)
	}
	if req.Media != nil {
		v.Media = slices.Clone(*req.Media)
	}
	if req.Price != nil {
		v.Price = *req.Price
	}
	if req.MaxGuests != nil {
		v.MaxGuests = *req.MaxGuests
	}
	if req.Meta != nil {
		v.Meta = *req.Meta
	}
	req.Location.ApplyTo(&v.Location)
	v.Updated = s.now().UTC()
	return s.venueLocked(id, include{}), nil
}

// DeleteVenue deletes a venue and all of its bookings
func (s *Store) DeleteVenue(actor, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.venues[id]
	if !ok {
		return domain.ErrVenueNotFound
	}
	if rec.owner != actor {
		return ErrNotOwner
	}
	for bid, b := range s.bookings {
		if b.venueID == id {
			delete(s.bookings, bid)
		}
	}
	delete(s.venues, id)
	return nil
}

// Booking returns one booking
func (s *Store) Booking(id string, inc include) (domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.bookings[id]; !ok {
		return domain.Booking{}, domain.ErrBookingNotFound
	}
	return s.bookingLocked(id, inc), nil
}

// BookingsOf returns the bookings made by name, earliest first
func (s *Store) BookingsOf(name string, inc include) ([]domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.accounts[name]; !ok {
		return nil, domain.ErrProfileNotFound
	}
	return s.bookingsLocked(func(b *bookingRecord) bool { return b.customer == name }, inc), nil
}

// CreateBooking books a venue after re-checking the date range against every
// booking the venue holds right now
func (s *Store) CreateBooking(customer string, req *dto.CreateBookingRequest) (domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.venues[req.VenueID]
	if !ok {
		return domain.Booking{}, domain.ErrVenueNotFound
	}
	if err := s.checkLocked(rec, req.DateFrom, req.DateTo, req.Guests, ""); err != nil {
		return domain.Booking{}, err
	}

	now := s.now().UTC()
	b := domain.Booking{
		ID:       uuid.NewString(),
		DateFrom: req.DateFrom.UTC(),
		DateTo:   req.DateTo.UTC(),
		Guests:   req.Guests,
		Created:  now,
		Updated:  now,
	}
	s.bookings[b.ID] = &bookingRecord{booking: b, venueID: req.VenueID, customer: customer}
	return s.bookingLocked(b.ID, include{}), nil
}

// UpdateBooking changes a booking's dates and guests. The booking never conflicts with itself.
func (s *Store) UpdateBooking(actor, id string, req *dto.UpdateBookingRequest) (domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.bookings[id]
	if !ok {
		return domain.Booking{}, domain.ErrBookingNotFound
	}
	if rec.customer != actor {
		return domain.Booking{}, ErrNotOwner
	}
	venue, ok := s.venues[rec.venueID]
	if !ok {
		return domain.Booking{}, domain.ErrVenueNotFound
	}
	if err := s.checkLocked(venue, req.DateFrom, req.DateTo, req.Guests, id); err != nil {
		return domain.Booking{}, err
	}

	rec.booking.DateFrom = req.DateFrom.UTC()
	rec.booking.DateTo = req.DateTo.UTC()
	rec.booking.Guests = req.Guests
	rec.booking.Updated = s.now().UTC()
	return s.bookingLocked(id, include{}), nil
}

// DeleteBooking deletes a booking. The customer and the venue owner may both delete it.
func (s *Store) DeleteBooking(actor, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.bookings[id]
	if !ok {
		return domain.ErrBookingNotFound
	}
	if rec.customer != actor {
		if v, ok := s.venues[rec.venueID]; !ok || v.owner != actor {
			return ErrNotOwner
		}
	}
	delete(s.bookings, id)
	return nil
}

func (s *Store) checkLocked(venue *venueRecord, from, to time.Time, guests int, excludeID string) error {
	if guests < 1 {
		return domain.ErrInvalidGuests
	}
	if venue.venue.MaxGuests > 0 && guests > venue.venue.MaxGuests {
		return domain.ErrTooManyGuests
	}
	existing := s.bookingsLocked(func(b *bookingRecord) bool { return b.venueID == venue.venue.ID }, include{})
	proposed := availability.NewRange(availability.DayOf(from), availability.DayOf(to))
	if res := availability.CheckBookings(existing, proposed, excludeID); !res.Available {
		return res.Err
	}
	return nil
}

func (s *Store) profileLocked(name string, inc include) domain.Profile {
	acc := s.accounts[name]
	p := acc.profile
	venues := s.venuesOfLocked(name, include{})
	bookings := s.bookingsLocked(func(b *bookingRecord) bool { return b.customer == name }, include{venue: true})
	p.Count = &domain.ProfileCount{Venues: len(venues), Bookings: len(bookings)}
	if inc.venues {
		p.Venues = venues
	}
	if inc.bookings {
		p.Bookings = bookings
	}
	return p
}

func (s *Store) venuesOfLocked(name string, inc include) []domain.Venue {
	out := []domain.Venue{}
	for id, v := range s.venues {
		if v.owner == name {
			out = append(out, s.venueLocked(id, inc))
		}
	}
	sortVenues(out, "created", "desc")
	return out
}

func (s *Store) venueLocked(id string, inc include) domain.Venue {
	rec := s.venues[id]
	v := rec.venue
	v.Media = slices.Clone(v.Media)
	if inc.owner {
		if acc, ok := s.accounts[rec.owner]; ok {
			owner := acc.profile
			v.Owner = &owner
		}
	}
	if inc.bookings {
		v.Bookings = s.bookingsLocked(func(b *bookingRecord) bool { return b.venueID == id }, include{customer: true})
	}
	return v
}

func (s *Store) bookingLocked(id string, inc include) domain.Booking {
	rec := s.bookings[id]
	b := rec.booking
	if inc.venue {
		if _, ok := s.venues[rec.venueID]; ok {
			v := s.venueLocked(rec.venueID, include{})
			b.Venue = &v
		}
	}
	if inc.customer {
		if acc, ok := s.accounts[rec.customer]; ok {
			c := acc.profile
			b.Customer = &c
		}
	}
	return b
}

func (s *Store) bookingsLocked(match func(*bookingRecord) bool, inc include) []domain.Booking {
	out := []domain.Booking{}
	for id, b := range s.bookings {
		if match(b) {
			out = append(out, s.bookingLocked(id, inc))
		}
	}
	slices.SortFunc(out, func(a, b domain.Booking) int {
		if c := a.DateFrom.Compare(b.DateFrom); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// sortVenues orders venues by created, name or price. Ties fall back to ID.
func sortVenues(venues []domain.Venue, field, order string) {
	desc := strings.EqualFold(order, "desc")
	slices.SortStableFunc(venues, func(a, b domain.Venue) int {
		var c int
		switch field {
		case "name":
			c = strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		case "price":
			switch {
			case a.Price < b.Price:
				c = -1
			case a.Price > b.Price:
				c = 1
			}
		default:
			c = a.Created.Compare(b.Created)
		}
		if c == 0 {
			c = strings.Compare(a.ID, b.ID)
		}
		if desc {
			return -c
		}
		return c
	})
}
