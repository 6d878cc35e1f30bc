package mockapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/api"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/availability"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/bookingform"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/domain"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/dto"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/session"
)

const testPassword = "correct-horse"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T, cfg Config) (*Server, *httptest.Server) {
	t.Helper()
	cfg.BcryptCost = bcrypt.MinCost
	s := New(cfg)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, srv
}

func newClient(t *testing.T, srv *httptest.Server, apiKey string) (*api.Client, session.Store) {
	t.Helper()
	store := session.NewMemoryStore(nil)
	t.Cleanup(func() { _ = store.Close() })
	return api.New(api.Config{
		BaseURL:     srv.URL + "/holidaze",
		AuthBaseURL: srv.URL,
		APIKey:      apiKey,
	}, store), store
}

// signUp registers name and stores the logged in session
func signUp(t *testing.T, c *api.Client, store session.Store, name string, manager bool) {
	t.Helper()
	ctx := context.Background()
	_, err := c.Register(ctx, &dto.RegisterRequest{
		Name:         name,
		Email:        name + "@stud.noroff.no",
		Password:     testPassword,
		VenueManager: manager,
	})
	require.NoError(t, err)
	resp, err := c.Login(ctx, name+"@stud.noroff.no", testPassword)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, resp.Session()))
}

func createVenue(t *testing.T, c *api.Client, name string, maxGuests int) *domain.Venue {
	t.Helper()
	v, err := c.CreateVenue(context.Background(), &dto.VenueRequest{
		Name:        name,
		Description: "A place to stay",
		Price:       100,
		MaxGuests:   maxGuests,
	})
	require.NoError(t, err)
	return v
}

func day(s string) availability.Day {
	return availability.MustParseDay(s)
}

func bookingReq(venueID, from, to string, guests int) *dto.CreateBookingRequest {
	return &dto.CreateBookingRequest{
		DateFrom: day(from).Time(),
		DateTo:   day(to).EndOfDay(),
		Guests:   guests,
		VenueID:  venueID,
	}
}

func TestAuth_RegisterAndLogin(t *testing.T) {
	_, srv := newTestServer(t, Config{})
	c, store := newClient(t, srv, "")
	ctx := context.Background()

	signUp(t, c, store, "kari", true)
	sess, err := store.Get(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.AccessToken)
	assert.True(t, sess.IsManager())
	assert.Equal(t, "kari@stud.noroff.no", sess.Profile.Email)

	_, err = c.Register(ctx, &dto.RegisterRequest{Name: "kari", Email: "kari@stud.noroff.no", Password: testPassword})
	require.Error(t, err)
	assert.Equal(t, "Profile already exists", err.Error())
}

func TestAuth_InvalidCredentials(t *testing.T) {
	_, srv := newTestServer(t, Config{})
	c, store := newClient(t, srv, "")
	signUp(t, c, store, "ola", false)

	_, err := c.Login(context.Background(), "ola@stud.noroff.no", "wrong-password")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, api.StatusCode(err))
	assert.Equal(t, "Invalid email or password", err.Error())
}

func TestAuth_RegisterValidation(t *testing.T) {
	_, srv := newTestServer(t, Config{})
	c, _ := newClient(t, srv, "")

	_, err := c.Register(context.Background(), &dto.RegisterRequest{Name: "x", Email: "x@gmail.com", Password: testPassword})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, api.StatusCode(err))
	assert.Equal(t, "Email must be @stud.noroff.no", err.Error())
}

func TestAuth_ExpiredToken(t *testing.T) {
	now := time.Now()
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	_, srv := newTestServer(t, Config{TokenTTL: time.Hour, Now: clock})
	c, store := newClient(t, srv, "")
	signUp(t, c, store, "ola", false)

	mu.Lock()
	now = now.Add(2 * time.Hour)
	mu.Unlock()

	_, err := c.GetProfile(context.Background(), "ola", api.ProfileInclude{})
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.Equal(t, "Token has expired", err.Error())
}

func TestAPIKey_Required(t *testing.T) {
	_, srv := newTestServer(t, Config{APIKey: "server-key"})
	ctx := context.Background()

	noKey, store := newClient(t, srv, "")
	signUp(t, noKey, store, "ola", false)

	_, err := noKey.GetProfile(ctx, "ola", api.ProfileInclude{})
	require.Error(t, err)
	assert.Equal(t, "No API key header was found", err.Error())

	// Anonymous reads do not need a key
	_, err = noKey.ListVenues(ctx, api.ListOptions{})
	require.NoError(t, err)

	key, err := noKey.CreateAPIKey(ctx, "cli")
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", key.Status)
	require.NoError(t, store.SetAPIKey(ctx, key.Key))

	_, err = noKey.GetProfile(ctx, "ola", api.ProfileInclude{})
	assert.NoError(t, err, "issued keys are accepted")
}

func TestVenues_ManagerOnly(t *testing.T) {
	_, srv := newTestServer(t, Config{})
	c, store := newClient(t, srv, "")
	signUp(t, c, store, "guest", false)

	_, err := c.CreateVenue(context.Background(), &dto.VenueRequest{Name: "N", Description: "D", Price: 1, MaxGuests: 1})
	require.Error(t, err)
	assert.True(t, api.IsForbidden(err))
}

func TestVenues_CreateValidation(t *testing.T) {
	_, srv := newTestServer(t, Config{})
	c, store := newClient(t, srv, "")
	signUp(t, c, store, "host", true)

	_, err := c.CreateVenue(context.Background(), &dto.VenueRequest{Name: "N", Description: "D", Price: 0, MaxGuests: 1})
	require.Error(t, err)
	assert.Equal(t, "Price must be a positive number", err.Error())
}

func TestVenues_ListSortAndPage(t *testing.T) {
	base := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	n := 0
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}
	_, srv := newTestServer(t, Config{Now: clock})
	c, store := newClient(t, srv, "")
	signUp(t, c, store, "host", true)
	for _, name := range []string{"first", "second", "third"} {
		createVenue(t, c, name, 2)
	}

	opts := api.NewestFirst()
	opts.Limit = 2
	env, err := c.ListVenues(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, env.Data, 2)
	assert.Equal(t, "third", env.Data[0].Name)
	assert.Equal(t, "second", env.Data[1].Name)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 3, env.Meta.TotalCount)
	assert.False(t, env.Meta.IsLastPage)

	opts.Page = 2
	env, err = c.ListVenues(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, env.Data, 1)
	assert.Equal(t, "first", env.Data[0].Name)
	assert.True(t, env.Meta.IsLastPage)
}

func TestVenues_Search(t *testing.T) {
	_, srv := newTestServer(t, Config{})
	c, store := newClient(t, srv, "")
	signUp(t, c, store, "host", true)
	createVenue(t, c, "Seaside Villa", 2)
	createVenue(t, c, "Mountain Hut", 2)

	env, err := c.SearchVenues(context.Background(), "seaside", api.ListOptions{})
	require.NoError(t, err)
	require.Len(t, env.Data, 1)
	assert.Equal(t, "Seaside Villa", env.Data[0].Name)
}

func TestVenues_DetailIncludesOwnerAndBookings(t *testing.T) {
	_, srv := newTestServer(t, Config{})
	host, hostStore := newClient(t, srv, "")
	signUp(t, host, hostStore, "host", true)
	v := createVenue(t, host, "Cabin", 4)

	guest, guestStore := newClient(t, srv, "")
	signUp(t, guest, guestStore, "guest", false)
	_, err := guest.CreateBooking(context.Background(), bookingReq(v.ID, "2030-03-10", "2030-03-12", 2))
	require.NoError(t, err)

	got, err := guest.GetVenue(context.Background(), v.ID, api.VenueInclude{Bookings: true, Owner: true})
	require.NoError(t, err)
	require.NotNil(t, got.Owner)
	assert.Equal(t, "host", got.Owner.Name)
	require.Len(t, got.Bookings, 1)
	assert.Equal(t, 2, got.Bookings[0].Guests)
}

func TestBookings_ServerRevalidatesAgainstConcurrentBooking(t *testing.T) {
	_, srv := newTestServer(t, Config{})
	ctx := context.Background()
	host, hostStore := newClient(t, srv, "")
	signUp(t, host, hostStore, "host", true)
	v := createVenue(t, host, "Cabin", 4)

	alice, aliceStore := newClient(t, srv, "")
	signUp(t, alice, aliceStore, "alice", false)
	bob, bobStore := newClient(t, srv, "")
	signUp(t, bob, bobStore, "bob", false)

	// Bob loads the venue while it is still free
	bobView, err := bob.GetVenue(ctx, v.ID, api.VenueInclude{Bookings: true})
	require.NoError(t, err)
	clock := func() time.Time { return time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC) }
	form := bookingform.New(bobView, "", clock)
	_, err = form.SetStart(day("2030-06-10"))
	require.NoError(t, err)
	require.NoError(t, form.SetEnd(day("2030-06-14")))
	require.NoError(t, form.Validate(), "the stale client view sees no conflict")

	// Alice books overlapping days first
	_, err = alice.CreateBooking(ctx, bookingReq(v.ID, "2030-06-12", "2030-06-16", 1))
	require.NoError(t, err)

	_, err = bob.CreateBooking(ctx, form.CreateRequest())
	require.Error(t, err)
	assert.True(t, api.IsConflict(err))
	assert.Equal(t, "The selected dates are not available for this venue", err.Error())
}

func TestBookings_ConcurrentCreatesOnlyOneWins(t *testing.T) {
	_, srv := newTestServer(t, Config{})
	host, hostStore := newClient(t, srv, "")
	signUp(t, host, hostStore, "host", true)
	v := createVenue(t, host, "Cabin", 4)

	guest, guestStore := newClient(t, srv, "")
	signUp(t, guest, guestStore, "guest", false)

	const n = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok, clash int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := guest.CreateBooking(context.Background(), bookingReq(v.ID, "2030-08-01", "2030-08-03", 1))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case api.IsConflict(err):
				clash++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, clash)
}

func TestBookings_UpdateExcludesItself(t *testing.T) {
	_, srv := newTestServer(t, Config{})
	ctx := context.Background()
	host, hostStore := newClient(t, srv, "")
	signUp(t, host, hostStore, "host", true)
	v := createVenue(t, host, "Cabin", 4)

	guest, guestStore := newClient(t, srv, "")
	signUp(t, guest, guestStore, "guest", false)
	b, err := guest.CreateBooking(ctx, bookingReq(v.ID, "2030-05-10", "2030-05-12", 2))
	require.NoError(t, err)
	_, err = guest.CreateBooking(ctx, bookingReq(v.ID, "2030-05-20", "2030-05-22", 2))
	require.NoError(t, err)

	// Shifting by one day overlaps only the booking itself
	updated, err := guest.UpdateBooking(ctx, b.ID, &dto.UpdateBookingRequest{
		DateFrom: day("2030-05-11").Time(),
		DateTo:   day("2030-05-13").EndOfDay(),
		Guests:   3,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Guests)

	_, err = guest.UpdateBooking(ctx, b.ID, &dto.UpdateBookingRequest{
		DateFrom: day("2030-05-18").Time(),
		DateTo:   day("2030-05-20").EndOfDay(),
		Guests:   3,
	})
	assert.True(t, api.IsConflict(err))

	_, err = guest.UpdateBooking(ctx, b.ID, &dto.UpdateBookingRequest{
		DateFrom: day("2030-05-11").Time(),
		DateTo:   day("2030-05-13").EndOfDay(),
		Guests:   5,
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, api.StatusCode(err))
}

func TestBookings_OnlyCustomerCanEdit(t *testing.T) {
	_, srv := newTestServer(t, Config{})
	ctx := context.Background()
	host, hostStore := newClient(t, srv, "")
	signUp(t, host, hostStore, "host", true)
	v := createVenue(t, host, "Cabin", 4)

	guest, guestStore := newClient(t, srv, "")
	signUp(t, guest, guestStore, "guest", false)
	b, err := guest.CreateBooking(ctx, bookingReq(v.ID, "2030-05-10", "2030-05-12", 2))
	require.NoError(t, err)

	_, err = host.UpdateBooking(ctx, b.ID, &dto.UpdateBookingRequest{
		DateFrom: day("2030-05-10").Time(),
		DateTo:   day("2030-05-12").EndOfDay(),
		Guests:   1,
	})
	assert.True(t, api.IsForbidden(err))

	// The venue owner may cancel it
	assert.NoError(t, host.DeleteBooking(ctx, b.ID))
	_, err = guest.GetBooking(ctx, b.ID, api.BookingInclude{})
	assert.True(t, api.IsNotFound(err))
}

func TestVenues_DeleteCascadesBookings(t *testing.T) {
	_, srv := newTestServer(t, Config{})
	ctx := context.Background()
	host, hostStore := newClient(t, srv, "")
	signUp(t, host, hostStore, "host", true)
	v := createVenue(t, host, "Cabin", 4)

	guest, guestStore := newClient(t, srv, "")
	signUp(t, guest, guestStore, "guest", false)
	_, err := guest.CreateBooking(ctx, bookingReq(v.ID, "2030-05-10", "2030-05-12", 2))
	require.NoError(t, err)

	require.NoError(t, host.DeleteVenue(ctx, v.ID))

	bookings, err := guest.ProfileBookings(ctx, "guest", api.BookingInclude{Venue: true, Fresh: true})
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestProfiles_UpdateOwnOnly(t *testing.T) {
	_, srv := newTestServer(t, Config{})
	ctx := context.Background()
	a, aStore := newClient(t, srv, "")
	signUp(t, a, aStore, "ola", false)
	b, bStore := newClient(t, srv, "")
	signUp(t, b, bStore, "kari", false)

	avatar := &domain.Media{URL: "https://example.com/a.png", Alt: "ola"}
	p, err := a.UpdateProfile(ctx, "ola", &dto.UpdateProfileRequest{Avatar: avatar})
	require.NoError(t, err)
	require.NotNil(t, p.Avatar)
	assert.Equal(t, avatar.URL, p.Avatar.URL)

	_, err = b.UpdateProfile(ctx, "ola", &dto.UpdateProfileRequest{Avatar: avatar})
	assert.True(t, api.IsForbidden(err))
}

func TestProfiles_Counts(t *testing.T) {
	s, srv := newTestServer(t, Config{})
	require.NoError(t, s.Store().Seed(testPassword))

	c, store := newClient(t, srv, "")
	resp, err := c.Login(context.Background(), DemoManager+"@stud.noroff.no", testPassword)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), resp.Session()))

	p, err := c.GetProfile(context.Background(), DemoManager, api.ProfileInclude{Venues: true})
	require.NoError(t, err)
	require.NotNil(t, p.Count)
	assert.Equal(t, len(demoVenues), p.Count.Venues)
	assert.Len(t, p.Venues, len(demoVenues))

	venues, err := c.ProfileVenues(context.Background(), DemoManager, api.ListOptions{Bookings: true})
	require.NoError(t, err)
	total := 0
	for _, v := range venues {
		total += len(v.Bookings)
	}
	assert.Equal(t, 1, total)
}

func TestMetricsEndpoint(t *testing.T) {
	_, srv := newTestServer(t, Config{})
	c, _ := newClient(t, srv, "")
	_, err := c.ListVenues(context.Background(), api.ListOptions{})
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `holidaze_mockapi_requests_total{method="GET",route="/holidaze/venues",status="200"} 1`)
}

func TestUnknownRoute(t *testing.T) {
	_, srv := newTestServer(t, Config{})
	resp, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTracing_SpanAttributes(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	_, srv := newTestServer(t, Config{Tracing: true})
	c, store := newClient(t, srv, "")
	signUp(t, c, store, "kari", true)
	v := createVenue(t, c, "Fjord Cabin", 4)

	_, err := c.GetVenue(context.Background(), v.ID, api.VenueInclude{})
	require.NoError(t, err)

	var found sdktrace.ReadOnlySpan
	for _, s := range rec.Ended() {
		if s.Name() == "GET /holidaze/venues/:id" {
			found = s
		}
	}
	require.NotNil(t, found)
	attrs := found.Attributes()
	assert.Contains(t, attrs, attribute.String("holidaze.profile", "kari"))
	assert.Contains(t, attrs, attribute.String("holidaze.resource_id", v.ID))
	assert.Contains(t, attrs, attribute.Bool("holidaze.authenticated", true))
}
