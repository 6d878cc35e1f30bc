package mockapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/domain"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/dto"
	"github.com/Skr3d3/holidaze-project-exam-2/pkg/response"
)

const (
	defaultPageLimit = 100
	maxPageLimit     = 100
)

// validator is implemented by every request DTO
type validator interface {
	Validate() (bool, string)
}

// bind decodes the JSON body into req and runs its Validate method.
// Validate runs first so clients see its messages rather than binding tag errors.
func bind(c *gin.Context, req validator) bool {
	bindErr := c.ShouldBindJSON(req)
	if ok, msg := req.Validate(); !ok {
		response.BadRequest(c, msg)
		return false
	}
	if bindErr != nil {
		response.BadRequest(c, bindErr.Error())
		return false
	}
	return true
}

func flag(c *gin.Context, name string) bool {
	return c.Query(name) == "true"
}

func actor(c *gin.Context) string {
	return c.GetString(ctxProfileName)
}

// handleError maps store errors to responses
func (s *Server) handleError(c *gin.Context, err error) {
	switch {
	case domain.IsNotFoundError(err):
		response.NotFound(c, capitalize(err.Error()))
	case errors.Is(err, domain.ErrDateOverlap):
		s.metrics.bookingConflicts.Inc()
		response.Conflict(c, "The selected dates are not available for this venue")
	case errors.Is(err, ErrProfileExists):
		response.BadRequest(c, "Profile already exists")
	case errors.Is(err, ErrInvalidCredentials):
		response.Unauthorized(c, "Invalid email or password")
	case errors.Is(err, ErrNotOwner):
		response.Forbidden(c, "You do not have permission to change this resource")
	case errors.Is(err, domain.ErrNotVenueManager):
		response.Forbidden(c, "Only venue managers can create venues")
	case domain.IsValidationError(err):
		response.BadRequest(c, capitalize(err.Error()))
	default:
		s.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		response.InternalError(c, err)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// paginate slices items per the limit and page query parameters
func paginate[T any](c *gin.Context, items []T) ([]T, response.Meta) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if err != nil || limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	meta := response.Paginate(len(items), page, limit)
	from := (page - 1) * limit
	if from >= len(items) {
		return []T{}, meta
	}
	to := min(from+limit, len(items))
	return items[from:to], meta
}

// Register handles POST /auth/register
func (s *Server) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bind(c, &req) {
		return
	}
	p, err := s.store.Register(&req)
	if err != nil {
		s.handleError(c, err)
		return
	}
	response.Created(c, p)
}

// Login handles POST /auth/login
func (s *Server) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bind(c, &req) {
		return
	}
	p, err := s.store.Authenticate(req.Email, req.Password)
	if err != nil {
		s.handleError(c, err)
		return
	}
	token, err := s.tokens.issue(p.Name, p.Email)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if !flag(c, "_holidaze") {
		p.VenueManager = false
	}
	response.Success(c, dto.LoginResponse{Profile: p, AccessToken: token})
}

// CreateAPIKey handles POST /auth/create-api-key
func (s *Server) CreateAPIKey(c *gin.Context) {
	var req dto.CreateAPIKeyRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}
	response.Created(c, s.store.CreateAPIKey(actor(c), req.Name))
}

// ListVenues handles GET /venues
func (s *Server) ListVenues(c *gin.Context) {
	venues := s.store.Venues(include{owner: flag(c, "_owner"), bookings: flag(c, "_bookings")})
	sortVenues(venues, c.DefaultQuery("sort", "created"), c.DefaultQuery("sortOrder", "desc"))
	page, meta := paginate(c, venues)
	response.SuccessWithMeta(c, page, meta)
}

// SearchVenues handles GET /venues/search
func (s *Server) SearchVenues(c *gin.Context) {
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))
	all := s.store.Venues(include{owner: flag(c, "_owner"), bookings: flag(c, "_bookings")})
	matched := all[:0]
	for _, v := range all {
		if q == "" ||
			strings.Contains(strings.ToLower(v.Name), q) ||
			strings.Contains(strings.ToLower(v.Description), q) {
			matched = append(matched, v)
		}
	}
	sortVenues(matched, c.DefaultQuery("sort", "created"), c.DefaultQuery("sortOrder", "desc"))
	page, meta := paginate(c, matched)
	response.SuccessWithMeta(c, page, meta)
}

// GetVenue handles GET /venues/:id
func (s *Server) GetVenue(c *gin.Context) {
	v, err := s.store.Venue(c.Param("id"), include{owner: flag(c, "_owner"), bookings: flag(c, "_bookings")})
	if err != nil {
		s.handleError(c, err)
		return
	}
	response.Success(c, v)
}

// CreateVenue handles POST /venues
func (s *Server) CreateVenue(c *gin.Context) {
	var req dto.VenueRequest
	if !bind(c, &req) {
		return
	}
	req.Normalize()
	v, err := s.store.CreateVenue(actor(c), &req)
	if err != nil {
		s.handleError(c, err)
		return
	}
	response.Created(c, v)
}

// UpdateVenue handles PUT /venues/:id
func (s *Server) UpdateVenue(c *gin.Context) {
	var req dto.UpdateVenueRequest
	if !bind(c, &req) {
		return
	}
	v, err := s.store.UpdateVenue(actor(c), c.Param("id"), &req)
	if err != nil {
		s.handleError(c, err)
		return
	}
	response.Success(c, v)
}

// DeleteVenue handles DELETE /venues/:id
func (s *Server) DeleteVenue(c *gin.Context) {
	if err := s.store.DeleteVenue(actor(c), c.Param("id")); err != nil {
		s.handleError(c, err)
		return
	}
	response.NoContent(c)
}

// GetBooking handles GET /bookings/:id
func (s *Server) GetBooking(c *gin.Context) {
	b, err := s.store.Booking(c.Param("id"), include{venue: flag(c, "_venue"), customer: flag(c, "_customer")})
	if err != nil {
		s.handleError(c, err)
		return
	}
	response.Success(c, b)
}

// CreateBooking handles POST /bookings
func (s *Server) CreateBooking(c *gin.Context) {
	var req dto.CreateBookingRequest
	if !bind(c, &req) {
		return
	}
	b, err := s.store.CreateBooking(actor(c), &req)
	if err != nil {
		s.handleError(c, err)
		return
	}
	response.Created(c, b)
}

// UpdateBooking handles PUT /bookings/:id
func (s *Server) UpdateBooking(c *gin.Context) {
	var req dto.UpdateBookingRequest
	if !bind(c, &req) {
		return
	}
	b, err := s.store.UpdateBooking(actor(c), c.Param("id"), &req)
	if err != nil {
		s.handleError(c, err)
		return
	}
	response.Success(c, b)
}

// DeleteBooking handles DELETE /bookings/:id
func (s *Server) DeleteBooking(c *gin.Context) {
	if err := s.store.DeleteBooking(actor(c), c.Param("id")); err != nil {
		s.handleError(c, err)
		return
	}
	response.NoContent(c)
}

// GetProfile handles GET /profiles/:name
func (s *Server) GetProfile(c *gin.Context) {
	p, err := s.store.Profile(c.Param("name"), include{venues: flag(c, "_venues"), bookings: flag(c, "_bookings")})
	if err != nil {
		s.handleError(c, err)
		return
	}
	response.Success(c, p)
}

// UpdateProfile handles PUT /profiles/:name
func (s *Server) UpdateProfile(c *gin.Context) {
	name := c.Param("name")
	if name != actor(c) {
		response.Error(c, http.StatusForbidden, "You can only update your own profile")
		return
	}
	var req dto.UpdateProfileRequest
	if !bind(c, &req) {
		return
	}
	p, err := s.store.UpdateProfile(name, &req)
	if err != nil {
		s.handleError(c, err)
		return
	}
	response.Success(c, p)
}

// ProfileBookings handles GET /profiles/:name/bookings
func (s *Server) ProfileBookings(c *gin.Context) {
	bookings, err := s.store.BookingsOf(c.Param("name"), include{venue: flag(c, "_venue"), customer: flag(c, "_customer")})
	if err != nil {
		s.handleError(c, err)
		return
	}
	page, meta := paginate(c, bookings)
	response.SuccessWithMeta(c, page, meta)
}

// ProfileVenues handles GET /profiles/:name/venues
func (s *Server) ProfileVenues(c *gin.Context) {
	venues, err := s.store.VenuesOf(c.Param("name"), include{owner: flag(c, "_owner"), bookings: flag(c, "_bookings")})
	if err != nil {
		s.handleError(c, err)
		return
	}
	sortVenues(venues, c.DefaultQuery("sort", "created"), c.DefaultQuery("sortOrder", "desc"))
	page, meta := paginate(c, venues)
	response.SuccessWithMeta(c, page, meta)
}
