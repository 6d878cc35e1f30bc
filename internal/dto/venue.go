package dto

import (
	"math"
	"net/url"
	"strings"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/domain"
)

// LocationInput is the optional location block of a venue payload
type LocationInput struct {
	Address   string   `json:"address,omitempty"`
	City      string   `json:"city,omitempty"`
	Zip       string   `json:"zip,omitempty"`
	Country   string   `json:"country,omitempty"`
	Continent string   `json:"continent,omitempty"`
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`
}

// VenueRequest represents the request to create a venue
type VenueRequest struct {
	Name        string             `json:"name" binding:"required"`
	Description string             `json:"description" binding:"required"`
	Media       []domain.Media     `json:"media,omitempty"`
	Price       float64            `json:"price" binding:"required,gt=0"`
	MaxGuests   int                `json:"maxGuests" binding:"required,min=1"`
	Rating      *float64           `json:"rating,omitempty"`
	Meta        *domain.Facilities `json:"meta,omitempty"`
	Location    *LocationInput     `json:"location,omitempty"`
}

// Normalize trims text fields in place
func (r *VenueRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
}

// Validate validates the create venue request
func (r *VenueRequest) Validate() (bool, string) {
	if strings.TrimSpace(r.Name) == "" {
		return false, "Name is required"
	}
	if strings.TrimSpace(r.Description) == "" {
		return false, "Description is required"
	}
	if math.IsNaN(r.Price) || math.IsInf(r.Price, 0) || r.Price <= 0 {
		return false, "Price must be a positive number"
	}
	if r.MaxGuests < 1 {
		return false, "Max guests must be an integer ≥ 1"
	}
	for _, m := range r.Media {
		if !isHTTPURL(m.URL) {
			return false, "Media URLs must be http(s)"
		}
	}
	return true, ""
}

// UpdateVenueRequest represents a partial venue update. Nil fields are left unchanged.
type UpdateVenueRequest struct {
	Name        *string            `json:"name,omitempty"`
	Description *string            `json:"description,omitempty"`
	Media       *[]domain.Media    `json:"media,omitempty"`
	Price       *float64           `json:"price,omitempty"`
	MaxGuests   *int               `json:"maxGuests,omitempty"`
	Meta        *domain.Facilities `json:"meta,omitempty"`
	Location    *LocationInput     `json:"location,omitempty"`
}

// Validate validates the update venue request
func (r *UpdateVenueRequest) Validate() (bool, string) {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return false, "Name cannot be empty"
	}
	if r.Description != nil && strings.TrimSpace(*r.Description) == "" {
		return false, "Description cannot be empty"
	}
	if r.Price != nil && (math.IsNaN(*r.Price) || *r.Price < 0) {
		return false, "Invalid price"
	}
	if r.MaxGuests != nil && *r.MaxGuests < 1 {
		return false, "Max guests must be an integer ≥ 1"
	}
	if r.Media != nil {
		for _, m := range *r.Media {
			if !isHTTPURL(m.URL) {
				return false, "Media URLs must be http(s)"
			}
		}
	}
	return true, ""
}

// FromVenue builds a full update request from an existing venue
func FromVenue(v *domain.Venue) *VenueRequest {
	lat, lng := v.Location.Lat, v.Location.Lng
	meta := v.Meta
	return &VenueRequest{
		Name:        v.Name,
		Description: v.Description,
		Media:       v.Media,
		Price:       v.Price,
		MaxGuests:   v.MaxGuests,
		Meta:        &meta,
		Location: &LocationInput{
			Address:   v.Location.Address,
			City:      v.Location.City,
			Zip:       v.Location.Zip,
			Country:   v.Location.Country,
			Continent: v.Location.Continent,
			Lat:       &lat,
			Lng:       &lng,
		},
	}
}

// ApplyTo copies the location input onto a domain location
func (l *LocationInput) ApplyTo(loc *domain.Location) {
	if l == nil {
		return
	}
	loc.Address = l.Address
	loc.City = l.City
	loc.Zip = l.Zip
	loc.Country = l.Country
	loc.Continent = l.Continent
	if l.Lat != nil {
		loc.Lat = *l.Lat
	}
	if l.Lng != nil {
		loc.Lng = *l.Lng
	}
}

// ParseMedia parses one "url|alt" entry per line. Blank lines are skipped, alt is optional.
func ParseMedia(input string) ([]domain.Media, error) {
	var media []domain.Media
	for _, line := range strings.Split(strings.ReplaceAll(input, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		u, alt, _ := strings.Cut(line, "|")
		u = strings.TrimSpace(u)
		if !isHTTPURL(u) {
			return nil, domain.ErrInvalidMedia
		}
		media = append(media, domain.Media{URL: u, Alt: strings.TrimSpace(alt)})
	}
	return media, nil
}

// FormatMedia is the inverse of ParseMedia
func FormatMedia(media []domain.Media) string {
	lines := make([]string, 0, len(media))
	for _, m := range media {
		if m.Alt != "" {
			lines = append(lines, m.URL+"|"+m.Alt)
		} else {
			lines = append(lines, m.URL)
		}
	}
	return strings.Join(lines, "\n")
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// AsUpdate converts a full venue request into an update that replaces every field
func (r *VenueRequest) AsUpdate() *UpdateVenueRequest {
	name, desc := r.Name, r.Description
	price, maxGuests := r.Price, r.MaxGuests
	media := r.Media
	if media == nil {
		media = []domain.Media{}
	}
	return &UpdateVenueRequest{
		Name:        &name,
		Description: &desc,
		Media:       &media,
		Price:       &price,
		MaxGuests:   &maxGuests,
		Meta:        r.Meta,
		Location:    r.Location,
	}
}
