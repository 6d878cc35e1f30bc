package dto

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/domain"
)

var studentEmail = regexp.MustCompile(`(?i)^[^@\s]+@stud\.noroff\.no$`)

// MinPasswordLength is the shortest password the API accepts
const MinPasswordLength = 8

// LoginRequest represents the request to log in
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Validate validates the login request
func (r *LoginRequest) Validate() (bool, string) {
	if strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return false, "Email and password are required"
	}
	return true, ""
}

// LoginResponse is the profile of the logged in user plus its access token
type LoginResponse struct {
	domain.Profile
	AccessToken string `json:"accessToken"`
}

// Session converts the login response into a stored session
func (r *LoginResponse) Session() *domain.Session {
	return &domain.Session{
		AccessToken: r.AccessToken,
		Profile:     r.Profile,
	}
}

// RegisterRequest represents the request to create a profile
type RegisterRequest struct {
	Name         string        `json:"name" binding:"required"`
	Email        string        `json:"email" binding:"required"`
	Password     string        `json:"password" binding:"required"`
	Bio          string        `json:"bio,omitempty"`
	Avatar       *domain.Media `json:"avatar,omitempty"`
	Banner       *domain.Media `json:"banner,omitempty"`
	VenueManager bool          `json:"venueManager"`
}

// Validate validates the register request
func (r *RegisterRequest) Validate() (bool, string) {
	if strings.TrimSpace(r.Name) == "" {
		return false, "Name is required"
	}
	if !studentEmail.MatchString(strings.TrimSpace(r.Email)) {
		return false, "Email must be @stud.noroff.no"
	}
	if len(r.Password) < MinPasswordLength {
		return false, "Password must be at least 8 characters"
	}
	return true, ""
}

// CreateAPIKeyRequest represents the request to create an API key
type CreateAPIKeyRequest struct {
	Name string `json:"name,omitempty"`
}

// APIKeyResponse is the created API key
type APIKeyResponse struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Key    string `json:"key"`
}

// UpdateProfileRequest represents the request to update a profile
type UpdateProfileRequest struct {
	Bio          *string       `json:"bio,omitempty"`
	Avatar       *domain.Media `json:"avatar,omitempty"`
	Banner       *domain.Media `json:"banner,omitempty"`
	VenueManager *bool         `json:"venueManager,omitempty"`

	// ClearAvatar sends "avatar": null, which removes the avatar
	ClearAvatar bool `json:"-"`
}

type plainProfileUpdate UpdateProfileRequest

// MarshalJSON writes an explicit null avatar when ClearAvatar is set
func (r UpdateProfileRequest) MarshalJSON() ([]byte, error) {
	if !r.ClearAvatar {
		return json.Marshal(plainProfileUpdate(r))
	}
	return json.Marshal(struct {
		plainProfileUpdate
		Avatar *domain.Media `json:"avatar"`
	}{plainProfileUpdate: plainProfileUpdate(r)})
}

// UnmarshalJSON sets ClearAvatar when the body carries "avatar": null
func (r *UpdateProfileRequest) UnmarshalJSON(b []byte) error {
	var p plainProfileUpdate
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	if raw, ok := fields["avatar"]; ok && bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		p.ClearAvatar = true
	}
	*r = UpdateProfileRequest(p)
	return nil
}

// Validate validates the update profile request
func (r *UpdateProfileRequest) Validate() (bool, string) {
	if r.Bio == nil && r.Avatar == nil && !r.ClearAvatar && r.Banner == nil && r.VenueManager == nil {
		return false, "At least one field is required"
	}
	if r.ClearAvatar && r.Avatar != nil {
		return false, "Avatar cannot be set and cleared at once"
	}
	if r.Avatar != nil && !isHTTPURL(r.Avatar.URL) {
		return false, "Avatar must be an http(s) URL"
	}
	if r.Banner != nil && !isHTTPURL(r.Banner.URL) {
		return false, "Banner must be an http(s) URL"
	}
	return true, ""
}
