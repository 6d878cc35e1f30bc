package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/domain"
)

func TestRegisterRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     RegisterRequest
		wantOK  bool
		wantMsg string
	}{
		{"valid", RegisterRequest{Name: "kari", Email: "kari@stud.noroff.no", Password: "12345678"}, true, ""},
		{"uppercase domain", RegisterRequest{Name: "kari", Email: "kari@STUD.NOROFF.NO", Password: "12345678"}, true, ""},
		{"missing name", RegisterRequest{Email: "kari@stud.noroff.no", Password: "12345678"}, false, "Name is required"},
		{"wrong domain", RegisterRequest{Name: "kari", Email: "kari@gmail.com", Password: "12345678"}, false, "Email must be @stud.noroff.no"},
		{"short password", RegisterRequest{Name: "kari", Email: "kari@stud.noroff.no", Password: "1234567"}, false, "Password must be at least 8 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, msg := tt.req.Validate()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestVenueRequest_Validate(t *testing.T) {
	valid := func() VenueRequest {
		return VenueRequest{Name: "Cabin", Description: "Cozy", Price: 100, MaxGuests: 4}
	}

	tests := []struct {
		name   string
		mutate func(r *VenueRequest)
		wantOK bool
	}{
		{"valid", func(r *VenueRequest) {}, true},
		{"blank name", func(r *VenueRequest) { r.Name = "  " }, false},
		{"blank description", func(r *VenueRequest) { r.Description = "" }, false},
		{"zero price", func(r *VenueRequest) { r.Price = 0 }, false},
		{"zero guests", func(r *VenueRequest) { r.MaxGuests = 0 }, false},
		{"bad media", func(r *VenueRequest) { r.Media = []domain.Media{{URL: "ftp://x"}} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(&r)
			ok, _ := r.Validate()
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestParseMedia(t *testing.T) {
	media, err := ParseMedia("https://img/1.jpg|Front view\r\n\n  https://img/2.jpg  \n")
	require.NoError(t, err)
	require.Len(t, media, 2)
	assert.Equal(t, domain.Media{URL: "https://img/1.jpg", Alt: "Front view"}, media[0])
	assert.Equal(t, domain.Media{URL: "https://img/2.jpg"}, media[1])

	assert.Equal(t, "https://img/1.jpg|Front view\nhttps://img/2.jpg", FormatMedia(media))

	_, err = ParseMedia("not a url|alt")
	assert.ErrorIs(t, err, domain.ErrInvalidMedia)

	media, err = ParseMedia("")
	require.NoError(t, err)
	assert.Empty(t, media)
}

func TestUpdateBookingRequest_Validate(t *testing.T) {
	from := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	ok, _ := (&UpdateBookingRequest{DateFrom: from, DateTo: from, Guests: 1}).Validate()
	assert.True(t, ok)

	ok, msg := (&UpdateBookingRequest{DateFrom: from, DateTo: from.AddDate(0, 0, -1), Guests: 1}).Validate()
	assert.False(t, ok)
	assert.Equal(t, "End date must be after start date", msg)

	ok, _ = (&UpdateBookingRequest{DateFrom: from, DateTo: from, Guests: 0}).Validate()
	assert.False(t, ok)
}

func TestLoginResponse_Session(t *testing.T) {
	r := LoginResponse{Profile: domain.Profile{Name: "kari", VenueManager: true}, AccessToken: "tok"}
	s := r.Session()
	assert.Equal(t, "tok", s.AccessToken)
	assert.Equal(t, "kari", s.Profile.Name)
	assert.True(t, s.IsManager())
}

func TestVenueRequest_AsUpdate(t *testing.T) {
	v := &domain.Venue{Name: "Cabin", Description: "Quiet", Price: 100, MaxGuests: 4}
	upd := FromVenue(v).AsUpdate()

	ok, msg := upd.Validate()
	assert.True(t, ok, msg)
	assert.Equal(t, "Cabin", *upd.Name)
	assert.Equal(t, 4, *upd.MaxGuests)
	assert.NotNil(t, upd.Media, "media is always sent so it can be cleared")
	assert.Empty(t, *upd.Media)
}

func TestUpdateProfileRequest_ClearAvatar(t *testing.T) {
	req := UpdateProfileRequest{ClearAvatar: true}
	ok, _ := req.Validate()
	assert.True(t, ok)

	b, err := json.Marshal(&req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"avatar":null}`, string(b))

	var decoded UpdateProfileRequest
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.True(t, decoded.ClearAvatar)
	assert.Nil(t, decoded.Avatar)

	// An absent avatar is left alone
	require.NoError(t, json.Unmarshal([]byte(`{"bio":"hi"}`), &decoded))
	assert.False(t, decoded.ClearAvatar)

	set := UpdateProfileRequest{Avatar: &domain.Media{URL: "https://img.example/a.png"}}
	b, err = json.Marshal(set)
	require.NoError(t, err)
	assert.JSONEq(t, `{"avatar":{"url":"https://img.example/a.png","alt":""}}`, string(b))

	both := UpdateProfileRequest{ClearAvatar: true, Avatar: set.Avatar}
	ok, msg := both.Validate()
	assert.False(t, ok)
	assert.Equal(t, "Avatar cannot be set and cleared at once", msg)
}
