package command

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/availability"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/domain"
)

func TestConfirm_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("yes runs the action", func(t *testing.T) {
		ran := false
		var asked string
		c := Confirm{Prompt: PromptDeleteBooking, Action: func(context.Context) error { ran = true; return nil }}
		err := c.Run(ctx, ConfirmerFunc(func(_ context.Context, p string) (bool, error) {
			asked = p
			return true, nil
		}))
		require.NoError(t, err)
		assert.True(t, ran)
		assert.Equal(t, "Delete this booking?", asked)
	})

	t.Run("no never starts the action", func(t *testing.T) {
		ran := false
		c := Confirm{Prompt: PromptDeleteVenue, Action: func(context.Context) error { ran = true; return nil }}
		err := c.Run(ctx, ConfirmerFunc(func(context.Context, string) (bool, error) { return false, nil }))
		assert.ErrorIs(t, err, ErrDeclined)
		assert.False(t, ran)
	})

	t.Run("confirmer error", func(t *testing.T) {
		boom := errors.New("tty closed")
		c := Confirm{Prompt: "?", Action: func(context.Context) error { return nil }}
		err := c.Run(ctx, ConfirmerFunc(func(context.Context, string) (bool, error) { return false, boom }))
		assert.ErrorIs(t, err, boom)
	})

	t.Run("action error passes through", func(t *testing.T) {
		boom := errors.New("remote failed")
		c := Confirm{Prompt: "?", Action: func(context.Context) error { return boom }}
		assert.ErrorIs(t, c.Run(ctx, AutoConfirm), boom)
	})

	t.Run("nil confirmer", func(t *testing.T) {
		c := Confirm{Prompt: "?", Action: func(context.Context) error { return nil }}
		assert.Error(t, c.Run(ctx, nil))
	})
}

func TestEditBooking_Validate(t *testing.T) {
	from := availability.MustParseDay("2030-01-10")
	to := availability.MustParseDay("2030-01-12")

	tests := []struct {
		name string
		edit EditBooking
		want error
	}{
		{"valid", EditBooking{ID: "b", DateFrom: from, DateTo: to, Guests: 2}, nil},
		{"single day", EditBooking{ID: "b", DateFrom: from, DateTo: from, Guests: 1}, nil},
		{"missing dates", EditBooking{ID: "b", DateFrom: from, Guests: 1}, domain.ErrDatesRequired},
		{"reversed", EditBooking{ID: "b", DateFrom: to, DateTo: from, Guests: 1}, domain.ErrInvalidDateRange},
		{"no guests", EditBooking{ID: "b", DateFrom: from, DateTo: to}, domain.ErrInvalidGuests},
		{"too many guests", EditBooking{ID: "b", DateFrom: from, DateTo: to, Guests: 5, MaxGuests: 4}, domain.ErrTooManyGuests},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.edit.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestEditBooking_RequestAndApply(t *testing.T) {
	b := domain.Booking{
		ID:       "b1",
		DateFrom: time.Date(2030, 1, 10, 0, 0, 0, 0, time.UTC),
		DateTo:   time.Date(2030, 1, 12, 23, 59, 59, 999e6, time.UTC),
		Guests:   2,
		Venue:    &domain.Venue{MaxGuests: 3},
	}
	e := EditBookingFrom(b)
	assert.Equal(t, 3, e.MaxGuests)
	assert.Equal(t, "2030-01-12", e.DateTo.String())

	e.DateTo = availability.MustParseDay("2030-01-14")
	e.Guests = 3
	req := e.Request()
	assert.Equal(t, "2030-01-10T00:00:00Z", req.DateFrom.Format(time.RFC3339))
	assert.Equal(t, "2030-01-14T23:59:59.999Z", req.DateTo.Format("2006-01-02T15:04:05.000Z07:00"))

	got := e.Apply(b)
	assert.Equal(t, 3, got.Guests)
	assert.Equal(t, req.DateTo, got.DateTo)
	assert.Equal(t, 2, b.Guests, "Apply does not modify its argument")
}

func TestEditVenue(t *testing.T) {
	v := domain.Venue{
		ID:       "v1",
		Name:     "Cabin",
		Price:    100,
		Media:    []domain.Media{{URL: "https://img.example/a.jpg", Alt: "a"}},
		Location: domain.Location{City: "Oslo", Country: "Norway", Zip: "0150"},
	}
	e := EditVenueFrom(v)
	assert.Equal(t, "https://img.example/a.jpg", e.ImageURL)
	assert.Equal(t, "Oslo", e.City)
	require.NoError(t, e.Validate())

	e.Name = "  Cabin deluxe "
	e.Price = 0
	e.ImageURL = "https://img.example/b.jpg"
	require.NoError(t, e.Validate(), "zero price is accepted on quick edit")

	req := e.Request()
	assert.Equal(t, "Cabin deluxe", *req.Name)
	require.Len(t, *req.Media, 1)
	assert.Equal(t, "Cabin deluxe", (*req.Media)[0].Alt)
	assert.Equal(t, "Oslo", req.Location.City)

	got := e.Apply(v)
	assert.Equal(t, "Cabin deluxe", got.Name)
	assert.Equal(t, "0150", got.Location.Zip)
	assert.Equal(t, "https://img.example/b.jpg", got.Media[0].URL)

	e.ImageURL = ""
	assert.Empty(t, *e.Request().Media)
}

func TestEditVenue_Validate(t *testing.T) {
	assert.ErrorIs(t, EditVenue{Name: " "}.Validate(), domain.ErrNameRequired)
	assert.ErrorIs(t, EditVenue{Name: "a", Price: -1}.Validate(), ErrNegativePrice)
	assert.ErrorIs(t, EditVenue{Name: "a", Price: math.NaN()}.Validate(), ErrNegativePrice)
	assert.ErrorIs(t, EditVenue{Name: "a", ImageURL: "ftp://x/y"}.Validate(), domain.ErrInvalidMedia)
}
