package main

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/command"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/domain"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/dto"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/listview"
)

func testTerminal(input string) (*terminal, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return &terminal{in: bufio.NewReader(strings.NewReader(input)), out: out, errOut: errOut}, out, errOut
}

func TestConfirmer(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"whatever", false},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			term, out, _ := testTerminal(tt.input)
			ok, err := term.confirmer(false).Confirm(context.Background(), command.PromptDeleteBooking)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.Contains(t, out.String(), command.PromptDeleteBooking+" [y/N]")
		})
	}

	term, out, _ := testTerminal("")
	ok, err := term.confirmer(true).Confirm(context.Background(), "ignored")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, out.String())
}

func TestTerminal_Notify(t *testing.T) {
	term, _, errOut := testTerminal("")
	term.Notify(listview.Notification{Level: listview.LevelError, Message: "Booking not found"})
	assert.Equal(t, "error: Booking not found\n", errOut.String())
}

func TestVenueFlags_Apply(t *testing.T) {
	var f venueFlags
	cmd := &cobra.Command{Use: "x"}
	f.register(cmd)
	require.NoError(t, cmd.ParseFlags([]string{
		"--name", "Loft", "--price", "120", "--wifi", "--city", "Oslo",
		"--media", "https://img.example/a.jpg|Front",
	}))

	req := &dto.VenueRequest{Description: "kept", MaxGuests: 2, Meta: &domain.Facilities{Pets: true}}
	require.NoError(t, f.apply(cmd, req))
	assert.Equal(t, "Loft", req.Name)
	assert.Equal(t, "kept", req.Description)
	assert.Equal(t, 120.0, req.Price)
	assert.Equal(t, 2, req.MaxGuests)
	assert.True(t, req.Meta.Wifi)
	assert.True(t, req.Meta.Pets, "unset flags keep their value")
	assert.Equal(t, "Oslo", req.Location.City)
	assert.Equal(t, []domain.Media{{URL: "https://img.example/a.jpg", Alt: "Front"}}, req.Media)

	bad := &cobra.Command{Use: "x"}
	var g venueFlags
	g.register(bad)
	require.NoError(t, bad.ParseFlags([]string{"--media", "ftp://nope"}))
	assert.ErrorIs(t, g.apply(bad, &dto.VenueRequest{}), domain.ErrInvalidMedia)
}

func TestLocationAndFacilities(t *testing.T) {
	assert.Equal(t, "-", location(domain.Location{}))
	assert.Equal(t, "Bergen, Norway", location(domain.Location{City: "Bergen", Country: " Norway "}))
	assert.Equal(t, "-", facilities(domain.Facilities{}))
	assert.Equal(t, "wifi, pets", facilities(domain.Facilities{Wifi: true, Pets: true}))
}
