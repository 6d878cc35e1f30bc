package mockapi

import (
	"fmt"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/availability"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/domain"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/dto"
)

// Demo accounts created by Seed
const (
	DemoManager  = "demo_host"
	DemoCustomer = "demo_guest"
)

var demoVenues = []dto.VenueRequest{
	{
		Name:        "Fjord Cabin",
		Description: "Timber cabin above the Sognefjord with a wood stove.",
		Media:       []domain.Media{{URL: "https://images.unsplash.com/photo-1505691938895-1758d7feb511", Alt: "Cabin by the fjord"}},
		Price:       1200,
		MaxGuests:   4,
		Meta:        &domain.Facilities{Wifi: true, Parking: true},
		Location:    &dto.LocationInput{City: "Balestrand", Country: "Norway", Continent: "Europe"},
	},
	{
		Name:        "Café Apartment",
		Description: "Bright flat over a café in the old town.",
		Price:       850,
		MaxGuests:   2,
		Meta:        &domain.Facilities{Wifi: true, Breakfast: true},
		Location:    &dto.LocationInput{City: "Bergen", Country: "Norway", Continent: "Europe"},
	},
	{
		Name:        "Lakeside Lodge",
		Description: "Family lodge with a private jetty. Pets welcome.",
		Price:       2400,
		MaxGuests:   8,
		Meta:        &domain.Facilities{Parking: true, Pets: true},
		Location:    &dto.LocationInput{City: "Lillehammer", Country: "Norway", Continent: "Europe"},
	},
}

// Seed creates a venue manager with a few venues and a customer holding one
// booking, all sharing password
func (s *Store) Seed(password string) error {
	if _, err := s.Register(&dto.RegisterRequest{
		Name:         DemoManager,
		Email:        DemoManager + "@stud.noroff.no",
		Password:     password,
		VenueManager: true,
	}); err != nil {
		return fmt.Errorf("failed to seed manager: %w", err)
	}
	if _, err := s.Register(&dto.RegisterRequest{
		Name:     DemoCustomer,
		Email:    DemoCustomer + "@stud.noroff.no",
		Password: password,
	}); err != nil {
		return fmt.Errorf("failed to seed customer: %w", err)
	}

	var first domain.Venue
	for i := range demoVenues {
		req := demoVenues[i]
		v, err := s.CreateVenue(DemoManager, &req)
		if err != nil {
			return fmt.Errorf("failed to seed venue %q: %w", req.Name, err)
		}
		if i == 0 {
			first = v
		}
	}

	start := availability.Today(s.now).AddDays(7)
	if _, err := s.CreateBooking(DemoCustomer, &dto.CreateBookingRequest{
		DateFrom: start.Time(),
		DateTo:   start.AddDays(3).EndOfDay(),
		Guests:   2,
		VenueID:  first.ID,
	}); err != nil {
		return fmt.Errorf("failed to seed booking: %w", err)
	}
	return nil
}
