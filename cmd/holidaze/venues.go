package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/api"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/command"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/domain"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/dto"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/listview"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/service"
)

func (a *app) venuesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "venues",
		Short: "Browse and manage venues",
	}
	cmd.AddCommand(
		a.venuesListCmd(),
		a.venuesSearchCmd(),
		a.venuesShowCmd(),
		a.venuesCreateCmd(),
		a.venuesEditCmd(),
		a.venuesMineCmd(),
		a.venuesQuickEditCmd(),
		a.venuesDeleteCmd(),
		a.venuesBookingsCmd(),
	)
	return cmd
}

func (a *app) venuesListCmd() *cobra.Command {
	opts := api.ListOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List venues, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := a.container.VenueService.List(cmd.Context(), opts)
			if err != nil {
				return err
			}
			printVenues(a.out(), env.Data)
			if m := env.Meta; m != nil {
				fmt.Fprintf(a.out(), "\npage %d of %d (%d venues)\n", m.CurrentPage, m.PageCount, m.TotalCount)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "venues per page")
	cmd.Flags().IntVar(&opts.Page, "page", 1, "page number")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "sort field (created, name, price)")
	cmd.Flags().StringVar(&opts.SortOrder, "order", "desc", "sort order (asc, desc)")
	return cmd
}

func (a *app) venuesSearchCmd() *cobra.Command {
	var server bool
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search venues by name, description, city or country",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := strings.Join(args, " ")
			var (
				venues []domain.Venue
				err    error
			)
			if server {
				venues, err = a.container.VenueService.ServerSearch(cmd.Context(), q)
			} else {
				venues, err = a.container.VenueService.Search(cmd.Context(), q)
			}
			if err != nil {
				return err
			}
			if len(venues) == 0 {
				fmt.Fprintf(a.out(), "No venues match %q\n", q)
				return nil
			}
			printVenues(a.out(), venues)
			return nil
		},
	}
	cmd.Flags().BoolVar(&server, "server", false, "use the API's search (name and description only)")
	return cmd
}

func (a *app) venuesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <venue-id>",
		Short: "Show a venue and its booked dates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.container.VenueService.Detail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			v := d.Venue
			w := a.out()
			fmt.Fprintf(w, "%s\n%s\n\n", v.Name, v.Description)
			fmt.Fprintf(w, "Price:      %.0f per night\n", v.Price)
			fmt.Fprintf(w, "Max guests: %d\n", v.MaxGuests)
			fmt.Fprintf(w, "Location:   %s\n", location(v.Location))
			fmt.Fprintf(w, "Facilities: %s\n", facilities(v.Meta))
			if v.Owner != nil {
				fmt.Fprintf(w, "Host:       %s\n", v.Owner.Name)
			}
			if img, ok := v.CoverImage(); ok {
				fmt.Fprintf(w, "Image:      %s\n", img.URL)
			}
			fmt.Fprintln(w, "\nBooked:")
			if len(d.Booked) == 0 {
				fmt.Fprintln(w, "  no bookings yet")
			}
			for _, r := range d.Booked {
				fmt.Fprintf(w, "  %s\n", r)
			}
			if d.CanManage {
				fmt.Fprintln(w, "\nYou own this venue.")
			}
			return nil
		},
	}
}

// venueFlags binds the fields of a venue form
type venueFlags struct {
	name, description, media string
	city, country, address   string
	price                    float64
	maxGuests                int
	wifi, parking            bool
	breakfast, pets          bool
}

func (f *venueFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.name, "name", "", "venue name")
	fl.StringVar(&f.description, "description", "", "venue description")
	fl.StringVar(&f.media, "media", "", `images, one "url|alt" per line`)
	fl.StringVar(&f.city, "city", "", "city")
	fl.StringVar(&f.country, "country", "", "country")
	fl.StringVar(&f.address, "address", "", "street address")
	fl.Float64Var(&f.price, "price", 0, "price per night")
	fl.IntVar(&f.maxGuests, "max-guests", 0, "maximum number of guests")
	fl.BoolVar(&f.wifi, "wifi", false, "has wifi")
	fl.BoolVar(&f.parking, "parking", false, "has parking")
	fl.BoolVar(&f.breakfast, "breakfast", false, "serves breakfast")
	fl.BoolVar(&f.pets, "pets", false, "pets allowed")
}

// apply copies the flags the user set onto req
func (f *venueFlags) apply(cmd *cobra.Command, req *dto.VenueRequest) error {
	changed := cmd.Flags().Changed
	if changed("name") {
		req.Name = f.name
	}
	if changed("description") {
		req.Description = f.description
	}
	if changed("price") {
		req.Price = f.price
	}
	if changed("max-guests") {
		req.MaxGuests = f.maxGuests
	}
	if changed("media") {
		media, err := dto.ParseMedia(f.media)
		if err != nil {
			return err
		}
		req.Media = media
	}
	if req.Meta == nil {
		req.Meta = &domain.Facilities{}
	}
	setIf := func(flag string, dst *bool, v bool) {
		if changed(flag) {
			*dst = v
		}
	}
	setIf("wifi", &req.Meta.Wifi, f.wifi)
	setIf("parking", &req.Meta.Parking, f.parking)
	setIf("breakfast", &req.Meta.Breakfast, f.breakfast)
	setIf("pets", &req.Meta.Pets, f.pets)
	if changed("city") || changed("country") || changed("address") {
		if req.Location == nil {
			req.Location = &dto.LocationInput{}
		}
		if changed("city") {
			req.Location.City = f.city
		}
		if changed("country") {
			req.Location.Country = f.country
		}
		if changed("address") {
			req.Location.Address = f.address
		}
	}
	return nil
}

func (a *app) venuesCreateCmd() *cobra.Command {
	var f venueFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a venue (venue managers only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := &dto.VenueRequest{}
			if err := f.apply(cmd, req); err != nil {
				return err
			}
			v, err := a.container.VenueService.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out(), "Created %s (%s)\n", v.Name, v.ID)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func (a *app) venuesEditCmd() *cobra.Command {
	var f venueFlags
	cmd := &cobra.Command{
		Use:   "edit <venue-id>",
		Short: "Edit every field of one of your venues",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			req, err := a.container.VenueService.LoadForEdit(ctx, args[0])
			if err != nil {
				return err
			}
			if err := f.apply(cmd, req); err != nil {
				return err
			}
			v, err := a.container.VenueService.Update(ctx, args[0], req)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out(), "Updated %s\n", v.Name)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

// loadManagedVenues opens and loads the manager's venue list
func (a *app) loadManagedVenues(ctx context.Context) (*service.VenueList, error) {
	list, err := a.container.ManageVenuesService.Venues(ctx)
	if err != nil {
		return nil, err
	}
	if err := list.Refresh(ctx); err != nil {
		list.Close()
		return nil, err
	}
	return list, nil
}

func (a *app) venuesMineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List the venues you manage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.loadManagedVenues(cmd.Context())
			if err != nil {
				return err
			}
			defer list.Close()
			if len(list.Items()) == 0 {
				fmt.Fprintln(a.out(), "You have no venues yet")
				return nil
			}
			printVenues(a.out(), list.Items())
			return nil
		},
	}
}

func (a *app) venuesQuickEditCmd() *cobra.Command {
	var e command.EditVenue
	cmd := &cobra.Command{
		Use:   "quick-edit <venue-id>",
		Short: "Change name, price, place or image of one of your venues",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			list, err := a.loadManagedVenues(ctx)
			if err != nil {
				return err
			}
			defer list.Close()

			v, ok := findItem(list.Controller, args[0], func(v domain.Venue) string { return v.ID })
			if !ok {
				return domain.ErrVenueNotFound
			}
			edit := command.EditVenueFrom(v)
			changed := cmd.Flags().Changed
			if changed("name") {
				edit.Name = e.Name
			}
			if changed("price") {
				edit.Price = e.Price
			}
			if changed("city") {
				edit.City = e.City
			}
			if changed("country") {
				edit.Country = e.Country
			}
			if changed("image") {
				edit.ImageURL = e.ImageURL
			}
			if err := list.Edit(ctx, edit); err != nil {
				return err
			}
			fmt.Fprintf(a.out(), "Saved %s\n", strings.TrimSpace(edit.Name))
			return nil
		},
	}
	cmd.Flags().StringVar(&e.Name, "name", "", "venue name")
	cmd.Flags().Float64Var(&e.Price, "price", 0, "price per night")
	cmd.Flags().StringVar(&e.City, "city", "", "city")
	cmd.Flags().StringVar(&e.Country, "country", "", "country")
	cmd.Flags().StringVar(&e.ImageURL, "image", "", "image URL, empty to remove images")
	return cmd
}

func (a *app) venuesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <venue-id>",
		Short: "Delete one of your venues",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			list, err := a.loadManagedVenues(ctx)
			if err != nil {
				return err
			}
			defer list.Close()
			if err := list.Delete(ctx, args[0], a.term.confirmer(a.yes)); err != nil {
				return err
			}
			fmt.Fprintln(a.out(), "Venue deleted")
			return nil
		},
	}
}

func (a *app) venuesBookingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bookings <venue-id>",
		Short: "List the bookings of one of your venues",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vb, err := a.container.VenueBookingsService.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out(), "%s\n\n", vb.Venue.Name)
			if len(vb.Bookings) == 0 {
				fmt.Fprintln(a.out(), "No bookings yet")
				return nil
			}
			tw := tabwriter.NewWriter(a.out(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FROM\tTO\tGUESTS\tCUSTOMER")
			for _, b := range vb.Bookings {
				customer := ""
				if b.Customer != nil {
					customer = b.Customer.Name
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", day(b.DateFrom), day(b.DateTo), b.Guests, customer)
			}
			return tw.Flush()
		},
	}
}

func findItem[T any](c *listview.Controller[T], id string, key func(T) string) (T, bool) {
	for _, it := range c.Items() {
		if key(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

func printVenues(w io.Writer, venues []domain.Venue) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tGUESTS\tLOCATION")
	for _, v := range venues {
		fmt.Fprintf(tw, "%s\t%s\t%.0f\t%d\t%s\n", v.ID, v.Name, v.Price, v.MaxGuests, location(v.Location))
	}
	tw.Flush()
}

func location(l domain.Location) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{l.City, l.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

func facilities(m domain.Facilities) string {
	var out []string
	if m.Wifi {
		out = append(out, "wifi")
	}
	if m.Parking {
		out = append(out, "parking")
	}
	if m.Breakfast {
		out = append(out, "breakfast")
	}
	if m.Pets {
		out = append(out, "pets")
	}
	if len(out) == 0 {
		return "-"
	}
	return strings.Join(out, ", ")
}
