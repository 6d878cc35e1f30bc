package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/availability"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/bookingform"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/domain"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/service"
)

// dateFlags are the --from/--to/--guests inputs of a booking form
type dateFlags struct {
	from, to string
	guests   int
}

func (f *dateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.to, "to", "", "last day, YYYY-MM-DD")
	cmd.Flags().IntVar(&f.guests, "guests", 1, "number of guests")
}

// fill enters the flags into form the way a user would pick them in a calendar
func (f *dateFlags) fill(cmd *cobra.Command, w io.Writer, form *bookingform.Form) error {
	changed := cmd.Flags().Changed
	if changed("from") {
		start, err := availability.ParseDay(f.from)
		if err != nil {
			return err
		}
		endCleared, err := form.SetStart(start)
		if err != nil {
			return err
		}
		if endCleared && !changed("to") {
			fmt.Fprintln(w, "The previous end date no longer fits and was cleared.")
		}
	}
	if changed("to") {
		end, err := availability.ParseDay(f.to)
		if err != nil {
			return err
		}
		if err := form.SetEnd(end); err != nil {
			return err
		}
	}
	if changed("guests") {
		if got := form.SetGuests(f.guests); got != f.guests {
			fmt.Fprintf(w, "Guests adjusted to %d (venue allows 1 to %d)\n", got, form.MaxGuests)
		}
	}
	return nil
}

func (a *app) bookCmd() *cobra.Command {
	var f dateFlags
	cmd := &cobra.Command{
		Use:   "book <venue-id>",
		Short: "Book a venue for a range of days",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			form, v, err := a.container.BookingService.NewForm(ctx, args[0])
			if err != nil {
				return err
			}
			if err := f.fill(cmd, a.out(), form); err != nil {
				return err
			}
			b, err := a.container.BookingService.Book(ctx, form)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out(), "Booked %s: %s, %d guest(s) (%s)\n", v.Name, form.Range(), b.Guests, b.ID)
			return nil
		},
	}
	f.register(cmd)
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func (a *app) bookingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "Manage your bookings",
	}
	cmd.AddCommand(
		a.bookingsListCmd(),
		a.bookingsEditCmd(),
		a.bookingsDeleteCmd(),
	)
	return cmd
}

func (a *app) loadDashboard(ctx context.Context) (*service.BookingList, error) {
	list, err := a.container.DashboardService.Bookings(ctx)
	if err != nil {
		return nil, err
	}
	if err := list.Refresh(ctx); err != nil {
		list.Close()
		return nil, err
	}
	return list, nil
}

func (a *app) bookingsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your bookings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.loadDashboard(cmd.Context())
			if err != nil {
				return err
			}
			defer list.Close()
			if len(list.Items()) == 0 {
				fmt.Fprintln(a.out(), "You have no bookings yet")
				return nil
			}
			printBookings(a.out(), list.Items())
			return nil
		},
	}
}

func (a *app) bookingsEditCmd() *cobra.Command {
	var f dateFlags
	cmd := &cobra.Command{
		Use:   "edit <booking-id>",
		Short: "Change the dates or guests of a booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			edit, err := a.container.BookingService.LoadEdit(ctx, args[0])
			if err != nil {
				return err
			}
			if err := f.fill(cmd, a.out(), edit.Form); err != nil {
				return err
			}
			b, err := a.container.BookingService.SaveEdit(ctx, edit.Form)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out(), "Updated booking at %s: %s → %s, %d guest(s)\n",
				edit.Venue.Name, day(b.DateFrom), day(b.DateTo), b.Guests)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func (a *app) bookingsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <booking-id>",
		Short: "Cancel a booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			list, err := a.loadDashboard(ctx)
			if err != nil {
				return err
			}
			defer list.Close()
			if err := list.Delete(ctx, args[0], a.term.confirmer(a.yes)); err != nil {
				return err
			}
			fmt.Fprintln(a.out(), "Booking deleted")
			return nil
		},
	}
}

func printBookings(w io.Writer, bookings []domain.Booking) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tVENUE\tFROM\tTO\tGUESTS")
	for _, b := range bookings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", b.ID, b.VenueName(), day(b.DateFrom), day(b.DateTo), b.Guests)
	}
	tw.Flush()
}

func day(t time.Time) string {
	return availability.DayOf(t).String()
}
