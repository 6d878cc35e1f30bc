package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show your profile with its bookings and venues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := a.container.ProfileService.Load(cmd.Context())
			if err != nil {
				return err
			}
			defer page.Close()

			p := page.Profile
			w := a.out()
			fmt.Fprintf(w, "%s <%s>%s\n", p.Name, p.Email, roleSuffix(p.VenueManager))
			if p.Avatar != nil && p.Avatar.URL != "" {
				fmt.Fprintf(w, "Avatar: %s\n", p.Avatar.URL)
			}
			if p.Bio != "" {
				fmt.Fprintf(w, "%s\n", p.Bio)
			}

			fmt.Fprintf(w, "\nBookings (%d)\n", len(p.Bookings))
			if len(p.Bookings) > 0 {
				printBookings(w, p.Bookings)
			}
			if page.Venues != nil {
				fmt.Fprintf(w, "\nVenues (%d)\n", len(p.Venues))
				if len(p.Venues) > 0 {
					printVenues(w, p.Venues)
				}
			}
			return nil
		},
	}
	cmd.AddCommand(a.avatarCmd())
	return cmd
}

func (a *app) avatarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "avatar [image-url]",
		Short: "Change your avatar, or remove it when no URL is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := ""
			if len(args) == 1 {
				url = args[0]
			}
			p, err := a.container.ProfileService.UpdateAvatar(cmd.Context(), url)
			if err != nil {
				return err
			}
			if p.Avatar != nil {
				fmt.Fprintf(a.out(), "Avatar updated: %s\n", p.Avatar.URL)
			} else {
				fmt.Fprintln(a.out(), "Avatar removed")
			}
			return nil
		},
	}
}
