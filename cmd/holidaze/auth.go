package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/dto"
)

func (a *app) loginCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with your stud.noroff.no account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if email == "" {
				if email, err = a.term.readLine("Email: "); err != nil {
					return err
				}
			}
			password, err := a.term.readPassword("Password: ")
			if err != nil {
				return err
			}

			sess, err := a.container.AuthService.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out(), "Logged in as %s%s\n", sess.Profile.Name, roleSuffix(sess.Profile.VenueManager))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

func (a *app) registerCmd() *cobra.Command {
	var (
		req     dto.RegisterRequest
		noLogin bool
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a Holidaze profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if req.Name == "" {
				if req.Name, err = a.term.readLine("Name: "); err != nil {
					return err
				}
			}
			if req.Email == "" {
				if req.Email, err = a.term.readLine("Email: "); err != nil {
					return err
				}
			}
			if req.Password, err = a.term.readPassword("Password: "); err != nil {
				return err
			}

			p, err := a.container.AuthService.Register(cmd.Context(), &req, !noLogin)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out(), "Registered %s%s\n", p.Name, roleSuffix(p.VenueManager))
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "profile name")
	cmd.Flags().StringVar(&req.Email, "email", "", "stud.noroff.no email")
	cmd.Flags().BoolVar(&req.VenueManager, "manager", false, "register as a venue manager")
	cmd.Flags().BoolVar(&noLogin, "no-login", false, "do not log in after registering")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.container.AuthService.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out(), "Logged out")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := a.container.AuthService.Current(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out(), "%s <%s>%s\n", sess.Profile.Name, sess.Profile.Email, roleSuffix(sess.Profile.VenueManager))
			return nil
		},
	}
}

func (a *app) apiKeyCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "api-key",
		Short: "Create an API key and store it for later requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := a.container.AuthService.CreateAPIKey(cmd.Context(), name)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out(), "API key stored: %s\n", key)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "holidaze-cli", "label for the key")
	return cmd
}

func roleSuffix(manager bool) string {
	if manager {
		return " (venue manager)"
	}
	return ""
}
