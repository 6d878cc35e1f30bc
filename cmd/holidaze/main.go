// Command holidaze is a terminal client for the Holidaze venue booking API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/di"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/service"
	"github.com/Skr3d3/holidaze-project-exam-2/pkg/config"
	"github.com/Skr3d3/holidaze-project-exam-2/pkg/logger"
	"github.com/Skr3d3/holidaze-project-exam-2/pkg/telemetry"
)

// Exit codes
const (
	exitError         = 1
	exitLoginRequired = 2
)

// app is shared by every subcommand
type app struct {
	configPath string
	yes        bool

	cfg       *config.Config
	container *di.Container
	term      *terminal
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{term: newTerminal(os.Stdin, os.Stdout, os.Stderr)}
	err := a.rootCmd().ExecuteContext(ctx)
	if terr := a.teardown(context.Background()); terr != nil {
		logger.Warn("shutdown failed", zap.Error(terr))
	}
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, service.UserMessage(err))
	if errors.Is(err, service.ErrLoginRequired) {
		fmt.Fprintln(os.Stderr, "Run `holidaze login` first.")
		os.Exit(exitLoginRequired)
	}
	os.Exit(exitError)
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "holidaze",
		Short:         "Browse and book Holidaze venues",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to an .env config file")
	root.PersistentFlags().BoolVarP(&a.yes, "yes", "y", false, "answer yes to confirmation prompts")

	root.AddCommand(
		a.loginCmd(),
		a.registerCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.apiKeyCmd(),
		a.venuesCmd(),
		a.bookCmd(),
		a.bookingsCmd(),
		a.profileCmd(),
	)
	return root
}

func (a *app) setup(ctx context.Context) error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadWithPath(a.configPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	if err := logger.Init(&logger.Config{
		Level:       a.cfg.App.LogLevel,
		ServiceName: a.cfg.App.Name,
		Development: a.cfg.App.Debug,
	}); err != nil {
		return err
	}
	log := logger.Get()

	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        a.cfg.OTel.Enabled,
		ServiceName:    a.cfg.OTel.ServiceName,
		ServiceVersion: a.cfg.App.Version,
		Environment:    a.cfg.App.Environment,
		CollectorAddr:  a.cfg.OTel.CollectorAddr,
		SampleRatio:    a.cfg.OTel.SampleRatio,
	}); err != nil {
		log.Warn("failed to initialize telemetry", zap.Error(err))
	}

	store, rc, err := di.NewSessionStore(ctx, a.cfg, log)
	if err != nil {
		return err
	}

	a.container = di.NewContainer(&di.ContainerConfig{
		API:         di.APIConfig(a.cfg, log),
		Store:       store,
		Redis:       rc,
		Logger:      log,
		Notifier:    a.term,
		SettleDelay: a.cfg.ListView.SettleDelay,
		OnUnauthorized: func(error) {
			a.term.errorf("Your session has expired. Please log in again.")
		},
	})
	return nil
}

func (a *app) teardown(ctx context.Context) error {
	var errs []error
	if a.container != nil {
		errs = append(errs, a.container.Close())
	}
	errs = append(errs, telemetry.Shutdown(ctx))
	_ = logger.Sync()
	return errors.Join(errs...)
}

func (a *app) out() io.Writer {
	return a.term.out
}
