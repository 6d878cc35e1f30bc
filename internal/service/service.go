// Package service composes the API client, session store and list controllers
// into the flows of the Holidaze pages. Rendering is left to the caller.
package service

import (
	"time"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/api"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/listview"
	"github.com/Skr3d3/holidaze-project-exam-2/pkg/logger"
)

// Options are shared by every service
type Options struct {
	Logger *logger.Logger
	// Clock defaults to time.Now
	Clock func() time.Time
	// SettleDelay is passed to list controllers
	SettleDelay time.Duration
	// Notifier receives rollback messages from list controllers
	Notifier listview.Notifier
	// OnUnauthorized is called when a list operation hits a 401
	OnUnauthorized func(err error)
}

func (o Options) clock() func() time.Time {
	if o.Clock == nil {
		return time.Now
	}
	return o.Clock
}

func (o Options) listOptions(name string) listview.Options {
	onUnauthorized := o.OnUnauthorized
	if onUnauthorized == nil {
		onUnauthorized = func(error) {}
	}
	return listview.Options{
		Name:           name,
		SettleDelay:    o.SettleDelay,
		Notifier:       o.Notifier,
		Logger:         o.Logger,
		IsUnauthorized: api.IsUnauthorized,
		OnUnauthorized: onUnauthorized,
		IsCanceled:     api.IsCanceled,
		Message:        UserMessage,
	}
}
