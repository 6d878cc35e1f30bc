// Package command holds the structured inputs for destructive and editing actions,
// so views collect values and confirmations without talking to the API directly.
package command

import (
	"context"
	"errors"
	"fmt"
)

// Confirmation prompts
const (
	PromptDeleteBooking = "Delete this booking?"
	PromptDeleteVenue   = "Delete this venue? This action cannot be undone and will cancel all bookings for this venue."
)

// ErrDeclined is returned when the user answers no to a confirmation
var ErrDeclined = errors.New("action cancelled")

// Confirmer asks the user a yes/no question
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmerFunc adapts a function to Confirmer
type ConfirmerFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmerFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// AutoConfirm answers yes without asking
var AutoConfirm Confirmer = ConfirmerFunc(func(context.Context, string) (bool, error) {
	return true, nil
})

// Confirm runs Action only after the user agrees to Prompt
type Confirm struct {
	Prompt string
	Action func(ctx context.Context) error
}

// Run asks confirmer and runs the action on yes. A no returns ErrDeclined and
// the action never starts.
func (c Confirm) Run(ctx context.Context, confirmer Confirmer) error {
	if confirmer == nil {
		return errors.New("no confirmer configured")
	}
	ok, err := confirmer.Confirm(ctx, c.Prompt)
	if err != nil {
		return fmt.Errorf("confirmation failed: %w", err)
	}
	if !ok {
		return ErrDeclined
	}
	return c.Action(ctx)
}
