// Package listview keeps a remotely backed list in memory and applies edits and
// deletes optimistically, rolling back when the remote call fails.
package listview

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/Skr3d3/holidaze-project-exam-2/pkg/logger"
	"github.com/Skr3d3/holidaze-project-exam-2/pkg/telemetry"
)

// DefaultSettleDelay is the wait between a successful mutation and the refetch
const DefaultSettleDelay = 250 * time.Millisecond

var (
	ErrClosed       = errors.New("list view is closed")
	ErrItemNotFound = errors.New("item not found in list")
)

// Fetcher loads the authoritative list
type Fetcher[T any] func(ctx context.Context) ([]T, error)

// KeyFunc returns the identifier of an item
type KeyFunc[T any] func(item T) string

// RemoteCall performs a remote mutation
type RemoteCall func(ctx context.Context) error

// Options configure a Controller
type Options struct {
	Name string
	// SettleDelay is waited after a successful mutation before refetching.
	// Zero means no wait; use DefaultSettleDelay for the usual backend lag.
	SettleDelay time.Duration
	Notifier    Notifier
	Logger      *logger.Logger
	// IsUnauthorized classifies errors that should send the user to log in.
	// Matching errors go to OnUnauthorized instead of the notifier.
	IsUnauthorized func(err error) bool
	OnUnauthorized func(err error)
	// IsCanceled classifies cancellation errors, which are dropped silently.
	// Defaults to errors.Is(err, context.Canceled).
	IsCanceled func(err error) bool
	// Message turns a rollback error into notification text. Defaults to err.Error().
	Message func(err error) string
}

// Controller is an optimistic list view over items of type T
type Controller[T any] struct {
	fetch Fetcher[T]
	key   KeyFunc[T]
	opts  Options
	log   *logger.Logger

	mu      sync.Mutex
	state   State[T]
	seq     uint64
	version uint64
	pending int
	cancel  context.CancelFunc
	removed map[string]struct{}
	subs    map[int]chan State[T]
	nextSub int
	closed  bool
}

// New creates a controller. It starts Idle; call Refresh to load.
func New[T any](fetch Fetcher[T], key KeyFunc[T], opts Options) *Controller[T] {
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}
	if opts.IsCanceled == nil {
		opts.IsCanceled = func(err error) bool { return errors.Is(err, context.Canceled) }
	}
	if opts.Name == "" {
		opts.Name = "list"
	}
	return &Controller[T]{
		fetch:   fetch,
		key:     key,
		opts:    opts,
		log:     logger.OrNop(opts.Logger).Named("listview").With(zap.String("list", opts.Name)),
		removed: make(map[string]struct{}),
		subs:    make(map[int]chan State[T]),
	}
}

// State returns a snapshot of the current state
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Items returns a copy of the current items
func (c *Controller[T]) Items() []T {
	return c.State().Items
}

// Subscribe returns a channel that receives the latest state after every change,
// and a function to stop receiving. Slow readers only see the newest state.
func (c *Controller[T]) Subscribe() (<-chan State[T], func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan State[T], 1)
	if c.closed {
		close(ch)
		return ch, func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	ch <- c.snapshotLocked()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(sub)
			}
		})
	}
}

// Close cancels any in-flight fetch and closes all subscriptions
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.cancelInFlightLocked()
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
}

// Refresh fetches the list. Any earlier in-flight fetch is cancelled and its
// result discarded; only the latest fetch may update state. Cancellation is not an error.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.cancelInFlightLocked()
	fctx, cancel := context.WithCancel(ctx)
	c.seq++
	seq := c.seq
	c.cancel = cancel
	prevPhase := c.state.Phase
	c.state.Phase = Loading
	c.state.Err = nil
	c.state.Seq = seq
	c.publishLocked()
	c.mu.Unlock()

	ctx, span := telemetry.StartSpan(fctx, "listview.refresh")
	span.SetAttributes(attribute.String("list", c.opts.Name), attribute.Int64("seq", int64(seq)))
	defer span.End()

	items, err := c.fetch(ctx)
	cancel()

	c.mu.Lock()
	if seq != c.seq || c.closed {
		c.mu.Unlock()
		c.log.Debug("discarding stale fetch", zap.Uint64("seq", seq))
		return nil
	}
	c.cancel = nil

	if err != nil {
		if c.opts.IsCanceled(err) {
			c.state.Phase = settledPhase(prevPhase, c.state.Items)
			c.publishLocked()
			c.mu.Unlock()
			return nil
		}
		telemetry.SetSpanError(ctx, err)
		c.state.Phase = Errored
		c.state.Err = err
		c.publishLocked()
		c.mu.Unlock()

		// The hook may call back into the controller
		c.log.Warn("fetch failed", zap.Error(err))
		if c.unauthorized(err) {
			c.opts.OnUnauthorized(err)
		}
		return err
	}

	c.state.Items = c.filterRemovedLocked(items)
	c.state.Phase = Loaded
	c.version++
	if c.pending > 0 {
		c.state.Phase = OptimisticallyMutated
	}
	c.publishLocked()
	c.mu.Unlock()
	return nil
}

// Delete removes the item with id locally, then runs remote. On success the list
// is refetched after SettleDelay. On failure the removal is undone, the error is
// reported to the notifier and returned. There is no retry.
func (c *Controller[T]) Delete(ctx context.Context, id string, remote RemoteCall) error {
	return c.mutate(ctx, "delete", id, remote, func(items []T, idx int) []T {
		return slices.Delete(items, idx, idx+1)
	})
}

// Edit replaces the item with id by patch(item) locally, then runs remote.
// Success and failure are handled as in Delete.
func (c *Controller[T]) Edit(ctx context.Context, id string, patch func(T) T, remote RemoteCall) error {
	return c.mutate(ctx, "edit", id, remote, func(items []T, idx int) []T {
		items[idx] = patch(items[idx])
		return items
	})
}

func (c *Controller[T]) mutate(ctx context.Context, op, id string, remote RemoteCall, apply func([]T, int) []T) error {
	ctx, span := telemetry.StartSpan(ctx, "listview."+op)
	span.SetAttributes(attribute.String("list", c.opts.Name), attribute.String("item.id", id))
	defer span.End()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}

	// Stop the background refresh and make sure its response can never land
	c.cancelInFlightLocked()
	c.seq++
	c.state.Seq = c.seq

	idx := c.indexLocked(id)
	if idx < 0 {
		c.state.Phase = settledPhase(c.state.Phase, c.state.Items)
		c.publishLocked()
		c.mu.Unlock()
		return ErrItemNotFound
	}

	snapshot := slices.Clone(c.state.Items)
	original := snapshot[idx]
	c.state.Items = apply(slices.Clone(c.state.Items), idx)
	c.version++
	appliedVersion := c.version
	c.pending++
	if op == "delete" {
		c.removed[id] = struct{}{}
	}
	c.state.Phase = OptimisticallyMutated
	c.state.Err = nil
	c.publishLocked()
	c.mu.Unlock()

	if err := remote(ctx); err != nil {
		telemetry.SetSpanError(ctx, err)
		telemetry.AddSpanEvent(ctx, "rollback", attribute.Int("index", idx))
		c.rollback(op, id, idx, original, snapshot, appliedVersion, err)
		return err
	}

	c.mu.Lock()
	c.pending--
	c.mu.Unlock()

	if err := sleepCtx(ctx, c.opts.SettleDelay); err != nil {
		c.mu.Lock()
		c.state.Phase = settledPhase(c.state.Phase, c.state.Items)
		c.publishLocked()
		c.mu.Unlock()
		return nil
	}
	return c.Refresh(ctx)
}

func (c *Controller[T]) rollback(op, id string, idx int, original T, snapshot []T, appliedVersion uint64, err error) {
	c.mu.Lock()
	c.pending--
	delete(c.removed, id)

	if c.version == appliedVersion {
		c.state.Items = snapshot
	} else {
		// Something else changed the list meanwhile; undo only this mutation
		c.state.Items = undo(c.state.Items, c.key, op, id, idx, original)
	}
	c.version++
	if c.pending > 0 {
		c.state.Phase = OptimisticallyMutated
	} else {
		c.state.Phase = Loaded
	}
	c.publishLocked()
	c.mu.Unlock()

	if c.opts.IsCanceled(err) {
		return
	}
	c.log.Warn("mutation rolled back", zap.String("op", op), zap.String("id", id), zap.Error(err))
	if c.unauthorized(err) {
		c.opts.OnUnauthorized(err)
		return
	}

	msg := err.Error()
	if c.opts.Message != nil {
		msg = c.opts.Message(err)
	}
	if msg == "" {
		msg = op + " failed"
	}
	c.opts.Notifier.Notify(Notification{Level: LevelError, List: c.opts.Name, Message: msg, Err: err})
}

func undo[T any](items []T, key KeyFunc[T], op, id string, idx int, original T) []T {
	items = slices.Clone(items)
	pos := slices.IndexFunc(items, func(it T) bool { return key(it) == id })
	switch op {
	case "delete":
		if pos >= 0 {
			return items
		}
		if idx > len(items) {
			idx = len(items)
		}
		return slices.Insert(items, idx, original)
	default:
		if pos >= 0 {
			items[pos] = original
		}
		return items
	}
}

func (c *Controller[T]) unauthorized(err error) bool {
	return c.opts.IsUnauthorized != nil && c.opts.OnUnauthorized != nil && c.opts.IsUnauthorized(err)
}

func (c *Controller[T]) indexLocked(id string) int {
	return slices.IndexFunc(c.state.Items, func(it T) bool { return c.key(it) == id })
}

// filterRemovedLocked drops items deleted locally whose removal the server has not
// caught up with yet. IDs the server no longer returns are forgotten.
func (c *Controller[T]) filterRemovedLocked(items []T) []T {
	if len(c.removed) == 0 {
		return slices.Clone(items)
	}
	seen := make(map[string]struct{}, len(c.removed))
	out := make([]T, 0, len(items))
	for _, it := range items {
		k := c.key(it)
		if _, gone := c.removed[k]; gone {
			seen[k] = struct{}{}
			continue
		}
		out = append(out, it)
	}
	for k := range c.removed {
		if _, still := seen[k]; !still {
			delete(c.removed, k)
		}
	}
	return out
}

func (c *Controller[T]) cancelInFlightLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller[T]) snapshotLocked() State[T] {
	s := c.state
	s.Items = slices.Clone(c.state.Items)
	return s
}

func (c *Controller[T]) publishLocked() {
	s := c.snapshotLocked()
	for _, ch := range c.subs {
		select {
		case ch <- s:
		default:
			// Replace the unread state with the newer one
			select {
			case <-ch:
			default:
			}
			ch <- s
		}
	}
}

func settledPhase[T any](p Phase, items []T) Phase {
	if p == Loading || p == OptimisticallyMutated {
		if items == nil {
			return Idle
		}
		return Loaded
	}
	return p
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
