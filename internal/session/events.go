package session

import (
	"sync"

	"github.com/Skr3d3/holidaze-project-exam-2/pkg/logger"
)

// Kind is the type of auth change
type Kind string

const (
	Login         Kind = "login"
	Logout        Kind = "logout"
	APIKeyChanged Kind = "api_key"
)

// Source tells whether a change was made by this process or another one
type Source string

const (
	Local    Source = "local"
	External Source = "external"
)

// Event announces an auth change
type Event struct {
	Kind   Kind   `json:"kind"`
	Source Source `json:"-"`
	User   string `json:"user,omitempty"`
}

const subscriberBuffer = 16

// Broadcaster fans events out to subscribers without blocking the publisher.
// A subscriber that falls more than its buffer behind misses events.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	next   int
	closed bool
	log    *logger.Logger
}

// NewBroadcaster creates a Broadcaster
func NewBroadcaster(log *logger.Logger) *Broadcaster {
	return &Broadcaster{
		subs: make(map[int]chan Event),
		log:  logger.OrNop(log),
	}
}

// Subscribe registers a subscriber
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.next
	b.next++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
}

// Publish delivers e to every subscriber
func (b *Broadcaster) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.log.Warn("dropping auth event for slow subscriber")
		}
	}
}

// Close closes every subscription
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
