package listview

import "fmt"

// Phase is the lifecycle stage of a list view
type Phase int

const (
	Idle Phase = iota
	Loading
	Loaded
	Errored
	OptimisticallyMutated
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Errored:
		return "errored"
	case OptimisticallyMutated:
		return "optimistically_mutated"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is a snapshot of a list view. Items is a copy owned by the receiver.
type State[T any] struct {
	Phase Phase
	Items []T
	Err   error
	// Seq is the sequence number of the latest issued fetch
	Seq uint64
}

// Level is the severity of a notification
type Level int

const (
	LevelInfo Level = iota
	LevelError
)

// Notification is a transient user-visible message
type Notification struct {
	Level   Level
	List    string
	Message string
	Err     error
}

// Notifier surfaces notifications to the user
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

type nopNotifier struct{}

func (nopNotifier) Notify(Notification) {}
