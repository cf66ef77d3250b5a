package resource

import "github.com/wippyai/disposable"

// Handle is an opaque reference to a value in a table.
// Handle 0 is reserved and always invalid.
type Handle uint32

// EventType identifies a lifecycle notification.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDisposed
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// Event represents a lifecycle event of a table entry.
// Err carries the error returned by Dispose for EventDisposed.
type Event struct {
	Value  disposable.Disposable
	Err    error
	Handle Handle
	TypeID uint32
	Type   EventType
}

// Observer receives notifications about lifecycle events.
type Observer interface {
	OnResourceEvent(Event)
}

// Backend provides the underlying storage mechanism for table entries.
type Backend interface {
	// Create stores a value and returns a handle.
	Create(typeID uint32, value disposable.Disposable) (Handle, error)

	// Get retrieves a value by handle.
	Get(handle Handle) (disposable.Disposable, bool)

	// Take removes a value without disposing it.
	// Returns (nil, 0, false) if the handle is invalid.
	Take(handle Handle) (disposable.Disposable, uint32, bool)

	// Close disposes every stored value, newest first, and rejects further use.
	Close() error
}

// Table owns disposable values and disposes them when dropped or when the
// table itself is disposed.
type Table interface {
	disposable.Disposable

	// Insert adds a value and returns its handle.
	Insert(typeID uint32, value disposable.Disposable) Handle

	// Get retrieves a value by handle.
	Get(handle Handle) (disposable.Disposable, bool)

	// GetTyped retrieves a value only if it matches the expected type.
	GetTyped(handle Handle, typeID uint32) (disposable.Disposable, bool)

	// Drop removes a value and disposes it.
	Drop(handle Handle) error

	// Subscribe adds an observer for lifecycle events.
	Subscribe(Observer)

	// Unsubscribe removes an observer.
	Unsubscribe(Observer)

	// Len returns the number of live values.
	Len() int

	// Clear drops all values but keeps the table usable.
	Clear() error
}
