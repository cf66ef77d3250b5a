// Package disposable tracks whether a resource-owning value has been released
// and turns later calls on it into silent no-ops.
//
// A type adopts the capability by embedding Base and registering the logic
// that releases what it owns:
//
//	type Conn struct {
//	    disposable.Base
//	    sock net.Conn
//	}
//
//	func Dial(addr string) (*Conn, error) {
//	    sock, err := net.Dial("tcp", addr)
//	    if err != nil {
//	        return nil, err
//	    }
//	    c := &Conn{sock: sock}
//	    c.OnDispose(sock.Close)
//	    disposable.Track(c, &c.Base)
//	    return c, nil
//	}
//
// # Disposal
//
// Dispose runs every registered release level once, most recently registered
// first, and then marks the value disposed. The transition is one-way: a
// disposed value never becomes active again, and later Dispose calls return
// nil without releasing anything. Types that embed another adopter register
// their own level with OnDispose, or override Dispose and call the embedded
// Dispose last. Either way each level runs exactly once.
//
// # Guarded operations
//
// Operations wrapped with Guard, GuardErr, GuardValue, GuardResult or
// GuardFunc check IsDisposed first. On a disposed receiver they return the
// zero value of their results (nil for errors) without running the wrapped
// operation:
//
//	func (c *Conn) Write(p []byte) (int, error) {
//	    return disposable.GuardResult(c, func() (int, error) {
//	        return c.sock.Write(p)
//	    })()
//	}
//
// IMPORTANT: a guarded call on a disposed value is indistinguishable from a
// successful call that did nothing. Callers that need to know must call
// IsDisposed or Check.
//
// # Automatic teardown
//
// Track registers a runtime cleanup so that a value which becomes unreachable
// without being disposed still has its release levels run. Release levels must
// not reference the owner, or it is never reclaimed. Errors and panics raised
// during automatic teardown are logged and never propagate. Cleanups run on a
// runtime goroutine at an unspecified time, so code that owns scarce resources
// should still dispose explicitly, preferably with Use:
//
//	err := disposable.Use(conn, func(c *Conn) error {
//	    _, err := c.Write(payload)
//	    return err
//	})
//
// # Concurrency
//
// Base does no locking. Types that are shared between goroutines must
// serialize Dispose against their own guarded operations, as resource.UnifiedTable
// does with its mutex.
//
// # Packages
//
//	disposable/          Disposable capability, guards and automatic teardown
//	├── errors/          Structured error types
//	├── config/          TOML/YAML configuration for logging and leak reports
//	├── resource/        Handle table that owns and disposes values
//	├── engine/          Disposable wazero runtime, modules and instances
//	└── store/           Disposable SQLite database and statements
package disposable
