package disposable

import (
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/disposable/errors"
)

// Disposable is implemented by values that own resources which must be
// released explicitly.
type Disposable interface {
	// IsDisposed reports whether Dispose has run. Once true it stays true.
	IsDisposed() bool

	// Dispose releases the owned resources and marks the value disposed.
	// It is safe to call more than once; later calls return nil.
	Dispose() error
}

// ReleaseFunc releases one level of resources owned by a value.
type ReleaseFunc func() error

// Base holds the disposal state of an adopting type. Embed it by value.
// The zero value is active. A Base must not be copied after first use.
type Base struct {
	_  noCopy
	st *state
}

// state lives in its own allocation so a runtime cleanup can reach it
// without keeping the owner alive.
type state struct {
	levels    []ReleaseFunc
	cleanup   runtime.Cleanup
	owner     string
	id        string
	disposed  bool
	disposing bool
	tracked   bool
}

func (b *Base) load() *state {
	if b.st == nil {
		b.st = &state{}
	}
	return b.st
}

// IsDisposed reports whether the value has been disposed.
func (b *Base) IsDisposed() bool {
	return b.st != nil && b.st.disposed
}

// ID returns an identifier used to correlate log entries and table events.
func (b *Base) ID() string {
	s := b.load()
	if s.id == "" {
		s.id = uuid.NewString()
	}
	return s.id
}

// OnDispose registers one level of release logic. Levels run in reverse
// registration order. On a value that is disposed, or being disposed, fn
// runs immediately and its error is returned.
func (b *Base) OnDispose(fn ReleaseFunc) error {
	if fn == nil {
		return nil
	}
	s := b.load()
	if s.disposed || s.disposing {
		return s.run(errors.PhaseDispose, fn, false)
	}
	s.levels = append(s.levels, fn)
	return nil
}

// Dispose runs every registered release level and marks the value disposed.
// Errors from all levels are combined. A panicking level still leaves the
// value disposed before the panic continues.
func (b *Base) Dispose() error {
	s := b.load()
	if s.disposed || s.disposing {
		return nil
	}
	if s.tracked {
		s.cleanup.Stop()
		s.tracked = false
	}
	return s.release(errors.PhaseDispose, false)
}

// Close calls Dispose, so adopting types satisfy io.Closer.
func (b *Base) Close() error {
	return b.Dispose()
}

func (s *state) release(phase errors.Phase, recoverPanics bool) (err error) {
	levels := s.levels
	s.levels = nil
	s.disposing = true
	defer func() {
		s.disposing = false
		s.disposed = true
	}()

	for i := len(levels) - 1; i >= 0; i-- {
		err = multierr.Append(err, s.run(phase, levels[i], recoverPanics))
	}
	return err
}

func (s *state) run(phase errors.Phase, fn ReleaseFunc, recoverPanics bool) (err error) {
	if recoverPanics {
		defer func() {
			if r := recover(); r != nil {
				err = errors.Panic(phase, s.owner, s.id, r)
			}
		}()
	}
	if e := fn(); e != nil {
		return errors.ReleaseFailed(phase, s.owner, s.id, e)
	}
	return nil
}

// Track arranges for b's release levels to run when owner becomes
// unreachable without having been disposed. b must be owned by owner,
// normally as an embedded field. Release levels must not reference owner.
func Track[T any](owner *T, b *Base) {
	if owner == nil || b == nil {
		return
	}
	s := b.load()
	if s.disposed || s.tracked {
		return
	}
	s.owner = fmt.Sprintf("%T", owner)
	if s.id == "" {
		s.id = uuid.NewString()
	}
	s.tracked = true
	s.cleanup = runtime.AddCleanup(owner, teardown, s)
}

// teardown never lets an error or panic escape: it runs on the runtime's
// cleanup goroutine.
func teardown(s *state) {
	if s.disposed || s.disposing {
		return
	}
	log := Logger().With(zap.String("type", s.owner), zap.String("id", s.id))
	if reportLeaks.Load() {
		log.Warn("value reclaimed without Dispose")
	}
	if err := s.release(errors.PhaseTeardown, true); err != nil {
		for _, e := range multierr.Errors(err) {
			log.Error("automatic teardown failed", zap.Error(e))
		}
	}
}

// Use calls fn with d and disposes d on every exit path, including panics.
// A disposal error is joined with the error returned by fn.
func Use[T Disposable](d T, fn func(T) error) (err error) {
	defer func() {
		err = multierr.Append(err, d.Dispose())
	}()
	return fn(d)
}

// DisposeAll disposes ds in reverse order and combines their errors.
// Nil entries are skipped.
func DisposeAll(ds ...Disposable) error {
	var err error
	for i := len(ds) - 1; i >= 0; i-- {
		if ds[i] == nil {
			continue
		}
		err = multierr.Append(err, ds[i].Dispose())
	}
	return err
}

// Check returns an error matching errors.ErrDisposed if d is disposed.
// It is the fail-fast alternative to a guard.
func Check(d Disposable) error {
	if d == nil || !d.IsDisposed() {
		return nil
	}
	eb := errors.New(errors.PhaseGuard, errors.KindDisposed).
		Type(fmt.Sprintf("%T", d)).
		Value(d).
		Detail("value already disposed")
	if v, ok := d.(interface{ ID() string }); ok {
		eb.ID(v.ID())
	}
	return eb.Build()
}
