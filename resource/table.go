package resource

import (
	"fmt"
	"sync"

	"go.uber.org/multierr"

	"github.com/wippyai/disposable"
	"github.com/wippyai/disposable/errors"
)

// UnifiedTable implements the Table interface on a LocalBackend.
// Disposing the table disposes every live value, newest first.
type UnifiedTable struct {
	disposable.Base
	backend   *LocalBackend
	observers *observerSet
	mu        sync.RWMutex
}

var _ Table = (*UnifiedTable)(nil)

type observerSet struct {
	list []Observer
	mu   sync.RWMutex
}

// NewTable creates a new table. It is tracked, so an unreachable table
// still disposes its values.
func NewTable() *UnifiedTable {
	t := &UnifiedTable{
		backend:   NewLocalBackend(),
		observers: &observerSet{},
	}
	t.OnDispose(releaseAll(t.backend, t.observers, true))
	disposable.Track(t, &t.Base)
	return t
}

// releaseAll must not capture the table, or Track could never reclaim it.
func releaseAll(b *LocalBackend, obs *observerSet, closing bool) disposable.ReleaseFunc {
	return func() error {
		var err error
		for _, it := range b.drain(closing) {
			e := it.value.Dispose()
			err = multierr.Append(err, e)
			obs.notify(Event{
				Type:   EventDisposed,
				Handle: it.handle,
				TypeID: it.typeID,
				Value:  it.value,
				Err:    e,
			})
		}
		return err
	}
}

// Insert adds a value and returns its handle. It returns 0 if the table is
// disposed or value is nil or already disposed; the caller keeps ownership
// in that case.
func (t *UnifiedTable) Insert(typeID uint32, value disposable.Disposable) Handle {
	if value == nil || value.IsDisposed() {
		return 0
	}

	t.mu.RLock()
	if t.Base.IsDisposed() {
		t.mu.RUnlock()
		return 0
	}
	handle, err := t.backend.Create(typeID, value)
	t.mu.RUnlock()
	if err != nil {
		return 0
	}

	t.observers.notify(Event{
		Type:   EventCreated,
		Handle: handle,
		TypeID: typeID,
		Value:  value,
	})

	return handle
}

// Get retrieves a value by handle.
func (t *UnifiedTable) Get(handle Handle) (disposable.Disposable, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.Base.IsDisposed() {
		return nil, false
	}
	return t.backend.Get(handle)
}

// GetTyped retrieves a value only if it matches the expected type.
func (t *UnifiedTable) GetTyped(handle Handle, typeID uint32) (disposable.Disposable, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.Base.IsDisposed() {
		return nil, false
	}
	actualTypeID, ok := t.backend.TypeID(handle)
	if !ok || actualTypeID != typeID {
		return nil, false
	}
	return t.backend.Get(handle)
}

// Drop removes a value and disposes it, returning the error from its Dispose.
// Dropping an unknown handle returns a not-found error. On a disposed table
// Drop does nothing.
func (t *UnifiedTable) Drop(handle Handle) error {
	t.mu.RLock()
	if t.Base.IsDisposed() {
		t.mu.RUnlock()
		return nil
	}
	value, typeID, ok := t.backend.Take(handle)
	t.mu.RUnlock()
	if !ok {
		return errors.NotFound(errors.PhaseResource, fmt.Sprintf("handle %d", handle))
	}

	err := value.Dispose()
	t.observers.notify(Event{
		Type:   EventDisposed,
		Handle: handle,
		TypeID: typeID,
		Value:  value,
		Err:    err,
	})
	return err
}

// Detach removes value from the table without disposing it. It is meant for
// a value's own release level, so it does not take the table lock and may
// run while the table itself is disposing. It reports whether handle still
// held value.
func (t *UnifiedTable) Detach(handle Handle, value disposable.Disposable) bool {
	typeID, _ := t.backend.TypeID(handle)
	if !t.backend.Remove(handle, value) {
		return false
	}
	t.observers.notify(Event{
		Type:   EventDisposed,
		Handle: handle,
		TypeID: typeID,
		Value:  value,
	})
	return true
}

// Subscribe adds an observer for lifecycle events.
func (t *UnifiedTable) Subscribe(o Observer) {
	t.observers.mu.Lock()
	defer t.observers.mu.Unlock()
	t.observers.list = append(t.observers.list, o)
}

// Unsubscribe removes an observer.
func (t *UnifiedTable) Unsubscribe(o Observer) {
	t.observers.mu.Lock()
	defer t.observers.mu.Unlock()
	for i, obs := range t.observers.list {
		if obs == o {
			t.observers.list = append(t.observers.list[:i], t.observers.list[i+1:]...)
			return
		}
	}
}

// Len returns the number of live values.
func (t *UnifiedTable) Len() int {
	return t.backend.Len()
}

// Each iterates over all live values. fn must not call back into the table.
func (t *UnifiedTable) Each(fn func(Handle, uint32, disposable.Disposable) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.Base.IsDisposed() {
		return
	}
	t.backend.Each(fn)
}

// Clear drops all values, newest first, and keeps the table usable.
func (t *UnifiedTable) Clear() error {
	if t.IsDisposed() {
		return nil
	}
	return releaseAll(t.backend, t.observers, false)()
}

// IsDisposed reports whether the table has been disposed.
func (t *UnifiedTable) IsDisposed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.Base.IsDisposed()
}

// Dispose disposes every live value and then the table itself.
// It is serialized against the table's other operations, so neither the
// values' Dispose methods nor observers may call back into the table.
func (t *UnifiedTable) Dispose() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.Base.Dispose()
}

// Close calls Dispose.
func (t *UnifiedTable) Close() error {
	return t.Dispose()
}

func (o *observerSet) notify(e Event) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, obs := range o.list {
		obs.OnResourceEvent(e)
	}
}
