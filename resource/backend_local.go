package resource

import (
	"errors"
	"sort"
	"sync"

	"go.uber.org/multierr"

	"github.com/wippyai/disposable"
)

var ErrClosed = errors.New("resource backend closed")

var _ Backend = (*LocalBackend)(nil)

// LocalBackend is an in-memory slot store with handle reuse.
type LocalBackend struct {
	entries  []entry
	freeList []Handle
	seq      uint64
	mu       sync.RWMutex
	closed   bool
}

type entry struct {
	value  disposable.Disposable
	seq    uint64
	typeID uint32
	valid  bool
}

// item is a detached entry awaiting disposal.
type item struct {
	value  disposable.Disposable
	handle Handle
	typeID uint32
	seq    uint64
}

// NewLocalBackend creates a new in-memory backend.
func NewLocalBackend() *LocalBackend {
	return &LocalBackend{
		entries:  make([]entry, 0, 64),
		freeList: make([]Handle, 0, 16),
	}
}

// Create stores a value and returns a handle.
func (b *LocalBackend) Create(typeID uint32, value disposable.Disposable) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrClosed
	}

	b.seq++
	e := entry{
		typeID: typeID,
		value:  value,
		seq:    b.seq,
		valid:  true,
	}

	if len(b.freeList) > 0 {
		handle := b.freeList[len(b.freeList)-1]
		b.freeList = b.freeList[:len(b.freeList)-1]
		b.entries[handle-1] = e
		return handle, nil
	}

	b.entries = append(b.entries, e)
	return Handle(len(b.entries)), nil
}

// Get retrieves a value by handle.
func (b *LocalBackend) Get(handle Handle) (disposable.Disposable, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.lookup(handle)
	if !ok {
		return nil, false
	}
	return e.value, true
}

// TypeID returns the type ID for a handle.
func (b *LocalBackend) TypeID(handle Handle) (uint32, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.lookup(handle)
	if !ok {
		return 0, false
	}
	return e.typeID, true
}

// Take removes a value without disposing it.
func (b *LocalBackend) Take(handle Handle) (disposable.Disposable, uint32, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.lookup(handle)
	if !ok {
		return nil, 0, false
	}

	value, typeID := e.value, e.typeID
	b.entries[handle-1] = entry{}
	b.freeList = append(b.freeList, handle)
	return value, typeID, true
}

// Remove removes the entry at handle only if it still holds value, so a
// reused handle is never taken from its new owner. value is not disposed.
func (b *LocalBackend) Remove(handle Handle, value disposable.Disposable) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.lookup(handle)
	if !ok || e.value != value {
		return false
	}
	b.entries[handle-1] = entry{}
	b.freeList = append(b.freeList, handle)
	return true
}

// lookup must be called with mu held.
func (b *LocalBackend) lookup(handle Handle) (entry, bool) {
	if handle == 0 {
		return entry{}, false
	}
	idx := int(handle - 1)
	if idx >= len(b.entries) {
		return entry{}, false
	}
	e := b.entries[idx]
	if !e.valid {
		return entry{}, false
	}
	return e, true
}

// drain detaches every live entry and returns them newest first.
// Values are disposed by the caller, outside the lock.
func (b *LocalBackend) drain(closing bool) []item {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := make([]item, 0, len(b.entries))
	for i, e := range b.entries {
		if e.valid {
			items = append(items, item{
				value:  e.value,
				handle: Handle(i + 1),
				typeID: e.typeID,
				seq:    e.seq,
			})
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].seq > items[j].seq })

	if closing {
		b.closed = true
		b.entries = nil
		b.freeList = nil
	} else {
		b.entries = b.entries[:0]
		b.freeList = b.freeList[:0]
	}
	return items
}

// Close disposes every stored value, newest first.
func (b *LocalBackend) Close() error {
	var err error
	for _, it := range b.drain(true) {
		err = multierr.Append(err, it.value.Dispose())
	}
	return err
}

// Len returns the number of live values.
func (b *LocalBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := 0
	for _, e := range b.entries {
		if e.valid {
			count++
		}
	}
	return count
}

// Each iterates over all live values.
// fn must not call back into the backend.
func (b *LocalBackend) Each(fn func(Handle, uint32, disposable.Disposable) bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for i, e := range b.entries {
		if e.valid {
			if !fn(Handle(i+1), e.typeID, e.value) {
				break
			}
		}
	}
}
