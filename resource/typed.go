package resource

import (
	"fmt"

	"github.com/wippyai/disposable"
	"github.com/wippyai/disposable/errors"
)

// TypedTable provides type-safe access to values of one type stored in a
// UnifiedTable under a fixed type ID.
type TypedTable[T disposable.Disposable] struct {
	table  *UnifiedTable
	typeID uint32
}

// NewTypedTable creates a typed table backed by a new UnifiedTable.
func NewTypedTable[T disposable.Disposable](typeID uint32) *TypedTable[T] {
	return &TypedTable[T]{table: NewTable(), typeID: typeID}
}

// Typed returns a typed view of table for typeID. Several views with
// different type IDs may share one table.
func Typed[T disposable.Disposable](table *UnifiedTable, typeID uint32) *TypedTable[T] {
	return &TypedTable[T]{table: table, typeID: typeID}
}

// Insert adds a value and returns its handle.
func (t *TypedTable[T]) Insert(value T) Handle {
	return t.table.Insert(t.typeID, value)
}

// Get retrieves a value by handle.
func (t *TypedTable[T]) Get(handle Handle) (T, bool) {
	var zero T
	value, ok := t.table.GetTyped(handle, t.typeID)
	if !ok {
		return zero, false
	}
	v, ok := value.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// Drop removes a value and disposes it. A handle holding a value of
// another type is left in place and a type mismatch error is returned.
func (t *TypedTable[T]) Drop(handle Handle) error {
	if t.table.IsDisposed() {
		return nil
	}
	typeID, ok := t.table.backend.TypeID(handle)
	if !ok {
		return errors.NotFound(errors.PhaseResource, fmt.Sprintf("handle %d", handle))
	}
	if typeID != t.typeID {
		return errors.TypeMismatch(errors.PhaseResource,
			fmt.Sprintf("type %d", t.typeID), fmt.Sprintf("type %d", typeID))
	}
	return t.table.Drop(handle)
}

// Detach removes value from the table without disposing it.
// See UnifiedTable.Detach.
func (t *TypedTable[T]) Detach(handle Handle, value T) bool {
	return t.table.Detach(handle, value)
}

// Len returns the number of live values of this type.
func (t *TypedTable[T]) Len() int {
	n := 0
	t.Each(func(Handle, T) bool {
		n++
		return true
	})
	return n
}

// Each iterates over live values of this type.
func (t *TypedTable[T]) Each(fn func(Handle, T) bool) {
	t.table.Each(func(h Handle, typeID uint32, value disposable.Disposable) bool {
		if typeID != t.typeID {
			return true
		}
		v, ok := value.(T)
		if !ok {
			return true
		}
		return fn(h, v)
	})
}

// IsDisposed reports whether the underlying table has been disposed.
func (t *TypedTable[T]) IsDisposed() bool {
	return t.table.IsDisposed()
}

// Dispose disposes the underlying table and every value in it.
func (t *TypedTable[T]) Dispose() error {
	return t.table.Dispose()
}

// Table returns the underlying unified table.
func (t *TypedTable[T]) Table() *UnifiedTable {
	return t.table
}
