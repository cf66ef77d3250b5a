// Package resource provides a handle table that owns disposable values.
//
// A table maps integer handles to values implementing disposable.Disposable.
// Dropping a handle disposes its value, and disposing the table disposes
// every value still in it, newest first. The table is itself disposable and
// tracked, so an unreachable table still releases what it owns.
//
//	table := resource.NewTable()
//	defer table.Dispose()
//
//	// Insert a value, get a handle
//	handle := table.Insert(typeID, conn)
//
//	// Retrieve value by handle
//	value, ok := table.Get(handle)
//
//	// Remove and dispose
//	err := table.Drop(handle)
//
// # Type Safety
//
// Handles are typed - each value type gets a type ID chosen by the owner:
//
//	const ModuleTypeID = 1
//	const InstanceTypeID = 2
//
//	value, ok := table.GetTyped(handle, ModuleTypeID)
//
// TypedTable wraps a table for one type ID and returns concrete values:
//
//	modules := resource.Typed[*Module](table, ModuleTypeID)
//	m, ok := modules.Get(handle)
//
// # Observers
//
// Register observers to track lifecycle events:
//
//	table.Subscribe(observer) // receives EventCreated and EventDisposed
//
// # Disposed Tables
//
// Operations on a disposed table do nothing: Insert returns 0, Get returns
// false and Drop returns nil. A value rejected by Insert stays owned by the
// caller.
//
// # Concurrency
//
// Unlike disposable.Base, UnifiedTable is safe for concurrent use. Dispose
// takes the table's write lock, so values and observers must not call back
// into the table while it is being disposed.
package resource
