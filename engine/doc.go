// Package engine provides disposable wrappers around a wazero WebAssembly
// runtime.
//
// # Architecture
//
// The engine package provides three disposable types:
//
//	Runtime  - Owns a wazero runtime and every module and instance created from it
//	Module   - A compiled module, can be instantiated by its Runtime
//	Instance - A running module instance with exported functions
//
// # Lifecycle
//
//  1. NewRuntime() creates the wazero runtime and registers it for automatic teardown
//  2. Runtime.Compile() compiles a binary into a Module owned by the runtime
//  3. Runtime.Instantiate() creates an Instance owned by the runtime
//  4. Instance.Call() invokes an exported function
//  5. Runtime.Dispose() disposes instances, then modules, then closes wazero
//
// Modules and instances may be disposed on their own at any time; they then
// leave the runtime's table. A live Module or Instance keeps its Runtime
// reachable, so automatic teardown never pulls a runtime out from under a
// child the caller still holds. Every
// operation on a disposed value returns zero results and a nil error:
//
//	rt.Dispose()
//	results, err := inst.Call(ctx, "add", 1, 2) // nil, nil
//
// Use disposable.Check before a call when that silence is not wanted.
// Passing a disposed Module to Instantiate is reported as an error because
// the receiver is still active.
//
// # Thread Safety
//
// Runtime, Module and Instance do not synchronize Dispose with their other
// methods. Dispose them from the goroutine that owns them, or after all
// callers are done.
package engine
