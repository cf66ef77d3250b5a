// Package errors provides structured error types for the disposable library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the owning value's Go type and ID, a detail message and
// the cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDispose, errors.KindReleaseFailed).
//		Type("*store.DB").
//		ID(id).
//		Detail("close pool").
//		Cause(cause).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.ReleaseFailed(errors.PhaseTeardown, "*store.DB", id, cause)
//	err := errors.Disposed(errors.PhaseGuard, "*engine.Runtime")
//
// All errors implement the standard error interface and support errors.Is/As.
// A target with an empty Phase matches any phase, so package-level sentinels
// such as ErrDisposed can be compared with errors.Is regardless of where the
// error was produced.
package errors
