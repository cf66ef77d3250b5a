package disposable

import (
	"fmt"
	"reflect"
	"runtime"

	"go.uber.org/zap"
)

// Guard wraps op so that it does nothing once d is disposed.
func Guard(d Disposable, op func()) func() {
	return func() {
		if d.IsDisposed() {
			skipped(d, op)
			return
		}
		op()
	}
}

// GuardErr wraps op so that it returns nil without running once d is disposed.
func GuardErr(d Disposable, op func() error) func() error {
	return func() error {
		if d.IsDisposed() {
			skipped(d, op)
			return nil
		}
		return op()
	}
}

// GuardValue wraps op so that it returns the zero R without running once d
// is disposed.
func GuardValue[R any](d Disposable, op func() R) func() R {
	return func() R {
		if d.IsDisposed() {
			skipped(d, op)
			var zero R
			return zero
		}
		return op()
	}
}

// GuardResult wraps op so that it returns the zero R and a nil error without
// running once d is disposed.
func GuardResult[R any](d Disposable, op func() (R, error)) func() (R, error) {
	return func() (R, error) {
		if d.IsDisposed() {
			skipped(d, op)
			var zero R
			return zero, nil
		}
		return op()
	}
}

// GuardFunc wraps a single-argument op so that it returns the zero R without
// running once d is disposed.
func GuardFunc[A, R any](d Disposable, op func(A) R) func(A) R {
	return func(a A) R {
		if d.IsDisposed() {
			skipped(d, op)
			var zero R
			return zero
		}
		return op(a)
	}
}

func skipped(d Disposable, op any) {
	if ce := Logger().Check(zap.DebugLevel, "skipped call on disposed value"); ce != nil {
		ce.Write(zap.String("op", FuncName(op)), zap.String("type", fmt.Sprintf("%T", d)))
	}
}

// FuncName returns the runtime name of a function value, such as
// "github.com/acme/pkg.(*Conn).Write-fm" for a method value. It returns ""
// for nil or non-function values.
func FuncName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return ""
	}
	return f.Name()
}
