package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/disposable"
	"github.com/wippyai/disposable/errors"
)

// Module is a compiled WebAssembly module. It keeps its Runtime reachable,
// so the runtime is never torn down while the module is in use.
type Module struct {
	*module
	rt *Runtime
}

// module is the part owned by the runtime's table. It must not reference
// the Runtime, or the runtime could never be reclaimed.
type module struct {
	disposable.Base
	compiled wazero.CompiledModule
}

func newModule(compiled wazero.CompiledModule) *module {
	m := &module{compiled: compiled}
	m.OnDispose(func() error {
		return compiled.Close(context.Background())
	})
	return m
}

// Runtime returns the runtime that compiled the module.
func (m *Module) Runtime() *Runtime {
	return m.rt
}

// Name returns the module name from the binary's name section, if any.
func (m *Module) Name() string {
	return disposable.GuardValue(m, m.compiled.Name)()
}

// Exports returns the sorted names of exported functions.
func (m *Module) Exports() []string {
	return disposable.GuardValue(m, func() []string {
		defs := m.compiled.ExportedFunctions()
		names := make([]string, 0, len(defs))
		for name := range defs {
			names = append(names, name)
		}
		sort.Strings(names)
		return names
	})()
}

// Instance is a running module instance. Like Module it keeps its Runtime
// reachable.
type Instance struct {
	*instance
	rt *Runtime
}

type instance struct {
	disposable.Base
	mod  api.Module
	name string
}

func newInstance(mod api.Module, name string) *instance {
	inst := &instance{mod: mod, name: name}
	inst.OnDispose(func() error {
		return mod.Close(context.Background())
	})
	return inst
}

// Runtime returns the runtime that created the instance.
func (i *Instance) Runtime() *Runtime {
	return i.rt
}

// Name returns the instance name given to Instantiate.
func (i *Instance) Name() string {
	return i.name
}

// Call invokes the exported function fn with raw WebAssembly parameters.
func (i *Instance) Call(ctx context.Context, fn string, params ...uint64) ([]uint64, error) {
	return disposable.GuardResult(i, func() ([]uint64, error) {
		f := i.mod.ExportedFunction(fn)
		if f == nil {
			return nil, errors.NotFound(errors.PhaseEngine, fmt.Sprintf("export %q", fn))
		}
		results, err := f.Call(ctx, params...)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseEngine, errors.KindExec, err, fmt.Sprintf("call %q", fn))
		}
		return results, nil
	})()
}
