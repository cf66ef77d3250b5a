package engine

import (
	"context"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	"github.com/wippyai/disposable"
	"github.com/wippyai/disposable/errors"
	"github.com/wippyai/disposable/resource"
)

// Type IDs of values owned by a Runtime's table.
const (
	TypeModule uint32 = iota + 1
	TypeInstance
)

// Config holds configuration for runtime creation
type Config struct {
	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means default (65536 pages = 4GB).
	MemoryLimitPages uint32

	// Interpreter selects the interpreter instead of the compiler backend.
	Interpreter bool

	// CloseOnContextDone stops running functions when their context is done.
	CloseOnContextDone bool
}

// Runtime owns a wazero runtime and the modules and instances created from it.
type Runtime struct {
	disposable.Base
	runtime   wazero.Runtime
	table     *resource.UnifiedTable
	modules   *resource.TypedTable[*module]
	instances *resource.TypedTable[*instance]
}

// NewRuntime creates a new runtime. cfg may be nil.
func NewRuntime(ctx context.Context, cfg *Config) (*Runtime, error) {
	var runtimeCfg wazero.RuntimeConfig
	if cfg != nil && cfg.Interpreter {
		runtimeCfg = wazero.NewRuntimeConfigInterpreter()
	} else {
		runtimeCfg = wazero.NewRuntimeConfig()
	}
	if cfg != nil {
		if cfg.MemoryLimitPages > 0 {
			runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
		}
		if cfg.CloseOnContextDone {
			runtimeCfg = runtimeCfg.WithCloseOnContextDone(true)
		}
	}

	rt := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)
	table := resource.NewTable()

	r := &Runtime{
		runtime:   rt,
		table:     table,
		modules:   resource.Typed[*module](table, TypeModule),
		instances: resource.Typed[*instance](table, TypeInstance),
	}

	// Levels run in reverse: owned values first, then the wazero runtime.
	r.OnDispose(func() error {
		return rt.Close(context.Background())
	})
	r.OnDispose(table.Dispose)
	disposable.Track(r, &r.Base)

	Logger().Debug("runtime created", zap.String("id", r.ID()))
	return r, nil
}

// Compile compiles a WebAssembly binary into a Module owned by the runtime.
func (r *Runtime) Compile(ctx context.Context, wasm []byte) (*Module, error) {
	return disposable.GuardResult(r, func() (*Module, error) {
		if len(wasm) == 0 {
			return nil, errors.InvalidInput(errors.PhaseEngine, "empty module binary")
		}

		compiled, err := r.runtime.CompileModule(ctx, wasm)
		if err != nil {
			return nil, errors.Load(errors.PhaseEngine, "compile module", err)
		}

		inner := newModule(compiled)
		if err := own(r.modules, inner); err != nil {
			return nil, err
		}
		m := &Module{module: inner, rt: r}

		Logger().Debug("module compiled",
			zap.String("runtime", r.ID()),
			zap.String("module", m.ID()),
			zap.Strings("exports", m.Exports()))
		return m, nil
	})()
}

// Instantiate creates an Instance of m owned by the runtime. name may be
// empty for an anonymous instance; non-empty names must be unique.
func (r *Runtime) Instantiate(ctx context.Context, m *Module, name string) (*Instance, error) {
	return disposable.GuardResult(r, func() (*Instance, error) {
		if m == nil {
			return nil, errors.InvalidInput(errors.PhaseEngine, "nil module")
		}
		if err := disposable.Check(m); err != nil {
			return nil, err
		}

		mod, err := r.runtime.InstantiateModule(ctx, m.compiled, wazero.NewModuleConfig().WithName(name))
		if err != nil {
			return nil, errors.Wrap(errors.PhaseEngine, errors.KindLoad, err, "instantiate module")
		}

		inner := newInstance(mod, name)
		if err := own(r.instances, inner); err != nil {
			return nil, err
		}
		inst := &Instance{instance: inner, rt: r}

		Logger().Debug("module instantiated",
			zap.String("runtime", r.ID()),
			zap.String("instance", inst.ID()),
			zap.String("name", name))
		return inst, nil
	})()
}

// Modules returns the number of live modules.
func (r *Runtime) Modules() int {
	return disposable.GuardValue(r, func() int {
		return r.modules.Len()
	})()
}

// Instances returns the number of live instances.
func (r *Runtime) Instances() int {
	return disposable.GuardValue(r, func() int {
		return r.instances.Len()
	})()
}

// Dispose disposes every instance and module, then closes the wazero runtime.
func (r *Runtime) Dispose() error {
	if r.IsDisposed() {
		return nil
	}
	id := r.ID()
	err := r.Base.Dispose()
	Logger().Debug("runtime disposed", zap.String("id", id), zap.Error(err))
	return err
}

// Close calls Dispose.
func (r *Runtime) Close() error {
	return r.Dispose()
}

type owned interface {
	disposable.Disposable
	OnDispose(disposable.ReleaseFunc) error
}

// own inserts v into t and makes v detach itself when disposed on its own,
// so the table holds only live values.
func own[T owned](t *resource.TypedTable[T], v T) error {
	h := t.Insert(v)
	if h == 0 {
		v.Dispose()
		return errors.Disposed(errors.PhaseEngine, "*engine.Runtime")
	}
	return v.OnDispose(func() error {
		t.Detach(h, v)
		return nil
	})
}
