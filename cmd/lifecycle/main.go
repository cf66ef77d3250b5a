// Command lifecycle walks disposable values through their lifecycle and
// prints the state after every step.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/disposable"
	"github.com/wippyai/disposable/config"
	"github.com/wippyai/disposable/engine"
	"github.com/wippyai/disposable/store"
)

// addWasm exports add(i32, i32) -> i32.
var addWasm = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x07, 0x01, 0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f,
	0x03, 0x02, 0x01, 0x00,
	0x07, 0x07, 0x01, 0x03, 'a', 'd', 'd', 0x00, 0x00,
	0x0a, 0x09, 0x01, 0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0x6a, 0x0b,
}

func main() {
	var (
		configFile = flag.String("config", "", "Path to a TOML or YAML config file")
		ops        = flag.Int("ops", 3, "Guarded operations to run before and after disposal")
	)
	flag.Parse()

	if *ops < 0 {
		fmt.Fprintln(os.Stderr, "Usage: lifecycle [-config file.toml|file.yaml] [-ops n]")
		os.Exit(1)
	}

	if err := run(*configFile, *ops); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile string, ops int) error {
	ctx := context.Background()

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	logger, err := config.Apply(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	p := &printer{w: os.Stdout, styled: term.IsTerminal(int(os.Stdout.Fd()))}

	runCounter(p, ops)
	if err := runEngine(ctx, p); err != nil {
		return err
	}
	if err := runStore(ctx, p); err != nil {
		return err
	}
	logger.Debug("lifecycle finished", zap.Int("ops", ops))
	return nil
}

// counter increments released once when disposed.
type counter struct {
	disposable.Base
	released *int
	calls    int
}

func newCounter() *counter {
	released := new(int)
	c := &counter{released: released}
	c.OnDispose(func() error {
		*released++
		return nil
	})
	return c
}

func (c *counter) Step() {
	disposable.Guard(c, func() { c.calls++ })()
}

func runCounter(p *printer, ops int) {
	p.title("counter")
	c := newCounter()
	p.state("new", c.IsDisposed())

	for i := 0; i < ops; i++ {
		c.Step()
	}
	p.detail("%d guarded calls, %d ran", ops, c.calls)

	c.Dispose()
	p.state("after Dispose", c.IsDisposed())
	p.detail("released = %d", *c.released)

	for i := 0; i < ops; i++ {
		c.Step()
	}
	p.detail("%d more guarded calls, %d ran in total", ops, c.calls)

	c.Dispose()
	p.detail("second Dispose, released = %d", *c.released)
}

func runEngine(ctx context.Context, p *printer) error {
	p.title("engine")
	rt, err := engine.NewRuntime(ctx, &engine.Config{Interpreter: true})
	if err != nil {
		return err
	}
	defer rt.Dispose()

	mod, err := rt.Compile(ctx, addWasm)
	if err != nil {
		return err
	}
	inst, err := rt.Instantiate(ctx, mod, "calc")
	if err != nil {
		return err
	}
	results, err := inst.Call(ctx, "add", 20, 22)
	if err != nil {
		return err
	}
	p.detail("add(20, 22) = %v", results)

	if err := rt.Dispose(); err != nil {
		return err
	}
	p.state("runtime", rt.IsDisposed())
	p.state("module", mod.IsDisposed())
	p.state("instance", inst.IsDisposed())

	results, err = inst.Call(ctx, "add", 1, 1)
	p.detail("add after Dispose = %v, err = %v", results, err)
	return nil
}

func runStore(ctx context.Context, p *printer) error {
	p.title("store")
	db, err := store.Open(ctx, ":memory:")
	if err != nil {
		return err
	}

	err = disposable.Use(db, func(db *store.DB) error {
		if _, err := db.Exec(ctx, `CREATE TABLE steps (name TEXT)`); err != nil {
			return err
		}
		ins, err := db.Prepare(ctx, `INSERT INTO steps(name) VALUES (?)`)
		if err != nil {
			return err
		}
		for _, name := range []string{"open", "prepare", "insert"} {
			if _, err := ins.Exec(ctx, name); err != nil {
				return err
			}
		}
		var n int
		if err := db.Scan(ctx, `SELECT COUNT(*) FROM steps`, nil, &n); err != nil {
			return err
		}
		p.detail("%d rows through %d statement(s)", n, db.Statements())
		p.state("statement", ins.IsDisposed())
		return nil
	})
	if err != nil {
		return err
	}
	p.state("database after Use", db.IsDisposed())
	return nil
}
