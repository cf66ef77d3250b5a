package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"runtime"
	"testing"
	"time"

	"github.com/wippyai/disposable"
	"github.com/wippyai/disposable/errors"
)

func openMemory(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Dispose() })

	if _, err := db.Exec(context.Background(), `CREATE TABLE events (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

func TestOpen_InvalidDSN(t *testing.T) {
	if _, err := Open(context.Background(), "  "); !stderrors.Is(err, &errors.Error{Kind: errors.KindInvalidInput}) {
		t.Fatalf("Open(blank) = %v, want invalid input", err)
	}
}

func TestDB_ExecAndScan(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)

	res, err := db.Exec(ctx, `INSERT INTO events(name) VALUES (?)`, "opened")
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		t.Fatalf("RowsAffected = %d, want 1", n)
	}

	var name string
	if err := db.Scan(ctx, `SELECT name FROM events WHERE id = ?`, []any{1}, &name); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if name != "opened" {
		t.Fatalf("name = %q", name)
	}

	err = db.Scan(ctx, `SELECT name FROM events WHERE id = ?`, []any{99}, &name)
	if !stderrors.Is(err, sql.ErrNoRows) || !stderrors.Is(err, &errors.Error{Kind: errors.KindNotFound}) {
		t.Fatalf("Scan(missing) = %v, want not found", err)
	}

	if _, err := db.Exec(ctx, `INSERT INTO nowhere VALUES (1)`); !stderrors.Is(err, &errors.Error{Kind: errors.KindExec}) {
		t.Fatalf("Exec(bad table) = %v, want exec error", err)
	}
}

func TestStmt_Lifecycle(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)

	ins, err := db.Prepare(ctx, `INSERT INTO events(name) VALUES (?)`)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	count, err := db.Prepare(ctx, `SELECT COUNT(*) FROM events`)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if db.Statements() != 2 {
		t.Fatalf("Statements = %d, want 2", db.Statements())
	}

	for _, name := range []string{"a", "b", "c"} {
		if _, err := ins.Exec(ctx, name); err != nil {
			t.Fatalf("Exec(%s): %v", name, err)
		}
	}
	var n int
	if err := count.Scan(ctx, nil, &n); err != nil || n != 3 {
		t.Fatalf("count = %d, %v", n, err)
	}

	ins.Dispose()
	if db.Statements() != 1 {
		t.Fatalf("Statements = %d, want 1", db.Statements())
	}
	if res, err := ins.Exec(ctx, "d"); res != nil || err != nil {
		t.Fatalf("Exec on disposed stmt = (%v, %v), want (nil, nil)", res, err)
	}
	count.Scan(ctx, nil, &n)
	if n != 3 {
		t.Fatalf("disposed statement must not insert, count = %d", n)
	}
}

func TestDB_DisposeCascades(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)

	stmt, err := db.Prepare(ctx, `SELECT COUNT(*) FROM events`)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	if err := db.Dispose(); err != nil {
		t.Fatalf("Dispose: %v", err)
	}
	if !stmt.IsDisposed() {
		t.Fatal("statement should be disposed with its DB")
	}

	n := -1
	if err := stmt.Scan(ctx, nil, &n); err != nil || n != -1 {
		t.Fatalf("Scan on disposed stmt = %v, n=%d", err, n)
	}
	if res, err := db.Exec(ctx, `DELETE FROM events`); res != nil || err != nil {
		t.Fatalf("Exec on disposed DB = (%v, %v)", res, err)
	}
	if s, err := db.Prepare(ctx, `SELECT 1`); s != nil || err != nil {
		t.Fatalf("Prepare on disposed DB = (%v, %v)", s, err)
	}
	if db.Statements() != 0 {
		t.Fatal("Statements should be 0 once disposed")
	}
	if err := disposable.Check(db); !stderrors.Is(err, errors.ErrDisposed) {
		t.Fatalf("Check = %v, want ErrDisposed", err)
	}
	if err := db.Dispose(); err != nil {
		t.Fatalf("second Dispose: %v", err)
	}
}

func TestUse_ClosesDatabase(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	err = disposable.Use(db, func(db *DB) error {
		_, err := db.Exec(ctx, `CREATE TABLE t (x INTEGER)`)
		return err
	})
	if err != nil {
		t.Fatalf("Use: %v", err)
	}
	if !db.IsDisposed() {
		t.Fatal("Use should dispose the database")
	}
	if err := db.db.PingContext(ctx); err == nil {
		t.Fatal("pool should be closed")
	}
}

func TestStmt_DisposedStatementsLeaveTable(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)

	for i := 0; i < 1000; i++ {
		s, err := db.Prepare(ctx, `SELECT COUNT(*) FROM events`)
		if err != nil {
			t.Fatalf("Prepare: %v", err)
		}
		s.Dispose()
	}
	if n := db.stmts.Table().Len(); n != 0 {
		t.Fatalf("table holds %d statements, want 0", n)
	}
}

func TestStmt_KeepsDBAlive(t *testing.T) {
	ctx := context.Background()

	ins := func() *Stmt {
		db, err := Open(ctx, ":memory:")
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if _, err := db.Exec(ctx, `CREATE TABLE events (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`); err != nil {
			t.Fatalf("create table: %v", err)
		}
		s, err := db.Prepare(ctx, `INSERT INTO events(name) VALUES (?)`)
		if err != nil {
			t.Fatalf("Prepare: %v", err)
		}
		return s
	}()
	t.Cleanup(func() { ins.DB().Dispose() })

	for i := 0; i < 5; i++ {
		runtime.GC()
		time.Sleep(10 * time.Millisecond)

		res, err := ins.Exec(ctx, "tick")
		if err != nil || res == nil {
			t.Fatalf("iteration %d: Exec = (%v, %v)", i, res, err)
		}
		if ins.IsDisposed() || ins.DB().IsDisposed() {
			t.Fatalf("iteration %d: reachable statement was torn down", i)
		}
	}

	var n int
	if err := ins.DB().Scan(ctx, `SELECT COUNT(*) FROM events`, nil, &n); err != nil || n != 5 {
		t.Fatalf("count = %d, %v", n, err)
	}
}
