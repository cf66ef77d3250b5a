package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/wippyai/disposable"
	"github.com/wippyai/disposable/errors"
	"github.com/wippyai/disposable/resource"
)

// TypeStmt is the type ID of statements in a DB's table.
const TypeStmt uint32 = 1

// DB is a disposable SQLite connection pool.
type DB struct {
	disposable.Base
	db    *sql.DB
	stmts *resource.TypedTable[*stmt]
}

// Open opens and pings the database at dsn. In-memory databases are limited
// to a single connection so every query sees the same data.
func Open(ctx context.Context, dsn string) (*DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.InvalidInput(errors.PhaseStore, "empty dsn")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Load(errors.PhaseStore, "open database", err)
	}
	if isMemory(dsn) {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Load(errors.PhaseStore, "ping database", err)
	}

	stmts := resource.NewTypedTable[*stmt](TypeStmt)
	d := &DB{db: db, stmts: stmts}
	d.OnDispose(db.Close)
	d.OnDispose(stmts.Dispose)
	disposable.Track(d, &d.Base)
	return d, nil
}

func isMemory(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

// Exec executes a statement that returns no rows.
func (d *DB) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return disposable.GuardResult(d, func() (sql.Result, error) {
		res, err := d.db.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseStore, errors.KindExec, err, "exec")
		}
		return res, nil
	})()
}

// Scan runs a query returning at most one row and copies its columns into
// dest. A query without rows yields a not-found error wrapping sql.ErrNoRows.
func (d *DB) Scan(ctx context.Context, query string, args []any, dest ...any) error {
	return disposable.GuardErr(d, func() error {
		return scanRow(d.db.QueryRowContext(ctx, query, args...), dest)
	})()
}

// Prepare creates a statement owned by the DB.
func (d *DB) Prepare(ctx context.Context, query string) (*Stmt, error) {
	return disposable.GuardResult(d, func() (*Stmt, error) {
		st, err := d.db.PrepareContext(ctx, query)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseStore, errors.KindExec, err, "prepare")
		}
		inner := newStmt(st, query)
		h := d.stmts.Insert(inner)
		if h == 0 {
			inner.Dispose()
			return nil, errors.Disposed(errors.PhaseStore, "*store.DB")
		}
		stmts := d.stmts
		inner.OnDispose(func() error {
			stmts.Detach(h, inner)
			return nil
		})
		return &Stmt{stmt: inner, db: d}, nil
	})()
}

// Statements returns the number of live prepared statements.
func (d *DB) Statements() int {
	return disposable.GuardValue(d, d.stmts.Len)()
}

// Stmt is a disposable prepared statement. It keeps its DB reachable, so
// the pool is never torn down while the statement is in use.
type Stmt struct {
	*stmt
	db *DB
}

// stmt is the part owned by the DB's table. It must not reference the DB.
type stmt struct {
	disposable.Base
	st    *sql.Stmt
	query string
}

func newStmt(st *sql.Stmt, query string) *stmt {
	s := &stmt{st: st, query: query}
	s.OnDispose(st.Close)
	return s
}

// DB returns the database the statement was prepared on.
func (s *Stmt) DB() *DB {
	return s.db
}

// Query returns the statement's SQL text.
func (s *Stmt) Query() string {
	return s.query
}

// Exec executes the statement with args.
func (s *Stmt) Exec(ctx context.Context, args ...any) (sql.Result, error) {
	return disposable.GuardResult(s, func() (sql.Result, error) {
		res, err := s.st.ExecContext(ctx, args...)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseStore, errors.KindExec, err, "exec statement")
		}
		return res, nil
	})()
}

// Scan runs the statement as a single-row query and copies the row into dest.
func (s *Stmt) Scan(ctx context.Context, args []any, dest ...any) error {
	return disposable.GuardErr(s, func() error {
		return scanRow(s.st.QueryRowContext(ctx, args...), dest)
	})()
}

func scanRow(row *sql.Row, dest []any) error {
	err := row.Scan(dest...)
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.Wrap(errors.PhaseStore, errors.KindNotFound, err, "no rows")
	}
	if err != nil {
		return errors.Wrap(errors.PhaseStore, errors.KindExec, err, "scan")
	}
	return nil
}
