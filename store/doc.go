// Package store provides a disposable SQLite database handle backed by the
// pure Go modernc.org/sqlite driver.
//
// A DB owns its prepared statements. Disposing the DB disposes every
// statement first and then closes the connection pool:
//
//	db, err := store.Open(ctx, "file:app.db")
//	if err != nil {
//	    return err
//	}
//	defer db.Dispose()
//
//	ins, err := db.Prepare(ctx, "INSERT INTO events(name) VALUES (?)")
//	...
//
// Every method on a disposed DB or Stmt returns zero results and a nil error.
package store
