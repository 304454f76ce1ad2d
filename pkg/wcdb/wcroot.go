package wcdb

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// WCRoot anchors an absolute base directory and owns the SQLite
// database that stores its node graph. One WCRoot is opened once per
// process invocation and reused.
type WCRoot struct {
	ID       int64
	Abspath  string
	db       *sql.DB
	isUsable bool
}

// Open opens (creating if necessary) the working-copy database at
// dbPath and registers/loads the wcroot row for abspath. SQLite only
// tolerates one writer at a time, so the pool is capped to a single
// connection.
func Open(ctx context.Context, dbPath, abspath string) (*WCRoot, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open wcdb: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply wcdb schema: %w", err)
	}

	root := &WCRoot{Abspath: abspath, db: db}
	if err := root.loadOrCreate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	root.isUsable = true
	return root, nil
}

func (w *WCRoot) loadOrCreate(ctx context.Context) error {
	row := w.db.QueryRowContext(ctx, `SELECT id FROM wcroot WHERE local_abspath = ?`, w.Abspath)
	var id int64
	switch err := row.Scan(&id); err {
	case nil:
		w.ID = id
		return nil
	case sql.ErrNoRows:
		res, err := w.db.ExecContext(ctx, `INSERT INTO wcroot (local_abspath) VALUES (?)`, w.Abspath)
		if err != nil {
			return fmt.Errorf("register wcroot: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("register wcroot: %w", err)
		}
		w.ID = id
		return nil
	default:
		return fmt.Errorf("load wcroot: %w", err)
	}
}

// VerifyUsable fails fast when a WCRoot hasn't been through Open
// successfully.
func (w *WCRoot) VerifyUsable() error {
	if w == nil || !w.isUsable {
		return newError("verify_usable", CodeWCRootNotUsable, "", 0, nil)
	}
	return nil
}

// Close releases the underlying database connection.
func (w *WCRoot) Close() error {
	return w.db.Close()
}

// Begin opens a new transaction scoped to this WCRoot. All node-graph
// mutations must occur inside a single transaction.
func (w *WCRoot) Begin(ctx context.Context) (*Tx, error) {
	if err := w.VerifyUsable(); err != nil {
		return nil, err
	}
	sqlTx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin wcdb transaction: %w", err)
	}
	return &Tx{wcroot: w, tx: sqlTx}, nil
}

// Tx is a transaction-scoped handle exposing the node graph's typed
// queries. It never outlives the Commit/Rollback call that closes the
// underlying *sql.Tx.
type Tx struct {
	wcroot *WCRoot
	tx     *sql.Tx
}

// WCRoot returns the root this transaction is scoped to.
func (t *Tx) WCRoot() *WCRoot { return t.wcroot }

// Commit commits the underlying database transaction.
func (t *Tx) Commit() error { return t.tx.Commit() }

// Rollback aborts the underlying database transaction. Safe to call
// after Commit; returns sql.ErrTxDone which callers should ignore.
func (t *Tx) Rollback() error { return t.tx.Rollback() }

// QueryRowRaw and ExecRaw give sibling packages (pkg/conflict) direct
// access to tables the nodes-focused typed queries above don't cover
// (actual_node's conflict_data blob), without exposing the *sql.Tx
// itself or duplicating connection/transaction plumbing.
func (t *Tx) QueryRowRaw(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return t.tx.QueryRowContext(ctx, query, args...)
}

func (t *Tx) ExecRaw(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return t.tx.ExecContext(ctx, query, args...)
}

func (t *Tx) QueryRaw(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, query, args...)
}
