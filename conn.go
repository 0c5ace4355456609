package sqlite

import (
	"runtime"
	"strings"
	"time"
	"unsafe"

	"go.uber.org/multierr"
)

// Conn owns one native database connection, the set of statements prepared
// on it, and every blob stream and backup derived from it. Closing the
// connection force-closes all of those dependents first, so no dependent
// handle ever outlives the connection handle.
//
// A Conn and its dependents are not safe for concurrent use from multiple
// goroutines without external serialization; the native engine performs no
// locking on behalf of one connection. Interrupt is the single exception
// and may be called from anywhere.
type Conn struct {
	db   sqlite3
	path string

	// Dependents, in insertion order. Never shared across connections.
	stmts   []*Stmt
	blobs   []*BlobStream
	backups []*Backup

	closed bool

	// Registry tokens for single-slot hooks.
	commitID     uintptr
	rollbackID   uintptr
	updateID     uintptr
	progressID   uintptr
	authorizerID uintptr
	traceID      uintptr
	traceST      traceState
}

// Open creates a connection to the database at path. path may be a file
// path (created if absent under the default flags), a "file:" URI when
// OpenURI is set, or ":memory:". With no options the database opens with
// OpenReadWrite|OpenCreate on the default VFS.
func Open(path string, opts ...OpenOption) (*Conn, error) {
	if libErr != nil {
		return nil, libErr
	}
	cfg := openConfig{flags: OpenReadWrite | OpenCreate}
	for _, opt := range opts {
		opt(&cfg)
	}
	c, err := open(path, cfg.flags, cfg.vfs)
	if err != nil {
		return nil, err
	}
	if cfg.busyTimeout > 0 {
		if err := c.BusyTimeout(cfg.busyTimeout); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	return c, nil
}

func open(path string, flags int, vfs string) (*Conn, error) {
	db, rc := sqlite3_open_v2(path, flags, vfs)
	if rc != OK {
		err := errConn(rc, db)
		if db != nil {
			sqlite3_close(db)
		}
		return nil, err
	}
	c := &Conn{db: db, path: path}
	// Safety net against leaked handles only; Close is the contract.
	runtime.SetFinalizer(c, (*Conn).finalize)
	return c, nil
}

func (c *Conn) finalize() {
	if c.db != nil {
		sqlite3_close_v2(c.db)
		c.db = nil
	}
}

func (c *Conn) checkOpen() error {
	if c.closed || c.db == nil {
		return ErrConnClosed
	}
	return nil
}

// Close releases the connection. Every statement, blob stream and backup
// still open on this connection is force-closed first, in dependents-first
// order; their release errors are aggregated into the returned error rather
// than aborting the cascade. After Close, every operation on the connection
// or any of its dependents reports a resource-closed error. Close is
// idempotent.
func (c *Conn) Close() error {
	if c.closed || c.db == nil {
		return nil
	}
	c.closed = true

	var errs error
	for _, s := range c.stmts {
		errs = multierr.Append(errs, s.release())
	}
	c.stmts = nil
	for _, b := range c.blobs {
		errs = multierr.Append(errs, b.release())
	}
	c.blobs = nil
	for _, b := range c.backups {
		errs = multierr.Append(errs, b.release())
	}
	c.backups = nil

	c.dropHooks()

	db := c.db
	c.db = nil
	runtime.SetFinalizer(c, nil)
	if rc := sqlite3_close(db); rc != OK {
		if rc == BUSY {
			sqlite3_close_v2(db)
		}
		errs = multierr.Append(errs, errCode(rc))
	}
	return errs
}

// dropHooks unregisters every callback token so closures do not leak past
// the connection. The native side goes away with the handle itself.
func (c *Conn) dropHooks() {
	commitHooks.unregister(c.commitID)
	rollbackHooks.unregister(c.rollbackID)
	updateHooks.unregister(c.updateID)
	progressHooks.unregister(c.progressID)
	authorizers.unregister(c.authorizerID)
	traceHooks.unregister(c.traceID)
	c.commitID, c.rollbackID, c.updateID, c.progressID, c.authorizerID, c.traceID = 0, 0, 0, 0, 0, 0
}

// Prepare compiles the first statement in sql and returns it together with
// the unparsed remainder, supporting semicolon-delimited multi-statement
// strings fed through repeated calls. A nil statement and empty remainder
// mean sql contained nothing to run. The statement joins the connection's
// open set and is finalized automatically if still open when the connection
// closes.
func (c *Conn) Prepare(sql string) (*Stmt, string, error) {
	if err := c.checkOpen(); err != nil {
		return nil, "", err
	}
	stmt, offset, rc := sqlite3_prepare_v2(c.db, sql)
	if rc != OK {
		return nil, "", errConn(rc, c.db)
	}
	tail := sql[offset:]
	if stmt == nil {
		return nil, strings.TrimSpace(tail), nil
	}
	s := &Stmt{
		conn:    c,
		stmt:    stmt,
		sql:     strings.TrimSpace(strings.TrimSuffix(sql, tail)),
		nParams: sqlite3_bind_parameter_count(stmt),
		nCols:   sqlite3_column_count(stmt),
	}
	s.names = make([]string, s.nCols)
	for i := range s.names {
		s.names[i] = sqlite3_column_name(stmt, i)
	}
	c.stmts = append(c.stmts, s)
	return s, tail, nil
}

func (c *Conn) forgetStmt(s *Stmt) {
	for i, other := range c.stmts {
		if other == s {
			c.stmts = append(c.stmts[:i], c.stmts[i+1:]...)
			return
		}
	}
}

func (c *Conn) forgetBlob(b *BlobStream) {
	for i, other := range c.blobs {
		if other == b {
			c.blobs = append(c.blobs[:i], c.blobs[i+1:]...)
			return
		}
	}
}

func (c *Conn) forgetBackup(b *Backup) {
	for i, other := range c.backups {
		if other == b {
			c.backups = append(c.backups[:i], c.backups[i+1:]...)
			return
		}
	}
}

// Exec runs every statement in sql to completion. When args are given they
// are bound to the first statement only.
func (c *Conn) Exec(sql string, args ...any) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	rest := sql
	first := true
	for strings.TrimSpace(rest) != "" {
		stmt, tail, err := c.Prepare(rest)
		if err != nil {
			return err
		}
		rest = tail
		if stmt == nil {
			break
		}
		if first && len(args) > 0 {
			if err := stmt.Bind(args...); err != nil {
				_ = stmt.Close()
				return err
			}
		}
		first = false
		err = stmt.StepToCompletion()
		if cerr := stmt.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Query prepares a single statement and binds args, leaving the cursor
// before the first row. sql must contain exactly one statement.
func (c *Conn) Query(sql string, args ...any) (*Stmt, error) {
	stmt, tail, err := c.Prepare(sql)
	if err != nil {
		return nil, err
	}
	if stmt == nil {
		return nil, misuse("Query with empty statement")
	}
	if strings.TrimSpace(tail) != "" {
		_ = stmt.Close()
		return nil, misuse("Query with multiple statements")
	}
	if len(args) > 0 {
		if err := stmt.Bind(args...); err != nil {
			_ = stmt.Close()
			return nil, err
		}
	}
	return stmt, nil
}

// Interrupt aborts any pending operation on this connection at its earliest
// opportunity; the aborted call fails with an INTERRUPT error. Safe to call
// from another goroutine.
func (c *Conn) Interrupt() {
	if c.closed || c.db == nil {
		return
	}
	sqlite3_interrupt(c.db)
}

// BusyTimeout configures how long the engine blocks retrying when another
// connection holds a conflicting lock before surfacing BUSY. Non-positive
// durations disable the handler.
func (c *Conn) BusyTimeout(d time.Duration) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	ms := int(d / time.Millisecond)
	if d <= 0 {
		ms = 0
	}
	if rc := sqlite3_busy_timeout(c.db, ms); rc != OK {
		return errConn(rc, c.db)
	}
	return nil
}

// LastInsertRowID returns the rowid of the most recent successful INSERT on
// this connection.
func (c *Conn) LastInsertRowID() int64 {
	if c.closed || c.db == nil {
		return 0
	}
	return sqlite3_last_insert_rowid(c.db)
}

// Changes returns the number of rows changed by the most recent statement.
func (c *Conn) Changes() int64 {
	if c.closed || c.db == nil {
		return 0
	}
	return sqlite3_changes(c.db)
}

// TotalChanges returns the number of rows changed since the connection
// opened.
func (c *Conn) TotalChanges() int {
	if c.closed || c.db == nil {
		return 0
	}
	return sqlite3_total_changes(c.db)
}

// AutoCommit reports whether the connection is outside an explicit
// transaction.
func (c *Conn) AutoCommit() bool {
	if c.closed || c.db == nil {
		return false
	}
	return sqlite3_get_autocommit(c.db)
}

// Filename returns the file backing the given attached database ("main" for
// the primary), or empty for temporary and in-memory databases.
func (c *Conn) Filename(database string) string {
	if c.closed || c.db == nil {
		return ""
	}
	return sqlite3_db_filename(c.db, database)
}

// --- hook registration ---
//
// Each registration replaces any prior registration in the same slot;
// registering nil removes it. Callbacks run synchronously inside the native
// call that triggers them, on the same goroutine, and may reenter this
// connection (prepare and step statements on it).

// CommitHook registers f to be invoked before each commit. Returning true
// converts the commit into a rollback.
func (c *Conn) CommitHook(f func() bool) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	old := c.commitID
	if f == nil {
		c.commitID = 0
		c_sqlite3_commit_hook(unsafe.Pointer(c.db), 0, 0)
	} else {
		c.commitID = commitHooks.register(f)
		c_sqlite3_commit_hook(unsafe.Pointer(c.db), commitTrampoline, c.commitID)
	}
	commitHooks.unregister(old)
	return nil
}

// RollbackHook registers f to be invoked whenever a transaction rolls back.
func (c *Conn) RollbackHook(f func()) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	old := c.rollbackID
	if f == nil {
		c.rollbackID = 0
		c_sqlite3_rollback_hook(unsafe.Pointer(c.db), 0, 0)
	} else {
		c.rollbackID = rollbackHooks.register(f)
		c_sqlite3_rollback_hook(unsafe.Pointer(c.db), rollbackTrampoline, c.rollbackID)
	}
	rollbackHooks.unregister(old)
	return nil
}

// UpdateHook registers f to be invoked after each row insert, update or
// delete on a rowid table.
func (c *Conn) UpdateHook(f UpdateFunc) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	old := c.updateID
	if f == nil {
		c.updateID = 0
		c_sqlite3_update_hook(unsafe.Pointer(c.db), 0, 0)
	} else {
		c.updateID = updateHooks.register(f)
		c_sqlite3_update_hook(unsafe.Pointer(c.db), updateTrampoline, c.updateID)
	}
	updateHooks.unregister(old)
	return nil
}

// ProgressHandler registers f to be invoked approximately every n virtual
// machine instructions during long-running statements. Returning true
// interrupts the statement, which then fails with an INTERRUPT error.
func (c *Conn) ProgressHandler(n int, f func() bool) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	old := c.progressID
	if f == nil || n <= 0 {
		c.progressID = 0
		c_sqlite3_progress_handler(unsafe.Pointer(c.db), 0, 0, 0)
	} else {
		c.progressID = progressHooks.register(f)
		c_sqlite3_progress_handler(unsafe.Pointer(c.db), int32(n), progressTrampoline, c.progressID)
	}
	progressHooks.unregister(old)
	return nil
}

// Authorizer registers f to vet each action during statement compilation.
func (c *Conn) Authorizer(f AuthorizerFunc) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	old := c.authorizerID
	var rc Code
	if f == nil {
		c.authorizerID = 0
		rc = Code(c_sqlite3_set_authorizer(unsafe.Pointer(c.db), 0, 0))
	} else {
		c.authorizerID = authorizers.register(f)
		rc = Code(c_sqlite3_set_authorizer(unsafe.Pointer(c.db), authorizerTrampoline, c.authorizerID))
	}
	authorizers.unregister(old)
	if rc != OK {
		return errConn(rc, c.db)
	}
	return nil
}

// Trace registers f to receive the text of each statement as it first runs.
func (c *Conn) Trace(f func(sql string)) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	c.traceST.trace = f
	return c.applyTrace()
}

// Profile registers f to receive each statement's text and wall-clock run
// time when it finishes.
func (c *Conn) Profile(f func(sql string, elapsed time.Duration)) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	c.traceST.profile = f
	return c.applyTrace()
}

func (c *Conn) applyTrace() error {
	var mask uint32
	if c.traceST.trace != nil {
		mask |= traceStmt
	}
	if c.traceST.profile != nil {
		mask |= traceProfile
	}
	old := c.traceID
	var rc Code
	if mask == 0 {
		c.traceID = 0
		rc = Code(c_sqlite3_trace_v2(unsafe.Pointer(c.db), 0, 0, 0))
	} else {
		st := c.traceST
		c.traceID = traceHooks.register(&st)
		rc = Code(c_sqlite3_trace_v2(unsafe.Pointer(c.db), mask, traceTrampoline, c.traceID))
	}
	traceHooks.unregister(old)
	if rc != OK {
		return errConn(rc, c.db)
	}
	return nil
}
