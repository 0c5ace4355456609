package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"math"
	"net/url"
	"strings"
	"sync"
	"time"
)

// define all package level driver errors here
var (
	ErrDriverStmtClosed = errors.New("sqlite: driver statement closed")
	ErrDriverConnClosed = errors.New("sqlite: driver connection closed")
	ErrDriverRowsClosed = errors.New("sqlite: driver rows closed")
	ErrDriverTxDone     = errors.New("sqlite: transaction done")
)

// DefaultBusyTimeout is applied to driver connections whose DSN does not
// carry an explicit _busy_timeout parameter.
const DefaultBusyTimeout = 5000 * time.Millisecond

// define all package level driver structs here

type sqliteDriver struct{}

type driverConn struct {
	conn *Conn

	mu     sync.Mutex
	closed bool
}

type driverStmt struct {
	conn      *driverConn
	sql       string
	numInputs int
	closed    bool
}

type driverRows struct {
	conn      *driverConn
	stmt      *Stmt
	columns   []string
	decltypes []string

	closed bool
	err    error
}

type driverResult struct {
	lastInsertId int64
	rowsAffected int64
}

type driverTx struct {
	conn *driverConn
	done bool
}

// register driver
func init() {
	sql.Register("sqlitego", &sqliteDriver{})
}

// Implement sql.Driver methods
func (d *sqliteDriver) Open(dsn string) (driver.Conn, error) {
	cfg, err := parseDSN(dsn)
	if err != nil {
		return nil, err
	}
	return cfg.connect()
}

type dsnConfig struct {
	path string
	vfs  string
	// busyTimeout: 0 = use default, -1 = explicitly disabled, >0 = value.
	busyTimeout time.Duration
	flags       int
}

// parseDSN supports format: <path>[?vfs=<string>&mode=ro|rw|rwc|memory&_busy_timeout=<ms>]
func parseDSN(dsn string) (dsnConfig, error) {
	cfg := dsnConfig{path: dsn, flags: OpenReadWrite | OpenCreate}
	qMark := strings.IndexByte(dsn, '?')
	if qMark < 0 {
		return cfg, nil
	}
	cfg.path = dsn[:qMark]
	vals, err := url.ParseQuery(dsn[qMark+1:])
	if err != nil {
		return dsnConfig{}, err
	}
	if v := vals.Get("vfs"); v != "" {
		cfg.vfs = v
	}
	if v := vals.Get("mode"); v != "" {
		switch v {
		case "ro":
			cfg.flags = OpenReadOnly
		case "rw":
			cfg.flags = OpenReadWrite
		case "rwc":
			cfg.flags = OpenReadWrite | OpenCreate
		case "memory":
			cfg.flags = OpenReadWrite | OpenCreate | OpenMemory
		default:
			return dsnConfig{}, fmt.Errorf("sqlite: unknown mode %q", v)
		}
	}
	if v := vals.Get("_busy_timeout"); v != "" {
		var ms int
		if _, err := fmt.Sscanf(v, "%d", &ms); err == nil {
			if ms <= 0 {
				cfg.busyTimeout = -1
			} else {
				cfg.busyTimeout = time.Duration(ms) * time.Millisecond
			}
		}
	}
	return cfg, nil
}

func (cfg dsnConfig) connect() (driver.Conn, error) {
	opts := []OpenOption{WithFlags(cfg.flags)}
	if cfg.vfs != "" {
		opts = append(opts, WithVFS(cfg.vfs))
	}
	timeout := cfg.busyTimeout
	if timeout == 0 {
		timeout = DefaultBusyTimeout
	} else if timeout < 0 {
		timeout = 0
	}
	if timeout > 0 {
		opts = append(opts, WithBusyTimeout(timeout))
	}
	conn, err := Open(cfg.path, opts...)
	if err != nil {
		return nil, err
	}
	return &driverConn{conn: conn}, nil
}

// --- driver.Conn and friends ---

// Ensure driverConn implements required interfaces.
var (
	_ driver.Conn               = (*driverConn)(nil)
	_ driver.ConnPrepareContext = (*driverConn)(nil)
	_ driver.ExecerContext      = (*driverConn)(nil)
	_ driver.QueryerContext     = (*driverConn)(nil)
	_ driver.Pinger             = (*driverConn)(nil)
	_ driver.ConnBeginTx        = (*driverConn)(nil)
)

func (c *driverConn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

func (c *driverConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	// compile once to validate and count inputs, then drop the handle; the
	// real compile happens per execution so pool reuse stays stateless
	stmt, err := c.conn.Query(query)
	if err != nil {
		return nil, err
	}
	num := stmt.BindParameterCount()
	_ = stmt.Close()
	return &driverStmt{
		conn:      c,
		sql:       query,
		numInputs: num,
	}, nil
}

func (c *driverConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

func (c *driverConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *driverConn) BeginTx(ctx context.Context, _ driver.TxOptions) (driver.Tx, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if _, err := c.ExecContext(ctx, "BEGIN", nil); err != nil {
		return nil, err
	}
	return &driverTx{conn: c}, nil
}

func (c *driverConn) Ping(ctx context.Context) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	rows, err := c.QueryContext(ctx, "SELECT 1", nil)
	if err != nil {
		return err
	}
	return rows.Close()
}

func (c *driverConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// Multi-statement support for Exec-family; args bind to the first
	// statement only.
	rest := query
	first := true
	var totalAffected int64
	var lastInsert int64
	for strings.TrimSpace(rest) != "" {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		stmt, tail, err := c.conn.Prepare(rest)
		if err != nil {
			return nil, err
		}
		rest = tail
		if stmt == nil {
			break
		}
		if first && len(args) > 0 {
			if err := bindArgs(stmt, args); err != nil {
				_ = stmt.Close()
				return nil, err
			}
		}
		first = false
		err = stmt.StepToCompletion()
		if cerr := stmt.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, err
		}
		affected := c.conn.Changes()
		if affected > math.MaxInt64-totalAffected {
			totalAffected = math.MaxInt64
		} else {
			totalAffected += affected
		}
		lastInsert = c.conn.LastInsertRowID()
	}
	return &driverResult{
		lastInsertId: lastInsert,
		rowsAffected: totalAffected,
	}, nil
}

func (c *driverConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	// Only single-statement queries supported here
	stmt, err := c.conn.Query(query)
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		if err := bindArgs(stmt, args); err != nil {
			_ = stmt.Close()
			return nil, err
		}
	}
	// Leave the cursor before the first row.
	return &driverRows{conn: c, stmt: stmt}, nil
}

func (c *driverConn) checkOpen() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.conn == nil {
		return ErrDriverConnClosed
	}
	return nil
}

// --- Connector Pattern ---

// ConnectorOption configures a Connector.
type ConnectorOption func(*Connector)

// WithConnectorBusyTimeout overrides the DSN's busy timeout. Zero disables
// the busy handler entirely.
func WithConnectorBusyTimeout(d time.Duration) ConnectorOption {
	return func(c *Connector) {
		if d <= 0 {
			c.busyTimeout = -1
		} else {
			c.busyTimeout = d
		}
	}
}

// Connector implements driver.Connector for programmatic configuration.
type Connector struct {
	dsn         string
	busyTimeout time.Duration // 0 = from DSN/default, -1 = disabled
}

// NewConnector creates a Connector for dsn. The DSN syntax matches the
// registered driver's.
func NewConnector(dsn string, opts ...ConnectorOption) (*Connector, error) {
	c := &Connector{dsn: dsn}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Connect implements driver.Connector.
func (c *Connector) Connect(ctx context.Context) (driver.Conn, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	cfg, err := parseDSN(c.dsn)
	if err != nil {
		return nil, err
	}
	if c.busyTimeout != 0 {
		cfg.busyTimeout = c.busyTimeout
	}
	return cfg.connect()
}

// Driver implements driver.Connector.
func (c *Connector) Driver() driver.Driver {
	return &sqliteDriver{}
}

var _ driver.Connector = (*Connector)(nil)

// --- driver.Stmt and friends ---

// Ensure driverStmt implements required interfaces.
var (
	_ driver.Stmt             = (*driverStmt)(nil)
	_ driver.StmtExecContext  = (*driverStmt)(nil)
	_ driver.StmtQueryContext = (*driverStmt)(nil)
)

func (s *driverStmt) Close() error {
	s.closed = true
	return nil
}

func (s *driverStmt) NumInput() int {
	return s.numInputs
}

func (s *driverStmt) Exec(args []driver.Value) (driver.Result, error) {
	named := make([]driver.NamedValue, len(args))
	for i, v := range args {
		named[i] = driver.NamedValue{Ordinal: i + 1, Value: v}
	}
	return s.ExecContext(context.Background(), named)
}

func (s *driverStmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	if s.closed {
		return nil, ErrDriverStmtClosed
	}
	return s.conn.ExecContext(ctx, s.sql, args)
}

func (s *driverStmt) Query(args []driver.Value) (driver.Rows, error) {
	named := make([]driver.NamedValue, len(args))
	for i, v := range args {
		named[i] = driver.NamedValue{Ordinal: i + 1, Value: v}
	}
	return s.QueryContext(context.Background(), named)
}

func (s *driverStmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	if s.closed {
		return nil, ErrDriverStmtClosed
	}
	return s.conn.QueryContext(ctx, s.sql, args)
}

// --- driver.Rows ---

var _ driver.Rows = (*driverRows)(nil)

func (r *driverRows) Columns() []string {
	if r.columns != nil {
		return r.columns
	}
	n := r.stmt.ColumnCount()
	names := make([]string, n)
	decltypes := make([]string, n)
	for i := 0; i < n; i++ {
		names[i], _ = r.stmt.ColumnName(i)
		decltypes[i] = sqlite3_column_decltype(r.stmt.stmt, i)
	}
	r.columns = names
	r.decltypes = decltypes
	return r.columns
}

func (r *driverRows) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.stmt.Close()
}

func (r *driverRows) Next(dest []driver.Value) error {
	if r.closed {
		return io.EOF
	}
	// Ensure decltypes are populated
	_ = r.Columns()
	more, err := r.stmt.Step()
	if err != nil {
		r.err = err
		return err
	}
	if !more {
		return io.EOF
	}
	n := r.stmt.ColumnCount()
	if len(dest) != n {
		return fmt.Errorf("sqlite: expected %d dests, got %d", n, len(dest))
	}
	for i := 0; i < n; i++ {
		class, err := r.stmt.ColumnType(i)
		if err != nil {
			return err
		}
		switch class {
		case Null:
			dest[i] = nil
		case Integer:
			dest[i], _ = r.stmt.ColumnInt64(i)
		case Float:
			dest[i], _ = r.stmt.ColumnFloat64(i)
		case Text:
			text, _ := r.stmt.ColumnText(i)
			// Check if column type indicates a time value
			if i < len(r.decltypes) && isTimeColumn(r.decltypes[i]) {
				if t, err := parseTimeString(text); err == nil {
					dest[i] = t
				} else {
					dest[i] = text
				}
			} else {
				dest[i] = text
			}
		case Blob:
			dest[i], _ = r.stmt.ColumnBlob(i)
		default:
			dest[i] = nil
		}
	}
	return nil
}

// --- driver.Result ---

var _ driver.Result = (*driverResult)(nil)

func (r *driverResult) LastInsertId() (int64, error) {
	return r.lastInsertId, nil
}

func (r *driverResult) RowsAffected() (int64, error) {
	return r.rowsAffected, nil
}

// --- driver.Tx ---

var _ driver.Tx = (*driverTx)(nil)

func (tx *driverTx) Commit() error {
	if tx.done {
		return ErrDriverTxDone
	}
	_, err := tx.conn.ExecContext(context.Background(), "COMMIT", nil)
	tx.done = true
	return err
}

func (tx *driverTx) Rollback() error {
	if tx.done {
		return ErrDriverTxDone
	}
	_, err := tx.conn.ExecContext(context.Background(), "ROLLBACK", nil)
	tx.done = true
	return err
}

// Helpers

// bindArgs binds ordered and named values to a statement. Named values are
// resolved through the statement's parameter table, otherwise ordinal
// positions are used (1-based).
func bindArgs(stmt *Stmt, args []driver.NamedValue) error {
	if len(args) > 0 {
		hasNamed := false
		for _, nv := range args {
			if nv.Name != "" {
				hasNamed = true
				break
			}
		}
		if !hasNamed {
			if want := stmt.BindParameterCount(); len(args) != want {
				return fmt.Errorf("sqlite: got %d args, want %d", len(args), want)
			}
		}
	}
	for idx, nv := range args {
		pos := idx + 1
		if nv.Name != "" {
			pos = namedPosition(stmt, nv.Name)
			if pos <= 0 {
				return fmt.Errorf("sqlite: unknown named parameter %q", nv.Name)
			}
		} else if nv.Ordinal > 0 {
			pos = nv.Ordinal
		}
		if err := bindOne(stmt, pos, nv.Value); err != nil {
			return err
		}
	}
	return nil
}

// namedPosition resolves a bare parameter name against any of the prefixes
// the SQL dialect allows. database/sql strips the prefix before handing the
// name to the driver.
func namedPosition(stmt *Stmt, name string) int {
	for _, prefix := range [...]string{":", "@", "$"} {
		if pos := stmt.BindParameterIndex(prefix + name); pos > 0 {
			return pos
		}
	}
	return stmt.BindParameterIndex(name)
}

func bindOne(stmt *Stmt, position int, v any) error {
	if v == nil {
		return stmt.BindNull(position)
	}
	switch x := v.(type) {
	case int64:
		return stmt.BindInt64(position, x)
	case float64:
		return stmt.BindFloat64(position, x)
	case bool:
		if x {
			return stmt.BindInt64(position, 1)
		}
		return stmt.BindInt64(position, 0)
	case []byte:
		return stmt.BindBlob(position, x)
	case string:
		return stmt.BindText(position, x)
	case time.Time:
		// encode as RFC3339Nano string
		return stmt.BindText(position, x.Format(time.RFC3339Nano))
	default:
		val, err := ValueOf(v)
		if err != nil {
			return err
		}
		return stmt.BindValue(position, val)
	}
}

// isTimeColumn checks if the column declared type indicates a time/date
// column. This matches the behavior of github.com/mattn/go-sqlite3.
func isTimeColumn(decltype string) bool {
	if decltype == "" {
		return false
	}
	upper := strings.ToUpper(decltype)
	return upper == "TIMESTAMP" || upper == "DATETIME" || upper == "DATE"
}

// SQLiteTimestampFormats are the timestamp formats supported by go-sqlite3.
// https://github.com/mattn/go-sqlite3/blob/master/sqlite3.go
var SQLiteTimestampFormats = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseTimeString attempts to parse a string as a time.Time value. This
// matches the behavior of github.com/mattn/go-sqlite3.
func parseTimeString(s string) (time.Time, error) {
	s = strings.TrimSuffix(s, "Z")
	for _, format := range SQLiteTimestampFormats {
		if t, err := time.ParseInLocation(format, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as time", s)
}
