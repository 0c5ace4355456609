package sqlite

// Execution states of a prepared statement. Disposal is tracked separately
// through the nil-ness of the native handle.
type stmtState int

const (
	stmtReady stmtState = iota // freshly prepared or reset
	stmtRow                    // a row is available for reading
	stmtDone                   // execution exhausted
)

// Stmt wraps one compiled query. A Stmt belongs to the connection that
// prepared it and is force-closed when that connection closes. Like the
// connection itself, a Stmt must not be used from multiple goroutines
// without external serialization.
type Stmt struct {
	conn  *Conn
	stmt  sqlite3_stmt
	state stmtState

	sql     string
	nParams int
	nCols   int
	names   []string // column names, fixed at prepare time
}

// ColumnInfo describes the provenance of one result column, fixed at prepare
// time. Database/Table/Origin are empty when the loaded library was built
// without column metadata.
type ColumnInfo struct {
	Index    int
	Name     string
	DeclType string
	Database string
	Table    string
	Origin   string
}

// BindParameter describes one parameter slot of a prepared statement. Name
// is empty for purely positional ('?') parameters and includes the prefix
// rune (':', '@' or '$') otherwise. Index is 1-based, as in the engine.
type BindParameter struct {
	Index int
	Name  string
}

// SQL returns the text this statement was compiled from.
func (s *Stmt) SQL() string { return s.sql }

func (s *Stmt) checkOpen() error {
	if s.stmt == nil {
		return ErrStmtClosed
	}
	return nil
}

// Step advances execution. It returns true when a row is available for
// reading and false when execution has completed. Once execution has
// completed, further Steps keep returning false without re-executing; call
// Reset to run the statement again.
func (s *Stmt) Step() (bool, error) {
	if err := s.checkOpen(); err != nil {
		return false, err
	}
	if s.state == stmtDone {
		// The engine would silently restart execution here; that is almost
		// never what the caller meant.
		return false, nil
	}
	switch rc := sqlite3_step(s.stmt); rc {
	case ROW:
		s.state = stmtRow
		return true, nil
	case DONE:
		s.state = stmtDone
		return false, nil
	default:
		s.state = stmtDone
		return false, errConn(rc, s.conn.db)
	}
}

// StepToCompletion drives the statement until no more rows are produced.
func (s *Stmt) StepToCompletion() error {
	for {
		hasRow, err := s.Step()
		if err != nil {
			return err
		}
		if !hasRow {
			return nil
		}
	}
}

// Reset returns the statement to the ready state, preserving current
// parameter bindings.
func (s *Stmt) Reset() error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	rc := sqlite3_reset(s.stmt)
	s.state = stmtReady
	if rc != OK {
		return errConn(rc, s.conn.db)
	}
	return nil
}

// ClearBindings reverts every parameter slot to NULL. It is not legal while
// a row is being read.
func (s *Stmt) ClearBindings() error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if s.state == stmtRow {
		return misuse("ClearBindings while a row is active")
	}
	if rc := sqlite3_clear_bindings(s.stmt); rc != OK {
		return errConn(rc, s.conn.db)
	}
	return nil
}

// Close finalizes the statement and removes it from its connection's open
// set. It is idempotent and legal in any state.
func (s *Stmt) Close() error {
	if s.stmt == nil {
		return nil
	}
	rc := sqlite3_finalize(s.stmt)
	s.stmt = nil
	s.state = stmtDone
	s.conn.forgetStmt(s)
	if rc != OK {
		return errConn(rc, s.conn.db)
	}
	return nil
}

// release drops the native handle without touching the connection's open
// set. Called from the connection's cascade close, which owns the iteration.
func (s *Stmt) release() error {
	if s.stmt == nil {
		return nil
	}
	rc := sqlite3_finalize(s.stmt)
	s.stmt = nil
	s.state = stmtDone
	return errCode(rc)
}

// ReadOnly reports whether the statement makes no direct changes to the
// database.
func (s *Stmt) ReadOnly() bool {
	if s.stmt == nil {
		return false
	}
	return sqlite3_stmt_readonly(s.stmt)
}

// Busy reports whether the statement has been stepped and not yet reset or
// run to completion.
func (s *Stmt) Busy() bool {
	return s.stmt != nil && sqlite3_stmt_busy(s.stmt)
}

// --- bind parameters ---

// BindParameterCount returns the number of parameter slots, fixed at prepare
// time.
func (s *Stmt) BindParameterCount() int { return s.nParams }

// BindParameterIndex resolves a named parameter (":name", "@name" or
// "$name", prefix included) to its 1-based index. Matching is exact and
// case-sensitive. 0 means no such parameter.
func (s *Stmt) BindParameterIndex(name string) int {
	if s.stmt == nil {
		return 0
	}
	return sqlite3_bind_parameter_index(s.stmt, name)
}

// Parameters returns descriptors for every parameter slot.
func (s *Stmt) Parameters() ([]BindParameter, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	params := make([]BindParameter, s.nParams)
	for i := range params {
		params[i] = BindParameter{
			Index: i + 1,
			Name:  sqlite3_bind_parameter_name(s.stmt, i + 1),
		}
	}
	return params, nil
}

// checkBind validates a 1-based parameter index before any native call. An
// out-of-range index is a caller bug, reported as a RANGE error.
func (s *Stmt) checkBind(index int) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if index < 1 || index > s.nParams {
		return rangeErr("bind index %d out of range [1, %d]", index, s.nParams)
	}
	if s.state == stmtRow {
		return misuse("bind while a row is active")
	}
	return nil
}

func (s *Stmt) BindInt64(index int, v int64) error {
	if err := s.checkBind(index); err != nil {
		return err
	}
	if rc := sqlite3_bind_int64(s.stmt, index, v); rc != OK {
		return errConn(rc, s.conn.db)
	}
	return nil
}

func (s *Stmt) BindFloat64(index int, v float64) error {
	if err := s.checkBind(index); err != nil {
		return err
	}
	if rc := sqlite3_bind_double(s.stmt, index, v); rc != OK {
		return errConn(rc, s.conn.db)
	}
	return nil
}

func (s *Stmt) BindText(index int, v string) error {
	if err := s.checkBind(index); err != nil {
		return err
	}
	if rc := sqlite3_bind_text(s.stmt, index, v); rc != OK {
		return errConn(rc, s.conn.db)
	}
	return nil
}

func (s *Stmt) BindBlob(index int, v []byte) error {
	if err := s.checkBind(index); err != nil {
		return err
	}
	if v == nil {
		if rc := sqlite3_bind_null(s.stmt, index); rc != OK {
			return errConn(rc, s.conn.db)
		}
		return nil
	}
	if rc := sqlite3_bind_blob(s.stmt, index, v); rc != OK {
		return errConn(rc, s.conn.db)
	}
	return nil
}

func (s *Stmt) BindNull(index int) error {
	if err := s.checkBind(index); err != nil {
		return err
	}
	if rc := sqlite3_bind_null(s.stmt, index); rc != OK {
		return errConn(rc, s.conn.db)
	}
	return nil
}

func (s *Stmt) BindZeroBlob(index int, n int) error {
	if err := s.checkBind(index); err != nil {
		return err
	}
	if rc := sqlite3_bind_zeroblob(s.stmt, index, n); rc != OK {
		return errConn(rc, s.conn.db)
	}
	return nil
}

// BindValue binds v at the given 1-based index according to its storage
// class.
func (s *Stmt) BindValue(index int, v Value) error {
	switch v.Class() {
	case Integer:
		return s.BindInt64(index, v.Int64())
	case Float:
		return s.BindFloat64(index, v.Float64())
	case Text:
		return s.BindText(index, v.text)
	case Blob:
		if v.IsZeroBlob() {
			return s.BindZeroBlob(index, v.zeroLen)
		}
		return s.BindBlob(index, v.blob)
	default:
		return s.BindNull(index)
	}
}

// Bind assigns args to parameter slots 1..len(args) in order, converting
// each through ValueOf.
func (s *Stmt) Bind(args ...any) error {
	for i, arg := range args {
		v, err := ValueOf(arg)
		if err != nil {
			return err
		}
		if err := s.BindValue(i+1, v); err != nil {
			return err
		}
	}
	return nil
}

// BindName binds v to the parameter with the given name (prefix included).
func (s *Stmt) BindName(name string, v Value) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	index := sqlite3_bind_parameter_index(s.stmt, name)
	if index == 0 {
		return rangeErr("unknown bind parameter %q", name)
	}
	return s.BindValue(index, v)
}

// --- result columns ---

// ColumnCount returns the number of result columns, fixed at prepare time.
func (s *Stmt) ColumnCount() int { return s.nCols }

// ColumnName returns the name of result column index (0-based).
func (s *Stmt) ColumnName(index int) (string, error) {
	if err := s.checkOpen(); err != nil {
		return "", err
	}
	if index < 0 || index >= s.nCols {
		return "", rangeErr("column index %d out of range [0, %d)", index, s.nCols)
	}
	return s.names[index], nil
}

// ColumnInfo returns the prepare-time provenance of result column index.
func (s *Stmt) ColumnInfo(index int) (ColumnInfo, error) {
	if err := s.checkOpen(); err != nil {
		return ColumnInfo{}, err
	}
	if index < 0 || index >= s.nCols {
		return ColumnInfo{}, rangeErr("column index %d out of range [0, %d)", index, s.nCols)
	}
	return ColumnInfo{
		Index:    index,
		Name:     s.names[index],
		DeclType: sqlite3_column_decltype(s.stmt, index),
		Database: sqlite3_column_database_name(s.stmt, index),
		Table:    sqlite3_column_table_name(s.stmt, index),
		Origin:   sqlite3_column_origin_name(s.stmt, index),
	}, nil
}

// checkColumn validates that a row is available and index is in range before
// any native call.
func (s *Stmt) checkColumn(index int) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if s.state != stmtRow {
		return misuse("no row available; call Step first")
	}
	if index < 0 || index >= s.nCols {
		return rangeErr("column index %d out of range [0, %d)", index, s.nCols)
	}
	return nil
}

// ColumnType returns the storage class of column index in the current row.
func (s *Stmt) ColumnType(index int) (StorageClass, error) {
	if err := s.checkColumn(index); err != nil {
		return Null, err
	}
	return sqlite3_column_type(s.stmt, index), nil
}

func (s *Stmt) ColumnInt64(index int) (int64, error) {
	if err := s.checkColumn(index); err != nil {
		return 0, err
	}
	return sqlite3_column_int64(s.stmt, index), nil
}

func (s *Stmt) ColumnFloat64(index int) (float64, error) {
	if err := s.checkColumn(index); err != nil {
		return 0, err
	}
	return sqlite3_column_double(s.stmt, index), nil
}

func (s *Stmt) ColumnText(index int) (string, error) {
	if err := s.checkColumn(index); err != nil {
		return "", err
	}
	return sqlite3_column_text(s.stmt, index), nil
}

func (s *Stmt) ColumnBlob(index int) ([]byte, error) {
	if err := s.checkColumn(index); err != nil {
		return nil, err
	}
	return sqlite3_column_blob(s.stmt, index), nil
}

// ColumnValue reads column index of the current row as a detached Value.
func (s *Stmt) ColumnValue(index int) (Value, error) {
	if err := s.checkColumn(index); err != nil {
		return Value{}, err
	}
	switch sqlite3_column_type(s.stmt, index) {
	case Integer:
		return IntegerValue(sqlite3_column_int64(s.stmt, index)), nil
	case Float:
		return FloatValue(sqlite3_column_double(s.stmt, index)), nil
	case Text:
		return TextValue(sqlite3_column_text(s.stmt, index)), nil
	case Blob:
		return BlobValue(sqlite3_column_blob(s.stmt, index)), nil
	default:
		return NullValue(), nil
	}
}

// Scan reads successive columns of the current row into successive
// destination pointers. Nil destinations are skipped.
func (s *Stmt) Scan(dest ...any) error {
	for i, d := range dest {
		if d == nil {
			continue
		}
		if err := s.scan(i, d); err != nil {
			return err
		}
	}
	return nil
}

func (s *Stmt) scan(index int, dest any) error {
	if err := s.checkColumn(index); err != nil {
		return err
	}
	switch d := dest.(type) {
	case *int:
		*d = int(sqlite3_column_int64(s.stmt, index))
	case *int64:
		*d = sqlite3_column_int64(s.stmt, index)
	case *float64:
		*d = sqlite3_column_double(s.stmt, index)
	case *bool:
		*d = sqlite3_column_int64(s.stmt, index) != 0
	case *string:
		*d = sqlite3_column_text(s.stmt, index)
	case *[]byte:
		*d = sqlite3_column_blob(s.stmt, index)
	case *Value:
		v, err := s.ColumnValue(index)
		if err != nil {
			return err
		}
		*d = v
	case *any:
		v, err := s.ColumnValue(index)
		if err != nil {
			return err
		}
		switch v.Class() {
		case Integer:
			*d = v.Int64()
		case Float:
			*d = v.Float64()
		case Text:
			*d = v.text
		case Blob:
			*d = v.blob
		default:
			*d = nil
		}
	default:
		return misuse("unscannable type for column %d (%T)", index, dest)
	}
	return nil
}

// Exec binds args, steps the statement to completion and resets it. Reset
// runs even on error. Bindings are not cleared.
func (s *Stmt) Exec(args ...any) error {
	if err := s.Bind(args...); err != nil {
		_ = s.Reset()
		return err
	}
	if err := s.StepToCompletion(); err != nil {
		_ = s.Reset()
		return err
	}
	return s.Reset()
}
