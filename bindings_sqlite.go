package sqlite

import (
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"
)

// define all necessary constants first

// StorageClass identifies which of the five SQLite dynamic type categories a
// value currently holds.
// https://www.sqlite.org/datatype3.html
type StorageClass int32

const (
	Integer StorageClass = 1
	Float   StorageClass = 2
	Text    StorageClass = 3
	Blob    StorageClass = 4
	Null    StorageClass = 5
)

func (c StorageClass) String() string {
	switch c {
	case Integer:
		return "INTEGER"
	case Float:
		return "FLOAT"
	case Text:
		return "TEXT"
	case Blob:
		return "BLOB"
	case Null:
		return "NULL"
	}
	return "UNKNOWN"
}

// Open flags for sqlite3_open_v2.
// https://www.sqlite.org/c3ref/c_open_autoproxy.html
const (
	OpenReadOnly     = 0x00000001
	OpenReadWrite    = 0x00000002
	OpenCreate       = 0x00000004
	OpenURI          = 0x00000040
	OpenMemory       = 0x00000080
	OpenNoMutex      = 0x00008000
	OpenFullMutex    = 0x00010000
	OpenSharedCache  = 0x00020000
	OpenPrivateCache = 0x00040000
	OpenNoFollow     = 0x01000000
)

// Trace event mask bits for sqlite3_trace_v2.
const (
	traceStmt    = 0x01
	traceProfile = 0x02
)

// Authorizer verdicts.
const (
	AuthOK     = 0
	AuthDeny   = 1
	AuthIgnore = 2
)

// sqliteTransient tells the engine to make its own copy of bound text/blob
// memory before the call returns ((void*)-1 in the C API).
const sqliteTransient = ^uintptr(0)

// define opaque pointers as-is and accept them as exact arguments
type sqlite3_db_t struct{}
type sqlite3_stmt_t struct{}
type sqlite3_blob_t struct{}
type sqlite3_backup_t struct{}
type sqlite3_value_t struct{}
type sqlite3_context_t struct{}

type sqlite3 *sqlite3_db_t
type sqlite3_stmt *sqlite3_stmt_t
type sqlite3_blob *sqlite3_blob_t
type sqlite3_backup *sqlite3_backup_t
type sqlite3_value *sqlite3_value_t
type sqlite3_context *sqlite3_context_t

// then, define C extern methods
var (
	// always use raw low level types here - never mix them with exported public types
	c_sqlite3_initialize func() int32

	c_sqlite3_shutdown func() int32

	// variadic in C; only ever invoked with the error-log opcode and its
	// two pointer-sized arguments. The fixed signature does not match the
	// Apple arm64 variadic ABI, so ConfigLogger refuses there.
	c_sqlite3_config_log func(op int32, cb uintptr, arg uintptr) int32

	c_sqlite3_libversion func() unsafe.Pointer // const char*

	c_sqlite3_libversion_number func() int32

	c_sqlite3_open_v2 func(
		path unsafe.Pointer, // const char*
		db unsafe.Pointer, // sqlite3**
		flags int32,
		vfs uintptr, // const char* | NULL
	) int32

	c_sqlite3_close func(db unsafe.Pointer) int32

	c_sqlite3_close_v2 func(db unsafe.Pointer) int32

	c_sqlite3_extended_result_codes func(db unsafe.Pointer, onoff int32) int32

	c_sqlite3_errcode func(db unsafe.Pointer) int32

	c_sqlite3_extended_errcode func(db unsafe.Pointer) int32

	c_sqlite3_errmsg func(db unsafe.Pointer) unsafe.Pointer // const char*

	c_sqlite3_errstr func(code int32) unsafe.Pointer // const char*

	c_sqlite3_prepare_v2 func(
		db unsafe.Pointer,
		sql unsafe.Pointer, // const char*
		nByte int32,
		stmt unsafe.Pointer, // sqlite3_stmt**
		tail unsafe.Pointer, // const char**
	) int32

	c_sqlite3_step func(stmt unsafe.Pointer) int32

	c_sqlite3_reset func(stmt unsafe.Pointer) int32

	c_sqlite3_finalize func(stmt unsafe.Pointer) int32

	c_sqlite3_clear_bindings func(stmt unsafe.Pointer) int32

	c_sqlite3_stmt_busy func(stmt unsafe.Pointer) int32

	c_sqlite3_stmt_readonly func(stmt unsafe.Pointer) int32

	c_sqlite3_sql func(stmt unsafe.Pointer) unsafe.Pointer // const char*

	c_sqlite3_bind_parameter_count func(stmt unsafe.Pointer) int32

	c_sqlite3_bind_parameter_name func(stmt unsafe.Pointer, index int32) unsafe.Pointer // const char*

	c_sqlite3_bind_parameter_index func(stmt unsafe.Pointer, name string) int32

	c_sqlite3_bind_int64 func(stmt unsafe.Pointer, index int32, value int64) int32

	c_sqlite3_bind_double func(stmt unsafe.Pointer, index int32, value float64) int32

	c_sqlite3_bind_text func(
		stmt unsafe.Pointer,
		index int32,
		ptr unsafe.Pointer, // const char*
		n int32,
		destructor uintptr, // SQLITE_TRANSIENT
	) int32

	c_sqlite3_bind_blob func(
		stmt unsafe.Pointer,
		index int32,
		ptr unsafe.Pointer, // const void*
		n int32,
		destructor uintptr,
	) int32

	c_sqlite3_bind_null func(stmt unsafe.Pointer, index int32) int32

	c_sqlite3_bind_zeroblob func(stmt unsafe.Pointer, index int32, n int32) int32

	c_sqlite3_column_count func(stmt unsafe.Pointer) int32

	c_sqlite3_column_type func(stmt unsafe.Pointer, index int32) int32

	c_sqlite3_column_int64 func(stmt unsafe.Pointer, index int32) int64

	c_sqlite3_column_double func(stmt unsafe.Pointer, index int32) float64

	c_sqlite3_column_text func(stmt unsafe.Pointer, index int32) unsafe.Pointer // const unsigned char*

	c_sqlite3_column_blob func(stmt unsafe.Pointer, index int32) unsafe.Pointer // const void*

	c_sqlite3_column_bytes func(stmt unsafe.Pointer, index int32) int32

	c_sqlite3_column_name func(stmt unsafe.Pointer, index int32) unsafe.Pointer // const char*

	c_sqlite3_column_decltype func(stmt unsafe.Pointer, index int32) unsafe.Pointer // const char*

	// Only present when the library was built with SQLITE_ENABLE_COLUMN_METADATA.
	c_sqlite3_column_database_name func(stmt unsafe.Pointer, index int32) unsafe.Pointer
	c_sqlite3_column_table_name    func(stmt unsafe.Pointer, index int32) unsafe.Pointer
	c_sqlite3_column_origin_name   func(stmt unsafe.Pointer, index int32) unsafe.Pointer

	c_sqlite3_changes func(db unsafe.Pointer) int32

	c_sqlite3_changes64 func(db unsafe.Pointer) int64 // 3.37+

	c_sqlite3_total_changes func(db unsafe.Pointer) int32

	c_sqlite3_last_insert_rowid func(db unsafe.Pointer) int64

	c_sqlite3_get_autocommit func(db unsafe.Pointer) int32

	c_sqlite3_busy_timeout func(db unsafe.Pointer, ms int32) int32

	c_sqlite3_interrupt func(db unsafe.Pointer)

	c_sqlite3_db_filename func(db unsafe.Pointer, name string) unsafe.Pointer // const char*

	c_sqlite3_blob_open func(
		db unsafe.Pointer,
		dbName string, // const char*
		table string, // const char*
		column string, // const char*
		rowid int64,
		flags int32, // 0 read-only, 1 read-write
		blob unsafe.Pointer, // sqlite3_blob**
	) int32

	c_sqlite3_blob_bytes func(blob unsafe.Pointer) int32

	c_sqlite3_blob_read func(blob unsafe.Pointer, p unsafe.Pointer, n int32, off int32) int32

	c_sqlite3_blob_write func(blob unsafe.Pointer, p unsafe.Pointer, n int32, off int32) int32

	c_sqlite3_blob_close func(blob unsafe.Pointer) int32

	c_sqlite3_backup_init func(
		dst unsafe.Pointer,
		dstName string, // const char*
		src unsafe.Pointer,
		srcName string, // const char*
	) unsafe.Pointer // sqlite3_backup*

	c_sqlite3_backup_step func(b unsafe.Pointer, nPages int32) int32

	c_sqlite3_backup_remaining func(b unsafe.Pointer) int32

	c_sqlite3_backup_pagecount func(b unsafe.Pointer) int32

	c_sqlite3_backup_finish func(b unsafe.Pointer) int32

	c_sqlite3_commit_hook func(db unsafe.Pointer, cb uintptr, arg uintptr) uintptr

	c_sqlite3_rollback_hook func(db unsafe.Pointer, cb uintptr, arg uintptr) uintptr

	c_sqlite3_update_hook func(db unsafe.Pointer, cb uintptr, arg uintptr) uintptr

	c_sqlite3_trace_v2 func(db unsafe.Pointer, mask uint32, cb uintptr, ctx uintptr) int32

	c_sqlite3_progress_handler func(db unsafe.Pointer, n int32, cb uintptr, arg uintptr)

	c_sqlite3_set_authorizer func(db unsafe.Pointer, cb uintptr, arg uintptr) int32

	c_sqlite3_create_function_v2 func(
		db unsafe.Pointer,
		name string, // const char*
		nArg int32,
		eTextRep int32,
		app uintptr, // void*
		xFunc uintptr,
		xStep uintptr,
		xFinal uintptr,
		xDestroy uintptr,
	) int32

	c_sqlite3_create_collation_v2 func(
		db unsafe.Pointer,
		name string, // const char*
		eTextRep int32,
		arg uintptr, // void*
		xCompare uintptr,
		xDestroy uintptr,
	) int32

	c_sqlite3_value_type func(v unsafe.Pointer) int32

	c_sqlite3_value_int64 func(v unsafe.Pointer) int64

	c_sqlite3_value_double func(v unsafe.Pointer) float64

	c_sqlite3_value_text func(v unsafe.Pointer) unsafe.Pointer // const unsigned char*

	c_sqlite3_value_blob func(v unsafe.Pointer) unsafe.Pointer // const void*

	c_sqlite3_value_bytes func(v unsafe.Pointer) int32

	c_sqlite3_user_data func(ctx unsafe.Pointer) uintptr

	c_sqlite3_aggregate_context func(ctx unsafe.Pointer, nBytes int32) unsafe.Pointer

	c_sqlite3_result_int64 func(ctx unsafe.Pointer, v int64)

	c_sqlite3_result_double func(ctx unsafe.Pointer, v float64)

	c_sqlite3_result_text func(ctx unsafe.Pointer, p unsafe.Pointer, n int32, destructor uintptr)

	c_sqlite3_result_blob func(ctx unsafe.Pointer, p unsafe.Pointer, n int32, destructor uintptr)

	c_sqlite3_result_null func(ctx unsafe.Pointer)

	c_sqlite3_result_zeroblob func(ctx unsafe.Pointer, n int32)

	c_sqlite3_result_error func(ctx unsafe.Pointer, p unsafe.Pointer, n int32)

	c_sqlite3_result_error_code func(ctx unsafe.Pointer, code int32)
)

// hasColumnMetadata is true when the loaded library exposes the column
// provenance functions (built with SQLITE_ENABLE_COLUMN_METADATA).
var hasColumnMetadata bool

// hasChanges64 is true when the loaded library is 3.37 or newer.
var hasChanges64 bool

// implement a function to register extern methods from loaded lib
// DO NOT load lib - as it will be done externally
func register_sqlite3(handle uintptr) error {
	purego.RegisterLibFunc(&c_sqlite3_initialize, handle, "sqlite3_initialize")
	purego.RegisterLibFunc(&c_sqlite3_shutdown, handle, "sqlite3_shutdown")
	purego.RegisterLibFunc(&c_sqlite3_config_log, handle, "sqlite3_config")
	purego.RegisterLibFunc(&c_sqlite3_libversion, handle, "sqlite3_libversion")
	purego.RegisterLibFunc(&c_sqlite3_libversion_number, handle, "sqlite3_libversion_number")
	purego.RegisterLibFunc(&c_sqlite3_open_v2, handle, "sqlite3_open_v2")
	purego.RegisterLibFunc(&c_sqlite3_close, handle, "sqlite3_close")
	purego.RegisterLibFunc(&c_sqlite3_close_v2, handle, "sqlite3_close_v2")
	purego.RegisterLibFunc(&c_sqlite3_extended_result_codes, handle, "sqlite3_extended_result_codes")
	purego.RegisterLibFunc(&c_sqlite3_errcode, handle, "sqlite3_errcode")
	purego.RegisterLibFunc(&c_sqlite3_extended_errcode, handle, "sqlite3_extended_errcode")
	purego.RegisterLibFunc(&c_sqlite3_errmsg, handle, "sqlite3_errmsg")
	purego.RegisterLibFunc(&c_sqlite3_errstr, handle, "sqlite3_errstr")
	purego.RegisterLibFunc(&c_sqlite3_prepare_v2, handle, "sqlite3_prepare_v2")
	purego.RegisterLibFunc(&c_sqlite3_step, handle, "sqlite3_step")
	purego.RegisterLibFunc(&c_sqlite3_reset, handle, "sqlite3_reset")
	purego.RegisterLibFunc(&c_sqlite3_finalize, handle, "sqlite3_finalize")
	purego.RegisterLibFunc(&c_sqlite3_clear_bindings, handle, "sqlite3_clear_bindings")
	purego.RegisterLibFunc(&c_sqlite3_stmt_busy, handle, "sqlite3_stmt_busy")
	purego.RegisterLibFunc(&c_sqlite3_stmt_readonly, handle, "sqlite3_stmt_readonly")
	purego.RegisterLibFunc(&c_sqlite3_sql, handle, "sqlite3_sql")
	purego.RegisterLibFunc(&c_sqlite3_bind_parameter_count, handle, "sqlite3_bind_parameter_count")
	purego.RegisterLibFunc(&c_sqlite3_bind_parameter_name, handle, "sqlite3_bind_parameter_name")
	purego.RegisterLibFunc(&c_sqlite3_bind_parameter_index, handle, "sqlite3_bind_parameter_index")
	purego.RegisterLibFunc(&c_sqlite3_bind_int64, handle, "sqlite3_bind_int64")
	purego.RegisterLibFunc(&c_sqlite3_bind_double, handle, "sqlite3_bind_double")
	purego.RegisterLibFunc(&c_sqlite3_bind_text, handle, "sqlite3_bind_text")
	purego.RegisterLibFunc(&c_sqlite3_bind_blob, handle, "sqlite3_bind_blob")
	purego.RegisterLibFunc(&c_sqlite3_bind_null, handle, "sqlite3_bind_null")
	purego.RegisterLibFunc(&c_sqlite3_bind_zeroblob, handle, "sqlite3_bind_zeroblob")
	purego.RegisterLibFunc(&c_sqlite3_column_count, handle, "sqlite3_column_count")
	purego.RegisterLibFunc(&c_sqlite3_column_type, handle, "sqlite3_column_type")
	purego.RegisterLibFunc(&c_sqlite3_column_int64, handle, "sqlite3_column_int64")
	purego.RegisterLibFunc(&c_sqlite3_column_double, handle, "sqlite3_column_double")
	purego.RegisterLibFunc(&c_sqlite3_column_text, handle, "sqlite3_column_text")
	purego.RegisterLibFunc(&c_sqlite3_column_blob, handle, "sqlite3_column_blob")
	purego.RegisterLibFunc(&c_sqlite3_column_bytes, handle, "sqlite3_column_bytes")
	purego.RegisterLibFunc(&c_sqlite3_column_name, handle, "sqlite3_column_name")
	purego.RegisterLibFunc(&c_sqlite3_column_decltype, handle, "sqlite3_column_decltype")
	purego.RegisterLibFunc(&c_sqlite3_changes, handle, "sqlite3_changes")
	purego.RegisterLibFunc(&c_sqlite3_total_changes, handle, "sqlite3_total_changes")
	purego.RegisterLibFunc(&c_sqlite3_last_insert_rowid, handle, "sqlite3_last_insert_rowid")
	purego.RegisterLibFunc(&c_sqlite3_get_autocommit, handle, "sqlite3_get_autocommit")
	purego.RegisterLibFunc(&c_sqlite3_busy_timeout, handle, "sqlite3_busy_timeout")
	purego.RegisterLibFunc(&c_sqlite3_interrupt, handle, "sqlite3_interrupt")
	purego.RegisterLibFunc(&c_sqlite3_db_filename, handle, "sqlite3_db_filename")
	purego.RegisterLibFunc(&c_sqlite3_blob_open, handle, "sqlite3_blob_open")
	purego.RegisterLibFunc(&c_sqlite3_blob_bytes, handle, "sqlite3_blob_bytes")
	purego.RegisterLibFunc(&c_sqlite3_blob_read, handle, "sqlite3_blob_read")
	purego.RegisterLibFunc(&c_sqlite3_blob_write, handle, "sqlite3_blob_write")
	purego.RegisterLibFunc(&c_sqlite3_blob_close, handle, "sqlite3_blob_close")
	purego.RegisterLibFunc(&c_sqlite3_backup_init, handle, "sqlite3_backup_init")
	purego.RegisterLibFunc(&c_sqlite3_backup_step, handle, "sqlite3_backup_step")
	purego.RegisterLibFunc(&c_sqlite3_backup_remaining, handle, "sqlite3_backup_remaining")
	purego.RegisterLibFunc(&c_sqlite3_backup_pagecount, handle, "sqlite3_backup_pagecount")
	purego.RegisterLibFunc(&c_sqlite3_backup_finish, handle, "sqlite3_backup_finish")
	purego.RegisterLibFunc(&c_sqlite3_commit_hook, handle, "sqlite3_commit_hook")
	purego.RegisterLibFunc(&c_sqlite3_rollback_hook, handle, "sqlite3_rollback_hook")
	purego.RegisterLibFunc(&c_sqlite3_update_hook, handle, "sqlite3_update_hook")
	purego.RegisterLibFunc(&c_sqlite3_trace_v2, handle, "sqlite3_trace_v2")
	purego.RegisterLibFunc(&c_sqlite3_progress_handler, handle, "sqlite3_progress_handler")
	purego.RegisterLibFunc(&c_sqlite3_set_authorizer, handle, "sqlite3_set_authorizer")
	purego.RegisterLibFunc(&c_sqlite3_create_function_v2, handle, "sqlite3_create_function_v2")
	purego.RegisterLibFunc(&c_sqlite3_create_collation_v2, handle, "sqlite3_create_collation_v2")
	purego.RegisterLibFunc(&c_sqlite3_value_type, handle, "sqlite3_value_type")
	purego.RegisterLibFunc(&c_sqlite3_value_int64, handle, "sqlite3_value_int64")
	purego.RegisterLibFunc(&c_sqlite3_value_double, handle, "sqlite3_value_double")
	purego.RegisterLibFunc(&c_sqlite3_value_text, handle, "sqlite3_value_text")
	purego.RegisterLibFunc(&c_sqlite3_value_blob, handle, "sqlite3_value_blob")
	purego.RegisterLibFunc(&c_sqlite3_value_bytes, handle, "sqlite3_value_bytes")
	purego.RegisterLibFunc(&c_sqlite3_user_data, handle, "sqlite3_user_data")
	purego.RegisterLibFunc(&c_sqlite3_aggregate_context, handle, "sqlite3_aggregate_context")
	purego.RegisterLibFunc(&c_sqlite3_result_int64, handle, "sqlite3_result_int64")
	purego.RegisterLibFunc(&c_sqlite3_result_double, handle, "sqlite3_result_double")
	purego.RegisterLibFunc(&c_sqlite3_result_text, handle, "sqlite3_result_text")
	purego.RegisterLibFunc(&c_sqlite3_result_blob, handle, "sqlite3_result_blob")
	purego.RegisterLibFunc(&c_sqlite3_result_null, handle, "sqlite3_result_null")
	purego.RegisterLibFunc(&c_sqlite3_result_zeroblob, handle, "sqlite3_result_zeroblob")
	purego.RegisterLibFunc(&c_sqlite3_result_error, handle, "sqlite3_result_error")
	purego.RegisterLibFunc(&c_sqlite3_result_error_code, handle, "sqlite3_result_error_code")

	// Optional symbols, probed so that a plainly built system library works.
	hasColumnMetadata = symbolExists(handle, "sqlite3_column_origin_name")
	if hasColumnMetadata {
		purego.RegisterLibFunc(&c_sqlite3_column_database_name, handle, "sqlite3_column_database_name")
		purego.RegisterLibFunc(&c_sqlite3_column_table_name, handle, "sqlite3_column_table_name")
		purego.RegisterLibFunc(&c_sqlite3_column_origin_name, handle, "sqlite3_column_origin_name")
	}
	hasChanges64 = symbolExists(handle, "sqlite3_changes64")
	if hasChanges64 {
		purego.RegisterLibFunc(&c_sqlite3_changes64, handle, "sqlite3_changes64")
	}
	return nil
}

// Helpers

func copyCString(p unsafe.Pointer) string {
	if p == nil {
		return ""
	}
	// Determine length
	base := uintptr(p)
	n := 0
	for {
		b := *(*byte)(unsafe.Pointer(base + uintptr(n)))
		if b == 0 {
			break
		}
		n++
	}
	if n == 0 {
		return ""
	}
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		buf[i] = *(*byte)(unsafe.Pointer(base + uintptr(i)))
	}
	return string(buf)
}

func copyCBytes(p unsafe.Pointer, n int32) []byte {
	if p == nil || n <= 0 {
		return nil
	}
	out := make([]byte, n)
	base := uintptr(p)
	for i := int32(0); i < n; i++ {
		out[i] = *(*byte)(unsafe.Pointer(base + uintptr(i)))
	}
	return out
}

func cStringPtr(s string) (ptr unsafe.Pointer, keepAlive func()) {
	// Allocate Go memory with null terminator; valid during the call
	b := make([]byte, len(s)+1)
	copy(b, s)
	return unsafe.Pointer(&b[0]), func() { runtime.KeepAlive(b) }
}

// Go wrappers over imported C bindings

func sqlite3_libversion() string {
	return copyCString(c_sqlite3_libversion())
}

func sqlite3_libversion_number() int {
	return int(c_sqlite3_libversion_number())
}

// Open a database connection, enabling extended result codes up front.
func sqlite3_open_v2(path string, flags int, vfs string) (sqlite3, Code) {
	pathPtr, keepPath := cStringPtr(path)
	var vfsOpt uintptr
	keepVfs := func() {}
	if vfs != "" {
		p, k := cStringPtr(vfs)
		vfsOpt = uintptr(p)
		keepVfs = k
	}
	var db sqlite3
	rc := c_sqlite3_open_v2(pathPtr, unsafe.Pointer(&db), int32(flags), vfsOpt)
	keepPath()
	keepVfs()
	if db != nil {
		c_sqlite3_extended_result_codes(unsafe.Pointer(db), 1)
	}
	return db, Code(rc)
}

func sqlite3_close(db sqlite3) Code {
	return Code(c_sqlite3_close(unsafe.Pointer(db)))
}

func sqlite3_close_v2(db sqlite3) Code {
	return Code(c_sqlite3_close_v2(unsafe.Pointer(db)))
}

func sqlite3_errcode(db sqlite3) Code {
	return Code(c_sqlite3_errcode(unsafe.Pointer(db)))
}

func sqlite3_extended_errcode(db sqlite3) int32 {
	return c_sqlite3_extended_errcode(unsafe.Pointer(db))
}

func sqlite3_errmsg(db sqlite3) string {
	return copyCString(c_sqlite3_errmsg(unsafe.Pointer(db)))
}

func sqlite3_errstr(code Code) string {
	return copyCString(c_sqlite3_errstr(int32(code)))
}

// Compile the first statement in sql, returning the byte offset of the
// unparsed remainder. A nil statement with code OK means sql held nothing
// but whitespace or comments.
func sqlite3_prepare_v2(db sqlite3, sql string) (stmt sqlite3_stmt, tailOffset int, rc Code) {
	buf := make([]byte, len(sql)+1)
	copy(buf, sql)
	base := unsafe.Pointer(&buf[0])
	var tail uintptr
	code := c_sqlite3_prepare_v2(
		unsafe.Pointer(db),
		base,
		int32(len(buf)),
		unsafe.Pointer(&stmt),
		unsafe.Pointer(&tail),
	)
	runtime.KeepAlive(buf)
	if tail != 0 {
		tailOffset = int(tail - uintptr(base))
		if tailOffset < 0 || tailOffset > len(sql) {
			tailOffset = len(sql)
		}
	} else {
		tailOffset = len(sql)
	}
	return stmt, tailOffset, Code(code)
}

func sqlite3_step(stmt sqlite3_stmt) Code {
	return Code(c_sqlite3_step(unsafe.Pointer(stmt)))
}

func sqlite3_reset(stmt sqlite3_stmt) Code {
	return Code(c_sqlite3_reset(unsafe.Pointer(stmt)))
}

func sqlite3_finalize(stmt sqlite3_stmt) Code {
	return Code(c_sqlite3_finalize(unsafe.Pointer(stmt)))
}

func sqlite3_clear_bindings(stmt sqlite3_stmt) Code {
	return Code(c_sqlite3_clear_bindings(unsafe.Pointer(stmt)))
}

func sqlite3_stmt_busy(stmt sqlite3_stmt) bool {
	return c_sqlite3_stmt_busy(unsafe.Pointer(stmt)) != 0
}

func sqlite3_stmt_readonly(stmt sqlite3_stmt) bool {
	return c_sqlite3_stmt_readonly(unsafe.Pointer(stmt)) != 0
}

func sqlite3_bind_parameter_count(stmt sqlite3_stmt) int {
	return int(c_sqlite3_bind_parameter_count(unsafe.Pointer(stmt)))
}

func sqlite3_bind_parameter_name(stmt sqlite3_stmt, index int) string {
	return copyCString(c_sqlite3_bind_parameter_name(unsafe.Pointer(stmt), int32(index)))
}

func sqlite3_bind_parameter_index(stmt sqlite3_stmt, name string) int {
	return int(c_sqlite3_bind_parameter_index(unsafe.Pointer(stmt), name))
}

func sqlite3_bind_int64(stmt sqlite3_stmt, index int, value int64) Code {
	return Code(c_sqlite3_bind_int64(unsafe.Pointer(stmt), int32(index), value))
}

func sqlite3_bind_double(stmt sqlite3_stmt, index int, value float64) Code {
	return Code(c_sqlite3_bind_double(unsafe.Pointer(stmt), int32(index), value))
}

func sqlite3_bind_text(stmt sqlite3_stmt, index int, value string) Code {
	if len(value) == 0 {
		var zero byte
		return Code(c_sqlite3_bind_text(unsafe.Pointer(stmt), int32(index), unsafe.Pointer(&zero), 0, sqliteTransient))
	}
	b := []byte(value)
	rc := c_sqlite3_bind_text(unsafe.Pointer(stmt), int32(index), unsafe.Pointer(&b[0]), int32(len(b)), sqliteTransient)
	runtime.KeepAlive(b)
	return Code(rc)
}

func sqlite3_bind_blob(stmt sqlite3_stmt, index int, value []byte) Code {
	if len(value) == 0 {
		return Code(c_sqlite3_bind_zeroblob(unsafe.Pointer(stmt), int32(index), 0))
	}
	rc := c_sqlite3_bind_blob(unsafe.Pointer(stmt), int32(index), unsafe.Pointer(&value[0]), int32(len(value)), sqliteTransient)
	runtime.KeepAlive(value)
	return Code(rc)
}

func sqlite3_bind_null(stmt sqlite3_stmt, index int) Code {
	return Code(c_sqlite3_bind_null(unsafe.Pointer(stmt), int32(index)))
}

func sqlite3_bind_zeroblob(stmt sqlite3_stmt, index int, n int) Code {
	return Code(c_sqlite3_bind_zeroblob(unsafe.Pointer(stmt), int32(index), int32(n)))
}

func sqlite3_column_count(stmt sqlite3_stmt) int {
	return int(c_sqlite3_column_count(unsafe.Pointer(stmt)))
}

func sqlite3_column_type(stmt sqlite3_stmt, index int) StorageClass {
	return StorageClass(c_sqlite3_column_type(unsafe.Pointer(stmt), int32(index)))
}

func sqlite3_column_int64(stmt sqlite3_stmt, index int) int64 {
	return c_sqlite3_column_int64(unsafe.Pointer(stmt), int32(index))
}

func sqlite3_column_double(stmt sqlite3_stmt, index int) float64 {
	return c_sqlite3_column_double(unsafe.Pointer(stmt), int32(index))
}

// Return TEXT column as a Go string, copied out of engine memory.
func sqlite3_column_text(stmt sqlite3_stmt, index int) string {
	n := c_sqlite3_column_bytes(unsafe.Pointer(stmt), int32(index))
	if n <= 0 {
		return ""
	}
	p := c_sqlite3_column_text(unsafe.Pointer(stmt), int32(index))
	return string(copyCBytes(p, n))
}

// Return BLOB column as a Go byte slice, copied out of engine memory.
func sqlite3_column_blob(stmt sqlite3_stmt, index int) []byte {
	n := c_sqlite3_column_bytes(unsafe.Pointer(stmt), int32(index))
	if n <= 0 {
		return nil
	}
	p := c_sqlite3_column_blob(unsafe.Pointer(stmt), int32(index))
	return copyCBytes(p, n)
}

func sqlite3_column_bytes(stmt sqlite3_stmt, index int) int {
	return int(c_sqlite3_column_bytes(unsafe.Pointer(stmt), int32(index)))
}

func sqlite3_column_name(stmt sqlite3_stmt, index int) string {
	return copyCString(c_sqlite3_column_name(unsafe.Pointer(stmt), int32(index)))
}

func sqlite3_column_decltype(stmt sqlite3_stmt, index int) string {
	return copyCString(c_sqlite3_column_decltype(unsafe.Pointer(stmt), int32(index)))
}

func sqlite3_column_database_name(stmt sqlite3_stmt, index int) string {
	if !hasColumnMetadata {
		return ""
	}
	return copyCString(c_sqlite3_column_database_name(unsafe.Pointer(stmt), int32(index)))
}

func sqlite3_column_table_name(stmt sqlite3_stmt, index int) string {
	if !hasColumnMetadata {
		return ""
	}
	return copyCString(c_sqlite3_column_table_name(unsafe.Pointer(stmt), int32(index)))
}

func sqlite3_column_origin_name(stmt sqlite3_stmt, index int) string {
	if !hasColumnMetadata {
		return ""
	}
	return copyCString(c_sqlite3_column_origin_name(unsafe.Pointer(stmt), int32(index)))
}

func sqlite3_changes(db sqlite3) int64 {
	if hasChanges64 {
		return c_sqlite3_changes64(unsafe.Pointer(db))
	}
	return int64(c_sqlite3_changes(unsafe.Pointer(db)))
}

func sqlite3_total_changes(db sqlite3) int {
	return int(c_sqlite3_total_changes(unsafe.Pointer(db)))
}

func sqlite3_last_insert_rowid(db sqlite3) int64 {
	return c_sqlite3_last_insert_rowid(unsafe.Pointer(db))
}

func sqlite3_get_autocommit(db sqlite3) bool {
	return c_sqlite3_get_autocommit(unsafe.Pointer(db)) != 0
}

func sqlite3_busy_timeout(db sqlite3, ms int) Code {
	return Code(c_sqlite3_busy_timeout(unsafe.Pointer(db), int32(ms)))
}

// Abort any pending operation on the connection at its earliest
// opportunity. The one call that may come from another goroutine, per the
// C API.
func sqlite3_interrupt(db sqlite3) {
	c_sqlite3_interrupt(unsafe.Pointer(db))
}

func sqlite3_db_filename(db sqlite3, name string) string {
	return copyCString(c_sqlite3_db_filename(unsafe.Pointer(db), name))
}

func sqlite3_blob_open(db sqlite3, dbName, table, column string, rowid int64, readWrite bool) (sqlite3_blob, Code) {
	var flags int32
	if readWrite {
		flags = 1
	}
	var blob sqlite3_blob
	rc := c_sqlite3_blob_open(unsafe.Pointer(db), dbName, table, column, rowid, flags, unsafe.Pointer(&blob))
	return blob, Code(rc)
}

func sqlite3_blob_bytes(blob sqlite3_blob) int {
	return int(c_sqlite3_blob_bytes(unsafe.Pointer(blob)))
}

func sqlite3_blob_read(blob sqlite3_blob, p []byte, off int) Code {
	if len(p) == 0 {
		return OK
	}
	rc := c_sqlite3_blob_read(unsafe.Pointer(blob), unsafe.Pointer(&p[0]), int32(len(p)), int32(off))
	runtime.KeepAlive(p)
	return Code(rc)
}

func sqlite3_blob_write(blob sqlite3_blob, p []byte, off int) Code {
	if len(p) == 0 {
		return OK
	}
	rc := c_sqlite3_blob_write(unsafe.Pointer(blob), unsafe.Pointer(&p[0]), int32(len(p)), int32(off))
	runtime.KeepAlive(p)
	return Code(rc)
}

func sqlite3_blob_close(blob sqlite3_blob) Code {
	return Code(c_sqlite3_blob_close(unsafe.Pointer(blob)))
}

func sqlite3_backup_init(dst sqlite3, dstName string, src sqlite3, srcName string) sqlite3_backup {
	return sqlite3_backup(c_sqlite3_backup_init(unsafe.Pointer(dst), dstName, unsafe.Pointer(src), srcName))
}

func sqlite3_backup_step(b sqlite3_backup, nPages int) Code {
	return Code(c_sqlite3_backup_step(unsafe.Pointer(b), int32(nPages)))
}

func sqlite3_backup_remaining(b sqlite3_backup) int {
	return int(c_sqlite3_backup_remaining(unsafe.Pointer(b)))
}

func sqlite3_backup_pagecount(b sqlite3_backup) int {
	return int(c_sqlite3_backup_pagecount(unsafe.Pointer(b)))
}

func sqlite3_backup_finish(b sqlite3_backup) Code {
	return Code(c_sqlite3_backup_finish(unsafe.Pointer(b)))
}

func sqlite3_value_type(v sqlite3_value) StorageClass {
	return StorageClass(c_sqlite3_value_type(unsafe.Pointer(v)))
}

func sqlite3_value_int64(v sqlite3_value) int64 {
	return c_sqlite3_value_int64(unsafe.Pointer(v))
}

func sqlite3_value_double(v sqlite3_value) float64 {
	return c_sqlite3_value_double(unsafe.Pointer(v))
}

func sqlite3_value_text(v sqlite3_value) string {
	n := c_sqlite3_value_bytes(unsafe.Pointer(v))
	if n <= 0 {
		return ""
	}
	return string(copyCBytes(c_sqlite3_value_text(unsafe.Pointer(v)), n))
}

func sqlite3_value_blob(v sqlite3_value) []byte {
	n := c_sqlite3_value_bytes(unsafe.Pointer(v))
	if n <= 0 {
		return nil
	}
	return copyCBytes(c_sqlite3_value_blob(unsafe.Pointer(v)), n)
}

func sqlite3_value_bytes(v sqlite3_value) int {
	return int(c_sqlite3_value_bytes(unsafe.Pointer(v)))
}

func sqlite3_result_int64(ctx sqlite3_context, v int64) {
	c_sqlite3_result_int64(unsafe.Pointer(ctx), v)
}

func sqlite3_result_double(ctx sqlite3_context, v float64) {
	c_sqlite3_result_double(unsafe.Pointer(ctx), v)
}

func sqlite3_result_text(ctx sqlite3_context, s string) {
	if len(s) == 0 {
		var zero byte
		c_sqlite3_result_text(unsafe.Pointer(ctx), unsafe.Pointer(&zero), 0, sqliteTransient)
		return
	}
	b := []byte(s)
	c_sqlite3_result_text(unsafe.Pointer(ctx), unsafe.Pointer(&b[0]), int32(len(b)), sqliteTransient)
	runtime.KeepAlive(b)
}

func sqlite3_result_blob(ctx sqlite3_context, p []byte) {
	if len(p) == 0 {
		c_sqlite3_result_zeroblob(unsafe.Pointer(ctx), 0)
		return
	}
	c_sqlite3_result_blob(unsafe.Pointer(ctx), unsafe.Pointer(&p[0]), int32(len(p)), sqliteTransient)
	runtime.KeepAlive(p)
}

func sqlite3_result_null(ctx sqlite3_context) {
	c_sqlite3_result_null(unsafe.Pointer(ctx))
}

func sqlite3_result_zeroblob(ctx sqlite3_context, n int) {
	c_sqlite3_result_zeroblob(unsafe.Pointer(ctx), int32(n))
}

func sqlite3_result_error(ctx sqlite3_context, msg string) {
	if len(msg) == 0 {
		c_sqlite3_result_error_code(unsafe.Pointer(ctx), int32(ERROR))
		return
	}
	b := []byte(msg)
	c_sqlite3_result_error(unsafe.Pointer(ctx), unsafe.Pointer(&b[0]), int32(len(b)))
	runtime.KeepAlive(b)
}
