package sqlite

import (
	"errors"
	"fmt"
)

// define all package level errors here

// Lifecycle sentinels. These are returned when an operation is attempted on a
// handle that has already been closed, before any native call is made.
var (
	ErrConnClosed   = errors.New("sqlite: connection closed")
	ErrStmtClosed   = errors.New("sqlite: statement closed")
	ErrBlobClosed   = errors.New("sqlite: blob closed")
	ErrBackupClosed = errors.New("sqlite: backup closed")
)

// Code is a primary SQLite result code.
type Code int32

// Primary result codes.
// https://www.sqlite.org/rescode.html
const (
	OK         Code = 0
	ERROR      Code = 1
	INTERNAL   Code = 2
	PERM       Code = 3
	ABORT      Code = 4
	BUSY       Code = 5
	LOCKED     Code = 6
	NOMEM      Code = 7
	READONLY   Code = 8
	INTERRUPT  Code = 9
	IOERR      Code = 10
	CORRUPT    Code = 11
	NOTFOUND   Code = 12
	FULL       Code = 13
	CANTOPEN   Code = 14
	PROTOCOL   Code = 15
	EMPTY      Code = 16
	SCHEMA     Code = 17
	TOOBIG     Code = 18
	CONSTRAINT Code = 19
	MISMATCH   Code = 20
	MISUSE     Code = 21
	NOLFS      Code = 22
	AUTH       Code = 23
	FORMAT     Code = 24
	RANGE      Code = 25
	NOTADB     Code = 26
	NOTICE     Code = 27
	WARNING    Code = 28
	ROW        Code = 100
	DONE       Code = 101
)

var codeNames = map[Code]string{
	OK:         "OK",
	ERROR:      "ERROR",
	INTERNAL:   "INTERNAL",
	PERM:       "PERM",
	ABORT:      "ABORT",
	BUSY:       "BUSY",
	LOCKED:     "LOCKED",
	NOMEM:      "NOMEM",
	READONLY:   "READONLY",
	INTERRUPT:  "INTERRUPT",
	IOERR:      "IOERR",
	CORRUPT:    "CORRUPT",
	NOTFOUND:   "NOTFOUND",
	FULL:       "FULL",
	CANTOPEN:   "CANTOPEN",
	PROTOCOL:   "PROTOCOL",
	EMPTY:      "EMPTY",
	SCHEMA:     "SCHEMA",
	TOOBIG:     "TOOBIG",
	CONSTRAINT: "CONSTRAINT",
	MISMATCH:   "MISMATCH",
	MISUSE:     "MISUSE",
	NOLFS:      "NOLFS",
	AUTH:       "AUTH",
	FORMAT:     "FORMAT",
	RANGE:      "RANGE",
	NOTADB:     "NOTADB",
	NOTICE:     "NOTICE",
	WARNING:    "WARNING",
	ROW:        "ROW",
	DONE:       "DONE",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("code(%d)", int32(c))
}

// Error is a structured engine error carrying the primary result code, the
// extended result code, and the engine's message text.
//
// Precondition violations (out-of-range indexes, misuse of a handle) are also
// reported as *Error with code RANGE or MISUSE so that callers can tell
// caller bugs apart from runtime engine conditions by code.
type Error struct {
	Code     Code
	Extended int32
	Message  string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return "sqlite: " + e.Message
	}
	return "sqlite: " + e.Code.String()
}

// Is reports whether target carries the same primary code. This lets callers
// write errors.Is(err, &sqlite.Error{Code: sqlite.BUSY}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// errCode builds an *Error from a bare result code using the engine's static
// description of that code.
func errCode(rc Code) error {
	if rc == OK || rc == ROW || rc == DONE {
		return nil
	}
	return &Error{Code: rc & 0xff, Extended: int32(rc), Message: sqlite3_errstr(rc)}
}

// errConn builds an *Error from the connection's current error state. Used
// right after a native call on db reported failure.
func errConn(rc Code, db sqlite3) error {
	if rc == OK || rc == ROW || rc == DONE {
		return nil
	}
	if db == nil {
		return errCode(rc)
	}
	return &Error{
		Code:     rc & 0xff,
		Extended: sqlite3_extended_errcode(db),
		Message:  sqlite3_errmsg(db),
	}
}

// misuse reports a caller contract violation without touching the engine.
func misuse(format string, args ...any) error {
	return &Error{Code: MISUSE, Extended: int32(MISUSE), Message: fmt.Sprintf(format, args...)}
}

// rangeErr reports an out-of-range index without touching the engine.
func rangeErr(format string, args ...any) error {
	return &Error{Code: RANGE, Extended: int32(RANGE), Message: fmt.Sprintf(format, args...)}
}
