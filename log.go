package sqlite

import (
	"errors"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

const configLogOp = 16 // SQLITE_CONFIG_LOG

// ErrLogUnsupported is returned by ConfigLogger on platforms where the
// engine's variadic configuration entry point cannot be reached.
var ErrLogUnsupported = errors.New("sqlite: error log configuration is not supported on this platform")

// sqlite3_config is variadic in C. The fixed register-based signature used
// to reach it matches the variadic calling convention on every supported
// platform except Apple arm64, where variadic arguments are passed on the
// stack.
func configLogSupported() bool {
	return !(runtime.GOOS == "darwin" && runtime.GOARCH == "arm64")
}

var (
	errorLogMu sync.Mutex
	errorLogFn func(code int, msg string)
)

var errorLogTrampoline = purego.NewCallback(func(arg uintptr, code int32, msg uintptr) uintptr {
	errorLogMu.Lock()
	f := errorLogFn
	errorLogMu.Unlock()
	if f == nil {
		return 0
	}
	defer func() { recover() }() // the log hook must never unwind into C
	f(int(code), copyCString(unsafe.Pointer(msg)))
	return 0
})

// ConfigLogger routes the engine's global error log to f, which receives
// every internal diagnostic the engine emits (extended result code plus
// message) across all connections in the process. nil restores the default
// discard behavior. The hook is process-wide engine configuration and may
// only be changed while no connection is open; the engine is briefly shut
// down to apply it.
//
// f must not call back into this package.
func ConfigLogger(f func(code int, msg string)) error {
	if libErr != nil {
		return libErr
	}
	if !configLogSupported() {
		return ErrLogUnsupported
	}
	errorLogMu.Lock()
	errorLogFn = f
	errorLogMu.Unlock()

	if rc := Code(c_sqlite3_shutdown()); rc != OK {
		return errCode(rc)
	}
	var cb, arg uintptr
	if f != nil {
		cb = errorLogTrampoline
	}
	if rc := Code(c_sqlite3_config_log(configLogOp, cb, arg)); rc != OK {
		c_sqlite3_initialize()
		return errCode(rc)
	}
	if rc := Code(c_sqlite3_initialize()); rc != OK {
		return errCode(rc)
	}
	return nil
}

// Version reports the runtime engine's version string.
func Version() string {
	if libErr != nil {
		return ""
	}
	return sqlite3_libversion()
}

// VersionNumber reports the runtime engine's numeric version.
func VersionNumber() int {
	if libErr != nil {
		return 0
	}
	return sqlite3_libversion_number()
}
