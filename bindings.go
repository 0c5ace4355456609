package sqlite

import (
	"fmt"
	"os"
)

// libErr records why the native library could not be loaded. Open and the
// database/sql driver surface it; native-dependent tests skip on it.
var libErr error

func init() {
	handle, err := loadNativeLibrary()
	if err != nil {
		libErr = fmt.Errorf("sqlite: unable to load native library: %w", err)
		return
	}
	if err := register_sqlite3(handle); err != nil {
		libErr = err
		return
	}
	if rc := Code(c_sqlite3_initialize()); rc != OK {
		libErr = errCode(rc)
	}
}

// loadNativeLibrary locates and dlopens the SQLite shared library. Search
// order: explicit SQLITE_LIB_PATH, a library embedded at build time (if
// any), then the usual system names.
func loadNativeLibrary() (uintptr, error) {
	if path := os.Getenv("SQLITE_LIB_PATH"); path != "" {
		return openLibrary(path)
	}
	if path, err := extractEmbeddedLibrary("sqlite3"); err == nil {
		if h, err := openLibrary(path); err == nil {
			return h, nil
		}
	}
	var lastErr error
	for _, name := range systemLibraryNames() {
		h, err := openLibrary(name)
		if err == nil {
			return h, nil
		}
		lastErr = err
	}
	return 0, lastErr
}
