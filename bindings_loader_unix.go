//go:build darwin || linux || freebsd

package sqlite

import "github.com/ebitengine/purego"

func openLibrary(name string) (uintptr, error) {
	return purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_GLOBAL)
}

func symbolExists(handle uintptr, name string) bool {
	sym, err := purego.Dlsym(handle, name)
	return err == nil && sym != 0
}

func systemLibraryNames() []string {
	return []string{
		"libsqlite3.so.0",
		"libsqlite3.so",
		"libsqlite3.dylib",
		"libsqlite3.0.dylib",
	}
}
