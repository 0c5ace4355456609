//go:build windows

package sqlite

import "golang.org/x/sys/windows"

func openLibrary(name string) (uintptr, error) {
	h, err := windows.LoadLibrary(name)
	return uintptr(h), err
}

func symbolExists(handle uintptr, name string) bool {
	proc, err := windows.GetProcAddress(windows.Handle(handle), name)
	return err == nil && proc != 0
}

func systemLibraryNames() []string {
	return []string{
		"sqlite3.dll",
		"winsqlite3.dll",
	}
}
