// Go bindings for the SQLite database engine.
//
// This file implements library embedding and extraction at runtime. Projects
// that want a self-contained binary drop a platform build of the SQLite
// shared library under libs/<goos>[_<libc>]_<goarch>/ before building; the
// library is then extracted to a per-user cache directory on first use and
// loaded from there. When no library is embedded (the default source tree
// ships only a placeholder), loading silently falls back to the system
// search paths in bindings.go.
//
// Extraction is keyed on the embedded VERSION file so that upgrading the
// module never reuses a stale cached copy.
package sqlite

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"runtime"
	"strings"
)

//go:embed libs/*
var embeddedLibs embed.FS

//go:embed VERSION
var embeddedVersion string

// isMuslLibc detects if the system is using musl libc (Alpine Linux, Void
// Linux, etc.)
func isMuslLibc() bool {
	if _, err := os.Stat("/etc/alpine-release"); err == nil {
		return true
	}

	// Check ldd output for musl - more reliable for detecting any musl-based system
	cmd := exec.Command("ldd", "--version")
	if output, err := cmd.CombinedOutput(); err == nil {
		if strings.Contains(strings.ToLower(string(output)), "musl") {
			return true
		}
	}

	return false
}

// extractEmbeddedLibrary extracts the library for the current platform to a
// cache directory and returns the path to the extracted library.
func extractEmbeddedLibrary(name string) (string, error) {
	var libName string
	var platformDir string

	switch runtime.GOOS {
	case "darwin":
		libName = fmt.Sprintf("lib%v.dylib", name)
	case "linux":
		libName = fmt.Sprintf("lib%v.so", name)
	case "windows":
		libName = fmt.Sprintf("%v.dll", name)
	default:
		return "", fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	var archSuffix string
	switch runtime.GOARCH {
	case "amd64":
		archSuffix = "amd64"
	case "arm64":
		archSuffix = "arm64"
	case "386":
		archSuffix = "386"
	default:
		return "", fmt.Errorf("unsupported architecture: %s", runtime.GOARCH)
	}

	libcVariant := ""
	if runtime.GOOS == "linux" {
		if isMuslLibc() {
			libcVariant = "_musl"
		}
	}

	platformDir = fmt.Sprintf("%s%s_%s", runtime.GOOS, libcVariant, archSuffix)

	// Try the exact platform first; on musl Linux, fall back to the glibc
	// build if no musl variant was embedded.
	embedPath := path.Join("libs", platformDir, libName)
	fallbackPaths := []string{embedPath}
	if runtime.GOOS == "linux" && libcVariant == "_musl" {
		glibcPlatform := fmt.Sprintf("%s_%s", runtime.GOOS, archSuffix)
		fallbackPaths = append(fallbackPaths, path.Join("libs", glibcPlatform, libName))
	}

	cacheRoot := os.Getenv("SQLITE_GO_CACHE_DIR")
	if cacheRoot == "" {
		if d, err := os.UserCacheDir(); err == nil {
			cacheRoot = d
		} else {
			cacheRoot = os.TempDir()
		}
	}
	destDir := filepath.Join(cacheRoot, name, strings.TrimSpace(embeddedVersion), platformDir)

	var in fs.File
	var err error
	foundPath := ""
	for _, tryPath := range fallbackPaths {
		in, err = embeddedLibs.Open(tryPath)
		if err == nil {
			foundPath = tryPath
			break
		}
	}
	if foundPath == "" {
		return "", fmt.Errorf("open embedded library (tried %v): %w", fallbackPaths, err)
	}
	defer in.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", destDir, err)
	}
	extractedPath := filepath.Join(destDir, libName)

	if fi, err := os.Stat(extractedPath); err == nil && fi.Size() > 0 {
		return extractedPath, nil
	}

	out, err := os.Create(extractedPath)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", extractedPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return "", fmt.Errorf("copy: %w", err)
	}
	if runtime.GOOS != "windows" {
		_ = os.Chmod(extractedPath, 0o755)
	}
	return extractedPath, nil
}
