package shellcore

import (
	"os"
	"path/filepath"
	"strings"
)

// LookPath searches for an executable named file in the directories
// named by the PATH environment variable. If file contains a slash, it
// is tried directly and PATH is not consulted. On success the result is
// an absolute path, except when file was given as a relative path
// containing a slash.
//
// Adapted directly from orospakr-spawnexec/lookpath.go: same algorithm,
// its *Error return type renamed to LookupError to match this package's
// error types (errors.go), and its ErrNotFound/ErrDot sentinels shared
// with the rest of the evaluator rather than scoped to LookPath alone.
func LookPath(file string) (string, error) {
	if strings.Contains(file, "/") {
		if err := findExecutable(file); err == nil {
			return file, nil
		}
		return "", &LookupError{Name: file, Err: ErrNotFound}
	}

	path := os.Getenv("PATH")
	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			if !filepath.IsAbs(candidate) {
				return candidate, &LookupError{Name: file, Err: ErrDot}
			}
			return candidate, nil
		}
	}
	return "", &LookupError{Name: file, Err: ErrNotFound}
}

// findExecutable reports whether the file at path exists and is
// executable by someone.
func findExecutable(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	m := fi.Mode()
	if m.IsDir() {
		return os.ErrPermission
	}
	if m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
