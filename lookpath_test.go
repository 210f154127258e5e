package shellcore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLookPathFindsOnPath(t *testing.T) {
	got, err := LookPath("echo")
	if err != nil {
		t.Fatalf("LookPath(echo): %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("LookPath(echo) = %q, want absolute path", got)
	}
}

func TestLookPathNotFound(t *testing.T) {
	_, err := LookPath("shellcore-definitely-not-a-real-binary")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLookPathDirectSlash(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "myscript")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := LookPath(path)
	if err != nil {
		t.Fatalf("LookPath(%s): %v", path, err)
	}
	if got != path {
		t.Errorf("LookPath(%s) = %q", path, got)
	}
}
