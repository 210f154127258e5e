package shellcore

import "testing"

func TestEnvironmentSetenvGetenv(t *testing.T) {
	e := NewEnvironment(nil, "/tmp")
	if _, ok := e.Getenv("FOO"); ok {
		t.Fatal("FOO should be unset initially")
	}
	e.Setenv("FOO", "bar")
	if v, ok := e.Getenv("FOO"); !ok || v != "bar" {
		t.Fatalf("Getenv(FOO) = %q, %v", v, ok)
	}
}

func TestEnvironmentEnvironDeterministic(t *testing.T) {
	e := NewEnvironment([]string{"B=2", "A=1"}, "/tmp")
	got := e.Environ()
	want := []string{"A=1", "B=2"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("Environ() = %v, want %v", got, want)
	}
}

func TestEnvironmentDirStack(t *testing.T) {
	e := NewEnvironment(nil, "/a")
	if e.Cwd() != "/a" {
		t.Fatalf("Cwd() = %q", e.Cwd())
	}
	e.pushDir("/b")
	if e.Cwd() != "/b" {
		t.Fatalf("Cwd() after push = %q", e.Cwd())
	}
	if got := e.Dirs(); len(got) != 2 || got[0] != "/b" || got[1] != "/a" {
		t.Fatalf("Dirs() = %v", got)
	}
	popped, err := e.popDir()
	if err != nil {
		t.Fatalf("popDir: %v", err)
	}
	if popped != "/b" {
		t.Fatalf("popDir() = %q, want /b", popped)
	}
	if e.Cwd() != "/a" {
		t.Fatalf("Cwd() after pop = %q", e.Cwd())
	}
	if _, err := e.popDir(); err != ErrNoDirStack {
		t.Fatalf("popDir() on single-entry stack err = %v, want ErrNoDirStack", err)
	}
}
