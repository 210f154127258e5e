package shellcore

import (
	"os"
	"testing"
)

func TestBuiltinCdPushdPopd(t *testing.T) {
	start, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	a := t.TempDir()
	b := t.TempDir()
	ev := newTestEvaluator(t)

	if _, _, code := evalString(t, ev, Simple("cd", a)); code != 0 {
		t.Fatalf("cd %s: code = %d", a, code)
	}
	if ev.Env().Cwd() != a {
		t.Fatalf("Cwd() = %q, want %q", ev.Env().Cwd(), a)
	}

	if _, _, code := evalString(t, ev, Simple("pushd", b)); code != 0 {
		t.Fatalf("pushd %s: code = %d", b, code)
	}
	if ev.Env().Cwd() != b {
		t.Fatalf("Cwd() after pushd = %q, want %q", ev.Env().Cwd(), b)
	}
	if got := ev.Env().Dirs(); len(got) != 2 {
		t.Fatalf("Dirs() after pushd = %v", got)
	}

	if _, _, code := evalString(t, ev, Simple("popd")); code != 0 {
		t.Fatalf("popd: code = %d", code)
	}
	if ev.Env().Cwd() != a {
		t.Fatalf("Cwd() after popd = %q, want %q", ev.Env().Cwd(), a)
	}

	// Restore the real process cwd so other tests (and the test binary
	// itself) aren't left in a temp dir this test deleted on cleanup.
	if err := os.Chdir(start); err != nil {
		t.Fatalf("restore cwd: %v", err)
	}
}

func TestBuiltinCdRejectsExtraArgs(t *testing.T) {
	ev := newTestEvaluator(t)
	start := ev.Env().Cwd()

	_, _, code := evalString(t, ev, Simple("cd", "a", "b"))
	if code != 1 {
		t.Fatalf("cd a b: code = %d, want 1", code)
	}
	if ev.Env().Cwd() != start {
		t.Fatalf("Cwd() = %q after rejected cd, want unchanged %q", ev.Env().Cwd(), start)
	}
}

func TestBuiltinPushdRejectsWrongArgc(t *testing.T) {
	ev := newTestEvaluator(t)
	start := ev.Env().Cwd()

	if _, _, code := evalString(t, ev, Simple("pushd")); code != 1 {
		t.Fatalf("pushd (no args): code = %d, want 1", code)
	}
	if _, _, code := evalString(t, ev, Simple("pushd", "a", "b")); code != 1 {
		t.Fatalf("pushd a b: code = %d, want 1", code)
	}
	if ev.Env().Cwd() != start {
		t.Fatalf("Cwd() = %q after rejected pushd, want unchanged %q", ev.Env().Cwd(), start)
	}
	if got := ev.Env().Dirs(); len(got) != 1 {
		t.Fatalf("Dirs() = %v, want unchanged single-entry stack", got)
	}
}

func TestBuiltinPushdPrintsPreviousDirFirst(t *testing.T) {
	start, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	a := t.TempDir()
	ev := newTestEvaluator(t)
	before := ev.Env().Cwd()

	stdout, _, code := evalString(t, ev, Simple("pushd", a))
	if code != 0 {
		t.Fatalf("pushd %s: code = %d", a, code)
	}
	want := before + " " + a + " " + before + "\n"
	if stdout != want {
		t.Fatalf("pushd stdout = %q, want %q (previous dir, then full stack)", stdout, want)
	}

	if err := os.Chdir(start); err != nil {
		t.Fatalf("restore cwd: %v", err)
	}
}

func TestBuiltinRedirectionsIgnored(t *testing.T) {
	ev := newTestEvaluator(t)
	dir := t.TempDir()
	outPath := dir + "/should-not-exist.txt"
	n := WithStdoutFile(Simple("dirs"), outPath)
	_, _, code := evalString(t, ev, n)
	if code != 0 {
		t.Fatalf("dirs exit code = %d", code)
	}
	if _, err := os.Stat(outPath); err == nil {
		t.Errorf("redirection on a builtin should be ignored, but %s was created", outPath)
	}
}
