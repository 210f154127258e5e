package shellcore

import "testing"

func TestAndShortCircuits(t *testing.T) {
	ev := newTestEvaluator(t)
	n := And(Simple("sh", "-c", "exit 1"), Simple("sh", "-c", "echo should-not-run"))
	stdout, _, code := evalString(t, ev, n)
	if code != 1 {
		t.Errorf("code = %d, want 1", code)
	}
	if stdout != "" {
		t.Errorf("right side of && ran despite left failing: stdout = %q", stdout)
	}
}

func TestOrShortCircuits(t *testing.T) {
	ev := newTestEvaluator(t)
	n := Or(Simple("sh", "-c", "exit 0"), Simple("sh", "-c", "echo should-not-run"))
	stdout, _, code := evalString(t, ev, n)
	if code != 0 {
		t.Errorf("code = %d, want 0", code)
	}
	if stdout != "" {
		t.Errorf("right side of || ran despite left succeeding: stdout = %q", stdout)
	}
}

func TestSeqRunsBothRegardlessOfStatus(t *testing.T) {
	ev := newTestEvaluator(t)
	n := Seq(Simple("sh", "-c", "exit 1"), Simple("echo", "ran"))
	stdout, _, code := evalString(t, ev, n)
	if code != 1 {
		t.Errorf("code = %d, want 1 (right succeeded, so left's failure surfaces)", code)
	}
	if stdout != "ran\n" {
		t.Errorf("stdout = %q, want right side to run regardless of left's status", stdout)
	}
}

func TestSeqFallsBackToLeftStatusWhenRightSucceeds(t *testing.T) {
	ev := newTestEvaluator(t)
	n := Seq(Simple("sh", "-c", "exit 1"), Simple("sh", "-c", "exit 0"))
	_, _, code := evalString(t, ev, n)
	if code != 1 {
		t.Errorf("code = %d, want 1 (right succeeded, so left's failure surfaces)", code)
	}
}

func TestSeqReportsRightFailureOverLeftSuccess(t *testing.T) {
	ev := newTestEvaluator(t)
	n := Seq(Simple("sh", "-c", "exit 0"), Simple("sh", "-c", "exit 2"))
	_, _, code := evalString(t, ev, n)
	if code != 2 {
		t.Errorf("code = %d, want 2 (right's non-zero status always wins)", code)
	}
}

func TestLastStatusBinding(t *testing.T) {
	ev := newTestEvaluator(t)
	if _, _, code := evalString(t, ev, Simple("sh", "-c", "exit 4")); code != 4 {
		t.Fatalf("exit code = %d", code)
	}
	if got := ev.Env().LastStatus(); got != 4 {
		t.Errorf("LastStatus() = %d, want 4", got)
	}
}

func TestSubshellDoesNotLeakCdToParent(t *testing.T) {
	ev := newTestEvaluator(t)
	startDir := ev.Env().Cwd()
	tmp := t.TempDir()

	n := Subshell(Simple("cd", tmp))
	if _, _, code := evalString(t, ev, n); code != 0 {
		t.Fatalf("subshell exit code = %d", code)
	}
	if ev.Env().Cwd() != startDir {
		t.Errorf("cd inside subshell leaked to parent: cwd = %q, want %q", ev.Env().Cwd(), startDir)
	}
}

func TestSubshellRunsNestedCombinators(t *testing.T) {
	ev := newTestEvaluator(t)
	n := Subshell(Seq(Simple("echo", "a"), Simple("echo", "b")))
	stdout, _, code := evalString(t, ev, n)
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if stdout != "a\nb\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestBackgroundChainRunsTailInForeground(t *testing.T) {
	ev := newTestEvaluator(t)
	n := Background(Simple("sh", "-c", "sleep 0.2"), Simple("echo", "foreground"))
	stdout, _, code := evalString(t, ev, n)
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if stdout != "foreground\n" {
		t.Errorf("stdout = %q", stdout)
	}
	ev.ReapBackground(nil) // the sleep is normally still running, so this sweep usually reaps nothing
}
