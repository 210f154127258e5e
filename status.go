package shellcore

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// decodeExitStatus converts a raw wait4 status into the shell's integer
// exit code, per spec.md §3: a normal exit yields its exit code; a
// signal-terminated process yields 128+signal; anything else (stopped,
// continued) yields 0, since this evaluator does not implement job
// control and should never actually observe those states.
//
// Grounded on orospakr-spawnexec's ProcessState.ExitCode/String, adapted
// to produce a single int rather than a *ProcessState value, since the
// evaluator only ever needs the resulting status code.
func decodeExitStatus(status unix.WaitStatus) int {
	switch {
	case status.Exited():
		return status.ExitStatus()
	case status.Signaled():
		return 128 + int(status.Signal())
	default:
		return 0
	}
}

// waitPid blocks until pid exits and returns its decoded exit code. It is
// the synchronous counterpart to the background reaper's non-blocking
// backgroundTable.reap in background.go.
func waitPid(pid int) (int, error) {
	var status unix.WaitStatus
	for {
		got, err := unix.Wait4(pid, &status, 0, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("wait4 %d: %w", pid, err)
		}
		if got != pid {
			// Per original_source/src/process.rs's pipeline reap loop, a
			// blind wait() can return an unrelated child; here Wait4 is
			// pid-scoped so this should not happen, but loop defensively
			// rather than misreport a foreign pid's status.
			continue
		}
		return decodeExitStatus(status), nil
	}
}
