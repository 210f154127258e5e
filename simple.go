package shellcore

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// runSimple executes a SIMPLE node per spec.md §4.B/§4.E: apply locals,
// dispatch to a builtin if argv[0] names one (ignoring any redirections —
// the documented deviation from POSIX carried over unchanged), otherwise
// resolve redirections and fork+exec the named program.
//
// Go cannot safely run arbitrary Go code (a recursive fork, as spec.md's
// prose describes) in a process that has been fork(2)'d but not yet
// exec'd: only the runtime-internal fork+dup2+exec sequence inside
// syscall.ForkExec is async-signal-safe. So redirection targets are
// opened here, in the parent, and handed to ForkExec via
// syscall.ProcAttr.Files; the kernel performs the equivalent of "child
// opens and dup2s before exec" as part of the same safe fork+exec
// sequence. See SPEC_FULL.md §D.E for the full account of this
// substitution.
func (ev *Evaluator) runSimple(n *Node, io stdio) (int, error) {
	ev.env.applyLocals(n.Locals)

	if code, ok := runBuiltin(ev, n.Argv, io); ok {
		return code, nil
	}

	stdin, stdout, cleanup, err := ev.resolveRedirections(n, io)
	if err != nil {
		return startError(io.Stderr, n.Argv, err), nil
	}
	defer cleanup()

	path, err := LookPath(n.Argv[0])
	if err != nil {
		return startError(io.Stderr, n.Argv, err), nil
	}

	pid, err := forkRun(path, n.Argv, ev.env.Environ(), stdin, stdout, io.Stderr)
	if err != nil {
		return startError(io.Stderr, n.Argv, err), nil
	}
	return waitPid(pid)
}

// startError reports a command that never started and returns the exit
// status the shell should report for it. spec.md §4.B/§7 specify that a
// simple command which fails to start reports the clamped errno as its
// exit status rather than a fixed sentinel; exitCodeForStartError
// extracts that errno when one is available (a redirection target that
// failed to open, or ForkExec itself failing). LookPath's sentinels carry
// no errno: ErrDot is reported as EACCES and ErrNotFound as the
// conventional 127; any other errno-less failure is reported as 126.
func startError(stderr *os.File, argv []string, err error) int {
	reportStartError(stderr, argv, err)
	return exitCodeForStartError(err)
}

func exitCodeForStartError(err error) int {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return clampExitCode(int(errno))
	}
	switch {
	case errors.Is(err, ErrDot):
		return clampExitCode(int(unix.EACCES))
	case errors.Is(err, ErrNotFound):
		return 127
	default:
		return 126
	}
}

// clampExitCode keeps a raw errno value within the [1,255] range a Unix
// exit status can actually represent.
func clampExitCode(code int) int {
	if code < 1 {
		return 1
	}
	if code > 255 {
		return 255
	}
	return code
}

// resolveRedirections opens whatever files n.FromKind/n.ToKind name and
// returns the *os.File to use for the child's stdin and stdout, falling
// back to io.Stdin/io.Stdout when a direction is unset. The returned
// cleanup closes any file this call opened; it is always safe to call
// even when err != nil, and always safe to call more than once.
//
// Grounded on original_source/src/process.rs's handle_redirection, which
// opens the "from" target before the "to" target; SPEC_FULL.md §C
// generalizes the original's either/or match into "apply both if both
// are present", which this preserves by resolving them independently.
func (ev *Evaluator) resolveRedirections(n *Node, io stdio) (stdin, stdout *os.File, cleanup func(), err error) {
	var opened []*os.File
	cleanup = func() {
		for _, f := range opened {
			f.Close()
		}
	}

	stdin, stdout = io.Stdin, io.Stdout

	switch n.FromKind {
	case FromFile:
		f, oerr := os.Open(n.FromTarget)
		if oerr != nil {
			cleanup()
			return nil, nil, func() {}, oerr
		}
		opened = append(opened, f)
		stdin = f
	case FromHeredoc:
		f, oerr := stageHeredoc(ev.tempDir, n.FromTarget)
		if oerr != nil {
			cleanup()
			return nil, nil, func() {}, oerr
		}
		opened = append(opened, f)
		stdin = f
	}

	switch n.ToKind {
	case ToFile:
		f, oerr := os.OpenFile(n.ToTarget, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if oerr != nil {
			cleanup()
			return nil, nil, func() {}, oerr
		}
		opened = append(opened, f)
		stdout = f
	case ToAppend:
		f, oerr := os.OpenFile(n.ToTarget, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if oerr != nil {
			cleanup()
			return nil, nil, func() {}, oerr
		}
		opened = append(opened, f)
		stdout = f
	}

	return stdin, stdout, cleanup, nil
}

// forkRun forks and execs path with argv/env, wiring stdin/stdout/stderr
// directly as the child's fds 0/1/2 via ProcAttr.Files. It returns the
// new process's pid without waiting for it; callers reap it themselves
// (waitPid for a foreground simple command, the pipeline driver, or the
// background reaper).
func forkRun(path string, argv, env []string, stdin, stdout, stderr *os.File) (int, error) {
	attr := &syscall.ProcAttr{
		Env: env,
		Files: []uintptr{
			stdin.Fd(),
			stdout.Fd(),
			stderr.Fd(),
		},
	}
	pid, err := syscall.ForkExec(path, argv, attr)
	if err != nil {
		return 0, err
	}
	return pid, nil
}

// reportStartError writes the fixed diagnostic line spec.md §7 requires
// for a command that never started, in the form "shellcore: <argv0>:
// <reason>", by formatting a StartError. This is a wire-format write
// directly to stderr, not routed through the optional slog.Logger — see
// SPEC_FULL.md §A.
func reportStartError(stderr *os.File, argv []string, err error) {
	se := &StartError{Argv: argv, Err: err}
	fmt.Fprintln(stderr, se.Error())
}
