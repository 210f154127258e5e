package shellcore

import (
	"encoding/gob"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"os/exec"
)

// subshellWorkerEnv marks a re-exec'd child as a subshell worker. Its
// value is otherwise unused; RunSubshellWorker only checks presence.
const subshellWorkerEnv = "SHELLCORE_SUBSHELL_WORKER"

// subshellPayload is gob-encoded across the pipe a subshell worker reads
// its instructions from. It carries everything the worker needs to
// reconstruct an Evaluator equivalent to the parent's: the subtree to
// run, the environment, and the directory stack.
type subshellPayload struct {
	Node    *Node
	Environ []string
	Dirs    []string
	TempDir string
}

// RunSubshellWorker must be the first thing an embedding program's main
// calls. If the process was re-exec'd by forkSubshell, it decodes the
// waiting payload from fd 3, evaluates it, and calls os.Exit with the
// result — RunSubshellWorker never returns in that case. Otherwise it
// returns immediately and the caller proceeds as an ordinary shell
// process.
//
// This is the idiomatic Go substitute for spec.md's literal "fork; child
// recursively evaluates the inner tree" wording for SUBSHELL and
// background dispatch: Go's runtime cannot safely run arbitrary Go code
// in a process that was fork(2)'d without an immediate exec(2), so
// instead of forking this binary, the evaluator re-execs it (the pattern
// moby/runc call pkg/reexec) and hands the subtree across a pipe rather
// than across a shared address space. See SPEC_FULL.md §D.E.
func RunSubshellWorker() {
	if os.Getenv(subshellWorkerEnv) == "" {
		return
	}

	payloadFile := os.NewFile(3, "shellcore-subshell-payload")
	var payload subshellPayload
	if err := gob.NewDecoder(payloadFile).Decode(&payload); err != nil {
		fmt.Fprintln(os.Stderr, "shellcore: subshell worker: decode payload:", err)
		os.Exit(126)
	}
	payloadFile.Close()

	dirs := payload.Dirs
	if len(dirs) == 0 {
		dirs = []string{"/"}
	}
	env := NewEnvironment(payload.Environ, dirs[0])
	env.dirs = append([]string(nil), dirs...)

	ev := &Evaluator{
		env:     env,
		tempDir: payload.TempDir,
		logger:  slog.New(slog.DiscardHandler),
		bg:      newBackgroundTable(),
	}

	code, err := ev.evalNode(payload.Node, stdio{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr})
	if err != nil {
		fmt.Fprintln(os.Stderr, "shellcore:", err)
		os.Exit(1)
	}
	os.Exit(code)
}

// forkSubshell re-execs the current binary as a subshell worker and
// streams n (plus the shell's current environment and directory stack)
// across a pipe landing at the worker's fd 3. It returns the worker's
// pid without waiting for it: the caller reaps it directly with wait4
// (runSubshell and the pipeline driver through waitPid, runBackgroundChain
// through the background table's WNOHANG sweep), so this must never call
// (*exec.Cmd).Wait — that would race the caller's own wait4 on the same
// pid.
func (ev *Evaluator) forkSubshell(n *Node, io stdio) (int, error) {
	exe, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("shellcore: locate own executable for subshell: %w", err)
	}

	r, w, err := os.Pipe()
	if err != nil {
		return 0, fmt.Errorf("shellcore: subshell payload pipe: %w", err)
	}

	cmd := exec.Cmd{
		Path:       exe,
		Args:       []string{exe},
		Env:        append(append([]string(nil), ev.env.Environ()...), subshellWorkerEnv+"=1"),
		Stdin:      io.Stdin,
		Stdout:     io.Stdout,
		Stderr:     io.Stderr,
		ExtraFiles: []*os.File{r},
	}

	payload := subshellPayload{
		Node:    n,
		Environ: ev.env.Environ(),
		Dirs:    ev.env.Dirs(),
		TempDir: ev.tempDir,
	}

	if err := cmd.Start(); err != nil {
		r.Close()
		w.Close()
		return 0, fmt.Errorf("shellcore: start subshell worker: %w", err)
	}
	r.Close()

	go func() {
		defer w.Close()
		if err := gob.NewEncoder(w).Encode(&payload); err != nil {
			ev.logger.Debug("subshell payload encode failed", "err", err)
		}
	}()

	return cmd.Process.Pid, nil
}

// runSubshell implements the SUBSHELL node per spec.md §4.E: resolve
// redirections, fork, and evaluate the inner tree in the child with the
// node's locals set, reporting the child's exit status as the subshell's
// own. The locals reach only the child; the parent's environment is left
// as it was.
func (ev *Evaluator) runSubshell(n *Node, io stdio) (int, error) {
	stdin, stdout, cleanup, err := ev.resolveRedirections(n, io)
	if err != nil {
		reportStartError(io.Stderr, []string{"(subshell)"}, err)
		return 126, nil
	}
	defer cleanup()

	parentVars := ev.env.vars
	ev.env.vars = maps.Clone(parentVars)
	ev.env.applyLocals(n.Locals)
	pid, err := ev.forkSubshell(n.Left, stdio{Stdin: stdin, Stdout: stdout, Stderr: io.Stderr})
	ev.env.vars = parentVars
	if err != nil {
		reportStartError(io.Stderr, []string{"(subshell)"}, err)
		return 126, nil
	}
	return waitPid(pid)
}
