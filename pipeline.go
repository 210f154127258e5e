package shellcore

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// flattenPipe walks a left-associated chain of PIPE nodes into the
// ordered list of stages it connects. spec.md §9 leaves the empty case
// (which cannot arise from a well-formed PIPE, since validate requires
// both branches) formally undefined; flattenPipe never produces it from
// a valid tree, but runPipeline still checks for it defensively.
func flattenPipe(n *Node) []*Node {
	var stages []*Node
	for n.Kind == KindPipe {
		stages = append(stages, flattenPipe(n.Left)...)
		n = n.Right
	}
	stages = append(stages, n)
	return stages
}

// runPipeline executes a PIPE node per spec.md §4.F: fork one process per
// stage, connecting stage i's stdout to stage i+1's stdin, then wait for
// every stage. The pipeline's own exit status is the rightmost *failure*
// (the last stage with a non-zero status, scanning right to left), or 0
// if every stage succeeded — the glossary's Rightmost-failure rule.
//
// Grounded on handle_pipe's fd-carry-over loop: each iteration opens one
// new pipe, wires the previous stage's read end (or the pipeline's own
// stdin, on the first stage) to the child about to be forked, and keeps
// the new pipe's read end alive for the next iteration.
func (ev *Evaluator) runPipeline(n *Node, io stdio) (int, error) {
	stages := flattenPipe(n)
	if len(stages) == 0 {
		return 0, ErrEmptyPipeline
	}

	pids := make([]int, 0, len(stages))
	curIn := io.Stdin

	for i, stage := range stages {
		last := i == len(stages)-1

		var curOut *os.File
		var nextIn *os.File
		if last {
			curOut = io.Stdout
		} else {
			pr, pw, err := os.Pipe()
			if err != nil {
				killAll(pids)
				return 0, fmt.Errorf("shellcore: pipe: %w", err)
			}
			curOut = pw
			nextIn = pr
		}

		pid, err := ev.startStage(stage, stdio{Stdin: curIn, Stdout: curOut, Stderr: io.Stderr})

		// The parent's copies of the fds it handed to the child (or threw
		// away because the fork failed) must close so EOF propagates down
		// the pipe once every writer with it open has exited.
		if curIn != io.Stdin {
			curIn.Close()
		}
		if !last {
			curOut.Close()
		}

		if err != nil {
			if nextIn != nil {
				nextIn.Close()
			}
			killAll(pids)
			return 0, fmt.Errorf("shellcore: pipeline stage %d: %w", i, err)
		}

		pids = append(pids, pid)
		curIn = nextIn
	}

	codes := make([]int, len(pids))
	for i, pid := range pids {
		code, err := waitPid(pid)
		if err != nil {
			return 0, err
		}
		codes[i] = code
	}

	for i := len(codes) - 1; i >= 0; i-- {
		if codes[i] != 0 {
			return codes[i], nil
		}
	}
	return 0, nil
}

// startStage runs one pipeline stage to completion of its *start* (not
// its exit): a plain external SIMPLE command forks directly via
// forkRun, while a builtin, a SIMPLE command whose redirections or
// executable lookup fail (the worker reports that failure and exits with
// the status runSimple gives it), or any compound stage (a nested PIPE, SEQ,
// SUBSHELL, and so on, which spec.md's data model allows as a PIPE
// operand) runs inside its own re-exec'd worker process via
// forkSubshell, since a pipe stage must be a separate OS process to
// participate in the pipe's fd plumbing.
func (ev *Evaluator) startStage(stage *Node, io stdio) (int, error) {
	if stage.Kind == KindSimple {
		if _, isBuiltin := builtins[stage.Argv[0]]; !isBuiltin {
			ev.env.applyLocals(stage.Locals)
			stdin, stdout, cleanup, err := ev.resolveRedirections(stage, io)
			if err == nil {
				defer cleanup()
				if path, lerr := LookPath(stage.Argv[0]); lerr == nil {
					return forkRun(path, stage.Argv, ev.env.Environ(), stdin, stdout, io.Stderr)
				}
			}
		}
	}
	return ev.forkSubshell(stage, io)
}

// killAll is used when a mid-pipeline fork fails: stages already started
// would otherwise block forever on a pipe whose other end never arrives.
func killAll(pids []int) {
	for _, pid := range pids {
		unix.Kill(pid, unix.SIGKILL)
		_, _ = waitPid(pid)
	}
}
