package shellcore

import (
	"fmt"
	"log/slog"
	"os"
)

// stdio bundles the three standard streams a node's commands inherit.
// Pipeline stages rebind Stdin/Stdout as they wire pipes between stages;
// Stderr is never touched by a pipe (spec.md §4.F: pipes connect only
// stdout to stdin).
type stdio struct {
	Stdin, Stdout, Stderr *os.File
}

// Config configures an Evaluator. It mirrors the struct-literal
// configuration style of orospakr-spawnexec's Cmd fields and opal's
// executor.Config, rather than a functional-options API: the struct is
// built once per shell instance, and a zero-valued field takes the
// default documented on it.
type Config struct {
	// Environ seeds the shell's environment, in "NAME=VALUE" form. A nil
	// slice starts the shell with an empty environment.
	Environ []string

	// Dir is the shell's initial working directory. Empty means inherit
	// os.Getwd().
	Dir string

	// TempDir is where here-document bodies are staged before being
	// unlinked (see stageHeredoc). Empty means os.TempDir().
	TempDir string

	// Stdin, Stdout, Stderr are not read by NewEvaluator. The streams a
	// tree inherits are the ones passed to Eval, where nil means
	// os.Stdin/os.Stdout/os.Stderr.
	Stdin, Stdout, Stderr *os.File

	// Logger, if non-nil, receives a debug-level trace of each node kind
	// the evaluator dispatches. It is never used for the stderr diagnostic protocol in
	// reportStartError, which is a fixed wire format, not a log stream.
	// See SPEC_FULL.md §A.
	Logger *slog.Logger
}

// Evaluator walks a Node tree, dispatching each construct to the
// component responsible for it (simple.go, pipeline.go, background.go,
// subshell.go) and threading the shell's Environment through the
// recursion per spec.md §4.G.
type Evaluator struct {
	env     *Environment
	tempDir string
	logger  *slog.Logger
	bg      *backgroundTable
}

// NewEvaluator builds an Evaluator from cfg.
func NewEvaluator(cfg Config) (*Evaluator, error) {
	dir := cfg.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("shellcore: resolve initial cwd: %w", err)
		}
		dir = wd
	}
	tmp := cfg.TempDir
	if tmp == "" {
		tmp = os.TempDir()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Evaluator{
		env:     NewEnvironment(cfg.Environ, dir),
		tempDir: tmp,
		logger:  logger,
		bg:      newBackgroundTable(),
	}, nil
}

// Env exposes the evaluator's Environment, for callers (notably
// cmd/shellcore) that want to report $? or the directory stack between
// commands.
func (ev *Evaluator) Env() *Environment {
	return ev.env
}

// Eval evaluates n to completion and returns its exit status. A non-nil
// error is returned only for setup failures the tree itself cannot
// express as a status (a malformed Node, an I/O failure unrelated to any
// one child) — never for a command's ordinary nonzero exit, which is
// reported purely through the returned int, matching spec.md §7.
func (ev *Evaluator) Eval(n *Node, stdin, stdout, stderr *os.File) (int, error) {
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	code, err := ev.evalNode(n, stdio{Stdin: stdin, Stdout: stdout, Stderr: stderr})
	if err != nil {
		return code, err
	}
	ev.env.setLastStatus(code)
	return code, nil
}

// evalNode is the recursive dispatcher described in spec.md §4.G. Each
// case hands off to the component that owns that Kind; evalNode itself
// only implements the four combinators' control flow.
func (ev *Evaluator) evalNode(n *Node, io stdio) (int, error) {
	if n == nil {
		return 0, fmt.Errorf("%w: nil node", ErrMalformedNode)
	}
	if err := n.validate(); err != nil {
		return 0, err
	}
	ev.logger.Debug("eval", "kind", n.Kind.String())

	switch n.Kind {
	case KindSimple:
		return ev.runSimple(n, io)

	case KindPipe:
		return ev.runPipeline(n, io)

	case KindSeq:
		left, err := ev.evalNode(n.Left, io)
		if err != nil {
			return 0, err
		}
		right, err := ev.evalNode(n.Right, io)
		if err != nil {
			return 0, err
		}
		if right != 0 {
			return right, nil
		}
		return left, nil

	case KindAnd:
		left, err := ev.evalNode(n.Left, io)
		if err != nil {
			return 0, err
		}
		if left != 0 {
			return left, nil
		}
		return ev.evalNode(n.Right, io)

	case KindOr:
		left, err := ev.evalNode(n.Left, io)
		if err != nil {
			return 0, err
		}
		if left == 0 {
			return left, nil
		}
		return ev.evalNode(n.Right, io)

	case KindBackground:
		return ev.runBackgroundChain(n, io)

	case KindSubshell:
		return ev.runSubshell(n, io)

	default:
		return 0, fmt.Errorf("%w: unhandled kind %s", ErrMalformedNode, n.Kind)
	}
}

// ReapBackground performs one non-blocking sweep of completed background
// jobs, per spec.md §4.H. Embedding programs should call it periodically
// (e.g. once per prompt) rather than relying on signal delivery, since
// this evaluator does not install a SIGCHLD handler. Each job reaped
// this way prints the fixed "Completed: <pid> (<code>)" diagnostic line
// spec.md §6 and scenario E9 require to stderr.
func (ev *Evaluator) ReapBackground(stderr *os.File) []BackgroundResult {
	if stderr == nil {
		stderr = os.Stderr
	}
	done := ev.bg.reap()
	for _, d := range done {
		fmt.Fprintf(stderr, "Completed: %d (%d)\n", d.Pid, d.Status)
	}
	return done
}
