package shellcore

import (
	"fmt"
	"strings"

	"golang.org/x/sys/unix"
)

// builtins are the argv[0] names the evaluator dispatches in-process
// instead of forking, per spec.md §4.D. Redirections attached to a
// builtin's Node are ignored, matching the documented deviation from
// POSIX preserved from the original implementation.
var builtins = map[string]func(ev *Evaluator, args []string, io stdio) int{
	"cd":    builtinCd,
	"pushd": builtinPushd,
	"popd":  builtinPopd,
	"dirs":  builtinDirs,
}

// runBuiltin reports whether argv[0] names a builtin and, if so, runs it
// and returns its status.
func runBuiltin(ev *Evaluator, argv []string, io stdio) (int, bool) {
	fn, ok := builtins[argv[0]]
	if !ok {
		return 0, false
	}
	return fn(ev, argv[1:], io), true
}

// builtinCd implements cd per spec.md §4.D: with no argument it changes
// to $HOME; otherwise to the named directory. It updates both the real
// process cwd (via unix.Chdir, so every subsequently forked child
// inherits it) and the evaluator's own bookkeeping.
func builtinCd(ev *Evaluator, args []string, io stdio) int {
	if len(args) >= 2 {
		fmt.Fprintln(io.Stderr, "cd: too many arguments")
		return 1
	}
	target := ""
	if len(args) > 0 {
		target = args[0]
	}
	if target == "" {
		home, ok := ev.env.Getenv("HOME")
		if !ok || home == "" {
			fmt.Fprintln(io.Stderr, "cd: HOME not set")
			return 1
		}
		target = home
	}
	if err := unix.Chdir(target); err != nil {
		fmt.Fprintf(io.Stderr, "cd: %s: %v\n", target, err)
		return 1
	}
	resolved, err := unix.Getwd()
	if err != nil {
		fmt.Fprintf(io.Stderr, "cd: %v\n", err)
		return 1
	}
	ev.env.setCwd(resolved)
	return 0
}

// builtinPushd implements pushd per spec.md §4.D: changes directory like
// cd, but pushes the new directory onto the stack instead of replacing
// the top entry. Argc must be exactly 2 (the "pushd" token itself plus
// one directory argument, i.e. len(args) == 1 here); anything else is an
// error with exit code 1. On success it prints the previous directory
// followed by each entry now on the stack.
func builtinPushd(ev *Evaluator, args []string, io stdio) int {
	if len(args) != 1 {
		fmt.Fprintln(io.Stderr, "pushd: usage: pushd <dir>")
		return 1
	}
	prev := ev.env.Cwd()
	target := args[0]
	if err := unix.Chdir(target); err != nil {
		fmt.Fprintf(io.Stderr, "pushd: %s: %v\n", target, err)
		return 1
	}
	resolved, err := unix.Getwd()
	if err != nil {
		fmt.Fprintf(io.Stderr, "pushd: %v\n", err)
		return 1
	}
	ev.env.pushDir(resolved)
	fmt.Fprintln(io.Stdout, strings.Join(append([]string{prev}, ev.env.Dirs()...), " "))
	return 0
}

// builtinPopd implements popd per spec.md §4.D: pops the top of the
// stack and changes back to the directory beneath it.
func builtinPopd(ev *Evaluator, args []string, io stdio) int {
	popped, err := ev.env.popDir()
	if err != nil {
		fmt.Fprintln(io.Stderr, "popd: directory stack empty")
		return 1
	}
	next := ev.env.Cwd()
	if err := unix.Chdir(next); err != nil {
		fmt.Fprintf(io.Stderr, "popd: %s: %v\n", next, err)
		// Restore the stack entry we just removed; cwd didn't actually move.
		ev.env.pushDir(popped)
		return 1
	}
	fmt.Fprintln(io.Stdout, strings.Join(ev.env.Dirs(), " "))
	return 0
}

// builtinDirs reports the directory stack, top first. It is not part of
// spec.md's Component D but is the natural companion to pushd/popd;
// SPEC_FULL.md §C admits it as a Non-goal-ungated supplement.
func builtinDirs(ev *Evaluator, args []string, io stdio) int {
	fmt.Fprintln(io.Stdout, strings.Join(ev.env.Dirs(), " "))
	return 0
}
