// Command shellcore is a minimal demo shell built on top of the
// shellcore execution core. Its reader is a small hand-rolled splitter
// for ;, &&, ||, |, &, <, <<<, >, >> — not a POSIX-grammar parser. It
// exists to exercise the evaluator end to end, not to implement quoting,
// globbing, variable expansion, or any of the other constructs
// SPEC_FULL.md's Non-goals exclude.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/orospakr/shellcore"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	// Must run before any flag parsing or I/O: if this process is a
	// re-exec'd subshell worker, it decodes its payload and exits here
	// without ever reaching cobra.
	shellcore.RunSubshellWorker()

	var command string

	root := &cobra.Command{
		Use:   "shellcore",
		Short: "Demo shell built on the shellcore execution core",
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := shellcore.NewEvaluator(shellcore.Config{Environ: os.Environ()})
			if err != nil {
				return err
			}
			if command != "" {
				return runLine(ev, command)
			}
			return runREPL(ev)
		},
	}
	root.Flags().StringVarP(&command, "command", "c", "", "run a single command line and exit")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runLine(ev *shellcore.Evaluator, line string) error {
	n, err := parseLine(line)
	if err != nil {
		return err
	}
	if n == nil {
		return nil
	}
	code, err := ev.Eval(n, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		return err
	}
	ev.ReapBackground(os.Stderr)
	if code != 0 {
		os.Exit(code)
	}
	return nil
}

func runREPL(ev *shellcore.Evaluator) error {
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	scanner := bufio.NewScanner(os.Stdin)
	for {
		if interactive {
			fmt.Fprintf(os.Stderr, "shellcore:%s$ ", ev.Env().Cwd())
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		n, err := parseLine(line)
		if err != nil {
			fmt.Fprintln(os.Stderr, "shellcore:", err)
			continue
		}
		if n == nil {
			continue
		}
		if _, err := ev.Eval(n, os.Stdin, os.Stdout, os.Stderr); err != nil {
			fmt.Fprintln(os.Stderr, "shellcore:", err)
		}
		ev.ReapBackground(os.Stderr)
	}
}
