package shellcore

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// BackgroundResult reports one background job's completion, as returned
// by ReapBackground.
type BackgroundResult struct {
	Pid    int
	Status int
}

// backgroundTable tracks pids launched by `&` until ReapBackground
// collects them. It is separate from the pids a pipeline or foreground
// command waits on directly: those are reaped synchronously by waitPid,
// never through this table.
type backgroundTable struct {
	mu   sync.Mutex
	pids []int
}

func newBackgroundTable() *backgroundTable {
	return &backgroundTable{}
}

func (t *backgroundTable) add(pid int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pids = append(t.pids, pid)
}

// reap performs one WNOHANG sweep over every tracked pid, per spec.md
// §4.H, removing and reporting each one that has already exited. Pids
// still running stay in the table for the next call.
func (t *backgroundTable) reap() []BackgroundResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	var done []BackgroundResult
	live := t.pids[:0]
	for _, pid := range t.pids {
		var status unix.WaitStatus
		got, err := unix.Wait4(pid, &status, unix.WNOHANG, nil)
		if err != nil || got == 0 {
			live = append(live, pid)
			continue
		}
		done = append(done, BackgroundResult{Pid: pid, Status: decodeExitStatus(status)})
	}
	t.pids = live
	return done
}

// flattenBackground walks a right-nested chain of BG nodes (as
// produced by parsing "a & b & c", i.e. Background(a, Background(b, c)))
// into the ordered list of commands to
// launch asynchronously, plus the trailing node that runs in the
// foreground once they're all launched. `&` backgrounds only the
// command immediately to its left, then continues — the same way `;`
// continues to its right — so "a & b & c" backgrounds a and b, in that
// order, then runs c in the foreground.
func flattenBackground(n *Node) (entries []*Node, tail *Node) {
	for n.Kind == KindBackground {
		entries = append(entries, n.Left)
		n = n.Right
	}
	return entries, n
}

// runBackgroundChain implements the BG combinator per spec.md §4.H:
// launch each backgrounded entry without waiting for it, in traversal
// order, then evaluate the foreground tail and return its status. Each
// launch prints the fixed "Backgrounded: <pid>" diagnostic line spec.md
// §6 and scenario E9 require, on the same stream startup/exec errors use.
func (ev *Evaluator) runBackgroundChain(n *Node, io stdio) (int, error) {
	entries, tail := flattenBackground(n)
	for _, entry := range entries {
		pid, err := ev.forkSubshell(entry, io)
		if err != nil {
			return 0, fmt.Errorf("shellcore: background launch: %w", err)
		}
		ev.bg.add(pid)
		fmt.Fprintf(io.Stderr, "Backgrounded: %d\n", pid)
	}
	return ev.evalNode(tail, io)
}
