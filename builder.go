package shellcore

// Simple builds a SIMPLE node running argv[0] with the given arguments.
// It is the Go-native construction API component K describes: an
// external parser (or a caller building trees by hand, as
// cmd/shellcore's demo reader does) composes a tree from these
// functions instead of populating Node literals directly.
func Simple(argv ...string) *Node {
	return &Node{Kind: KindSimple, Argv: argv}
}

// WithLocal attaches a name=value assignment to n, scoped the way
// spec.md §3 and environment.go's Setenv describe.
func WithLocal(n *Node, name, value string) *Node {
	n.Locals = append(n.Locals, Local{Name: name, Value: value})
	return n
}

// WithStdinFile redirects n's stdin from path.
func WithStdinFile(n *Node, path string) *Node {
	n.FromKind = FromFile
	n.FromTarget = path
	return n
}

// WithHeredoc redirects n's stdin from a staged copy of body.
func WithHeredoc(n *Node, body string) *Node {
	n.FromKind = FromHeredoc
	n.FromTarget = body
	return n
}

// WithStdoutFile redirects n's stdout to path, truncating it.
func WithStdoutFile(n *Node, path string) *Node {
	n.ToKind = ToFile
	n.ToTarget = path
	return n
}

// WithAppendFile redirects n's stdout to path, appending to it.
func WithAppendFile(n *Node, path string) *Node {
	n.ToKind = ToAppend
	n.ToTarget = path
	return n
}

// Pipe connects left's stdout to right's stdin.
func Pipe(left, right *Node) *Node {
	return &Node{Kind: KindPipe, Left: left, Right: right}
}

// Seq runs left to completion, then right, regardless of left's status.
// The combined status is right's, unless right succeeded (0) and left
// did not, in which case left's failure is reported instead.
func Seq(left, right *Node) *Node {
	return &Node{Kind: KindSeq, Left: left, Right: right}
}

// And runs right only if left succeeds (exit status 0).
func And(left, right *Node) *Node {
	return &Node{Kind: KindAnd, Left: left, Right: right}
}

// Or runs right only if left fails (nonzero exit status).
func Or(left, right *Node) *Node {
	return &Node{Kind: KindOr, Left: left, Right: right}
}

// Background runs entry asynchronously, then continues to next.
func Background(entry, next *Node) *Node {
	return &Node{Kind: KindBackground, Left: entry, Right: next}
}

// Subshell wraps body so it runs in a forked child, isolating any
// locals or cd/pushd/popd it performs from the parent shell.
func Subshell(body *Node) *Node {
	return &Node{Kind: KindSubshell, Left: body}
}

// Chain folds nodes left-to-right with combinator, e.g.
// Chain(Seq, a, b, c) == Seq(Seq(a, b), c). It panics if fewer than one
// node is given.
func Chain(combinator func(left, right *Node) *Node, nodes ...*Node) *Node {
	if len(nodes) == 0 {
		panic("shellcore: Chain requires at least one node")
	}
	n := nodes[0]
	for _, next := range nodes[1:] {
		n = combinator(n, next)
	}
	return n
}
