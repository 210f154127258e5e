package main

import (
	"fmt"
	"strings"

	"github.com/orospakr/shellcore"
)

// parseLine turns one line of input into a Node tree using the mini
// grammar documented in main.go's package comment: tokens separated by
// whitespace, combinators recognized only as standalone tokens (so
// operators must be space-separated from their operands), lowest to
// highest precedence ";", "&", "||", "&&", "|", then a simple command
// with NAME=VALUE prefixes and <, <<<, >, >> redirections.
func parseLine(line string) (*shellcore.Node, error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return nil, nil
	}
	return parseSeq(tokens)
}

func splitTop(tokens []string, op string) [][]string {
	var parts [][]string
	start := 0
	for i, t := range tokens {
		if t == op {
			parts = append(parts, tokens[start:i])
			start = i + 1
		}
	}
	parts = append(parts, tokens[start:])
	return parts
}

func parseSeq(tokens []string) (*shellcore.Node, error) {
	var nodes []*shellcore.Node
	for _, part := range splitTop(tokens, ";") {
		if len(part) == 0 {
			continue
		}
		n, err := parseBackground(part)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	return shellcore.Chain(shellcore.Seq, nodes...), nil
}

func parseBackground(tokens []string) (*shellcore.Node, error) {
	parts := splitTop(tokens, "&")
	if len(parts) == 1 {
		return parseOr(parts[0])
	}

	tailTokens := parts[len(parts)-1]
	entryParts := parts[:len(parts)-1]

	var tail *shellcore.Node
	var err error
	if len(tailTokens) == 0 {
		tail = shellcore.Simple("true") // trailing "&" with nothing after it
	} else {
		tail, err = parseOr(tailTokens)
		if err != nil {
			return nil, err
		}
	}

	for i := len(entryParts) - 1; i >= 0; i-- {
		if len(entryParts[i]) == 0 {
			continue
		}
		entry, err := parseOr(entryParts[i])
		if err != nil {
			return nil, err
		}
		tail = shellcore.Background(entry, tail)
	}
	return tail, nil
}

func parseOr(tokens []string) (*shellcore.Node, error) {
	var nodes []*shellcore.Node
	for _, part := range splitTop(tokens, "||") {
		n, err := parseAnd(part)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return shellcore.Chain(shellcore.Or, nodes...), nil
}

func parseAnd(tokens []string) (*shellcore.Node, error) {
	var nodes []*shellcore.Node
	for _, part := range splitTop(tokens, "&&") {
		n, err := parsePipe(part)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return shellcore.Chain(shellcore.And, nodes...), nil
}

func parsePipe(tokens []string) (*shellcore.Node, error) {
	var nodes []*shellcore.Node
	for _, part := range splitTop(tokens, "|") {
		n, err := parseSimple(part)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return shellcore.Chain(shellcore.Pipe, nodes...), nil
}

func parseSimple(tokens []string) (*shellcore.Node, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	var argv []string
	var locals []struct{ name, value string }
	i := 0
	for ; i < len(tokens); i++ {
		name, value, ok := strings.Cut(tokens[i], "=")
		if !ok || name == "" || strings.ContainsAny(name, "<>|&;") {
			break
		}
		locals = append(locals, struct{ name, value string }{name, value})
	}

	n := &shellcore.Node{}
	for ; i < len(tokens); i++ {
		switch tokens[i] {
		case "<":
			i++
			if i >= len(tokens) {
				return nil, fmt.Errorf("missing file after <")
			}
			shellcore.WithStdinFile(n, tokens[i])
		case "<<<":
			i++
			if i >= len(tokens) {
				return nil, fmt.Errorf("missing word after <<<")
			}
			shellcore.WithHeredoc(n, tokens[i]+"\n")
		case ">":
			i++
			if i >= len(tokens) {
				return nil, fmt.Errorf("missing file after >")
			}
			shellcore.WithStdoutFile(n, tokens[i])
		case ">>":
			i++
			if i >= len(tokens) {
				return nil, fmt.Errorf("missing file after >>")
			}
			shellcore.WithAppendFile(n, tokens[i])
		default:
			argv = append(argv, tokens[i])
		}
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("command has no arguments")
	}
	n.Kind = shellcore.KindSimple
	n.Argv = argv
	for _, l := range locals {
		shellcore.WithLocal(n, l.name, l.value)
	}
	return n, nil
}
