// Package shellcore implements the execution core of a POSIX-style shell:
// fork/exec of simple commands, pipelines, redirection, here-documents,
// the cd/pushd/popd/dirs builtins, the &&/||/;/& combinators, subshells,
// and background job reaping. It does not parse shell syntax; callers
// build or receive a *Node tree (see builder.go) and hand it to an
// Evaluator.
package shellcore
