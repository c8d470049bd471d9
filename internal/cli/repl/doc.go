// Package repl provides the interactive loop behind `jmapctl shell`.
//
//   - repl.go: the read-eval-print loop and line splitting
//   - completer.go: prefix completion over the known commands
//   - history.go: command history, optionally kept in a file
//
// The loop itself knows nothing about maps; each line is split into
// arguments and handed to a Handler.
package repl
