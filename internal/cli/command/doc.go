// Package command provides CLI command definitions for jmapctl.
//
// This package defines all CLI commands using urfave/cli/v2:
//
//   - root.go: App, global flags, configuration and logging setup
//   - session.go: per-invocation state shared by every command
//   - ops.go: map operations (get, put, remove, clear, save, ...)
//   - inspect.go: read-only views of the snapshot and journal files
//   - values.go: on-disk value encodings and sealing
//   - digest.go: order-independent content fingerprint
//   - shell.go: interactive mode with config hot reload
//   - misc.go: version, salt and config show
//
// Map operations are described once as ops and exposed both as CLI
// commands and as shell commands.
package command
