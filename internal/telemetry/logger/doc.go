// Package logger builds the structured logger used by jmapctl.
//
//   - logger.go: slog handler construction and the shared level
//   - context.go: carrying a logger through a context
//   - redact.go: masking of secrets such as encryption passphrases
//
// Output is JSON by default or logfmt-style text. The level is held in a
// process-wide slog.LevelVar so it can change at runtime, for example when
// the configuration file is edited.
package logger
