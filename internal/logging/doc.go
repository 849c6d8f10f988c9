// Package logging assembles the slog loggers the fanlog command uses for its
// own operational output.
//
// It owns the console and JSON handlers, level and output plumbing, a tee
// handler for mirroring output to a file, and a no-op logger for tests and
// wiring code that cannot fail. The same handlers back the "slog" transport
// type, so records forwarded through slog look like the command's own lines.
package logging
