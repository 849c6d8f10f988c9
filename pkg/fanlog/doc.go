// Package fanlog is a small structured-logging façade that fans every log
// call out to a fixed list of transports.
//
// A Logger is built once with an optional app label and an ordered list of
// transports. Each level method (Trace through Fatal) builds an immutable
// Record and hands the same value to every transport in order. Transports
// may finish synchronously (Write) or asynchronously (WriteAsync); either
// way a failure is reported as one diagnostic line on the Logger's
// diagnostic writer (stderr by default) and never reaches the caller or the
// remaining transports.
//
// Level filtering, formatting and I/O belong to transports. The packages
// under pkg/transport provide terminal, JSON-lines file, HTTP, SQLite and
// slog sinks; fanlogtest provides recording and failing doubles for tests.
package fanlog
