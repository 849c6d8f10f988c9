// Package main hosts the fanlog CLI entrypoint and command graph.
//
// The Cobra-based command tree loads a configuration, assembles the
// configured transports behind a fanlog.Logger, and exposes it for emitting
// records from shell scripts, listing what a config would dispatch to, and
// scaffolding or checking config files. The heavy lifting lives in
// internal/setup and the pkg/ transports; commands here only parse input and
// print results.
package main
