// Package preflight provides readiness checks for the destinations a fanlog
// configuration points at.
//
// The CLI "fanlog config validate" command runs RunAll after the config has
// loaded, so unwritable directories and unreachable collectors are reported
// before a record is ever dispatched. Checks never create files or send
// records.
package preflight
