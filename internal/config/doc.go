// Package config loads, normalizes, and validates fanlog configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours environment fallbacks such as FANLOG_APP and
// FANLOG_HTTP_TOKEN. The Config type describes the application label, the
// command's own logging, and the ordered list of transports a Logger should
// dispatch to.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical type names, and clear validation errors.
package config
