// Package logging builds the slog loggers used across cratedig.
//
// Two output formats are supported: a compact console format for interactive
// use and JSON for machine consumption. Attr helpers keep field names
// consistent between the CLI and the daemon.
package logging
