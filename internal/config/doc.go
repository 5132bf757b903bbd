// Package config loads, normalizes, and validates cratedig configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks for the
// Spotify credentials. The Config type centralizes every knob the CLI and the
// dashboard daemon need.
package config
