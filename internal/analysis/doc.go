// Package analysis computes playlist profiles from cached track data.
//
// A profile covers counts, duration and popularity averages, per-feature
// statistics, the dominant artists, and a coarse mood classification. The
// package also produces the distribution, correlation, and radar payloads
// the dashboard serves. Everything here is pure computation; no I/O.
package analysis
