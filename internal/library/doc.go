// Package library persists the synced playlist cache in SQLite.
//
// The store keeps one row per playlist plus its ordered tracks, with artists
// and audio features serialized as JSON columns. Analysis, recommendation,
// and the dashboard all read from here so repeated work never re-hits the
// Spotify API.
package library
