// Package recommend ranks candidate tracks against a playlist's audio
// profile and returns the closest matches.
package recommend
