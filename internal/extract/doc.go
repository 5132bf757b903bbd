// Package extract syncs playlists and audio features from the music API into
// the local SQLite library.
package extract
