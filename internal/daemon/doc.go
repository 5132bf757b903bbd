// Package daemon coordinates the long-running cratedigd process.
//
// It wires configuration, the library store, and the extractor into a single
// lifecycle with flock-based locking to prevent multiple instances, and runs
// scheduled library syncs between dashboard-triggered ones.
package daemon
