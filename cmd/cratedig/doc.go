// Command cratedig is the CLI for syncing, analyzing, and getting
// recommendations from your playlist library.
package main
