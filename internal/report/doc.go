// Package report renders library data as terminal tables for the CLI.
package report
