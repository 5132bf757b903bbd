// Package musicapi wraps the Spotify Web API behind domain types.
//
// Authenticator handles the one-time interactive OAuth flow and token
// caching; Client implements the Service interface used by extraction,
// recommendation, and the CLI. Callers never see wire-library types, which
// keeps them easy to fake in tests.
package musicapi
