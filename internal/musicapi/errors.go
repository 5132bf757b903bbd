package musicapi

import "errors"

// ErrNotAuthenticated indicates no cached OAuth token is available. The user
// must run the login flow first.
var ErrNotAuthenticated = errors.New("not authenticated with Spotify; run `cratedig login`")

// ErrMissingCredentials indicates the Spotify application credentials are not
// configured.
var ErrMissingCredentials = errors.New("spotify client credentials not configured; set spotify.client_id and spotify.client_secret")
