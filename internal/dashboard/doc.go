// Package dashboard serves the web dashboard API over the synced library:
// playlist listings, audio profiles, visualization payloads, and
// recommendations.
package dashboard
