package testsupport

import (
	"testing"

	"cratedig/internal/config"
	"cratedig/internal/library"
)

// MustOpenStore opens a library store for the test config and closes it on
// cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *library.Store {
	t.Helper()

	store, err := library.Open(cfg)
	if err != nil {
		t.Fatalf("open library store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close library store: %v", err)
		}
	})
	return store
}
