package testutil

import (
	"testing"

	"github.com/99designs/keyring"

	"github.com/taskboard/client/internal/store"
)

// NewTestStore creates an in-memory ActivityStore with all migrations
// applied. It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.ActivityStore {
	t.Helper()

	s, err := store.NewActivityStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// NewTestKeyring returns an in-memory keyring so session tests never touch
// the system credential store.
func NewTestKeyring(t *testing.T) keyring.Keyring {
	t.Helper()
	return keyring.NewArrayKeyring(nil)
}
