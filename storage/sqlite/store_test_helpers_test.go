package sqlite

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/louisbranch/waymark/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.sqlite")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open ledger store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close ledger store: %v", err)
		}
	})
	return store
}

func testAccount(fill string) domain.AccountID {
	return domain.AccountID(strings.Repeat(fill, domain.AccountIDLength))
}
