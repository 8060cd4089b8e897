package history

import (
	"path/filepath"
	"testing"
)

func TestAppendAndRecent(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer store.Close()

	store.Append("x = 1")
	store.Append("print x")
	store.Append("x = x + 1")

	got := store.Recent(2)
	want := []string{"print x", "x = x + 1"}
	if len(got) != len(want) {
		t.Fatalf("Recent(2) returned %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %q, want %q (chronological order)", i, got[i], want[i])
		}
	}

	if all := store.Recent(10); len(all) != 3 {
		t.Errorf("Recent(10) returned %d entries, want 3", len(all))
	}
}

func TestPersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	store.Append("remembered")
	store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	got := reopened.Recent(10)
	if len(got) != 1 || got[0] != "remembered" {
		t.Errorf("expected the entry to survive a reopen, got %v", got)
	}
}

func TestNilStoreIsInert(t *testing.T) {
	var store *Store
	store.Append("dropped")
	if got := store.Recent(10); got != nil {
		t.Errorf("nil store must return no history, got %v", got)
	}
	if err := store.Close(); err != nil {
		t.Errorf("closing a nil store must be a no-op, got %v", err)
	}
}
