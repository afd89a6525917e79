package store

import "testing"

func TestMarkSeenFirstTime(t *testing.T) {
	store := NewSeenStore(100, 0.01)

	if !store.MarkSeen(12345) {
		t.Error("MarkSeen() = false for a new update id, want true")
	}
	if !store.Has(12345) {
		t.Error("Has() = false after MarkSeen()")
	}
}

func TestMarkSeenDuplicate(t *testing.T) {
	store := NewSeenStore(100, 0.01)

	store.MarkSeen(777)
	if store.MarkSeen(777) {
		t.Error("MarkSeen() = true for a duplicate update id, want false")
	}
	if got := store.Size(); got != 1 {
		t.Errorf("Size() = %d after duplicate MarkSeen, want 1", got)
	}
}

func TestHasUnknownID(t *testing.T) {
	store := NewSeenStore(100, 0.01)

	if store.Has(999) {
		t.Error("Has() = true for an id never marked")
	}
}

func TestEvictionKeepsStoreBounded(t *testing.T) {
	store := NewSeenStore(3, 0.01)

	for id := int64(1); id <= 5; id++ {
		store.MarkSeen(id)
	}

	if got := store.Size(); got != 3 {
		t.Errorf("Size() = %d after overflow, want 3", got)
	}
	// Eviction is strictly oldest-first: ids 1 and 2 are gone, 3..5 stay.
	for _, id := range []int64{1, 2} {
		if store.Has(id) {
			t.Errorf("Has(%d) = true, want evicted", id)
		}
	}
	for _, id := range []int64{3, 4, 5} {
		if !store.Has(id) {
			t.Errorf("Has(%d) = false, want retained", id)
		}
	}
}

func TestClear(t *testing.T) {
	store := NewSeenStore(100, 0.01)

	store.MarkSeen(1)
	store.MarkSeen(2)
	store.Clear()

	if got := store.Size(); got != 0 {
		t.Errorf("Size() = %d after Clear(), want 0", got)
	}
	if store.Has(1) {
		t.Error("Has(1) = true after Clear()")
	}
	if !store.MarkSeen(1) {
		t.Error("MarkSeen() = false after Clear(), want id accepted as new")
	}
}
