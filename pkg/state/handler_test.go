package state

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func incr(prev any) any { return prev.(int) + 1 }

func TestSnapshotAppliesPendingUpdates(t *testing.T) {
	h := NewHandler()
	s := h.Snapshot()
	if got := s.Resolve("Root,Counter", func() any { return 0 }); got != 0 {
		t.Fatalf("initial state = %v, want 0", got)
	}
	h.Commit(s)

	h.Enqueue("Root,Counter", incr)
	h.Enqueue("Root,Counter", incr)
	if diff := cmp.Diff(map[string]struct{}{"Root,Counter": {}}, h.KeysForPendingUpdates()); diff != "" {
		t.Errorf("pending keys (-want +got):\n%s", diff)
	}

	s = h.Snapshot()
	if got := s.Resolve("Root,Counter", func() any { return 0 }); got != 2 {
		t.Errorf("resolved state = %v, want 2", got)
	}
	h.Commit(s)

	if h.HasPendingUpdates() {
		t.Error("commit should consume applied updates")
	}
	if v, _ := h.Get("Root,Counter"); v != 2 {
		t.Errorf("committed state = %v, want 2", v)
	}
}

func TestCommitKeepsLaterUpdates(t *testing.T) {
	h := NewHandler()
	s := h.Snapshot()
	s.Resolve("k", func() any { return 0 })
	h.Commit(s)

	h.Enqueue("k", incr)
	s1 := h.Snapshot()
	h.Enqueue("k", incr)

	s1.Resolve("k", nil)
	h.Commit(s1)

	if !h.HasPendingUpdates() {
		t.Fatal("update enqueued after the snapshot should remain pending")
	}
	s2 := h.Snapshot()
	if got := s2.Resolve("k", nil); got != 2 {
		t.Errorf("state after second layout = %v, want 2", got)
	}
}

func TestOverlappingSnapshotsCommitInOrder(t *testing.T) {
	h := NewHandler()
	s := h.Snapshot()
	s.Resolve("k", func() any { return 0 })
	h.Commit(s)

	h.Enqueue("k", incr)
	first := h.Snapshot()
	h.Enqueue("k", incr)
	second := h.Snapshot()

	first.Resolve("k", nil)
	second.Resolve("k", nil)
	h.Commit(second)

	if v, _ := h.Get("k"); v != 2 {
		t.Errorf("state = %v, want 2", v)
	}
	if h.HasPendingUpdates() {
		t.Error("no updates should remain after the newest snapshot commits")
	}
}

func TestCommitPrunesUntouchedKeys(t *testing.T) {
	h := NewHandler()
	s := h.Snapshot()
	s.Resolve("a", func() any { return "a" })
	s.Resolve("b", func() any { return "b" })
	h.Commit(s)

	s = h.Snapshot()
	s.Carry("a", "a")
	h.Commit(s)

	if diff := cmp.Diff([]string{"a"}, h.Keys()); diff != "" {
		t.Errorf("keys (-want +got):\n%s", diff)
	}
}
