package buffer

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "buffer.db"), "test")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreOrdersByPriority(t *testing.T) {
	s := openTestStore(t)
	base := time.Now()

	items := []Item{
		{Entity: EntityTask, EntityID: "t1", Operation: OperationDelete, Timestamp: base},
		{Entity: EntityArea, EntityID: "a1", Operation: OperationUpdate, Timestamp: base.Add(time.Second)},
		{Entity: EntityTask, EntityID: "t2", Operation: OperationUpdate, Timestamp: base.Add(2 * time.Second)},
	}
	for _, it := range items {
		if err := s.Enqueue(it); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	got, err := s.Peek(10)
	if err != nil {
		t.Fatalf("peek: %v", err)
	}
	want := []string{"a1", "t2", "t1"}
	if len(got) != len(want) {
		t.Fatalf("peek returned %d items", len(got))
	}
	for i, id := range want {
		if got[i].EntityID != id {
			t.Fatalf("position %d = %s, want %s", i, got[i].EntityID, id)
		}
	}
	if got[0].Priority != PriorityUpdate || got[2].Priority != PriorityDelete {
		t.Fatalf("priorities = %d, %d", got[0].Priority, got[2].Priority)
	}

	if n, _ := s.Size(); n != 3 {
		t.Fatalf("size = %d", n)
	}
	if err := s.Remove(got[0]); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if n, _ := s.Size(); n != 2 {
		t.Fatalf("size after remove = %d", n)
	}
}

func TestStoreRejectsIncompleteItem(t *testing.T) {
	s := openTestStore(t)
	if err := s.Enqueue(Item{Entity: EntityTask}); err == nil {
		t.Fatal("item without operation accepted")
	}
}

func TestStoreRetryAndBury(t *testing.T) {
	s := openTestStore(t)
	if err := s.Enqueue(Item{Entity: EntityTask, EntityID: "t1", Operation: OperationUpdate}); err != nil {
		t.Fatal(err)
	}
	items, _ := s.Peek(1)

	if err := s.Retry(items[0], errors.New("db down")); err != nil {
		t.Fatalf("retry: %v", err)
	}
	items, _ = s.Peek(10)
	if len(items) != 1 || items[0].Retries != 1 || items[0].LastError != "db down" {
		t.Fatalf("after retry = %+v", items)
	}

	if err := s.Bury(items[0], errors.New("still down")); err != nil {
		t.Fatalf("bury: %v", err)
	}
	if n, _ := s.Size(); n != 0 {
		t.Fatalf("pending = %d", n)
	}
	dead, err := s.Dead(0)
	if err != nil || len(dead) != 1 {
		t.Fatalf("dead = %v, %v", dead, err)
	}
	if dead[0].LastError != "still down" || dead[0].EntityID != "t1" {
		t.Fatalf("dead item = %+v", dead[0])
	}
}

func TestStoreCleanup(t *testing.T) {
	s := openTestStore(t)
	old := time.Now().Add(-48 * time.Hour)
	_ = s.Enqueue(Item{Entity: EntityTask, Operation: OperationUpdate, Timestamp: old})
	_ = s.Enqueue(Item{Entity: EntityTask, Operation: OperationUpdate})

	removed, err := s.Cleanup(time.Now().Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d", removed)
	}
	if n, _ := s.Size(); n != 1 {
		t.Fatalf("size = %d", n)
	}
}

func TestNilStore(t *testing.T) {
	var s *Store
	if err := s.Enqueue(Item{Entity: EntityTask, Operation: OperationUpdate}); err == nil {
		t.Fatal("nil store accepted an item")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
