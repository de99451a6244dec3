package data

import "testing"

func TestOrderedMapPreservesInsertionOrder(t *testing.T) {
	m := NewOrderedMap[string, int]()
	m.Set("b", 2)
	m.Set("a", 1)
	m.Set("c", 3)
	m.Set("a", 10) // update, not re-insert

	want := []string{"b", "a", "c"}
	got := m.Keys()
	if len(got) != len(want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("keys = %v, want %v", got, want)
		}
	}
	if v, ok := m.Get("a"); !ok || v != 10 {
		t.Fatalf("Get(a) = %v, %v; want 10, true", v, ok)
	}
}

func TestOrderedMapDelete(t *testing.T) {
	m := NewOrderedMap[string, int]()
	m.Set("x", 1)
	m.Set("y", 2)
	m.Delete("x")
	if m.Len() != 1 {
		t.Fatalf("len = %d, want 1", m.Len())
	}
	if _, ok := m.Get("x"); ok {
		t.Fatal("x should be gone")
	}
	if got := m.Keys(); len(got) != 1 || got[0] != "y" {
		t.Fatalf("keys = %v, want [y]", got)
	}
}
