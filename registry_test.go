package sqlite

import "testing"

func TestRegistryLifecycle(t *testing.T) {
	r := newRegistry()
	a := r.register("a")
	b := r.register("b")
	if a == 0 || b == 0 || a == b {
		t.Fatalf("ids = %d, %d", a, b)
	}
	if got := r.lookup(a); got != "a" {
		t.Fatalf("lookup(a) = %v", got)
	}
	if got := r.unregister(a); got != "a" {
		t.Fatalf("unregister(a) = %v", got)
	}
	if got := r.lookup(a); got != nil {
		t.Fatalf("lookup after unregister = %v", got)
	}
	if got := r.lookup(b); got != "b" {
		t.Fatalf("lookup(b) = %v", got)
	}
}

func TestRegistryZeroIDIsNoop(t *testing.T) {
	r := newRegistry()
	if got := r.lookup(0); got != nil {
		t.Fatalf("lookup(0) = %v", got)
	}
	if got := r.unregister(0); got != nil {
		t.Fatalf("unregister(0) = %v", got)
	}
}

func TestRegistryIDsNeverReused(t *testing.T) {
	r := newRegistry()
	seen := map[uintptr]bool{}
	for i := 0; i < 100; i++ {
		id := r.register(i)
		if seen[id] {
			t.Fatalf("id %d handed out twice", id)
		}
		seen[id] = true
		r.unregister(id)
	}
}
