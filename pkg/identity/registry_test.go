package identity

import (
	"strconv"
	"sync"
	"testing"
)

func TestRegisterAssignsUniqueIDs(t *testing.T) {
	reg := New[int]()
	seen := make(map[string]bool, 10000)
	for i := 0; i < 10000; i++ {
		id := reg.Register(i, "")
		if id == "" {
			t.Fatal("expected non-empty id")
		}
		if seen[id] {
			t.Fatalf("duplicate id %q at %d", id, i)
		}
		seen[id] = true
	}
	if reg.Len() != 10000 {
		t.Errorf("Len() = %d, want 10000", reg.Len())
	}
	for id := range seen {
		if _, ok := reg.Lookup(id); !ok {
			t.Fatalf("Lookup(%q) missing", id)
		}
	}
}

func TestRegisterHonorsFreePreferredID(t *testing.T) {
	reg := New[string]()
	if got := reg.Register("a", "custom"); got != "custom" {
		t.Errorf("Register = %q, want %q", got, "custom")
	}
	v, ok := reg.Lookup("custom")
	if !ok || v != "a" {
		t.Errorf("Lookup = %q, %v; want a, true", v, ok)
	}
}

func TestRegisterFallsBackOnCollision(t *testing.T) {
	var fallbacks [][2]string
	reg := New[string](WithFallbackHook(func(preferred, assigned string) {
		fallbacks = append(fallbacks, [2]string{preferred, assigned})
	}))

	reg.Register("first", "dup")
	id := reg.Register("second", "dup")
	if id == "dup" {
		t.Fatal("colliding preferred id must not be reused")
	}
	if v, _ := reg.Lookup("dup"); v != "first" {
		t.Errorf("Lookup(dup) = %q, want first", v)
	}
	if v, _ := reg.Lookup(id); v != "second" {
		t.Errorf("Lookup(%q) = %q, want second", id, v)
	}
	if len(fallbacks) != 1 || fallbacks[0] != [2]string{"dup", id} {
		t.Errorf("fallbacks = %v", fallbacks)
	}
}

func TestGenerateRetriesOnCollision(t *testing.T) {
	seq := []string{"a", "a", "b"}
	n := 0
	reg := New[int](WithGenerator(func() string {
		id := seq[n%len(seq)]
		n++
		return id
	}))

	if got := reg.Register(1, ""); got != "a" {
		t.Fatalf("first Register = %q, want a", got)
	}
	if got := reg.Register(2, ""); got != "b" {
		t.Errorf("second Register = %q, want b", got)
	}
}

func TestGenerateDoesNotReserve(t *testing.T) {
	reg := New[int]()
	id := reg.Generate("x")
	if id != "x" {
		t.Errorf("Generate = %q, want x", id)
	}
	if reg.Len() != 0 {
		t.Errorf("Len() = %d, want 0", reg.Len())
	}
}

func TestReleaseAllowsReuse(t *testing.T) {
	reg := New[int]()
	id := reg.Register(1, "slot")
	reg.Release(id)

	if _, ok := reg.Lookup(id); ok {
		t.Error("released id should not resolve")
	}
	if got := reg.Register(2, "slot"); got != "slot" {
		t.Errorf("Register after release = %q, want slot", got)
	}
	reg.Release("never-registered")
}

func TestRegistryConcurrentUse(t *testing.T) {
	reg := New[int]()
	var wg sync.WaitGroup
	ids := make([]string, 200)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = reg.Register(i, "p"+strconv.Itoa(i%10))
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestNewV7(t *testing.T) {
	a, b := NewV7(), NewV7()
	if a == b {
		t.Error("expected distinct ids")
	}
	if len(a) != 36 {
		t.Errorf("len(NewV7()) = %d, want 36", len(a))
	}
}
