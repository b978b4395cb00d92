package cache

import (
	"testing"
	"time"
)

func TestLRU_GetSet(t *testing.T) {
	c := NewLRU[string](2, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get() on empty cache reported a hit")
	}

	c.Set("a", "1")
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Errorf("Get(a) = (%q, %v), want (1, true)", v, ok)
	}

	c.Set("a", "2")
	if v, _ := c.Get("a"); v != "2" {
		t.Errorf("Get(a) after overwrite = %q, want 2", v)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d after overwrite, want 1", c.Len())
	}
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a is now the most recently used
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b survived eviction, want least recently used dropped")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a was evicted despite recent use")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c missing after insert")
	}
}

func TestLRU_TTLExpiry(t *testing.T) {
	c := NewLRU[int](10, 10*time.Millisecond)

	c.Set("a", 1)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("Get() returned an expired entry")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after expired read, want 0", c.Len())
	}
}

func TestLRU_Delete(t *testing.T) {
	c := NewLRU[int](10, time.Minute)

	c.Set("a", 1)
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("Get() found a deleted entry")
	}

	// Deleting a missing key is a no-op.
	c.Delete("missing")
}
