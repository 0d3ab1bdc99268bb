package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := New[int](time.Minute)

	c.Set("a", 1)
	got, ok := c.Get("a")
	if !ok || got != 1 {
		t.Fatalf("Get(a) = %d, %v; want 1, true", got, ok)
	}

	if _, ok := c.Get("missing"); ok {
		t.Fatal("Get(missing) reported a hit")
	}
}

func TestExpiry(t *testing.T) {
	c := New[string](10 * time.Millisecond)

	c.Set("a", "x")
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Fatal("expired entry still returned")
	}
	if c.Size() != 0 {
		t.Fatalf("Size = %d after expired access; want 0", c.Size())
	}
}

func TestClear(t *testing.T) {
	c := New[int](time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Clear()

	if c.Size() != 0 {
		t.Fatalf("Size = %d after Clear; want 0", c.Size())
	}
}

func TestCleanExpired(t *testing.T) {
	c := New[int](10 * time.Millisecond)
	c.Set("a", 1)
	c.Set("b", 2)
	time.Sleep(20 * time.Millisecond)
	c.Set("c", 3)

	if n := c.CleanExpired(); n != 2 {
		t.Fatalf("CleanExpired = %d; want 2", n)
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatal("live entry removed by CleanExpired")
	}
}

func TestDelete(t *testing.T) {
	c := New[int](time.Minute)
	c.Set("a", 1)
	c.Delete("a")
	c.Delete("never-set")

	if _, ok := c.Get("a"); ok {
		t.Fatal("deleted entry still returned")
	}
}
