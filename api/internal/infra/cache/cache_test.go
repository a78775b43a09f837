package cache

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

func TestSetAndExpire(t *testing.T) {
	c := InitStorage()

	c.Set("short", gofakeit.BuzzWord(), 50*time.Millisecond)
	c.Set("long", gofakeit.BuzzWord(), time.Minute)

	if c.Load("short") == nil || c.Load("long") == nil {
		t.Fatal("values must be readable right after Set")
	}

	time.Sleep(150 * time.Millisecond)

	if c.Load("short") != nil {
		t.Fatal("short entry must expire")
	}
	if c.Load("long") == nil {
		t.Fatal("long entry must survive")
	}
}

func TestOverwriteWinsAgainstStaleExpiry(t *testing.T) {
	c := InitStorage()

	c.Set("k", "old", 50*time.Millisecond)
	c.Set("k", "new", time.Minute)

	time.Sleep(150 * time.Millisecond)

	v := c.Load("k")
	if v != "new" {
		t.Fatalf("got %v, want the overwritten value", v)
	}
}

func TestDel(t *testing.T) {
	c := InitStorage()

	c.SetNoExp("k", true)
	c.Del("k")

	if c.Load("k") != nil {
		t.Fatal("deleted key must be gone")
	}
}

func TestLoadOrSet(t *testing.T) {
	c := InitStorage()

	first := c.LoadOrSet("counter", 1, time.Minute)
	if first != 1 {
		t.Fatalf("got %v", first)
	}

	second := c.LoadOrSet("counter", 2, time.Minute)
	if second != 1 {
		t.Fatalf("LoadOrSet must keep the existing value, got %v", second)
	}
}
