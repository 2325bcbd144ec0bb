package uuid

import (
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := New()
		if !IsValid(id) {
			t.Fatalf("invalid uuid %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate uuid %q", id)
		}
		seen[id] = true
	}
}

func TestIssuedAt(t *testing.T) {
	before := time.Now().Add(-time.Second)
	at, ok := IssuedAt(New())
	if !ok {
		t.Fatal("expected a v7 timestamp")
	}
	if at.Before(before) || at.After(time.Now().Add(time.Second)) {
		t.Errorf("timestamp %v out of range", at)
	}

	if _, ok := IssuedAt("6592b2c1f0a4c1e3d8a1b2c3"); ok {
		t.Error("object id must not parse as v7")
	}
	if _, ok := IssuedAt("6ba7b810-9dad-41d1-80b4-00c04fd430c8"); ok {
		t.Error("v4 uuid must not report a timestamp")
	}
}
