package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestKeyIsStable(t *testing.T) {
	k1 := Key("https://example.com/data.csv")
	k2 := Key("https://example.com/data.csv")
	k3 := Key("https://example.com/other.csv")

	if k1 != k2 {
		t.Errorf("identical descriptors hash differently: %q vs %q", k1, k2)
	}
	if k1 == k3 {
		t.Error("distinct descriptors collide")
	}
	if len(k1) != 40 {
		t.Errorf("key length = %d, want 40 hex chars", len(k1))
	}
}

func TestPutGet(t *testing.T) {
	s := New(t.TempDir(), time.Hour)
	payload := []byte("year,return\n2000,0.1\n")
	key := Key("descriptor")

	if _, ok := s.Get(key); ok {
		t.Fatal("Get() hit on an empty store")
	}
	if err := s.Put(key, payload); err != nil {
		t.Fatalf("Put() returned error: %v", err)
	}
	got, ok := s.Get(key)
	if !ok {
		t.Fatal("Get() missed after Put()")
	}
	if string(got) != string(payload) {
		t.Errorf("Get() = %q, want %q", got, payload)
	}
}

func TestExpiry(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, time.Hour)
	key := Key("descriptor")
	if err := s.Put(key, []byte("payload")); err != nil {
		t.Fatalf("Put() returned error: %v", err)
	}

	// Age the entry past the TTL.
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(filepath.Join(dir, key), old, old); err != nil {
		t.Fatal(err)
	}

	if _, ok := s.Get(key); ok {
		t.Error("Get() hit on an expired entry")
	}
}

func TestClear(t *testing.T) {
	s := New(t.TempDir(), time.Hour)
	for _, d := range []string{"a", "b", "c"} {
		if err := s.Put(Key(d), []byte(d)); err != nil {
			t.Fatalf("Put(%q) returned error: %v", d, err)
		}
	}

	entries, _, err := s.Stat()
	if err != nil {
		t.Fatalf("Stat() returned error: %v", err)
	}
	if entries != 3 {
		t.Errorf("entries = %d, want 3", entries)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() returned error: %v", err)
	}
	if _, ok := s.Get(Key("a")); ok {
		t.Error("Get() hit after Clear()")
	}
	entries, bytes, err := s.Stat()
	if err != nil {
		t.Fatalf("Stat() after Clear() returned error: %v", err)
	}
	if entries != 0 || bytes != 0 {
		t.Errorf("Stat() after Clear() = %d entries, %d bytes, want 0, 0", entries, bytes)
	}
}
