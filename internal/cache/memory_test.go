package cache

import (
	"testing"
	"time"
)

func TestMemorySetGetDelete(t *testing.T) {
	m := NewMemory()

	if _, ok := m.Get("missing"); ok {
		t.Fatalf("expected miss for unknown key")
	}

	m.Set("k", "v1", time.Minute)
	got, ok := m.Get("k")
	if !ok || got.(string) != "v1" {
		t.Fatalf("expected v1, got %v (%v)", got, ok)
	}

	m.Set("k", "v2", time.Minute)
	got, _ = m.Get("k")
	if got.(string) != "v2" {
		t.Fatalf("overwrite did not take: %v", got)
	}

	m.Delete("k")
	if _, ok := m.Get("k"); ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestMemoryTTLExpiry(t *testing.T) {
	m := NewMemory()

	m.Set("short", 1, 10*time.Millisecond)
	m.Set("forever", 2, 0)

	if _, ok := m.Get("short"); !ok {
		t.Fatalf("entry should be live before TTL")
	}

	time.Sleep(20 * time.Millisecond)

	if _, ok := m.Get("short"); ok {
		t.Fatalf("entry should have expired")
	}
	if _, ok := m.Get("forever"); !ok {
		t.Fatalf("zero TTL means no expiry")
	}
}

func TestMemorySweep(t *testing.T) {
	m := NewMemory()

	m.Set("a", 1, 5*time.Millisecond)
	m.Set("b", 2, time.Hour)

	time.Sleep(10 * time.Millisecond)
	m.sweep(time.Now())

	if m.Len() != 1 {
		t.Fatalf("expected one entry after sweep, got %d", m.Len())
	}
	if _, ok := m.Get("b"); !ok {
		t.Fatalf("unexpired entry was swept")
	}
}

func TestKeyFormats(t *testing.T) {
	if got := UserVoteKey(42, 7); got != "user_vote:42:7" {
		t.Fatalf("unexpected user vote key %q", got)
	}
	if got := PollResultsKey(7); got != "poll_results:7" {
		t.Fatalf("unexpected poll results key %q", got)
	}
	if got := TokenBlacklistKey("abc"); got != "jwt_blacklist:abc" {
		t.Fatalf("unexpected blacklist key %q", got)
	}
}
