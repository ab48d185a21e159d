package service

import (
	"context"
	"testing"
	"time"
)

func TestFingerprint(t *testing.T) {
	a := Fingerprint("pub-1", 42, "203.0.113.7", "agent")
	if a != Fingerprint("pub-1", 42, "203.0.113.7", "agent") {
		t.Fatal("fingerprint is not deterministic")
	}
	if a == Fingerprint("pub-2", 42, "203.0.113.7", "agent") {
		t.Fatal("expected distinct fingerprints for distinct publishers")
	}
	if a == Fingerprint("pub-1", 42, "203.0.113.8", "agent") {
		t.Fatal("expected distinct fingerprints for distinct IPs")
	}
}

func TestDedupCache_WithoutRedis(t *testing.T) {
	cache := NewDedupCache(nil, 24*time.Hour, nil)
	ctx := context.Background()

	if cache.SharedEnabled() {
		t.Fatal("expected the shared layer to be disabled without redis")
	}
	fp := Fingerprint("pub-1", 42, "203.0.113.7", "agent")
	if cache.SeenShared(ctx, fp) {
		t.Fatal("expected SeenShared to report false without redis")
	}
	if cache.SeenLocal(fp) {
		t.Fatal("expected a fresh fingerprint to be absent from the filter")
	}

	cache.MarkSeen(ctx, fp)
	if !cache.SeenLocal(fp) {
		t.Fatal("expected a marked fingerprint to test positive locally")
	}
}
