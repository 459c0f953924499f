package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterBurst(t *testing.T) {
	t.Parallel()

	l := New(3, 0.001)

	for i := 0; i < 3; i++ {
		if !l.Allow() {
			t.Fatalf("request %d rejected within burst", i)
		}
	}
	if l.Allow() {
		t.Error("request allowed after burst exhausted")
	}
}

func TestLimiterRefill(t *testing.T) {
	t.Parallel()

	l := New(2, 1) // 1 token per second

	l.Allow()
	l.Allow()
	if l.Allow() {
		t.Fatal("bucket should be empty")
	}

	// Pretend 1.5 seconds have passed.
	l.mu.Lock()
	l.lastRefill = time.Now().Add(-1500 * time.Millisecond)
	l.mu.Unlock()

	if !l.Allow() {
		t.Error("refilled token not granted")
	}
	if l.Allow() {
		t.Error("second token granted before it refilled")
	}
}

func TestLimiterRefillCapsAtBurst(t *testing.T) {
	t.Parallel()

	l := New(2, 10)

	l.mu.Lock()
	l.lastRefill = time.Now().Add(-time.Hour)
	l.mu.Unlock()

	allowed := 0
	for i := 0; i < 10; i++ {
		if l.Allow() {
			allowed++
		}
	}
	if allowed != 2 {
		t.Errorf("allowed %d requests after long idle, want burst of 2", allowed)
	}
}

func TestKeyedLimiterIndependentKeys(t *testing.T) {
	t.Parallel()

	kl := NewKeyedLimiter(KeyedConfig{Burst: 1, RefillRate: 0.001})
	defer kl.Stop()

	if !kl.Allow("1.2.3.4") {
		t.Fatal("first request for key rejected")
	}
	if kl.Allow("1.2.3.4") {
		t.Error("second request for exhausted key allowed")
	}
	if !kl.Allow("5.6.7.8") {
		t.Error("fresh key throttled by another key's bucket")
	}
}

func TestKeyedLimiterEmptyKeyNeverLimited(t *testing.T) {
	t.Parallel()

	kl := NewKeyedLimiter(KeyedConfig{Burst: 1, RefillRate: 0.001})
	defer kl.Stop()

	for i := 0; i < 10; i++ {
		if !kl.Allow("") {
			t.Fatal("empty key was limited")
		}
	}
}

func TestKeyedLimiterOnDrop(t *testing.T) {
	t.Parallel()

	drops := 0
	kl := NewKeyedLimiter(KeyedConfig{
		Burst:      1,
		RefillRate: 0.001,
		OnDrop:     func() { drops++ },
	})
	defer kl.Stop()

	kl.Allow("key")
	kl.Allow("key")
	kl.Allow("key")

	if drops != 2 {
		t.Errorf("OnDrop called %d times, want 2", drops)
	}
}

func TestKeyedLimiterCleanup(t *testing.T) {
	t.Parallel()

	kl := NewKeyedLimiter(KeyedConfig{Burst: 1, RefillRate: 0.001, CleanupPeriod: time.Millisecond})
	defer kl.Stop()

	kl.Allow("stale")

	// Age the bucket past the idle threshold and run cleanup directly.
	kl.mu.Lock()
	bucket := kl.buckets["stale"]
	kl.mu.Unlock()
	bucket.mu.Lock()
	bucket.lastRefill = time.Now().Add(-time.Minute)
	bucket.mu.Unlock()

	kl.cleanup()

	kl.mu.RLock()
	_, ok := kl.buckets["stale"]
	kl.mu.RUnlock()
	if ok {
		t.Error("idle bucket survived cleanup")
	}

	// The evicted key comes back with a full bucket.
	if !kl.Allow("stale") {
		t.Error("recreated bucket not granted its burst")
	}
}

func TestKeyedLimiterStopIdempotent(t *testing.T) {
	t.Parallel()

	kl := NewKeyedLimiter(KeyedConfig{Burst: 1, RefillRate: 1, CleanupPeriod: time.Minute})
	kl.Stop()
	kl.Stop()
}
