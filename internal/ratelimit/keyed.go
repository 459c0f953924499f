package ratelimit

import (
	"sync"
	"time"
)

// KeyedConfig configures a KeyedLimiter.
type KeyedConfig struct {
	Burst      float64 // maximum tokens per key
	RefillRate float64 // tokens refilled per second per key

	// CleanupPeriod controls how often inactive buckets are discarded.
	// Zero disables cleanup.
	CleanupPeriod time.Duration

	// OnDrop is called once per rejected request. Optional.
	OnDrop func()
}

// KeyedLimiter keeps one token bucket per key (client IP in practice) and
// discards buckets that have been idle for a while.
type KeyedLimiter struct {
	mu      sync.RWMutex
	buckets map[string]*Limiter
	config  KeyedConfig
	stopCh  chan struct{}
	stopped sync.Once
}

// NewKeyedLimiter creates a per-key limiter and starts its cleanup loop.
func NewKeyedLimiter(cfg KeyedConfig) *KeyedLimiter {
	kl := &KeyedLimiter{
		buckets: make(map[string]*Limiter),
		config:  cfg,
		stopCh:  make(chan struct{}),
	}
	if cfg.CleanupPeriod > 0 {
		go kl.cleanupLoop()
	}
	return kl
}

// Allow reports whether a request for the key may proceed. The empty key is
// never limited.
func (kl *KeyedLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	if kl.getBucket(key).Allow() {
		return true
	}
	if kl.config.OnDrop != nil {
		kl.config.OnDrop()
	}
	return false
}

// Stop ends the cleanup loop. Safe to call more than once.
func (kl *KeyedLimiter) Stop() {
	kl.stopped.Do(func() { close(kl.stopCh) })
}

func (kl *KeyedLimiter) getBucket(key string) *Limiter {
	kl.mu.RLock()
	bucket, ok := kl.buckets[key]
	kl.mu.RUnlock()
	if ok {
		return bucket
	}

	kl.mu.Lock()
	defer kl.mu.Unlock()
	if bucket, ok = kl.buckets[key]; ok {
		return bucket
	}
	bucket = New(kl.config.Burst, kl.config.RefillRate)
	kl.buckets[key] = bucket
	return bucket
}

func (kl *KeyedLimiter) cleanupLoop() {
	ticker := time.NewTicker(kl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-kl.stopCh:
			return
		case <-ticker.C:
			kl.cleanup()
		}
	}
}

// cleanup drops buckets idle for two cleanup periods. An evicted client
// starts over with a full bucket.
func (kl *KeyedLimiter) cleanup() {
	maxIdle := 2 * kl.config.CleanupPeriod

	kl.mu.Lock()
	defer kl.mu.Unlock()
	for key, bucket := range kl.buckets {
		if bucket.idle(maxIdle) {
			delete(kl.buckets, key)
		}
	}
}
