package ratelimit

import (
	"testing"
	"time"
)

func TestLimiter_AllowWithinLimit(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 3})
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("key-1") {
			t.Errorf("request %d denied below the limit", i+1)
		}
	}
	if rl.Allow("key-1") {
		t.Error("request above the limit was allowed")
	}
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 1})
	defer rl.Stop()

	if !rl.Allow("key-1") {
		t.Error("first request for key-1 denied")
	}
	if !rl.Allow("key-2") {
		t.Error("first request for key-2 denied after key-1 hit its limit")
	}
	if rl.Allow("key-1") {
		t.Error("second request for key-1 allowed")
	}

	if got := rl.ActiveClients(); got != 2 {
		t.Errorf("ActiveClients() = %d, want 2", got)
	}
}

func TestLimiter_ZeroConfigUsesDefaults(t *testing.T) {
	rl := NewLimiter(Config{})
	defer rl.Stop()

	if rl.requestsPerMinute != DefaultConfig().RequestsPerMinute {
		t.Errorf("requestsPerMinute = %d, want default %d",
			rl.requestsPerMinute, DefaultConfig().RequestsPerMinute)
	}
	if rl.cleanupInterval != 5*time.Minute {
		t.Errorf("cleanupInterval = %v, want 5m", rl.cleanupInterval)
	}
}

func TestLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewLimiter(DefaultConfig())
	rl.Stop()
	rl.Stop()
}
