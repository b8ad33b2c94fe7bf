package middleware

import (
	"testing"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiterWithConfig(10, 5) // 10 per minute, burst of 5
	defer rl.Stop()

	userID := int64(1)

	// First 5 requests should be allowed (burst)
	for i := 0; i < 5; i++ {
		if !rl.Allow(userID) {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	// 6th request should be rate limited (exceeded burst)
	if rl.Allow(userID) {
		t.Error("Request 6 should be rate limited")
	}
}

func TestRateLimiter_DifferentUsers(t *testing.T) {
	rl := NewRateLimiterWithConfig(10, 3)
	defer rl.Stop()

	user1 := int64(1)
	user2 := int64(2)

	// Exhaust user1's burst
	for i := 0; i < 3; i++ {
		if !rl.Allow(user1) {
			t.Errorf("User1 request %d should be allowed", i+1)
		}
	}

	// User1 should be rate limited
	if rl.Allow(user1) {
		t.Error("User1 should be rate limited")
	}

	// User2 should still be allowed
	if !rl.Allow(user2) {
		t.Error("User2 should not share user1's limit")
	}
}
