package ipc

import "testing"

func TestConnLimiterAcquireRelease(t *testing.T) {
	limiter := newConnLimiter(2)

	if !limiter.Acquire() {
		t.Fatalf("expected first Acquire to succeed")
	}
	if !limiter.Acquire() {
		t.Fatalf("expected second Acquire to succeed")
	}
	if limiter.Acquire() {
		t.Fatalf("expected third Acquire to fail at capacity")
	}
	if limiter.Active() != 2 {
		t.Fatalf("expected 2 active, got %d", limiter.Active())
	}

	limiter.Release()
	if !limiter.Acquire() {
		t.Fatalf("expected Acquire to succeed after Release")
	}

	limiter.Release()
	limiter.Release()
	limiter.Release() // should not underflow
	if limiter.Active() != 0 {
		t.Fatalf("expected 0 active, got %d", limiter.Active())
	}
}

func TestConnLimiterNilOrUnlimitedAlwaysAllows(t *testing.T) {
	var nilLimiter *connLimiter
	if !nilLimiter.Acquire() {
		t.Fatalf("expected nil Acquire to allow")
	}
	nilLimiter.Release()

	unlimited := newConnLimiter(0)
	for i := 0; i < 5; i++ {
		if !unlimited.Acquire() {
			t.Fatalf("expected unlimited Acquire to allow")
		}
	}
	if unlimited.Active() != 5 {
		t.Fatalf("unlimited limiter should still count, got %d", unlimited.Active())
	}
}
