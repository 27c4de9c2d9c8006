package ratelimit

import (
	"testing"
	"time"
)

func TestNewBucketStartsFull(t *testing.T) {
	b := NewBucket(10, 5)
	if b.Tokens() < 9.9 {
		t.Errorf("expected ~10 tokens, got %f", b.Tokens())
	}
}

func TestTryConsume(t *testing.T) {
	b := NewBucket(10, 1)

	if !b.TryConsume(5) {
		t.Error("expected consume to succeed")
	}
	if !b.TryConsume(3) {
		t.Error("expected consume to succeed")
	}
	if b.TryConsume(5) {
		t.Error("expected consume to fail with ~2 tokens left")
	}
}

func TestRefill(t *testing.T) {
	b := NewBucket(10, 100) // 100 tokens/sec

	b.TryConsume(10)
	if b.Tokens() > 0.5 {
		t.Errorf("expected ~0 tokens after consume, got %f", b.Tokens())
	}

	time.Sleep(50 * time.Millisecond)

	tokens := b.Tokens()
	if tokens < 4 || tokens > 6 {
		t.Errorf("expected ~5 tokens after 50ms refill at 100/s, got %f", tokens)
	}
}

func TestRefillCapsAtCapacity(t *testing.T) {
	b := NewBucket(5, 1000)
	time.Sleep(20 * time.Millisecond)
	if b.Tokens() > 5 {
		t.Errorf("tokens should never exceed capacity, got %f", b.Tokens())
	}
}

func TestTimeToWait(t *testing.T) {
	b := NewBucket(10, 10) // 10 tokens/sec
	b.TryConsume(10)

	wait := b.TimeToWait(5)
	if wait < 400*time.Millisecond || wait > 600*time.Millisecond {
		t.Errorf("expected ~500ms wait for 5 tokens at 10/s, got %v", wait)
	}
}

func TestReset(t *testing.T) {
	b := NewBucket(10, 1)
	b.TryConsume(10)
	b.Reset()
	if b.Tokens() != 10 {
		t.Errorf("expected full bucket after reset, got %f", b.Tokens())
	}
}
