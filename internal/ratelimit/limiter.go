package ratelimit

import (
	"sync"
	"time"
)

// ToolLimit overrides the global rate for one named tool.
type ToolLimit struct {
	Name              string
	RequestsPerSecond float64
	BurstSize         float64
}

// Config configures a Limiter.
type Config struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         float64
	Tools             []ToolLimit
}

// DefaultConfig disables rate limiting; a deployment opts in explicitly.
func DefaultConfig() *Config {
	return &Config{Enabled: false, RequestsPerSecond: 10, BurstSize: 20}
}

// Result reports a rate-limit decision.
type Result struct {
	Allowed    bool
	RetryAfter time.Duration
	LimitType  string
}

// Limiter enforces a global bucket plus optional per-tool buckets.
type Limiter struct {
	mu           sync.RWMutex
	enabled      bool
	globalBucket *Bucket
	toolBuckets  map[string]*Bucket
}

// NewLimiter builds a Limiter from cfg.
func NewLimiter(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	l := &Limiter{
		enabled:      cfg.Enabled,
		globalBucket: NewBucket(cfg.BurstSize, cfg.RequestsPerSecond),
		toolBuckets:  make(map[string]*Bucket, len(cfg.Tools)),
	}
	for _, t := range cfg.Tools {
		l.toolBuckets[t.Name] = NewBucket(t.BurstSize, t.RequestsPerSecond)
	}
	return l
}

// Allow checks whether a call to toolName may proceed right now.
func (l *Limiter) Allow(toolName string) Result {
	if !l.enabled {
		return Result{Allowed: true, LimitType: "disabled"}
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if !l.globalBucket.TryConsume(1) {
		return Result{Allowed: false, RetryAfter: l.globalBucket.TimeToWait(1), LimitType: "global"}
	}
	if bucket, ok := l.toolBuckets[toolName]; ok {
		if !bucket.TryConsume(1) {
			return Result{Allowed: false, RetryAfter: bucket.TimeToWait(1), LimitType: toolName}
		}
	}
	return Result{Allowed: true, LimitType: "global"}
}
