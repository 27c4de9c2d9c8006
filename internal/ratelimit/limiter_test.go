package ratelimit

import "testing"

func TestLimiterDisabledAlwaysAllows(t *testing.T) {
	l := NewLimiter(&Config{Enabled: false, RequestsPerSecond: 1, BurstSize: 1})
	for i := 0; i < 10; i++ {
		if !l.Allow("anything").Allowed {
			t.Fatal("disabled limiter should always allow")
		}
	}
}

func TestLimiterGlobalBucketExhausts(t *testing.T) {
	l := NewLimiter(&Config{Enabled: true, RequestsPerSecond: 0.001, BurstSize: 2})

	if !l.Allow("x").Allowed {
		t.Fatal("first call should be allowed")
	}
	if !l.Allow("x").Allowed {
		t.Fatal("second call should be allowed")
	}
	result := l.Allow("x")
	if result.Allowed {
		t.Fatal("third call should exceed the global burst of 2")
	}
	if result.LimitType != "global" {
		t.Errorf("expected LimitType global, got %s", result.LimitType)
	}
	if result.RetryAfter <= 0 {
		t.Error("expected a positive retry-after when denied")
	}
}

func TestLimiterPerToolOverride(t *testing.T) {
	l := NewLimiter(&Config{
		Enabled:           true,
		RequestsPerSecond: 1000,
		BurstSize:         1000,
		Tools: []ToolLimit{
			{Name: "create_item", RequestsPerSecond: 0.001, BurstSize: 1},
		},
	})

	if !l.Allow("create_item").Allowed {
		t.Fatal("first create_item call should be allowed")
	}
	result := l.Allow("create_item")
	if result.Allowed {
		t.Fatal("second create_item call should exceed its 1-token override bucket")
	}
	if result.LimitType != "create_item" {
		t.Errorf("expected LimitType create_item, got %s", result.LimitType)
	}

	if !l.Allow("get_item").Allowed {
		t.Error("a tool without an override should use the generous global bucket")
	}
}
