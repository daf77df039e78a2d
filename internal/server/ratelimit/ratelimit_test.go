package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// newTestLimiter returns a limiter whose clock only moves when advanced.
func newTestLimiter(t *testing.T, config *Config) (*Limiter, func(time.Duration)) {
	t.Helper()
	l := NewLimiter(config)
	t.Cleanup(l.Stop)

	var mu sync.Mutex
	now := testNow
	l.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(d)
	}
	return l, advance
}

func TestLimiter_Allow(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})

	for i := 0; i < 10; i++ {
		allowed, info := l.Allow("127.0.0.1", "/jobs", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	allowed, info := l.Allow("127.0.0.1", "/jobs", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.InDelta(t, float64(6*time.Second), float64(info.RetryAfter), float64(time.Millisecond))
	assert.WithinDuration(t, testNow.Add(time.Minute), info.ResetTime, time.Millisecond)
}

func TestLimiter_Refill(t *testing.T) {
	l, advance := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 60, DefaultWindow: time.Minute})

	for i := 0; i < 60; i++ {
		allowed, _ := l.Allow("c", "/jobs", "GET")
		require.True(t, allowed)
	}
	allowed, _ := l.Allow("c", "/jobs", "GET")
	require.False(t, allowed)

	advance(time.Second)
	allowed, _ = l.Allow("c", "/jobs", "GET")
	assert.True(t, allowed)
	allowed, _ = l.Allow("c", "/jobs", "GET")
	assert.False(t, allowed)
}

func TestLimiter_ListsAndDisabled(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		client  string
		allowed bool
	}{
		{"disabled", &Config{Enabled: false}, "10.0.0.1", true},
		{"whitelisted", &Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute, Whitelist: map[string]bool{"10.0.0.1": true}}, "10.0.0.1", true},
		{"blacklisted", &Config{Enabled: true, DefaultLimit: 1000, DefaultWindow: time.Minute, Blacklist: map[string]bool{"10.0.0.1": true}}, "10.0.0.1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newTestLimiter(t, tt.config)
			for i := 0; i < 50; i++ {
				allowed, info := l.Allow(tt.client, "/jobs", "GET")
				require.Equal(t, tt.allowed, allowed)
				assert.Zero(t, info.Limit)
			}
		})
	}
}

func TestLimiter_EndpointSpecific(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/extract", Method: "POST", Limit: 5, Window: time.Hour, Burst: 5},
		},
	})

	for i := 0; i < 5; i++ {
		allowed, info := l.Allow("c", "/extract", "POST")
		require.True(t, allowed)
		assert.Equal(t, 5, info.Limit)
	}
	allowed, _ := l.Allow("c", "/extract", "POST")
	assert.False(t, allowed)

	allowed, info := l.Allow("c", "/jobs", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestLimiter_PrefixRulesShareBucket(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/jobs/", Method: "DELETE", Limit: 2, Window: time.Minute, Burst: 2},
		},
	})

	allowed, _ := l.Allow("c", "/jobs/job-1", "DELETE")
	require.True(t, allowed)
	allowed, _ = l.Allow("c", "/jobs/job-2", "DELETE")
	require.True(t, allowed)
	allowed, _ = l.Allow("c", "/jobs/job-3", "DELETE")
	assert.False(t, allowed)

	allowed, _ = l.Allow("other", "/jobs/job-3", "DELETE")
	assert.True(t, allowed)
}

func TestLimiter_Burst(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/chat/messages", Method: "POST", Limit: 10, Window: time.Minute, Burst: 5},
		},
	})

	for i := 0; i < 5; i++ {
		allowed, _ := l.Allow("c", "/chat/messages", "POST")
		require.True(t, allowed)
	}
	allowed, _ := l.Allow("c", "/chat/messages", "POST")
	assert.False(t, allowed)
}

func TestLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Minute})

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := l.Allow("c", "/jobs", "GET"); allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, allowedCount)
}

func TestLimiter_CleanupBuckets(t *testing.T) {
	l, advance := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})

	l.Allow("old", "/jobs", "GET")
	advance(2 * time.Hour)
	l.Allow("fresh", "/jobs", "GET")

	removed := l.cleanupBuckets(l.now().Add(-bucketIdleTTL))

	assert.Equal(t, 1, removed)
	assert.Len(t, l.buckets, 1)
}

func TestNewLimiter_NilConfig(t *testing.T) {
	l := NewLimiter(nil)
	defer l.Stop()

	allowed, info := l.Allow("127.0.0.1", "/jobs", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	tests := []struct {
		path   string
		method string
		limit  int
		isNil  bool
	}{
		{"/health", "GET", 0, false},
		{"/notifications/stream", "GET", 0, false},
		{"/extract", "POST", 30, false},
		{"/auth/login", "POST", 20, false},
		{"/jobs/job-1", "PATCH", 100, false},
		{"/folders/folder-1", "DELETE", 100, false},
		{"/jobs", "GET", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.isNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.limit, got.Limit)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "50")
	t.Setenv("RATE_LIMIT_WHITELIST", " 10.0.0.1, ,10.0.0.2")
	t.Setenv("RATE_LIMIT_MODEL_PER_HOUR", "7")

	cfg := LoadConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 50, cfg.DefaultLimit)
	assert.Equal(t, time.Minute, cfg.DefaultWindow)
	assert.Equal(t, map[string]bool{"10.0.0.1": true, "10.0.0.2": true}, cfg.Whitelist)
	assert.Equal(t, 7, MatchEndpoint("/extract", "POST", cfg.EndpointConfigs).Limit)
	assert.Equal(t, 20, MatchEndpoint("/auth/login", "POST", cfg.EndpointConfigs).Limit)

	t.Setenv("RATE_LIMIT_ENABLED", "false")
	assert.False(t, LoadConfig().Enabled)
}
