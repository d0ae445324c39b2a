package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPrincipalKeyResolution(t *testing.T) {
	assert.Equal(t, "user@example.com", PrincipalKey("user@example.com", "biz-1"))
	assert.Equal(t, "biz-1", PrincipalKey("", "biz-1"))
	assert.Equal(t, "anonymous", PrincipalKey("", ""))
}

func TestCostCalculation(t *testing.T) {
	ut := NewUsageTracker()

	t.Run("gpt-4 rate", func(t *testing.T) {
		record := ut.RecordUsage("u", "", "generate-email", 2000, "gpt-4", nil)
		assert.InDelta(t, 0.06, record.CostEstimate, 0.00001)
	})

	t.Run("unknown model falls back to gpt-4 rate", func(t *testing.T) {
		record := ut.RecordUsage("u", "", "generate-email", 1000, "some-future-model", nil)
		assert.InDelta(t, 0.03, record.CostEstimate, 0.00001)
	})

	t.Run("gpt-3.5 rate", func(t *testing.T) {
		record := ut.RecordUsage("u", "", "generate-email", 1500, "gpt-3.5-turbo", nil)
		assert.InDelta(t, 0.003, record.CostEstimate, 0.00001)
	})
}

func TestUsageStatsEmpty(t *testing.T) {
	ut := NewUsageTracker()

	stats := ut.GetUsageStats("nobody@example.com", "", 30)
	assert.Equal(t, 0, stats.TotalRequests)
	assert.Equal(t, 0, stats.TotalTokens)
	assert.Zero(t, stats.TotalCost)
	assert.Zero(t, stats.DailyAverage)
	assert.Equal(t, 30, stats.PeriodDays)
	assert.Nil(t, stats.FirstRequest)
	assert.Nil(t, stats.LastRequest)
}

func TestUsageStatsZeroDaysNormalized(t *testing.T) {
	ut := NewUsageTracker()
	ut.RecordUsage("u", "", "generate-email", 100, "gpt-4", nil)

	stats := ut.GetUsageStats("u", "", 0)
	assert.Equal(t, 1, stats.PeriodDays)
	assert.Equal(t, 1, stats.TotalRequests)
	assert.InDelta(t, 1.0, stats.DailyAverage, 0.00001)
}

func TestUsageStatsAggregation(t *testing.T) {
	ut := NewUsageTracker()
	base := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	ut.now = func() time.Time { return base.Add(-40 * 24 * time.Hour) }
	ut.RecordUsage("u", "", "generate-email", 9999, "gpt-4", nil) // outside window

	ut.now = func() time.Time { return base.Add(-2 * 24 * time.Hour) }
	ut.RecordUsage("u", "", "generate-email", 2000, "gpt-4", nil)

	ut.now = func() time.Time { return base.Add(-1 * 24 * time.Hour) }
	ut.RecordUsage("u", "", "chat", 1000, "gpt-3.5-turbo", nil)

	ut.now = func() time.Time { return base }
	stats := ut.GetUsageStats("u", "", 30)

	assert.Equal(t, 2, stats.TotalRequests)
	assert.Equal(t, 3000, stats.TotalTokens)
	assert.InDelta(t, 0.062, stats.TotalCost, 0.00001) // 0.06 + 0.002
	assert.InDelta(t, 0.07, stats.DailyAverage, 0.00001)
	assert.Len(t, stats.EndpointBreakdown, 2)
	assert.Equal(t, 1, stats.EndpointBreakdown["generate-email"].Requests)
	assert.Equal(t, 2000, stats.EndpointBreakdown["generate-email"].Tokens)
	assert.Equal(t, base.Add(-2*24*time.Hour), *stats.FirstRequest)
	assert.Equal(t, base.Add(-1*24*time.Hour), *stats.LastRequest)
}

func TestUsageCleanup(t *testing.T) {
	ut := NewUsageTracker()
	base := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	ut.now = func() time.Time { return base.Add(-100 * 24 * time.Hour) }
	ut.RecordUsage("u", "", "generate-email", 100, "gpt-4", nil)

	ut.now = func() time.Time { return base }
	ut.RecordUsage("u", "", "generate-email", 100, "gpt-4", nil)

	removed := ut.CleanupOldRecords(90 * 24 * time.Hour)
	assert.Equal(t, 1, removed)

	stats := ut.GetUsageStats("u", "", 365)
	assert.Equal(t, 1, stats.TotalRequests)
}

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter(3, 60*time.Second)
	base := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return base }

	// Three records succeed, remaining decreasing afterwards.
	for i := 1; i <= 3; i++ {
		assert.True(t, rl.RecordRequest("u", "", "generate-email"), "record %d", i)
		info := rl.CheckRateLimit("u", "", "generate-email", 0, 0)
		assert.Equal(t, 3-i, info.RequestsRemaining)
		assert.Equal(t, i, info.TotalRequests)
	}

	// Fourth inside the window is refused.
	assert.False(t, rl.RecordRequest("u", "", "generate-email"))

	// After the window elapses a fresh record succeeds with a reset count.
	rl.now = func() time.Time { return base.Add(61 * time.Second) }
	assert.True(t, rl.RecordRequest("u", "", "generate-email"))
	info := rl.CheckRateLimit("u", "", "generate-email", 0, 0)
	assert.Equal(t, 2, info.RequestsRemaining)
	assert.Equal(t, 1, info.TotalRequests)
	assert.Equal(t, base.Add(61*time.Second).Add(60*time.Second), info.ResetTime)
}

func TestCheckDoesNotMutateExpiredWindow(t *testing.T) {
	rl := NewRateLimiter(3, 60*time.Second)
	base := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return base }

	assert.True(t, rl.RecordRequest("u", "", "generate-email"))

	// Past expiry, check reports an as-if-reset window...
	rl.now = func() time.Time { return base.Add(2 * time.Minute) }
	info := rl.CheckRateLimit("u", "", "generate-email", 0, 0)
	assert.Equal(t, 3, info.RequestsRemaining)
	assert.Equal(t, 0, info.TotalRequests)

	// ...but the stored window is untouched until the next record.
	w := rl.windows["u:generate-email"]
	assert.Equal(t, base, w.windowStart)
	assert.Equal(t, 1, w.count)
}

func TestRateLimiterSeparateKeys(t *testing.T) {
	rl := NewRateLimiter(1, 60*time.Second)

	assert.True(t, rl.RecordRequest("u", "", "generate-email"))
	assert.False(t, rl.RecordRequest("u", "", "generate-email"))

	// Different endpoint, different window.
	assert.True(t, rl.RecordRequest("u", "", "chat"))
	// Different principal, different window.
	assert.True(t, rl.RecordRequest("other", "", "generate-email"))
}

func TestRateLimiterConcurrentRecords(t *testing.T) {
	const quota = 50
	rl := NewRateLimiter(quota, 60*time.Second)

	var wg sync.WaitGroup
	admitted := make(chan bool, quota*4)
	for i := 0; i < quota*4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			admitted <- rl.RecordRequest("u", "", "generate-email")
		}()
	}
	wg.Wait()
	close(admitted)

	count := 0
	for ok := range admitted {
		if ok {
			count++
		}
	}
	assert.Equal(t, quota, count)
}

func TestProcessRequestGate(t *testing.T) {
	tracker := NewUsageTracker()
	limiter := NewRateLimiter(2, 60*time.Second)
	us := NewUsageService(tracker, limiter)

	t.Run("admitted with token accounting", func(t *testing.T) {
		result := us.ProcessRequest("u", "", "generate-email", 500, "gpt-4", nil)
		assert.True(t, result.Allowed)
		assert.NotNil(t, result.UsageRecord)
		assert.Equal(t, 500, result.UsageRecord.TokensUsed)
		assert.Equal(t, 1, result.RateLimit.RequestsRemaining)
		assert.Equal(t, 1, result.RateLimit.TotalRequests)
	})

	t.Run("admitted without tokens records nothing", func(t *testing.T) {
		result := us.ProcessRequest("u", "", "generate-email", 0, "", nil)
		assert.True(t, result.Allowed)
		assert.Nil(t, result.UsageRecord)
	})

	t.Run("denied once exhausted", func(t *testing.T) {
		result := us.ProcessRequest("u", "", "generate-email", 500, "gpt-4", nil)
		assert.False(t, result.Allowed)
		assert.Equal(t, "Rate limit exceeded", result.Error)
		assert.Equal(t, 0, result.RateLimit.RequestsRemaining)

		// The denied request must not have been metered.
		stats := us.GetUsageStats("u", "", 1)
		assert.Equal(t, 1, stats.TotalRequests)
		assert.Equal(t, 500, stats.TotalTokens)
	})
}
