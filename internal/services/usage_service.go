package services

import (
	"math"
	"sync"
	"time"

	"caboai_go_service/internal/models"

	"github.com/rs/zerolog/log"
)

// tokenCosts is the per-1K-token price table. Unknown models fall back to
// the gpt-4 rate.
var tokenCosts = map[string]float64{
	"gpt-4":                0.03,
	"gpt-4-output":         0.06,
	"gpt-3.5-turbo":        0.002,
	"gpt-3.5-turbo-output": 0.002,
}

const defaultCostModel = "gpt-4"

// anonymousKey partitions usage and rate-limit state for requests carrying
// neither a user nor a business identifier.
const anonymousKey = "anonymous"

// PrincipalKey resolves the partition key: user ID, else business ID, else
// the anonymous sentinel.
func PrincipalKey(userID, businessID string) string {
	if userID != "" {
		return userID
	}
	if businessID != "" {
		return businessID
	}
	return anonymousKey
}

// UsageTracker appends usage records per principal key and aggregates them.
type UsageTracker struct {
	mu      sync.RWMutex
	records map[string][]models.UsageRecord
	now     func() time.Time
}

func NewUsageTracker() *UsageTracker {
	return &UsageTracker{
		records: make(map[string][]models.UsageRecord),
		now:     time.Now,
	}
}

// RecordUsage computes the cost estimate and appends a record under the
// principal key. Pure bookkeeping, never fails.
func (ut *UsageTracker) RecordUsage(userID, businessID, endpoint string, tokensUsed int, model string, metadata map[string]interface{}) models.UsageRecord {
	costPer1K, ok := tokenCosts[model]
	if !ok {
		costPer1K = tokenCosts[defaultCostModel]
	}

	record := models.UsageRecord{
		UserID:       userID,
		BusinessID:   businessID,
		Endpoint:     endpoint,
		TokensUsed:   tokensUsed,
		CostEstimate: (float64(tokensUsed) / 1000) * costPer1K,
		Timestamp:    ut.now(),
		Metadata:     metadata,
	}

	key := PrincipalKey(userID, businessID)
	ut.mu.Lock()
	ut.records[key] = append(ut.records[key], record)
	ut.mu.Unlock()

	log.Debug().Str("key", key).Int("tokens", tokensUsed).Float64("cost", record.CostEstimate).Msg("Recorded usage")
	return record
}

// GetUsageStats aggregates a principal's records over the trailing period.
// An empty record set yields an all-zero aggregate, never an error.
func (ut *UsageTracker) GetUsageStats(userID, businessID string, days int) models.UsageStats {
	if days <= 0 {
		days = 1
	}
	key := PrincipalKey(userID, businessID)
	cutoff := ut.now().AddDate(0, 0, -days)

	ut.mu.RLock()
	defer ut.mu.RUnlock()

	var recent []models.UsageRecord
	for _, r := range ut.records[key] {
		if r.Timestamp.After(cutoff) {
			recent = append(recent, r)
		}
	}

	stats := models.UsageStats{PeriodDays: days}
	if len(recent) == 0 {
		return stats
	}

	breakdown := make(map[string]models.EndpointUsage)
	first, last := recent[0].Timestamp, recent[0].Timestamp
	var totalCost float64
	for _, r := range recent {
		stats.TotalRequests++
		stats.TotalTokens += r.TokensUsed
		totalCost += r.CostEstimate

		ep := breakdown[r.Endpoint]
		ep.Requests++
		ep.Tokens += r.TokensUsed
		ep.Cost += r.CostEstimate
		breakdown[r.Endpoint] = ep

		if r.Timestamp.Before(first) {
			first = r.Timestamp
		}
		if r.Timestamp.After(last) {
			last = r.Timestamp
		}
	}
	for endpoint, ep := range breakdown {
		ep.Cost = roundTo(ep.Cost, 4)
		breakdown[endpoint] = ep
	}

	stats.TotalCost = roundTo(totalCost, 4)
	stats.DailyAverage = roundTo(float64(stats.TotalRequests)/float64(days), 2)
	stats.EndpointBreakdown = breakdown
	stats.FirstRequest = &first
	stats.LastRequest = &last
	return stats
}

// CleanupOldRecords drops records older than maxAge. Returns the number
// removed.
func (ut *UsageTracker) CleanupOldRecords(maxAge time.Duration) int {
	cutoff := ut.now().Add(-maxAge)

	ut.mu.Lock()
	defer ut.mu.Unlock()

	removed := 0
	for key, records := range ut.records {
		kept := records[:0]
		for _, r := range records {
			if r.Timestamp.After(cutoff) {
				kept = append(kept, r)
			} else {
				removed++
			}
		}
		if len(kept) == 0 {
			delete(ut.records, key)
		} else {
			ut.records[key] = kept
		}
	}

	if removed > 0 {
		log.Info().Int("removed", removed).Msg("Cleaned up old usage records")
	}
	return removed
}

type rateLimitWindow struct {
	windowStart time.Time
	count       int
}

// RateLimiter keeps one fixed window per (principal key, endpoint) pair.
// CheckRateLimit never mutates; RecordRequest is the only admission
// authority and performs its read-decide-write under the mutex.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*rateLimitWindow

	defaultRequests int
	defaultWindow   time.Duration
	now             func() time.Time
}

func NewRateLimiter(requestsPerWindow int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		windows:         make(map[string]*rateLimitWindow),
		defaultRequests: requestsPerWindow,
		defaultWindow:   window,
		now:             time.Now,
	}
}

func (rl *RateLimiter) limiterKey(userID, businessID, endpoint string) string {
	return PrincipalKey(userID, businessID) + ":" + endpoint
}

// CheckRateLimit reports the current window as if an expired window had
// already been reset, without committing that reset. Two concurrent checks
// therefore never race on who resets the window.
func (rl *RateLimiter) CheckRateLimit(userID, businessID, endpoint string, requestsPerWindow int, window time.Duration) models.RateLimitInfo {
	if requestsPerWindow <= 0 {
		requestsPerWindow = rl.defaultRequests
	}
	if window <= 0 {
		window = rl.defaultWindow
	}

	key := rl.limiterKey(userID, businessID, endpoint)
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	windowStart, count := rl.observeWindow(key, now, window)
	return models.RateLimitInfo{
		RequestsRemaining: max(0, requestsPerWindow-count),
		ResetTime:         windowStart.Add(window),
		TotalRequests:     count,
		WindowSeconds:     int(window.Seconds()),
	}
}

// observeWindow returns the effective window state for key at time now,
// treating an absent or expired window as fresh. Callers hold the mutex.
func (rl *RateLimiter) observeWindow(key string, now time.Time, window time.Duration) (time.Time, int) {
	w, ok := rl.windows[key]
	if !ok || now.Sub(w.windowStart) > window {
		return now, 0
	}
	return w.windowStart, w.count
}

// RecordRequest admits and counts one request, returning false when the
// window is exhausted. The whole read-decide-increment runs under the mutex
// so two concurrent callers can never both take the last slot.
func (rl *RateLimiter) RecordRequest(userID, businessID, endpoint string) bool {
	key := rl.limiterKey(userID, businessID, endpoint)
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	windowStart, count := rl.observeWindow(key, now, rl.defaultWindow)
	if rl.defaultRequests-count <= 0 {
		log.Warn().Str("key", key).Msg("Rate limit exceeded")
		return false
	}

	rl.windows[key] = &rateLimitWindow{windowStart: windowStart, count: count + 1}
	log.Debug().Str("key", key).Int("count", count+1).Int("limit", rl.defaultRequests).Msg("Recorded request")
	return true
}

// UsageService gates a request through rate limiting before usage
// recording.
type UsageService struct {
	Tracker *UsageTracker
	Limiter *RateLimiter
}

func NewUsageService(tracker *UsageTracker, limiter *RateLimiter) *UsageService {
	return &UsageService{Tracker: tracker, Limiter: limiter}
}

// ProcessRequest runs the two-step gate: an advisory check, then the
// authoritative record. Token accounting happens only for admitted requests
// that actually consumed tokens.
func (us *UsageService) ProcessRequest(userID, businessID, endpoint string, tokensUsed int, model string, metadata map[string]interface{}) models.ProcessResult {
	info := us.Limiter.CheckRateLimit(userID, businessID, endpoint, 0, 0)

	if info.RequestsRemaining <= 0 {
		return models.ProcessResult{
			Allowed:   false,
			Error:     "Rate limit exceeded",
			RateLimit: &info,
		}
	}

	if !us.Limiter.RecordRequest(userID, businessID, endpoint) {
		// The advisory check and the authoritative record disagreed;
		// the record wins.
		denied := info
		denied.RequestsRemaining = 0
		return models.ProcessResult{
			Allowed:   false,
			Error:     "Rate limit exceeded",
			RateLimit: &denied,
		}
	}

	var record *models.UsageRecord
	if tokensUsed > 0 {
		r := us.Tracker.RecordUsage(userID, businessID, endpoint, tokensUsed, model, metadata)
		record = &r
	}

	admitted := info
	admitted.RequestsRemaining = info.RequestsRemaining - 1
	admitted.TotalRequests = info.TotalRequests + 1
	return models.ProcessResult{
		Allowed:     true,
		RateLimit:   &admitted,
		UsageRecord: record,
	}
}

// GetUsageStats proxies to the tracker.
func (us *UsageService) GetUsageStats(userID, businessID string, days int) models.UsageStats {
	return us.Tracker.GetUsageStats(userID, businessID, days)
}

// GetRateLimitStatus proxies to the limiter with default limits.
func (us *UsageService) GetRateLimitStatus(userID, businessID, endpoint string) models.RateLimitInfo {
	return us.Limiter.CheckRateLimit(userID, businessID, endpoint, 0, 0)
}

func roundTo(v float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(v*shift) / shift
}
