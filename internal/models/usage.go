package models

import (
	"time"
)

// UsageRecord is one metered request for a principal key.
type UsageRecord struct {
	UserID       string                 `json:"user_id,omitempty"`
	BusinessID   string                 `json:"business_id,omitempty"`
	Endpoint     string                 `json:"endpoint"`
	TokensUsed   int                    `json:"tokens_used"`
	CostEstimate float64                `json:"cost_estimate"`
	Timestamp    time.Time              `json:"timestamp"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// RateLimitInfo is a snapshot of one fixed window.
type RateLimitInfo struct {
	RequestsRemaining int       `json:"requests_remaining"`
	ResetTime         time.Time `json:"reset_time"`
	TotalRequests     int       `json:"total_requests"`
	WindowSeconds     int       `json:"window_seconds"`
}

// EndpointUsage is the per-endpoint slice of a usage aggregate.
type EndpointUsage struct {
	Requests int     `json:"requests"`
	Tokens   int     `json:"tokens"`
	Cost     float64 `json:"cost"`
}

// UsageStats aggregates a principal's records over a trailing period.
type UsageStats struct {
	TotalRequests     int                      `json:"total_requests"`
	TotalTokens       int                      `json:"total_tokens"`
	TotalCost         float64                  `json:"total_cost"`
	DailyAverage      float64                  `json:"daily_average"`
	PeriodDays        int                      `json:"period_days"`
	EndpointBreakdown map[string]EndpointUsage `json:"endpoint_breakdown,omitempty"`
	FirstRequest      *time.Time               `json:"first_request,omitempty"`
	LastRequest       *time.Time               `json:"last_request,omitempty"`
}

// ProcessResult is what the usage gate returns per request.
type ProcessResult struct {
	Allowed     bool           `json:"allowed"`
	Error       string         `json:"error,omitempty"`
	RateLimit   *RateLimitInfo `json:"rate_limit,omitempty"`
	UsageRecord *UsageRecord   `json:"usage_record,omitempty"`
}
