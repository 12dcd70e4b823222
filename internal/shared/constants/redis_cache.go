package constants

import (
	"fmt"
	"time"
)

// Redis Cache Configuration
// Pattern: venueledger:{module}:{operation}:{identifier}:{params?}

// ================== CACHE TTL DURATIONS ==================

const (
	TTL_SEMI_STATIC_MEDIUM = 2 * time.Hour    // 2 hours - for event details
	TTL_SEMI_STATIC_QUICK  = 15 * time.Minute // 15 minutes - for event listings
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX     = "venueledger"
	RATELIMIT_PREFIX = CACHE_PREFIX + ":ratelimit"
)

// ================== EVENTS MODULE ==================

const (
	CACHE_KEY_EVENTS_LIST  = CACHE_PREFIX + ":events:list"         // + :page:X:limit:Y
	CACHE_KEY_EVENT_DETAIL = CACHE_PREFIX + ":events:detail:uuid:" // + event-id
)

const (
	TTL_EVENT_LIST   = TTL_SEMI_STATIC_QUICK  // 15 minutes
	TTL_EVENT_DETAIL = TTL_SEMI_STATIC_MEDIUM // 2 hours
)

// ================== CACHE INVALIDATION PATTERNS ==================

const (
	PATTERN_INVALIDATE_EVENT_LIST = CACHE_KEY_EVENTS_LIST + ":*"
)

// ================== HELPER FUNCTIONS ==================

// BuildEventListKey -> "venueledger:events:list:page:1:limit:10"
func BuildEventListKey(page, limit int) string {
	return fmt.Sprintf("%s:page:%d:limit:%d", CACHE_KEY_EVENTS_LIST, page, limit)
}

func BuildEventDetailKey(eventID string) string {
	return CACHE_KEY_EVENT_DETAIL + eventID
}

// BuildRateLimitKey -> "venueledger:ratelimit:10.0.0.1:checkin"
func BuildRateLimitKey(clientIP, limitType string) string {
	return RATELIMIT_PREFIX + ":" + clientIP + ":" + limitType
}
