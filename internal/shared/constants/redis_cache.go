package constants

import (
	"fmt"
	"time"
)

// Redis key layout for the box office.
// Pattern: boxoffice:{module}:{operation}:{identifier}:{params?}

// ================== CACHE TTL DURATIONS ==================

const (
	TTL_SEMI_STATIC_MEDIUM = 2 * time.Hour    // event details
	TTL_SEMI_STATIC_SHORT  = 1 * time.Hour    // event listings
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "boxoffice"
)

// ================== EVENTS MODULE ==================

const (
	CACHE_KEY_EVENTS_LIST   = CACHE_PREFIX + ":events:list"         // + :page:X:limit:Y:status:Z
	CACHE_KEY_EVENT_DETAIL  = CACHE_PREFIX + ":events:detail:uuid:" // + event-id
	TTL_EVENTS_LIST         = TTL_SEMI_STATIC_SHORT
	TTL_EVENT_DETAIL        = TTL_SEMI_STATIC_MEDIUM
)

// ================== SEAT RESERVATIONS ==================

const (
	// boxoffice:seats:hold:{event-id}:{seat-id} -> user id
	SEAT_HOLD_PREFIX = CACHE_PREFIX + ":seats:hold:"
	// boxoffice:seats:holds:{event-id} -> set of held seat ids
	SEAT_HOLD_INDEX_PREFIX = CACHE_PREFIX + ":seats:holds:"
)

// ================== EDITOR SESSIONS ==================

const (
	EDITOR_SESSION_PREFIX = CACHE_PREFIX + ":studio:session:" // + session-id
)

// ================== RATE LIMITING ==================

const (
	RATE_LIMIT_PREFIX = CACHE_PREFIX + ":ratelimit:"
)

// ================== KEY BUILDERS ==================

func BuildEventListKey(page, limit int, status string) string {
	if status == "" {
		status = "all"
	}
	return fmt.Sprintf("%s:page:%d:limit:%d:status:%s", CACHE_KEY_EVENTS_LIST, page, limit, status)
}

func BuildEventDetailKey(eventID string) string {
	return CACHE_KEY_EVENT_DETAIL + eventID
}

func BuildSeatHoldKey(eventID, seatID string) string {
	return SEAT_HOLD_PREFIX + eventID + ":" + seatID
}

func BuildSeatHoldIndexKey(eventID string) string {
	return SEAT_HOLD_INDEX_PREFIX + eventID
}

func BuildEditorSessionKey(sessionID string) string {
	return EDITOR_SESSION_PREFIX + sessionID
}
