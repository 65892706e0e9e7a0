package seats

import (
	"context"
	"fmt"
	"time"

	"boxoffice/internal/shared/constants"

	"github.com/redis/go-redis/v9"
)

// HoldStore keeps short-lived seat holds in Redis. One key per held seat stores the holder's
// user id; a per-event set indexes the held seats so a sector can be overlaid in one round trip.
type HoldStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewHoldStore(client *redis.Client, ttl time.Duration) *HoldStore {
	return &HoldStore{redis: client, ttl: ttl}
}

// KEYS[1] = hold key, KEYS[2] = event index
// ARGV[1] = user id, ARGV[2] = seat id, ARGV[3] = ttl in milliseconds
var holdScript = redis.NewScript(`
local holder = redis.call("GET", KEYS[1])
if holder and holder ~= ARGV[1] then
    return 0
end

local ttl = tonumber(ARGV[3])
redis.call("SET", KEYS[1], ARGV[1], "PX", ttl)
redis.call("SADD", KEYS[2], ARGV[2])
if redis.call("PTTL", KEYS[2]) < ttl then
    redis.call("PEXPIRE", KEYS[2], ttl)
end
return 1
`)

// KEYS[1] = hold key, KEYS[2] = event index
// ARGV[1] = user id, ARGV[2] = seat id
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) ~= ARGV[1] then
    return 0
end

redis.call("DEL", KEYS[1])
redis.call("SREM", KEYS[2], ARGV[2])
return 1
`)

// KEYS[1] = hold key, KEYS[2] = event index
// ARGV[1] = user id, ARGV[2] = ttl in milliseconds
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) ~= ARGV[1] then
    return 0
end

local ttl = tonumber(ARGV[2])
if redis.call("PTTL", KEYS[1]) < ttl then
    redis.call("PEXPIRE", KEYS[1], ttl)
end
if redis.call("PTTL", KEYS[2]) < ttl then
    redis.call("PEXPIRE", KEYS[2], ttl)
end
return 1
`)

// Hold claims a seat for userID, or refreshes the claim if userID already holds it
func (h *HoldStore) Hold(ctx context.Context, eventID, seatID, userID string) error {
	keys := []string{constants.BuildSeatHoldKey(eventID, seatID), constants.BuildSeatHoldIndexKey(eventID)}
	ok, err := holdScript.Run(ctx, h.redis, keys, userID, seatID, h.ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("failed to execute atomic seat hold: %w", err)
	}
	if ok == 0 {
		return ErrSeatTaken
	}
	return nil
}

// Release drops the hold only when userID is the holder
func (h *HoldStore) Release(ctx context.Context, eventID, seatID, userID string) error {
	keys := []string{constants.BuildSeatHoldKey(eventID, seatID), constants.BuildSeatHoldIndexKey(eventID)}
	ok, err := releaseScript.Run(ctx, h.redis, keys, userID, seatID).Int()
	if err != nil {
		return fmt.Errorf("failed to execute atomic seat release: %w", err)
	}
	if ok == 0 {
		return ErrNotHolder
	}
	return nil
}

// Extend keeps userID's hold alive for at least ttl. A hold that expired or changed hands
// is not recreated.
func (h *HoldStore) Extend(ctx context.Context, eventID, seatID, userID string, ttl time.Duration) error {
	keys := []string{constants.BuildSeatHoldKey(eventID, seatID), constants.BuildSeatHoldIndexKey(eventID)}
	ok, err := extendScript.Run(ctx, h.redis, keys, userID, ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("failed to extend seat hold: %w", err)
	}
	if ok == 0 {
		return ErrNotHolder
	}
	return nil
}

// Held returns every live hold of an event as seat id -> user id. Index entries whose hold
// expired are pruned on the way.
func (h *HoldStore) Held(ctx context.Context, eventID string) (map[string]string, error) {
	indexKey := constants.BuildSeatHoldIndexKey(eventID)
	seatIDs, err := h.redis.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list seat holds: %w", err)
	}

	held, err := h.Holders(ctx, eventID, seatIDs)
	if err != nil {
		return nil, err
	}

	var stale []interface{}
	for _, id := range seatIDs {
		if _, ok := held[id]; !ok {
			stale = append(stale, id)
		}
	}
	if len(stale) > 0 {
		if err := h.redis.SRem(ctx, indexKey, stale...).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune seat holds: %w", err)
		}
	}
	return held, nil
}

// Holders returns the holder of each given seat that is currently held
func (h *HoldStore) Holders(ctx context.Context, eventID string, seatIDs []string) (map[string]string, error) {
	held := make(map[string]string, len(seatIDs))
	if len(seatIDs) == 0 {
		return held, nil
	}

	keys := make([]string, len(seatIDs))
	for i, id := range seatIDs {
		keys[i] = constants.BuildSeatHoldKey(eventID, id)
	}
	values, err := h.redis.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read seat holds: %w", err)
	}
	for i, v := range values {
		if userID, ok := v.(string); ok {
			held[seatIDs[i]] = userID
		}
	}
	return held, nil
}

// PreloadScripts loads the Lua scripts so the first reservation avoids the EVAL fallback
func (h *HoldStore) PreloadScripts(ctx context.Context) error {
	if err := holdScript.Load(ctx, h.redis).Err(); err != nil {
		return fmt.Errorf("failed to load seat hold script: %w", err)
	}
	if err := releaseScript.Load(ctx, h.redis).Err(); err != nil {
		return fmt.Errorf("failed to load seat release script: %w", err)
	}
	if err := extendScript.Load(ctx, h.redis).Err(); err != nil {
		return fmt.Errorf("failed to load seat extend script: %w", err)
	}
	return nil
}
