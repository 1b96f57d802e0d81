package cache

import (
	"fmt"
	"time"
)

// TTLs for the two poll-related cache entries. The cache is an accelerator
// only; storage remains the source of truth for every decision.
const (
	UserVoteTTL    = 5 * time.Minute
	PollResultsTTL = time.Minute
)

// Store is a key-value cache with per-key expiry. A missing key is a normal
// cache miss, never an error.
type Store interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
	Delete(key string)
}

// Cache keys are built here so the formats do not drift across packages.

func UserVoteKey(userID, pollID int64) string {
	return fmt.Sprintf("user_vote:%d:%d", userID, pollID)
}

func PollResultsKey(pollID int64) string {
	return fmt.Sprintf("poll_results:%d", pollID)
}

func TokenBlacklistKey(jti string) string {
	return "jwt_blacklist:" + jti
}
