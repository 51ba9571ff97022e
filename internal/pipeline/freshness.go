package pipeline

import "time"

const DefaultTTL = 24 * time.Hour

// IsFresh reports whether cached data fetched at lastFetchedAt may still be
// served. A nil timestamp means the subreddit was never fetched. Data aged
// exactly ttl counts as stale.
func IsFresh(lastFetchedAt *time.Time, now time.Time, ttl time.Duration) bool {
	if lastFetchedAt == nil {
		return false
	}
	return now.Sub(*lastFetchedAt) < ttl
}
