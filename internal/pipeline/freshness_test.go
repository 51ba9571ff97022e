package pipeline

import (
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestIsFresh_NeverFetched(t *testing.T) {
	assert.Equal(t, false, IsFresh(nil, time.Now(), DefaultTTL))
}

func TestIsFresh_Boundary(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	exactlyTTL := now.Add(-24 * time.Hour)
	assert.Equal(t, false, IsFresh(&exactlyTTL, now, 24*time.Hour))

	justInside := now.Add(-24*time.Hour + time.Second)
	assert.Equal(t, true, IsFresh(&justInside, now, 24*time.Hour))

	wellPast := now.Add(-48 * time.Hour)
	assert.Equal(t, false, IsFresh(&wellPast, now, 24*time.Hour))

	justFetched := now
	assert.Equal(t, true, IsFresh(&justFetched, now, 24*time.Hour))
}

func TestIsFresh_CustomTTL(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	thirtyMinAgo := now.Add(-30 * time.Minute)
	assert.Equal(t, true, IsFresh(&thirtyMinAgo, now, time.Hour))
	assert.Equal(t, false, IsFresh(&thirtyMinAgo, now, 30*time.Minute))
}
