package streak

import (
	"time"

	"github.com/abhisek/linguo/internal/store"
)

const (
	// HeartRefillInterval is the time it takes to regenerate HeartsPerRefill.
	HeartRefillInterval = 30 * time.Minute
	// HeartsPerRefill is the number of hearts restored per elapsed interval.
	HeartsPerRefill = 5
)

// Regenerate computes the heart count after regeneration. It does not
// persist anything; callers store lastRefilled = now only when regenerated
// is true. A nil lastRefilled never regenerates.
func Regenerate(hearts int, lastRefilled *time.Time, now time.Time) (newHearts int, regenerated bool) {
	if lastRefilled == nil {
		return hearts, false
	}
	intervals := int(now.Sub(*lastRefilled) / HeartRefillInterval)
	if intervals <= 0 {
		return hearts, false
	}
	newHearts = min(store.MaxHearts, hearts+HeartsPerRefill*intervals)
	if newHearts <= hearts {
		return hearts, false
	}
	return newHearts, true
}

// Deduct removes a heart for a wrong answer. Nothing is deducted when hearts
// are disabled or the user is revising already completed material.
func Deduct(hearts int, heartsEnabled, revision bool) int {
	if !heartsEnabled || revision {
		return hearts
	}
	return max(0, hearts-1)
}
