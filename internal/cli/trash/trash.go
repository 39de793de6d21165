// Package trash computes how long soft-deleted sprites survive before the
// server purges them.
package trash

import (
	"math"
	"time"
)

const (
	// Retention is how long a deleted sprite stays restorable
	Retention = 30 * 24 * time.Hour
	// UrgentDays is the remaining-days threshold at which an item is flagged
	UrgentDays = 5
)

// Expiry reports when an item deleted at deletedAt is purged
func Expiry(deletedAt time.Time) time.Time {
	return deletedAt.Add(Retention)
}

// DaysRemaining returns the whole days left before purge, rounded up and
// never negative.
func DaysRemaining(deletedAt, now time.Time) int {
	left := Expiry(deletedAt).Sub(now)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Hours() / 24))
}

// Urgent reports whether the item is about to be purged
func Urgent(days int) bool {
	return days <= UrgentDays
}
