package game

import "time"

// IsExpired reports whether a puzzle is closed for scoring at now. A nil
// expiresAt means the puzzle never expires. Expiry is strict: a guess landing
// exactly on the expiry instant still counts.
//
// The result at submission time is persisted on the guess row and never
// recomputed, so historical records are immune to later clock or policy
// changes.
func IsExpired(expiresAt *time.Time, now time.Time) bool {
	if expiresAt == nil {
		return false
	}
	return expiresAt.Before(now)
}
