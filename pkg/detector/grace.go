package detector

import "time"

// DefaultGracePeriod is the suppression window after first activation:
// 604800 seconds. On first activation every existing identity appears
// "new" at once; the window lets normal usage populate device tokens
// before enforcement begins.
const DefaultGracePeriod = 7 * 24 * time.Hour

// InGracePeriod reports whether notifications are suppressed at now.
// The window is half-open: suppressed for all instants in
// [installedAt, installedAt+grace), active from installedAt+grace on.
func InGracePeriod(now, installedAt time.Time, grace time.Duration) bool {
	return now.Sub(installedAt) < grace
}
