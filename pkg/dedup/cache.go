package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// DefaultTTL bounds dedup entry retention. The exact value is a tunable,
// not correctness-critical: a lost entry costs at most one extra
// notification.
const DefaultTTL = 10 * time.Minute

// Key derives the dedup cache key for one sighting. The device token is
// deliberately not part of the key: a client that clears cookies but keeps
// the same address and agent within the TTL stays suppressed. That is
// intentional anti-spam behavior, not an oversight.
func Key(identityID, remoteAddr, userAgent string) string {
	combined := fmt.Sprintf("%s|%s|%s", identityID, remoteAddr, userAgent)
	hash := sha256.Sum256([]byte(combined))
	return hex.EncodeToString(hash[:])
}

// Cache is the short-TTL volatile store guarding against duplicate
// notifications for clients that have not (yet, or ever) accepted the
// device cookie.
//
// Implementations must be loss-tolerant: any backend failure is reported
// as "not seen" and a failed MarkSeen is silently dropped. The engine
// prefers an occasional duplicate email over a silently missed alert.
type Cache interface {
	// SeenRecently reports whether key was marked within its TTL window.
	SeenRecently(ctx context.Context, key string) bool

	// MarkSeen records key for ttl. Best effort.
	MarkSeen(ctx context.Context, key string, ttl time.Duration)
}
