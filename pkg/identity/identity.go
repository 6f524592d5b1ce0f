package identity

// Identity is the authenticated principal an evaluation runs for.
// It is supplied by the external identity provider and is read-only
// to this engine; there is no ambient "current user" anywhere else.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	LoginName   string `json:"login_name"`
	Email       string `json:"email"`
}

// MonitorPredicate reports whether an identity is subject to new-device
// monitoring at all. Unmonitored identities short-circuit the whole
// evaluation with no side effects.
type MonitorPredicate func(id Identity) bool

// MonitorAll is the default predicate: every identity is monitored.
func MonitorAll(Identity) bool {
	return true
}
