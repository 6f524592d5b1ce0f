package policy

import (
	"time"

	"github.com/Automattic/vip-new-device-notification/pkg/identity"
)

// Hooks are the named extension points external policy can install. Every
// field is optional; a nil hook leaves the engine default in place. Each
// hook is resolved once per evaluation, never cached across evaluations.
type Hooks struct {
	// Monitor decides whether the engine runs at all for an identity.
	Monitor identity.MonitorPredicate

	// GracePeriod revises the suppression window after first activation.
	GracePeriod func(def time.Duration) time.Duration

	// CookieDomains revises the domains the device cookie is set for.
	CookieDomains func(def []string) []string

	// Subject revises the notification subject line.
	Subject func(def string) string

	// BodyTemplate revises the notification body template text.
	BodyTemplate func(def string) string

	// Recipients revises the recipient list, given the defaults and the
	// acting identity (e.g. to add every moderator address).
	Recipients func(def []string, id identity.Identity) []string

	// CCActingIdentity adds the acting identity's own email as a CC when
	// that address passes basic syntax validation.
	CCActingIdentity bool

	// Observers run after the final verdict, for audit logging only.
	Observers []Observer
}

// ResolveMonitor returns the monitored-identity predicate.
func (h *Hooks) ResolveMonitor() identity.MonitorPredicate {
	if h == nil || h.Monitor == nil {
		return identity.MonitorAll
	}
	return h.Monitor
}

// ResolveGracePeriod returns the effective grace period.
func (h *Hooks) ResolveGracePeriod(def time.Duration) time.Duration {
	if h == nil || h.GracePeriod == nil {
		return def
	}
	return h.GracePeriod(def)
}

// ResolveCookieDomains returns the effective cookie domain list.
func (h *Hooks) ResolveCookieDomains(def []string) []string {
	if h == nil || h.CookieDomains == nil {
		return def
	}
	return h.CookieDomains(def)
}

// ResolveSubject returns the effective subject line.
func (h *Hooks) ResolveSubject(def string) string {
	if h == nil || h.Subject == nil {
		return def
	}
	return h.Subject(def)
}

// ResolveBodyTemplate returns the effective body template text.
func (h *Hooks) ResolveBodyTemplate(def string) string {
	if h == nil || h.BodyTemplate == nil {
		return def
	}
	return h.BodyTemplate(def)
}

// ResolveRecipients returns the effective recipient list before validation
// and de-duplication.
func (h *Hooks) ResolveRecipients(def []string, id identity.Identity) []string {
	if h == nil || h.Recipients == nil {
		return def
	}
	return h.Recipients(def, id)
}

// Observe invokes every registered observer with the final verdict.
func (h *Hooks) Observe(dctx DecisionContext, sent bool) {
	if h == nil {
		return
	}
	for _, o := range h.Observers {
		o(dctx, sent)
	}
}
