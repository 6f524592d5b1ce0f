package policy

import (
	"time"

	"github.com/Automattic/vip-new-device-notification/pkg/identity"
)

// DecisionContext is the request-scoped record an override sees when it is
// asked to revise the send decision. It exists only for the duration of one
// evaluation and is never persisted.
type DecisionContext struct {
	Identity    identity.Identity
	RemoteAddr  string
	UserAgent   string
	Hostname    string
	Location    string
	InstalledAt time.Time
}

// Override revises the send decision for one new-device event. It receives
// the previous stage's verdict, not the original tentative value: overrides
// compose, they do not independently vote.
type Override func(send bool, dctx DecisionContext) bool

// Observer sees the final verdict for audit purposes. It runs after the
// pipeline and cannot influence the decision.
type Observer func(dctx DecisionContext, sent bool)

// Pipeline is an ordered chain of overrides applied to the tentative send
// decision. Built-in overrides run first, registered ones after, in
// registration order, each stage feeding the next.
type Pipeline struct {
	overrides []Override
}

// NewPipeline creates a pipeline seeded with the built-in overrides.
func NewPipeline(builtin ...Override) *Pipeline {
	return &Pipeline{overrides: builtin}
}

// Register appends an override to run after every previously added one.
func (p *Pipeline) Register(o Override) {
	p.overrides = append(p.overrides, o)
}

// Apply runs the chain left to right and returns the final verdict.
// An empty pipeline returns the tentative value unchanged.
func (p *Pipeline) Apply(tentative bool, dctx DecisionContext) bool {
	send := tentative
	for _, o := range p.overrides {
		send = o(send, dctx)
	}
	return send
}

// TrustedNetworks returns the built-in allowlist override: if the context's
// remote address exactly matches an allowlist entry, the verdict is forced
// to no-send regardless of the upstream value. Comparison is exact-string;
// CIDR matching is left to registered overrides that want it. An empty
// allowlist never changes the decision.
func TrustedNetworks(allowlist []string) Override {
	return func(send bool, dctx DecisionContext) bool {
		for _, addr := range allowlist {
			if addr == dctx.RemoteAddr {
				return false
			}
		}
		return send
	}
}
