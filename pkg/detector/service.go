package detector

import (
	"context"
	"log/slog"
	"time"

	"github.com/Automattic/vip-new-device-notification/pkg/dedup"
	"github.com/Automattic/vip-new-device-notification/pkg/fingerprint"
	"github.com/Automattic/vip-new-device-notification/pkg/identity"
	"github.com/Automattic/vip-new-device-notification/pkg/install"
	"github.com/Automattic/vip-new-device-notification/pkg/notify"
	"github.com/Automattic/vip-new-device-notification/pkg/policy"
)

// Outcome is the terminal state of one evaluation.
type Outcome string

const (
	// OutcomeUnmonitored: the identity is not subject to monitoring; nothing happened.
	OutcomeUnmonitored Outcome = "unmonitored"
	// OutcomeKnown: the presented token verified; the device has been seen before.
	OutcomeKnown Outcome = "known"
	// OutcomeDuplicate: new device, but this network context was already
	// flagged within the dedup TTL; no notification.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeGracePeriod: new device inside the post-activation window; no notification.
	OutcomeGracePeriod Outcome = "grace_period"
	// OutcomeSuppressed: the decision pipeline forced no-send.
	OutcomeSuppressed Outcome = "suppressed"
	// OutcomeNotified: a notification was composed and dispatched.
	OutcomeNotified Outcome = "notified"
)

// Evaluation is one inbound request: the authenticated identity and its
// network context, plus whatever token the client presented.
type Evaluation struct {
	Identity       identity.Identity
	RemoteAddr     string
	UserAgent      string
	PresentedToken string
	Now            time.Time

	// SetToken transmits a freshly issued token to the client. Optional;
	// when nil the caller is expected to issue Result.IssuedToken itself.
	SetToken TokenSink
}

// Result reports what one evaluation did.
type Result struct {
	Outcome Outcome
	// NewDevice is true whenever the presented token did not verify,
	// including outcomes that suppressed the notification.
	NewDevice bool
	// IssuedToken is the token derived for the client this request.
	IssuedToken string
}

// Service runs the detection state machine. Each call to Evaluate is a
// complete, one-shot run; there is no cross-request state beyond the
// settings store and the dedup cache.
type Service struct {
	installs      *install.Service
	cache         dedup.Cache
	pipeline      *policy.Pipeline
	notifications *notify.Service
	hooks         *policy.Hooks

	gracePeriod   time.Duration
	dedupTTL      time.Duration
	cookieDomains []string
}

// Option configures a Service.
type Option func(*Service)

// WithHooks installs the policy extension hooks.
func WithHooks(hooks *policy.Hooks) Option {
	return func(s *Service) { s.hooks = hooks }
}

// WithGracePeriod sets the default grace period (still overridable per
// evaluation by the policy hook).
func WithGracePeriod(d time.Duration) Option {
	return func(s *Service) { s.gracePeriod = d }
}

// WithDedupTTL sets the dedup cache retention window.
func WithDedupTTL(d time.Duration) Option {
	return func(s *Service) { s.dedupTTL = d }
}

// WithCookieDomains sets the default domains the device cookie is issued
// for. Empty means host-scoped.
func WithCookieDomains(domains []string) Option {
	return func(s *Service) { s.cookieDomains = domains }
}

// NewService creates the orchestrator.
func NewService(installs *install.Service, cache dedup.Cache, pipeline *policy.Pipeline, notifications *notify.Service, opts ...Option) *Service {
	s := &Service{
		installs:      installs,
		cache:         cache,
		pipeline:      pipeline,
		notifications: notifications,
		gracePeriod:   DefaultGracePeriod,
		dedupTTL:      dedup.DefaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate runs the state machine for one request. The only errors it
// returns are settings-store failures; every other collaborator failure
// degrades per its contract and the evaluation completes. Callers must
// never fail the underlying request over the returned error: detection is
// a side channel, not a gate.
func (s *Service) Evaluate(ctx context.Context, eval Evaluation) (Result, error) {
	if eval.Now.IsZero() {
		eval.Now = time.Now().UTC()
	}

	if !s.hooks.ResolveMonitor()(eval.Identity) {
		slog.Debug("Identity not monitored", "identityID", eval.Identity.ID)
		return Result{Outcome: OutcomeUnmonitored}, nil
	}

	secret, err := s.installs.Secret(ctx)
	if err != nil {
		return Result{}, err
	}

	if fingerprint.Verify(eval.PresentedToken, eval.Identity.ID, secret) {
		return Result{Outcome: OutcomeKnown}, nil
	}

	// The device is new from the token's perspective. Issue a fresh token
	// first so the client stops looking new, best effort.
	token := fingerprint.Derive(eval.Identity.ID, secret)
	if eval.SetToken != nil {
		domains := s.hooks.ResolveCookieDomains(s.cookieDomains)
		if err := eval.SetToken(token, domains, eval.Now.Add(CookieLifetime)); err != nil {
			slog.Warn("Failed to issue device token, continuing un-cookied",
				"identityID", eval.Identity.ID, "err", err)
		}
	}

	// Secondary guard for clients that reject cookies: the same network
	// context within the TTL window only ever produces one notification.
	key := dedup.Key(eval.Identity.ID, eval.RemoteAddr, eval.UserAgent)
	if s.cache.SeenRecently(ctx, key) {
		slog.Debug("New device already flagged recently", "identityID", eval.Identity.ID)
		return Result{Outcome: OutcomeDuplicate, NewDevice: true, IssuedToken: token}, nil
	}
	s.cache.MarkSeen(ctx, key, s.dedupTTL)

	installedAt, err := s.installs.InstalledAt(ctx, eval.Now)
	if err != nil {
		return Result{NewDevice: true, IssuedToken: token}, err
	}

	dctx := policy.DecisionContext{
		Identity:    eval.Identity,
		RemoteAddr:  eval.RemoteAddr,
		UserAgent:   eval.UserAgent,
		InstalledAt: installedAt,
	}

	grace := s.hooks.ResolveGracePeriod(s.gracePeriod)
	if InGracePeriod(eval.Now, installedAt, grace) {
		slog.Debug("Within grace period, suppressing notification",
			"identityID", eval.Identity.ID, "installedAt", installedAt)
		s.hooks.Observe(dctx, false)
		return Result{Outcome: OutcomeGracePeriod, NewDevice: true, IssuedToken: token}, nil
	}

	if !s.pipeline.Apply(true, dctx) {
		slog.Info("Notification suppressed by policy",
			"identityID", eval.Identity.ID, "remoteAddr", eval.RemoteAddr)
		s.hooks.Observe(dctx, false)
		return Result{Outcome: OutcomeSuppressed, NewDevice: true, IssuedToken: token}, nil
	}

	enriched := s.notifications.Enrich(ctx, dctx)
	// Fire and forget: a dispatch failure is already logged downstream and
	// must not surface to the request.
	_ = s.notifications.Dispatch(ctx, enriched)
	s.hooks.Observe(enriched, true)

	return Result{Outcome: OutcomeNotified, NewDevice: true, IssuedToken: token}, nil
}
