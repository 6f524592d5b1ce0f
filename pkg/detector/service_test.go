package detector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Automattic/vip-new-device-notification/pkg/dedup"
	"github.com/Automattic/vip-new-device-notification/pkg/identity"
	"github.com/Automattic/vip-new-device-notification/pkg/install"
	"github.com/Automattic/vip-new-device-notification/pkg/notify"
	"github.com/Automattic/vip-new-device-notification/pkg/policy"
)

type fakeResolver struct {
	names []string
	err   error
}

func (f fakeResolver) LookupAddr(ctx context.Context, addr string) ([]string, error) {
	return f.names, f.err
}

type fixture struct {
	service  *Service
	notifier *notify.MockNotifier
	installs *install.Service
}

type fixtureConfig struct {
	installedAt time.Time
	allowlist   []string
	hooks       *policy.Hooks
	resolver    fakeResolver
}

func newFixture(t *testing.T, cfg fixtureConfig) *fixture {
	t.Helper()

	installs := install.NewService(install.NewInMemSettingsRepository())
	if !cfg.installedAt.IsZero() {
		_, err := installs.InstalledAt(context.Background(), cfg.installedAt)
		require.NoError(t, err)
	}

	resolver := cfg.resolver
	if resolver.names == nil && resolver.err == nil {
		resolver.names = []string{"host9.example.net."}
	}

	notifier := &notify.MockNotifier{}
	notifications := notify.NewService(
		notify.NewEnricher(resolver, nil),
		notify.NewComposer("Example Site", "https://example.com", "admin@example.com", cfg.hooks),
		notifier,
	)

	service := NewService(
		installs,
		dedup.NewInMemCache(),
		policy.NewPipeline(policy.TrustedNetworks(cfg.allowlist)),
		notifications,
		WithHooks(cfg.hooks),
	)

	return &fixture{service: service, notifier: notifier, installs: installs}
}

func jordan() identity.Identity {
	return identity.Identity{
		ID:          "7",
		DisplayName: "Jordan Example",
		LoginName:   "jordan",
		Email:       "jordan@example.com",
	}
}

func evaluation(now time.Time) Evaluation {
	return Evaluation{
		Identity:   jordan(),
		RemoteAddr: "203.0.113.9",
		UserAgent:  "Mozilla/5.0",
		Now:        now,
	}
}

func TestEvaluate_FreshInstallWithinGracePeriod(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, fixtureConfig{installedAt: now})

	var issued string
	eval := evaluation(now)
	eval.SetToken = func(token string, domains []string, expiry time.Time) error {
		issued = token
		return nil
	}

	result, err := f.service.Evaluate(context.Background(), eval)
	require.NoError(t, err)

	assert.Equal(t, OutcomeGracePeriod, result.Outcome)
	assert.True(t, result.NewDevice)
	assert.NotEmpty(t, result.IssuedToken)
	assert.Equal(t, result.IssuedToken, issued, "token still issued inside the grace period")
	assert.Empty(t, f.notifier.SentNotifications, "no email inside the grace period")
}

func TestEvaluate_MatureInstallNotifies(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, fixtureConfig{installedAt: now.AddDate(0, 0, -30)})

	result, err := f.service.Evaluate(context.Background(), evaluation(now))
	require.NoError(t, err)

	assert.Equal(t, OutcomeNotified, result.Outcome)
	require.Len(t, f.notifier.SentNotifications, 1, "exactly one email")

	sent := f.notifier.SentNotifications[0]
	assert.Equal(t, []string{"admin@example.com"}, sent.To)
	assert.Contains(t, sent.Body, "jordan", "login name in the body")
	assert.Contains(t, sent.Body, "host9.example.net", "resolved hostname in the body")
}

func TestEvaluate_AllowlistedAddressSuppresses(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, fixtureConfig{
		installedAt: now.AddDate(0, 0, -30),
		allowlist:   []string{"203.0.113.9"},
	})

	result, err := f.service.Evaluate(context.Background(), evaluation(now))
	require.NoError(t, err)

	assert.Equal(t, OutcomeSuppressed, result.Outcome)
	assert.True(t, result.NewDevice)
	assert.Empty(t, f.notifier.SentNotifications)
}

func TestEvaluate_CookieRejectingClientNotifiedOnce(t *testing.T) {
	// The client never presents the issued token; the dedup cache is the
	// only guard, and it must hold the second attempt.
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, fixtureConfig{installedAt: now.AddDate(0, 0, -30)})

	first, err := f.service.Evaluate(context.Background(), evaluation(now))
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotified, first.Outcome)

	second, err := f.service.Evaluate(context.Background(), evaluation(now.Add(time.Minute)))
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, second.Outcome)
	assert.True(t, second.NewDevice, "still a new device from the token's perspective")

	assert.Len(t, f.notifier.SentNotifications, 1, "exactly one email across both attempts")
}

func TestEvaluate_PresentedTokenRecognized(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, fixtureConfig{installedAt: now.AddDate(0, 0, -30)})

	first, err := f.service.Evaluate(context.Background(), evaluation(now))
	require.NoError(t, err)
	require.NotEmpty(t, first.IssuedToken)

	eval := evaluation(now.Add(time.Hour))
	eval.PresentedToken = first.IssuedToken
	second, err := f.service.Evaluate(context.Background(), eval)
	require.NoError(t, err)

	assert.Equal(t, OutcomeKnown, second.Outcome)
	assert.False(t, second.NewDevice)
	assert.Len(t, f.notifier.SentNotifications, 1, "no second email for a known device")
}

func TestEvaluate_TokenForAnotherIdentityIsNotAccepted(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, fixtureConfig{installedAt: now.AddDate(0, 0, -30)})

	first, err := f.service.Evaluate(context.Background(), evaluation(now))
	require.NoError(t, err)

	eval := evaluation(now.Add(time.Hour))
	eval.Identity = identity.Identity{ID: "8", LoginName: "casey", Email: "casey@example.com"}
	eval.PresentedToken = first.IssuedToken
	second, err := f.service.Evaluate(context.Background(), eval)
	require.NoError(t, err)

	assert.Equal(t, OutcomeNotified, second.Outcome, "another identity on the same client is a new device")
}

func TestEvaluate_EnrichmentFailureStillNotifies(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, fixtureConfig{
		installedAt: now.AddDate(0, 0, -30),
		resolver:    fakeResolver{err: errors.New("nxdomain")},
	})

	result, err := f.service.Evaluate(context.Background(), evaluation(now))
	require.NoError(t, err)

	assert.Equal(t, OutcomeNotified, result.Outcome)
	require.Len(t, f.notifier.SentNotifications, 1)
	assert.Contains(t, f.notifier.SentNotifications[0].Body, notify.HostUnresolved,
		"fallback text, never an empty field")
}

func TestEvaluate_UnmonitoredIdentityShortCircuits(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, fixtureConfig{
		installedAt: now.AddDate(0, 0, -30),
		hooks: &policy.Hooks{
			Monitor: func(id identity.Identity) bool { return false },
		},
	})

	sinkCalled := false
	eval := evaluation(now)
	eval.SetToken = func(token string, domains []string, expiry time.Time) error {
		sinkCalled = true
		return nil
	}

	result, err := f.service.Evaluate(context.Background(), eval)
	require.NoError(t, err)

	assert.Equal(t, OutcomeUnmonitored, result.Outcome)
	assert.False(t, sinkCalled, "no side effects for unmonitored identities")
	assert.Empty(t, f.notifier.SentNotifications)
}

func TestEvaluate_GracePeriodOverrideHook(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, fixtureConfig{
		installedAt: now, // fresh install, default grace would suppress
		hooks: &policy.Hooks{
			GracePeriod: func(def time.Duration) time.Duration { return 0 },
		},
	})

	result, err := f.service.Evaluate(context.Background(), evaluation(now))
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotified, result.Outcome)
}

func TestEvaluate_TokenIssuanceFailureContinues(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, fixtureConfig{installedAt: now.AddDate(0, 0, -30)})

	eval := evaluation(now)
	eval.SetToken = func(token string, domains []string, expiry time.Time) error {
		return errors.New("headers already sent")
	}

	result, err := f.service.Evaluate(context.Background(), eval)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotified, result.Outcome, "issuance is best effort")
}

func TestEvaluate_ObserversSeeFinalDecision(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	var decisions []bool
	hooks := &policy.Hooks{
		Observers: []policy.Observer{
			func(dctx policy.DecisionContext, sent bool) { decisions = append(decisions, sent) },
		},
	}
	f := newFixture(t, fixtureConfig{
		installedAt: now.AddDate(0, 0, -30),
		allowlist:   []string{"198.51.100.200"},
		hooks:       hooks,
	})

	_, err := f.service.Evaluate(context.Background(), evaluation(now))
	require.NoError(t, err)

	eval := evaluation(now.Add(time.Hour))
	eval.Identity = identity.Identity{ID: "9", LoginName: "sam", Email: "sam@example.com"}
	eval.RemoteAddr = "198.51.100.200"
	_, err = f.service.Evaluate(context.Background(), eval)
	require.NoError(t, err)

	assert.Equal(t, []bool{true, false}, decisions)
}

func TestEvaluate_ZeroNowDefaultsToCurrentTime(t *testing.T) {
	f := newFixture(t, fixtureConfig{})

	eval := evaluation(time.Time{})
	result, err := f.service.Evaluate(context.Background(), eval)
	require.NoError(t, err)

	// Nothing was installed beforehand, so this call activates the engine
	// and lands inside the grace period.
	assert.Equal(t, OutcomeGracePeriod, result.Outcome)
}
