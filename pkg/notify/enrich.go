package notify

import (
	"context"
	"log/slog"
	"net"
	"strings"

	"github.com/Automattic/vip-new-device-notification/pkg/policy"
)

// Fallback text substituted when enrichment fails. Enrichment never aborts
// a notification; a lookup failure only degrades the message content.
const (
	LocationUnknown = "Location unknown"
	HostUnresolved  = "could not resolve host"
)

// HostResolver performs reverse-DNS lookups. net.Resolver satisfies it.
type HostResolver interface {
	LookupAddr(ctx context.Context, addr string) ([]string, error)
}

// Locator maps a remote address to human-readable location text.
// Implementations typically call out to a geolocation collaborator.
type Locator interface {
	Locate(ctx context.Context, addr string) (string, error)
}

// NoLocation is the default Locator for installations without a
// geolocation collaborator; every lookup falls back to LocationUnknown.
type NoLocation struct{}

func (NoLocation) Locate(ctx context.Context, addr string) (string, error) {
	return "", &net.DNSError{Err: "no locator configured", Name: addr}
}

// Enricher fills the hostname and location fields of a decision context,
// best effort.
type Enricher struct {
	resolver HostResolver
	locator  Locator
}

// NewEnricher creates an enricher. A nil resolver uses the system resolver;
// a nil locator disables location lookups.
func NewEnricher(resolver HostResolver, locator Locator) *Enricher {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	if locator == nil {
		locator = NoLocation{}
	}
	return &Enricher{resolver: resolver, locator: locator}
}

// Enrich returns a copy of dctx with Hostname and Location populated.
// Either lookup may fail or return nothing; the copy then carries the
// fixed fallback text instead. Never returns an error.
func (e *Enricher) Enrich(ctx context.Context, dctx policy.DecisionContext) policy.DecisionContext {
	dctx.Hostname = e.lookupHostname(ctx, dctx.RemoteAddr)
	dctx.Location = e.lookupLocation(ctx, dctx.RemoteAddr)
	return dctx
}

func (e *Enricher) lookupHostname(ctx context.Context, addr string) string {
	names, err := e.resolver.LookupAddr(ctx, addr)
	if err != nil || len(names) == 0 {
		slog.Debug("Reverse DNS lookup failed", "addr", addr, "err", err)
		return HostUnresolved
	}
	return strings.TrimSuffix(names[0], ".")
}

func (e *Enricher) lookupLocation(ctx context.Context, addr string) string {
	location, err := e.locator.Locate(ctx, addr)
	if err != nil || location == "" {
		slog.Debug("Location lookup failed", "addr", addr, "err", err)
		return LocationUnknown
	}
	return location
}
