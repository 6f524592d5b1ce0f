package detector

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/Automattic/vip-new-device-notification/pkg/identity"
)

// IdentityProvider extracts the authenticated identity for a request.
// The second return is false when the request is unauthenticated, in which
// case the middleware does nothing.
type IdentityProvider func(r *http.Request) (identity.Identity, bool)

// Middleware runs one evaluation per authenticated request and issues the
// device cookie on the response. It never fails or delays the wrapped
// handler: every engine error is logged and swallowed, because detection
// is an orthogonal side channel to whatever the request was actually for.
func Middleware(service *Service, provider IdentityProvider, transport *HTTPCookieTransport) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := provider(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			_, err := service.Evaluate(r.Context(), Evaluation{
				Identity:       id,
				RemoteAddr:     clientAddr(r),
				UserAgent:      r.UserAgent(),
				PresentedToken: PresentedToken(r),
				SetToken:       transport.Sink(w, r),
			})
			if err != nil {
				slog.Error("New device evaluation failed", "identityID", id.ID, "err", err)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientAddr strips the port from the peer address.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
