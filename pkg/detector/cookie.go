package detector

import (
	"net/http"
	"time"
)

// CookieName is the client-held device token cookie.
const CookieName = "deviceseenbefore"

// CookieLifetime is how long the client keeps the token. The server never
// expires tokens itself; the cookie lifetime (or the client clearing it)
// is the only expiry.
const CookieLifetime = 10 * 365 * 24 * time.Hour

// TokenSink receives a freshly issued device token for transmission to the
// client. Issuance is best effort: a sink error (e.g. response headers
// already sent) is logged by the engine and the evaluation continues
// un-cookied, leaving the dedup cache as the only de-duplication for the
// request.
type TokenSink func(token string, domains []string, expiry time.Time) error

// HTTPCookieTransport writes the device token as an HTTP cookie, once per
// configured domain.
type HTTPCookieTransport struct {
	Path     string
	HttpOnly bool
	Secure   bool
	SameSite http.SameSite
}

// NewHTTPCookieTransport creates a transport with the engine defaults:
// root path, HttpOnly, Lax.
func NewHTTPCookieTransport(secure bool) *HTTPCookieTransport {
	return &HTTPCookieTransport{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Sink returns a TokenSink bound to one response. The Secure attribute
// follows the request's TLS state unless the transport forces it on.
// An empty domain list sets a single host-scoped cookie; duplicate
// domains produce one cookie each time at most.
func (t *HTTPCookieTransport) Sink(w http.ResponseWriter, r *http.Request) TokenSink {
	secure := t.Secure || r.TLS != nil
	return func(token string, domains []string, expiry time.Time) error {
		if len(domains) == 0 {
			domains = []string{""}
		}
		seen := make(map[string]bool)
		for _, domain := range domains {
			if seen[domain] {
				continue
			}
			seen[domain] = true
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    token,
				Path:     t.Path,
				Domain:   domain,
				Expires:  expiry,
				HttpOnly: t.HttpOnly,
				Secure:   secure,
				SameSite: t.SameSite,
			})
		}
		return nil
	}
}

// PresentedToken reads the device token the client sent, if any.
func PresentedToken(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
