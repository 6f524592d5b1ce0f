// Package detector decides whether an authenticated identity is on a new
// device and whether that event deserves a security notification.
//
// # Overview
//
// Each authenticated request runs one evaluation:
//
//	verify token -> (if new) issue token -> dedup check -> grace check
//	  -> policy pipeline -> compose and dispatch
//
// The evaluation is one-shot and stateless per request; the only durable
// state is the installation settings store (secret and activation time)
// and the short-TTL dedup cache.
//
// # Basic Usage
//
//	installs := install.NewService(settingsRepo)
//	service := detector.NewService(installs, cache, pipeline, notifications,
//		detector.WithHooks(hooks),
//	)
//
//	result, err := service.Evaluate(ctx, detector.Evaluation{
//		Identity:       id,
//		RemoteAddr:     "203.0.113.9",
//		UserAgent:      r.UserAgent(),
//		PresentedToken: detector.PresentedToken(r),
//		SetToken:       transport.Sink(w, r),
//	})
//
// HTTP services can mount the whole flow as middleware instead:
//
//	r.Use(detector.Middleware(service, identityProvider,
//		detector.NewHTTPCookieTransport(false)))
//
// # Failure Behavior
//
// Detection is a side channel of the request it observes. Cookie issuance
// is best effort, cache loss degrades to "not seen", enrichment failures
// fall back to fixed text, and mail dispatch is fire-and-forget. No
// engine failure ever prevents the wrapped request from completing.
package detector
