package notify

import (
	"context"
	"log/slog"

	"github.com/Automattic/vip-new-device-notification/pkg/policy"
)

// Service ties enrichment, composition and dispatch together for one
// installation.
type Service struct {
	enricher *Enricher
	composer *Composer
	notifier Notifier
}

// NewService creates a notification service.
func NewService(enricher *Enricher, composer *Composer, notifier Notifier) *Service {
	return &Service{
		enricher: enricher,
		composer: composer,
		notifier: notifier,
	}
}

// Enrich fills hostname and location for a decision context, best effort.
func (s *Service) Enrich(ctx context.Context, dctx policy.DecisionContext) policy.DecisionContext {
	return s.enricher.Enrich(ctx, dctx)
}

// Dispatch composes and sends the notification for an enriched context.
// Dispatch is fire-and-forget: a delivery failure is logged and reported
// to the caller, but the caller never retries and never fails the
// underlying request over it.
func (s *Service) Dispatch(ctx context.Context, dctx policy.DecisionContext) error {
	notification, err := s.composer.Compose(dctx)
	if err != nil {
		slog.Error("Failed to compose notification", "identityID", dctx.Identity.ID, "err", err)
		return err
	}

	if err := s.notifier.Send(notification); err != nil {
		slog.Error("Failed to dispatch notification",
			"identityID", dctx.Identity.ID, "to", notification.To, "err", err)
		return err
	}

	slog.Info("New device notification sent",
		"identityID", dctx.Identity.ID,
		"loginName", dctx.Identity.LoginName,
		"remoteAddr", dctx.RemoteAddr)
	return nil
}
