package notify

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
)

// Module exposes the notice collaborator to fx graph.
var Module = fx.Provide(newNotifier)

type notifierParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newNotifier(p notifierParams) (Notifier, error) {
	if p.Config.NotifyWebhookURL == "" {
		return NewLogNotifier(p.Logger), nil
	}
	return NewWebhookClient(p.Config.NotifyWebhookURL, p.Logger)
}
