package cli

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/glosskit/gloss"
	"github.com/glosskit/gloss/internal/config"
	"github.com/glosskit/gloss/internal/logging"
	"github.com/glosskit/gloss/pkg/adapters/mediawiki"
	"github.com/glosskit/gloss/pkg/adapters/redis"
	"github.com/glosskit/gloss/pkg/observability"
	"github.com/glosskit/gloss/pkg/ports"
)

// createLogger configures the application logger. Debug output goes to
// stderr so it never interleaves with the dialog UI on stdout.
func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// createEngine initializes a gloss engine with standard CLI conventions:
// a MediaWiki section editor from the wiki config, a Redis annotation store
// when one is configured, and console notifications.
func createEngine(cfg *config.Config, logger *slog.Logger, notifier ports.Notifier) (*gloss.Engine, error) {
	registry := prometheus.NewRegistry()
	metrics := observability.New(registry)

	editor := mediawiki.New(cfg.Wiki.Endpoint,
		mediawiki.WithLogger(logger),
		mediawiki.WithNotifier(notifier),
		mediawiki.WithUserAgent(cfg.Wiki.UserAgent),
		mediawiki.WithMetrics(metrics),
		// Browser hosts reload the page after a successful save; the
		// terminal gets a message instead.
		mediawiki.WithRefresh(func() {
			printSystemMessage("Section saved upstream.")
		}, cfg.RefreshDelayDuration()),
	)

	engineOpts := []gloss.Option{
		gloss.WithLogger(logger),
		gloss.WithNotifier(notifier),
		gloss.WithRegistry(registry),
		gloss.WithMetrics(metrics),
		gloss.WithSummary(cfg.Wiki.Summary),
		gloss.WithUserName(cfg.Wiki.UserName),
		gloss.WithPageTitle(cfg.Wiki.PageTitle),
	}

	if cfg.Redis.Addr != "" {
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithTTL(cfg.RedisTTL()),
			redis.WithPrefix(cfg.Redis.Prefix),
		)
		engineOpts = append(engineOpts, gloss.WithStore(store))
	}

	engine, err := gloss.New(editor, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}
