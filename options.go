package gloss

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/glosskit/gloss/internal/importer"
	"github.com/glosskit/gloss/internal/wizard"
	"github.com/glosskit/gloss/pkg/domain"
	"github.com/glosskit/gloss/pkg/observability"
	"github.com/glosskit/gloss/pkg/ports"
)

// Option configures an Engine.
type Option func(*Engine)

// WithStore sets the annotation store backing saved review sets. Defaults
// to an in-memory store.
func WithStore(s ports.AnnotationStore) Option {
	return func(e *Engine) {
		if s != nil {
			e.store = s
		}
	}
}

// WithNotifier routes dialog warnings and alerts to the host UI.
func WithNotifier(n ports.Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithScheduler overrides the after-render scheduler handed to new dialogs.
func WithScheduler(s ports.Scheduler) Option {
	return func(e *Engine) { e.sched = s }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithRegistry collects engine metrics into an existing Prometheus
// registry instead of a private one.
func WithRegistry(r *prometheus.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithMetrics shares an existing metrics instance instead of registering a
// fresh one. The registry it was built against must be passed alongside for
// the /metrics endpoint to see it.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithImporter replaces the annotation importer.
func WithImporter(imp *importer.Importer) Option {
	return func(e *Engine) { e.importer = imp }
}

// WithComparator sets the order-key comparator for annotation sorting.
func WithComparator(cmp domain.Comparator) Option {
	return func(e *Engine) {
		if cmp != nil {
			e.cmp = cmp
		}
	}
}

// WithWizardConfig overrides the dialog step layout.
func WithWizardConfig(cfg wizard.Config) Option {
	return func(e *Engine) { e.wizardCfg = cfg }
}

// WithPageTitle sets the page committed to when a heading carries no
// usable edit link.
func WithPageTitle(title string) Option {
	return func(e *Engine) { e.pageTitle = title }
}

// WithSummary sets the edit summary attached to commits.
func WithSummary(summary string) Option {
	return func(e *Engine) {
		if summary != "" {
			e.summary = summary
		}
	}
}

// WithUserName sets the identity stamped on imported annotations.
func WithUserName(name string) Option {
	return func(e *Engine) { e.userName = name }
}

// WithFallbackChapterTitle names the chapter holding annotations that
// carry no section of their own.
func WithFallbackChapterTitle(title string) Option {
	return func(e *Engine) {
		if title != "" {
			e.fallbackTitle = title
		}
	}
}
