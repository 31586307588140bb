package gloss

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/glosskit/gloss/internal/importer"
	"github.com/glosskit/gloss/internal/logging"
	"github.com/glosskit/gloss/internal/target"
	"github.com/glosskit/gloss/internal/wizard"
	"github.com/glosskit/gloss/pkg/adapters/memory"
	"github.com/glosskit/gloss/pkg/domain"
	"github.com/glosskit/gloss/pkg/observability"
	"github.com/glosskit/gloss/pkg/ports"
	"github.com/glosskit/gloss/pkg/session"
)

// Version is the library version, reported by hosts.
const Version = "0.3.1"

// Engine is the high-level entry point. It wires the section editor, the
// annotation store and the session manager together and opens review
// dialogs for headings.
type Engine struct {
	editor   ports.SectionEditor
	store    ports.AnnotationStore
	sessions *session.Manager
	notifier ports.Notifier
	sched    ports.Scheduler
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *observability.Metrics
	importer *importer.Importer
	cmp      domain.Comparator

	wizardCfg     wizard.Config
	pageTitle     string
	summary       string
	userName      string
	fallbackTitle string
}

// New initializes an Engine around a section editor. The editor is the only
// required collaborator; everything else defaults to in-process
// implementations.
func New(editor ports.SectionEditor, opts ...Option) (*Engine, error) {
	if editor == nil {
		return nil, fmt.Errorf("a section editor is required")
	}

	e := &Engine{
		editor:        editor,
		logger:        logging.NewNop(),
		cmp:           domain.NumericDotComparator,
		wizardCfg:     wizard.DefaultConfig(),
		summary:       "Adding writing review with gloss",
		fallbackTitle: "(unassigned section)",
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.store == nil {
		e.store = memory.New()
	}
	if e.registry == nil {
		e.registry = prometheus.NewRegistry()
	}
	if e.metrics == nil {
		e.metrics = observability.New(e.registry)
	}
	if e.importer == nil {
		e.importer = importer.New(importer.WithIdentity(e.userName))
	}
	e.sessions = session.NewManager(session.WithLogger(e.logger))
	return e, nil
}

// NewWizard builds a dialog state machine for the given heading HTML. The
// commit target is resolved from the heading's edit link, falling back to
// the engine's page title with an unresolved section.
func (e *Engine) NewWizard(headingHTML string) *wizard.Wizard {
	t := target.ResolveFromHeading(headingHTML, e.pageTitle)
	opts := []wizard.Option{
		wizard.WithConfig(e.wizardCfg),
		wizard.WithTarget(t),
		wizard.WithSummary(e.summary),
		wizard.WithFallbackChapterTitle(e.fallbackTitle),
		wizard.WithComparator(e.cmp),
		wizard.WithLogger(e.logger),
		wizard.WithMetrics(e.metrics),
		wizard.WithNotifier(e.notifier),
	}
	if e.sched != nil {
		opts = append(opts, wizard.WithScheduler(e.sched))
	}
	return wizard.New(e.editor, opts...)
}

// OpenDialog opens a review dialog for the heading, tearing down any dialog
// already active.
func (e *Engine) OpenDialog(headingHTML string) *session.Dialog {
	return e.sessions.Acquire(e.NewWizard(headingHTML))
}

// Sessions returns the dialog ownership manager.
func (e *Engine) Sessions() *session.Manager { return e.sessions }

// Store returns the annotation store.
func (e *Engine) Store() ports.AnnotationStore { return e.store }

// Importer returns the annotation importer.
func (e *Engine) Importer() *importer.Importer { return e.importer }

// Registry returns the Prometheus registry collecting the engine's metrics.
func (e *Engine) Registry() *prometheus.Registry { return e.registry }

// Metrics returns the engine's operation counters.
func (e *Engine) Metrics() *observability.Metrics { return e.metrics }

// Editor returns the section editor.
func (e *Engine) Editor() ports.SectionEditor { return e.editor }
