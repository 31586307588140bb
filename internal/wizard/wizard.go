package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/glosskit/gloss/internal/logging"
	"github.com/glosskit/gloss/pkg/domain"
	"github.com/glosskit/gloss/pkg/observability"
	"github.com/glosskit/gloss/pkg/ports"
)

// ContentKind names a server-rendered surface.
type ContentKind string

const (
	KindPreview ContentKind = "preview"
	KindDiff    ContentKind = "diff"
)

// User-facing messages for the commit failure paths.
const (
	MsgUnresolvedTarget = "Cannot determine which section to append to. Open the review from a section heading."
	MsgEmptyFragment    = "Enter review content before saving."
	MsgCommitFailed     = "Failed to save the review. Please try again later."
	MsgLoadFailed       = "Could not load annotations."
)

var leadingBlank = regexp.MustCompile(`^\s*\n+`)

// Config fixes the step layout of the dialog.
type Config struct {
	Steps       int
	EditStep    int
	PreviewStep int
	DiffStep    int
}

// DefaultConfig is the four-step flow: compose, edit draft, preview, diff.
func DefaultConfig() Config {
	return Config{Steps: 4, EditStep: 1, PreviewStep: 2, DiffStep: 3}
}

// Wizard is the dialog state machine. It is single-owner: methods must not
// be called concurrently. Hosts that multiplex callers serialize access
// through the session manager.
type Wizard struct {
	cfg      Config
	editor   ports.SectionEditor
	sched    ports.Scheduler
	notifier ports.Notifier
	logger   *slog.Logger
	metrics  *observability.Metrics
	cmp      domain.Comparator

	target        domain.Target
	summary       string
	fallbackTitle string

	open        bool
	saving      bool
	step        int
	composition *domain.Composition
	editedDraft string

	previewWikitext string
	previewHTML     string
	baseline        string
	pendingText     string
	diffHTML        string
	diffLines       []string

	previewSurface ports.Surface
	diffSurface    ports.Surface
	afterInject    func(kind ContentKind)
}

// Option configures a Wizard.
type Option func(*Wizard)

// WithConfig overrides the step layout.
func WithConfig(cfg Config) Option {
	return func(w *Wizard) {
		if cfg.Steps > 1 {
			w.cfg = cfg
		}
	}
}

// WithScheduler sets the after-render continuation primitive.
func WithScheduler(s ports.Scheduler) Option {
	return func(w *Wizard) {
		if s != nil {
			w.sched = s
		}
	}
}

// WithNotifier routes user-facing warnings and commit failures.
func WithNotifier(n ports.Notifier) Option {
	return func(w *Wizard) { w.notifier = n }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Wizard) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithMetrics attaches operation counters.
func WithMetrics(m *observability.Metrics) Option {
	return func(w *Wizard) { w.metrics = m }
}

// WithComparator sets the order-key comparator used when annotations are
// loaded or imported into the composition.
func WithComparator(cmp domain.Comparator) Option {
	return func(w *Wizard) {
		if cmp != nil {
			w.cmp = cmp
		}
	}
}

// WithTarget sets the resolved commit target.
func WithTarget(t domain.Target) Option {
	return func(w *Wizard) { w.target = t }
}

// WithSummary sets the edit summary used on commit.
func WithSummary(s string) Option {
	return func(w *Wizard) { w.summary = s }
}

// WithFallbackChapterTitle names chapters built from annotations that carry
// no section path.
func WithFallbackChapterTitle(title string) Option {
	return func(w *Wizard) { w.fallbackTitle = title }
}

// WithSurfaces sets the preview and diff content surfaces.
func WithSurfaces(preview, diff ports.Surface) Option {
	return func(w *Wizard) {
		if preview != nil {
			w.previewSurface = preview
		}
		if diff != nil {
			w.diffSurface = diff
		}
	}
}

// WithAfterInject installs a hook fired after content lands on a surface.
func WithAfterInject(fn func(kind ContentKind)) Option {
	return func(w *Wizard) { w.afterInject = fn }
}

// New creates an open dialog positioned at the compose step.
func New(editor ports.SectionEditor, opts ...Option) *Wizard {
	w := &Wizard{
		cfg:            DefaultConfig(),
		editor:         editor,
		sched:          Immediate{},
		logger:         logging.NewNop(),
		cmp:            domain.NumericDotComparator,
		open:           true,
		composition:    domain.NewComposition(),
		previewSurface: &BufferSurface{},
		diffSurface:    &BufferSurface{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Step returns the current step index.
func (w *Wizard) Step() int { return w.step }

// IsOpen reports whether the dialog is still mounted.
func (w *Wizard) IsOpen() bool { return w.open }

// IsSaving reports whether a commit is in flight.
func (w *Wizard) IsSaving() bool { return w.saving }

// Target returns the commit target.
func (w *Wizard) Target() domain.Target { return w.target }

// Chapters returns a copy of the current composition.
func (w *Wizard) Chapters() []domain.Chapter { return w.composition.Chapters() }

// Draft returns the edited wikitext draft.
func (w *Wizard) Draft() string { return w.editedDraft }

// SetDraft replaces the edited wikitext draft.
func (w *Wizard) SetDraft(text string) { w.editedDraft = text }

// PreviewWikitext returns the fragment the preview and diff were built from.
func (w *Wizard) PreviewWikitext() string { return w.previewWikitext }

// PreviewHTML returns the rendered preview, possibly empty.
func (w *Wizard) PreviewHTML() string { return w.previewHTML }

// DiffHTML returns the server-rendered diff, possibly empty.
func (w *Wizard) DiffHTML() string { return w.diffHTML }

// DiffLines returns the local fallback diff, non-nil only when the remote
// diff was unusable.
func (w *Wizard) DiffLines() []string { return append([]string(nil), w.diffLines...) }

// Baseline returns the last fetched section text.
func (w *Wizard) Baseline() string { return w.baseline }

// PendingText returns baseline plus the append suffix.
func (w *Wizard) PendingText() string { return w.pendingText }

// PreviewSurface exposes the preview surface for hosts.
func (w *Wizard) PreviewSurface() ports.Surface { return w.previewSurface }

// DiffSurface exposes the diff surface for hosts.
func (w *Wizard) DiffSurface() ports.Surface { return w.diffSurface }

// Close unmounts the dialog. In-flight continuations still run but their
// injections no-op against a closed dialog's surfaces.
func (w *Wizard) Close() { w.open = false }

// AddChapter appends a blank chapter.
func (w *Wizard) AddChapter() { w.composition.AddChapter() }

// RemoveChapter removes a chapter; removing the last one is a no-op.
func (w *Wizard) RemoveChapter(idx int) { w.composition.RemoveChapter(idx) }

// AddSuggestion appends a blank suggestion to a chapter.
func (w *Wizard) AddSuggestion(chIdx int) { w.composition.AddSuggestion(chIdx) }

// RemoveSuggestion removes a suggestion; removing the last one is a no-op.
func (w *Wizard) RemoveSuggestion(chIdx, sIdx int) { w.composition.RemoveSuggestion(chIdx, sIdx) }

// SetTitle sets a chapter title.
func (w *Wizard) SetTitle(chIdx int, title string) { w.composition.SetTitle(chIdx, title) }

// SetSuggestion replaces a suggestion.
func (w *Wizard) SetSuggestion(chIdx, sIdx int, s domain.Suggestion) {
	w.composition.SetSuggestion(chIdx, sIdx, s)
}

// Advance moves to the next step and schedules its side effect. It returns
// false at the last step; the caller decides whether to Commit.
func (w *Wizard) Advance(ctx context.Context) bool {
	if w.step >= w.cfg.Steps-1 {
		return false
	}
	w.step++
	dest := w.step
	w.sched.AfterRender(func() {
		switch dest {
		case w.cfg.EditStep:
			w.prepareEditDraft()
		case w.cfg.PreviewStep:
			w.preparePreview(ctx)
		case w.cfg.DiffStep:
			w.prepareDiff(ctx)
		}
		w.ensureStepContent()
	})
	return true
}

// Regress moves to the previous step. It never touches the network; cached
// content is re-shown through the ensure rule. Returns false at step zero.
func (w *Wizard) Regress() bool {
	if w.step <= 0 {
		return false
	}
	w.step--
	w.ensureStepContent()
	return true
}

func (w *Wizard) prepareEditDraft() {
	chapters := w.composition.Chapters()
	if blankComposition(chapters) {
		w.editedDraft = ""
		return
	}
	w.editedDraft = strings.TrimSpace(domain.BuildFragment(chapters))
}

// blankComposition reports whether no chapter carries any user content. An
// untouched form must produce an empty fragment, not title markup around
// nothing.
func blankComposition(chapters []domain.Chapter) bool {
	for _, ch := range chapters {
		if strings.TrimSpace(ch.Title) != "" {
			return false
		}
		for _, s := range ch.Suggestions {
			if strings.TrimSpace(s.Quote) != "" || strings.TrimSpace(s.Advice) != "" {
				return false
			}
		}
	}
	return true
}

type previewBundle struct {
	fragment     string
	appendSuffix string
}

// buildPreviewBundle picks the fragment to commit: the edited draft when
// non-empty, otherwise wikitext freshly built from the chapters. Nil means
// there is nothing to preview or save.
func (w *Wizard) buildPreviewBundle() *previewBundle {
	fragment := strings.TrimSpace(w.editedDraft)
	if fragment == "" {
		if chapters := w.composition.Chapters(); !blankComposition(chapters) {
			fragment = strings.TrimSpace(domain.BuildFragment(chapters))
		}
	}
	if fragment == "" {
		return nil
	}
	return &previewBundle{fragment: fragment, appendSuffix: "\n\n" + fragment}
}

func (w *Wizard) preparePreview(ctx context.Context) {
	w.previewHTML = ""
	w.previewWikitext = ""
	w.pendingText = ""
	w.baseline = ""
	w.diffHTML = ""
	w.diffLines = nil

	bundle := w.buildPreviewBundle()
	if bundle == nil {
		return
	}
	w.previewWikitext = bundle.fragment

	baseline := w.fetchBaseline(ctx)
	w.baseline = baseline
	w.pendingText = baseline + bundle.appendSuffix

	html := w.editor.Render(ctx, bundle.fragment, w.target.PageTitle)
	w.previewHTML = html
	if html != "" && w.step == w.cfg.PreviewStep {
		w.inject(KindPreview)
	}
}

func (w *Wizard) prepareDiff(ctx context.Context) {
	w.diffHTML = ""
	w.diffLines = nil

	bundle := w.buildPreviewBundle()
	if bundle == nil {
		return
	}
	w.previewWikitext = bundle.fragment

	// Short-circuit: the pending text from the preview step is still exactly
	// baseline plus this fragment's suffix, so the cached baseline is valid
	// and no re-read is needed.
	var baseline string
	if w.pendingText != "" && w.pendingText == w.baseline+bundle.appendSuffix {
		baseline = w.baseline
	} else {
		baseline = w.fetchBaseline(ctx)
	}
	w.baseline = baseline
	w.pendingText = baseline + bundle.appendSuffix

	diffHTML, err := w.editor.CompareDiff(ctx, baseline, w.pendingText)
	if err != nil || diffHTML == "" {
		if err != nil {
			w.logger.Debug("remote diff failed", "err", err)
		}
		if w.metrics != nil {
			w.metrics.DiffFallback()
		}
		w.diffLines = BuildDiffLines(baseline, bundle.appendSuffix)
		return
	}
	w.diffHTML = diffHTML
	if w.step == w.cfg.DiffStep {
		w.inject(KindDiff)
	} else {
		w.diffLines = BuildDiffLines(baseline, bundle.appendSuffix)
	}
}

// fetchBaseline reads the target section. An unresolved section or a failed
// read degrades to an empty baseline rather than blocking the transition.
func (w *Wizard) fetchBaseline(ctx context.Context) string {
	if !w.target.Resolved() {
		return ""
	}
	sec, err := w.editor.RetrieveFullText(ctx, w.target.PageTitle, w.target.SectionID)
	if err != nil {
		w.logger.Debug("baseline read failed", "err", err)
		return ""
	}
	return sec.Text
}

// ensureStepContent re-applies the injection rule for whichever
// server-rendered step is active once the next render has happened.
func (w *Wizard) ensureStepContent() {
	w.sched.AfterRender(func() {
		switch {
		case w.step == w.cfg.PreviewStep && w.previewHTML != "":
			w.inject(KindPreview)
		case w.step == w.cfg.DiffStep && w.diffHTML != "":
			w.inject(KindDiff)
		}
	})
}

// inject places rendered content on its surface, but only if the dialog is
// still open, the step is still the matching one and the surface is empty.
// The checks run at continuation time, not at scheduling time.
func (w *Wizard) inject(kind ContentKind) {
	w.sched.AfterRender(func() {
		if !w.open {
			return
		}
		var html string
		var surface ports.Surface
		switch kind {
		case KindPreview:
			if w.step != w.cfg.PreviewStep {
				return
			}
			html, surface = w.previewHTML, w.previewSurface
		case KindDiff:
			if w.step != w.cfg.DiffStep {
				return
			}
			html, surface = w.diffHTML, w.diffSurface
		}
		if html == "" || surface == nil {
			return
		}
		if strings.TrimSpace(surface.Content()) != "" {
			return
		}
		surface.SetContent(html)
		if w.afterInject != nil {
			w.afterInject(kind)
		}
	})
}

// Commit appends the fragment to the target section. It is only available
// from the final step; hosts surface the action there, and this guard backs
// them up. Validation failures and append errors keep the dialog open with
// the saving flag cleared; only a successful append closes it.
func (w *Wizard) Commit(ctx context.Context) error {
	if w.step != w.cfg.Steps-1 {
		return fmt.Errorf("%w: commit is only available from the final step", domain.ErrValidation)
	}
	w.saving = true

	if !w.target.Resolved() {
		w.reportCommitFailure(MsgUnresolvedTarget)
		w.saving = false
		return fmt.Errorf("%w: unresolved section target", domain.ErrValidation)
	}
	bundle := w.buildPreviewBundle()
	if bundle == nil {
		w.reportCommitFailure(MsgEmptyFragment)
		w.saving = false
		return fmt.Errorf("%w: empty fragment", domain.ErrValidation)
	}

	err := w.editor.AppendToSection(ctx, w.target.PageTitle, *w.target.SectionID, bundle.appendSuffix, w.summary)
	if err != nil {
		w.logger.Error("append failed", "page", w.target.PageTitle, "err", err)
		// The editor already raised the conflict notification; repeating it
		// here would double-notify. The blocking alert is always ours.
		if !errors.Is(err, domain.ErrConflict) && w.notifier != nil {
			w.notifier.Notify(ports.NotifyError, MsgCommitFailed)
		}
		if w.notifier != nil {
			w.notifier.Alert(MsgCommitFailed)
		}
		w.saving = false
		return err
	}

	w.logger.Info("review committed", "page", w.target.PageTitle, "section", *w.target.SectionID)
	w.saving = false
	w.open = false
	return nil
}

func (w *Wizard) reportCommitFailure(msg string) {
	if w.notifier != nil {
		w.notifier.Notify(ports.NotifyError, msg)
		w.notifier.Alert(msg)
	}
}

// ApplyChapters atomically replaces the composition. When the preview or
// diff step is active, its preparation is re-run so the surfaces reflect the
// new content.
func (w *Wizard) ApplyChapters(ctx context.Context, chapters []domain.Chapter) bool {
	if !w.composition.Replace(chapters) {
		return false
	}
	// Discard the edited draft so the replacement actually takes effect;
	// otherwise a draft captured from the old chapters would keep winning.
	w.editedDraft = ""
	switch w.step {
	case w.cfg.PreviewStep:
		w.preparePreview(ctx)
	case w.cfg.DiffStep:
		w.prepareDiff(ctx)
	}
	return true
}

// ApplyImported groups, sorts and converts annotations into chapters and
// adopts them as the composition.
func (w *Wizard) ApplyImported(ctx context.Context, list []domain.Annotation) error {
	if len(list) == 0 {
		return domain.ErrEmptyImport
	}
	groups := domain.BuildGroupsSorted(list, w.cmp)
	chapters := domain.ChaptersFromGroups(groups, w.fallbackTitle)
	if len(chapters) == 0 || !w.ApplyChapters(ctx, chapters) {
		return domain.ErrEmptyImport
	}
	if w.metrics != nil {
		w.metrics.Import(observability.ResultSuccess)
	}
	return nil
}

// LoadFromStore pulls the page's stored annotations into the composition.
// Failures surface as a warning notification, never a panic.
func (w *Wizard) LoadFromStore(ctx context.Context, store ports.AnnotationStore, page string) error {
	list, err := store.Load(ctx, page)
	if err != nil {
		w.logger.Warn("annotation load failed", "page", page, "err", err)
		if w.notifier != nil {
			w.notifier.Notify(ports.NotifyWarn, MsgLoadFailed)
		}
		return err
	}
	if err := w.ApplyImported(ctx, list); err != nil {
		if w.notifier != nil {
			w.notifier.Notify(ports.NotifyWarn, MsgLoadFailed)
		}
		return err
	}
	return nil
}

// BuildDiffLines renders a plain-text fallback diff: the existing section
// indented, then the appended fragment prefixed with "+ ".
func BuildDiffLines(oldText, appendedFragment string) []string {
	oldLines := splitLines(oldText)
	appended := leadingBlank.ReplaceAllString(appendedFragment, "")
	newLines := splitLines(appended)

	out := make([]string, 0, len(oldLines)+len(newLines)+3)
	out = append(out, "--- Existing section ---")
	for _, l := range oldLines {
		out = append(out, "  "+l)
	}
	out = append(out, "", "+++ New content to append +++")
	for _, l := range newLines {
		out = append(out, "+ "+l)
	}
	return out
}

func splitLines(s string) []string {
	return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}
