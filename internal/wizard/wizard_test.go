package wizard

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glosskit/gloss/pkg/domain"
	"github.com/glosskit/gloss/pkg/ports"
)

// fakeEditor is a scripted SectionEditor. Hooks run mid-call so tests can
// change the dialog while a "network" call is in flight.
type fakeEditor struct {
	text       string
	renderHTML string
	diffHTML   string
	diffErr    error
	appendErr  error

	reads    int
	compares int
	appended []string

	onRetrieve func()
}

func (f *fakeEditor) RetrieveFullText(_ context.Context, _ string, _ *int) (domain.SectionText, error) {
	f.reads++
	if f.onRetrieve != nil {
		f.onRetrieve()
	}
	return domain.SectionText{Text: f.text, StartTimestamp: "s", BaseTimestamp: "b"}, nil
}

func (f *fakeEditor) AppendToSection(_ context.Context, _ string, _ int, appendText, _ string) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, appendText)
	return nil
}

func (f *fakeEditor) ReplaceSectionText(_ context.Context, _ string, _ int, _, _ string, _ *domain.SectionTimestamps) error {
	return nil
}

func (f *fakeEditor) Render(_ context.Context, _, _ string) string { return f.renderHTML }

func (f *fakeEditor) CompareDiff(_ context.Context, _, _ string) (string, error) {
	f.compares++
	return f.diffHTML, f.diffErr
}

type notes struct {
	levels []ports.NotifyLevel
	msgs   []string
	alerts []string
}

func (n *notes) Notify(level ports.NotifyLevel, msg string) {
	n.levels = append(n.levels, level)
	n.msgs = append(n.msgs, msg)
}

func (n *notes) Alert(msg string) { n.alerts = append(n.alerts, msg) }

func resolvedTarget() domain.Target {
	sec := 4
	return domain.Target{PageTitle: "Talk:Example", SectionID: &sec}
}

func composed(w *Wizard) {
	w.SetTitle(0, "Intro")
	w.SetSuggestion(0, 0, domain.Suggestion{Quote: "foo", Advice: "bar"})
}

// atFinalStep walks the dialog to the diff step, where commit becomes
// available.
func atFinalStep(w *Wizard) {
	for w.Advance(context.Background()) {
	}
}

func TestAdvance_StopsAtLastStep(t *testing.T) {
	w := New(&fakeEditor{})
	for i := 0; i < 3; i++ {
		assert.True(t, w.Advance(context.Background()), "advance %d", i)
	}
	assert.Equal(t, 3, w.Step())
	assert.False(t, w.Advance(context.Background()), "last step must refuse to advance")
	assert.Equal(t, 3, w.Step())
}

func TestAdvance_StepMutationPrecedesSideEffect(t *testing.T) {
	ed := &fakeEditor{renderHTML: "<p>x</p>"}
	q := &Queue{}
	w := New(ed, WithScheduler(q), WithTarget(resolvedTarget()))
	composed(w)

	w.Advance(context.Background())
	q.Flush()
	assert.Zero(t, ed.reads, "the edit step needs no network")

	w.Advance(context.Background())
	assert.Equal(t, 2, w.Step(), "index already moved")
	assert.Zero(t, ed.reads, "side effect waits for the continuation")

	q.Flush()
	assert.Equal(t, 1, ed.reads)
}

func TestEnterEditStep_BuildsDraft(t *testing.T) {
	w := New(&fakeEditor{})
	composed(w)

	w.Advance(context.Background())
	assert.Equal(t, "'''Intro'''\n* {{rvw|1=foo}} —— bar\n--~~~~", w.Draft())
}

func TestPreview_RendersAndInjects(t *testing.T) {
	ed := &fakeEditor{text: "baseline text", renderHTML: "<p>rendered</p>"}
	w := New(ed, WithTarget(resolvedTarget()))
	composed(w)

	w.Advance(context.Background())
	w.Advance(context.Background())

	assert.Equal(t, 1, ed.reads)
	assert.Equal(t, "baseline text", w.Baseline())
	assert.Equal(t, "baseline text\n\n"+w.PreviewWikitext(), w.PendingText())
	assert.Equal(t, "<p>rendered</p>", w.PreviewSurface().Content())
}

func TestPreview_DraftOverridesChapters(t *testing.T) {
	ed := &fakeEditor{renderHTML: "<p>x</p>"}
	w := New(ed, WithTarget(resolvedTarget()))
	composed(w)
	w.Advance(context.Background())
	w.SetDraft("  custom wikitext  ")
	w.Advance(context.Background())

	assert.Equal(t, "custom wikitext", w.PreviewWikitext())
}

func TestPreview_EmptyFragmentSkipsNetwork(t *testing.T) {
	ed := &fakeEditor{}
	w := New(ed, WithTarget(resolvedTarget()))

	assert.True(t, w.Advance(context.Background()))
	assert.True(t, w.Advance(context.Background()))
	assert.Equal(t, 2, w.Step(), "advancing must not require content")
	assert.Zero(t, ed.reads)
	assert.Empty(t, w.PreviewSurface().Content())
}

func TestDiff_ShortCircuitReusesBaseline(t *testing.T) {
	ed := &fakeEditor{text: "baseline", renderHTML: "<p>x</p>", diffHTML: "<tr>d</tr>"}
	w := New(ed, WithTarget(resolvedTarget()))
	composed(w)

	w.Advance(context.Background())
	w.Advance(context.Background())
	require.Equal(t, 1, ed.reads)

	w.Advance(context.Background())
	assert.Equal(t, 1, ed.reads, "diff must reuse the preview baseline")
	assert.Equal(t, 1, ed.compares)
	assert.Equal(t, "<tr>d</tr>", w.DiffSurface().Content())
}

func TestDiff_RereadsWhenDraftChanged(t *testing.T) {
	ed := &fakeEditor{text: "baseline", renderHTML: "<p>x</p>", diffHTML: "<tr>d</tr>"}
	w := New(ed, WithTarget(resolvedTarget()))
	composed(w)

	w.Advance(context.Background())
	w.Advance(context.Background())
	require.Equal(t, 1, ed.reads)

	w.SetDraft("different content now")
	w.Advance(context.Background())
	assert.Equal(t, 2, ed.reads, "a changed fragment invalidates the cached pending text")
}

func TestDiff_FallbackLines(t *testing.T) {
	ed := &fakeEditor{text: "line one\nline two", renderHTML: "<p>x</p>", diffErr: errors.New("boom")}
	w := New(ed, WithTarget(resolvedTarget()))
	composed(w)
	w.SetDraft("added")

	w.Advance(context.Background())
	w.Advance(context.Background())
	w.Advance(context.Background())

	assert.Empty(t, w.DiffHTML())
	assert.Equal(t, []string{
		"--- Existing section ---",
		"  line one",
		"  line two",
		"",
		"+++ New content to append +++",
		"+ added",
	}, w.DiffLines())
	assert.Empty(t, w.DiffSurface().Content())
}

func TestRegress_NeverTouchesNetwork(t *testing.T) {
	ed := &fakeEditor{text: "baseline", renderHTML: "<p>x</p>", diffHTML: "<tr>d</tr>"}
	w := New(ed, WithTarget(resolvedTarget()))
	composed(w)

	w.Advance(context.Background())
	w.Advance(context.Background())
	w.Advance(context.Background())
	reads, compares := ed.reads, ed.compares

	assert.True(t, w.Regress())
	assert.True(t, w.Regress())
	assert.Equal(t, reads, ed.reads)
	assert.Equal(t, compares, ed.compares)

	w.Regress()
	assert.False(t, w.Regress(), "step zero must refuse to regress")
}

func TestDiff_StaleBaselineIsReusedByDesign(t *testing.T) {
	ed := &fakeEditor{text: "old baseline", renderHTML: "<p>x</p>", diffHTML: "<tr>d</tr>"}
	w := New(ed, WithTarget(resolvedTarget()))
	composed(w)

	w.Advance(context.Background())
	w.Advance(context.Background())
	require.Equal(t, "old baseline", w.Baseline())

	// The section changes remotely between preview and diff. The diff
	// short-circuit still reuses the cached baseline; nothing invalidates
	// it until the fragment itself changes. The commit path is safe anyway
	// since the append never rewrites existing text.
	ed.text = "someone else edited this"
	w.Advance(context.Background())

	assert.Equal(t, 1, ed.reads)
	assert.Equal(t, "old baseline", w.Baseline())
}

func TestInjection_LateFetchDoesNotClobberLeftSurface(t *testing.T) {
	ed := &fakeEditor{renderHTML: "<p>late</p>"}
	q := &Queue{}
	w := New(ed, WithScheduler(q), WithTarget(resolvedTarget()))
	composed(w)

	w.Advance(context.Background())
	q.Flush()
	w.Advance(context.Background())
	// The user leaves the preview step before the fetch continuation runs.
	w.Regress()
	q.Flush()

	assert.Empty(t, w.PreviewSurface().Content(), "late content must not land on a left step")
}

func TestInjection_NonEmptySurfaceIsLeftAlone(t *testing.T) {
	ed := &fakeEditor{renderHTML: "<p>new</p>"}
	surface := &BufferSurface{}
	surface.SetContent("<p>user scribbles</p>")
	hooks := 0
	w := New(ed,
		WithTarget(resolvedTarget()),
		WithSurfaces(surface, nil),
		WithAfterInject(func(ContentKind) { hooks++ }),
	)
	composed(w)

	w.Advance(context.Background())
	w.Advance(context.Background())

	assert.Equal(t, "<p>user scribbles</p>", surface.Content())
	assert.Zero(t, hooks, "the hook fires only on an actual injection")
}

func TestInjection_HookFiresOncePerInjection(t *testing.T) {
	ed := &fakeEditor{renderHTML: "<p>x</p>"}
	hooks := 0
	w := New(ed, WithTarget(resolvedTarget()), WithAfterInject(func(ContentKind) { hooks++ }))
	composed(w)

	w.Advance(context.Background())
	w.Advance(context.Background())
	assert.Equal(t, 1, hooks)

	// Regressing and returning re-runs the ensure rule against a now
	// non-empty surface.
	w.Regress()
	w.Advance(context.Background())
	assert.Equal(t, 1, hooks)
}

func TestCommit_OnlyFromLastStep(t *testing.T) {
	ed := &fakeEditor{}
	w := New(ed, WithTarget(resolvedTarget()))
	composed(w)

	// A composed dialog still at the compose step must not be able to skip
	// edit, preview and diff straight into a save.
	err := w.Commit(context.Background())
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, ed.appended, "nothing reaches the editor before the final step")
	assert.True(t, w.IsOpen())
	assert.False(t, w.IsSaving())

	w.Advance(context.Background())
	w.Advance(context.Background())
	err = w.Commit(context.Background())
	assert.ErrorIs(t, err, domain.ErrValidation, "preview step is still too early")
	assert.Empty(t, ed.appended)

	w.Advance(context.Background())
	require.NoError(t, w.Commit(context.Background()))
	require.Len(t, ed.appended, 1)
}

func TestCommit_UnresolvedTargetBlocks(t *testing.T) {
	ed := &fakeEditor{}
	n := &notes{}
	w := New(ed, WithNotifier(n), WithTarget(domain.Target{PageTitle: "Talk:Example"}))
	composed(w)
	atFinalStep(w)

	err := w.Commit(context.Background())
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.True(t, w.IsOpen(), "dialog stays open")
	assert.False(t, w.IsSaving(), "saving flag never sticks")
	assert.Empty(t, ed.appended)
	require.Len(t, n.msgs, 1)
	assert.Equal(t, MsgUnresolvedTarget, n.msgs[0])
	assert.Equal(t, []string{MsgUnresolvedTarget}, n.alerts)
}

func TestCommit_EmptyFragmentBlocks(t *testing.T) {
	ed := &fakeEditor{}
	n := &notes{}
	w := New(ed, WithNotifier(n), WithTarget(resolvedTarget()))
	atFinalStep(w)

	err := w.Commit(context.Background())
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.True(t, w.IsOpen())
	assert.Empty(t, ed.appended)
	assert.Equal(t, []string{MsgEmptyFragment}, n.alerts)
}

func TestCommit_Success(t *testing.T) {
	ed := &fakeEditor{}
	w := New(ed, WithTarget(resolvedTarget()), WithSummary("adding review"))
	composed(w)
	atFinalStep(w)

	require.NoError(t, w.Commit(context.Background()))
	assert.False(t, w.IsOpen(), "success closes the dialog")
	assert.False(t, w.IsSaving())
	require.Len(t, ed.appended, 1)
	assert.True(t, strings.HasPrefix(ed.appended[0], "\n\n'''Intro'''"), "append carries the blank-line suffix")
}

func TestCommit_AppendFailureKeepsDialogOpen(t *testing.T) {
	ed := &fakeEditor{appendErr: domain.ErrCommit}
	n := &notes{}
	w := New(ed, WithNotifier(n), WithTarget(resolvedTarget()))
	composed(w)
	atFinalStep(w)

	err := w.Commit(context.Background())
	assert.ErrorIs(t, err, domain.ErrCommit)
	assert.True(t, w.IsOpen())
	assert.False(t, w.IsSaving())
	assert.Equal(t, []string{MsgCommitFailed}, n.msgs)
	assert.Equal(t, []string{MsgCommitFailed}, n.alerts)
}

func TestCommit_ConflictAlertsWithoutSecondNotification(t *testing.T) {
	ed := &fakeEditor{appendErr: domain.ErrConflict}
	n := &notes{}
	w := New(ed, WithNotifier(n), WithTarget(resolvedTarget()))
	composed(w)
	atFinalStep(w)

	err := w.Commit(context.Background())
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Empty(t, n.msgs, "the editor owns the conflict notification")
	assert.Equal(t, []string{MsgCommitFailed}, n.alerts)
	assert.True(t, w.IsOpen())
}

func TestApplyChapters_RepreparesActiveStep(t *testing.T) {
	ed := &fakeEditor{text: "baseline", renderHTML: "<p>x</p>", diffHTML: "<tr>d</tr>"}
	w := New(ed, WithTarget(resolvedTarget()))
	composed(w)

	w.Advance(context.Background())
	w.Advance(context.Background())
	w.Advance(context.Background())
	require.Equal(t, 1, ed.compares)

	ok := w.ApplyChapters(context.Background(), []domain.Chapter{
		{Title: "New", Suggestions: []domain.Suggestion{{Quote: "q", Advice: "a"}}},
	})
	assert.True(t, ok)
	assert.Equal(t, 2, ed.compares, "diff step re-prepares on replacement")
	assert.Contains(t, w.PreviewWikitext(), "'''New'''")
}

func TestApplyChapters_EmptyReplacementIsRejected(t *testing.T) {
	w := New(&fakeEditor{})
	composed(w)

	assert.False(t, w.ApplyChapters(context.Background(), nil))
	assert.Equal(t, "Intro", w.Chapters()[0].Title)
}

func TestApplyImported(t *testing.T) {
	w := New(&fakeEditor{}, WithFallbackChapterTitle("(whole page)"))

	err := w.ApplyImported(context.Background(), []domain.Annotation{
		{ID: "a", SectionPath: "Intro", SentencePos: "2", SentenceText: "q1", Opinion: "o1"},
		{ID: "b", SectionPath: "Intro", SentencePos: "1", SentenceText: "q2", Opinion: "o2"},
		{ID: "c", SentenceText: "q3", Opinion: "o3"},
	})
	require.NoError(t, err)

	chapters := w.Chapters()
	require.Len(t, chapters, 2)
	assert.Equal(t, "(whole page)", chapters[0].Title)
	assert.Equal(t, "Intro", chapters[1].Title)
	assert.Equal(t, "q2", chapters[1].Suggestions[0].Quote, "members arrive sorted")

	assert.ErrorIs(t, w.ApplyImported(context.Background(), nil), domain.ErrEmptyImport)
}
