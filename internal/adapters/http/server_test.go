package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glosskit/gloss/internal/wizard"
	"github.com/glosskit/gloss/pkg/domain"
	"github.com/glosskit/gloss/pkg/session"
)

type stubEditor struct {
	appendErr error
}

func (stubEditor) RetrieveFullText(context.Context, string, *int) (domain.SectionText, error) {
	return domain.SectionText{Text: "baseline"}, nil
}

func (s stubEditor) AppendToSection(context.Context, string, int, string, string) error {
	return s.appendErr
}

func (stubEditor) ReplaceSectionText(context.Context, string, int, string, string, *domain.SectionTimestamps) error {
	return nil
}

func (stubEditor) Render(context.Context, string, string) string { return "<p>x</p>" }

func (stubEditor) CompareDiff(context.Context, string, string) (string, error) {
	return "<tr>d</tr>", nil
}

func newTestHandler(ed stubEditor) http.Handler {
	sessions := session.NewManager()
	open := func(string) *wizard.Wizard {
		sec := 4
		return wizard.New(ed, wizard.WithTarget(domain.Target{PageTitle: "Talk:Example", SectionID: &sec}))
	}
	return NewHandler(sessions, open)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("{}")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestHealthz(t *testing.T) {
	rec := do(t, newTestHandler(stubEditor{}), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDialogLifecycle(t *testing.T) {
	h := newTestHandler(stubEditor{})

	rec := do(t, h, http.MethodGet, "/dialogs/current", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "no dialog open yet")

	rec = do(t, h, http.MethodPost, "/dialogs", `{"headingHtml":"<h2>x</h2>"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	state := decodeState(t, rec)
	assert.Equal(t, float64(0), state["step"])
	assert.NotEmpty(t, state["id"])

	rec = do(t, h, http.MethodPut, "/dialogs/current/chapters",
		`{"chapters":[{"title":"Intro","suggestions":[{"quote":"q","suggestion":"a"}]}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/dialogs/current/advance", "")
	require.Equal(t, http.StatusOK, rec.Code)
	state = decodeState(t, rec)
	assert.Equal(t, float64(1), state["step"])
	assert.Contains(t, state["draft"], "'''Intro'''")

	rec = do(t, h, http.MethodPost, "/dialogs/current/regress", "")
	state = decodeState(t, rec)
	assert.Equal(t, float64(0), state["step"])
}

// advanceToDiff walks the current dialog to the diff step, the only step
// where commit is accepted.
func advanceToDiff(t *testing.T, h http.Handler) {
	t.Helper()
	for i := 0; i < 3; i++ {
		rec := do(t, h, http.MethodPost, "/dialogs/current/advance", "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestCommitClosesDialog(t *testing.T) {
	h := newTestHandler(stubEditor{})

	do(t, h, http.MethodPost, "/dialogs", `{}`)
	do(t, h, http.MethodPut, "/dialogs/current/chapters",
		`{"chapters":[{"title":"Intro","suggestions":[{"quote":"q","suggestion":"a"}]}]}`)
	advanceToDiff(t, h)

	rec := do(t, h, http.MethodPost, "/dialogs/current/commit", "")
	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeState(t, rec)
	assert.Equal(t, false, state["open"])

	rec = do(t, h, http.MethodGet, "/dialogs/current", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "a committed dialog is gone")
}

func TestCommitValidationFailure(t *testing.T) {
	h := newTestHandler(stubEditor{})
	do(t, h, http.MethodPost, "/dialogs", `{}`)
	advanceToDiff(t, h)

	// Blank composition: nothing to save.
	rec := do(t, h, http.MethodPost, "/dialogs/current/commit", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var e errorPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	assert.Equal(t, "validation", e.Code)

	rec = do(t, h, http.MethodGet, "/dialogs/current", "")
	assert.Equal(t, http.StatusOK, rec.Code, "a failed commit keeps the dialog open")
}

func TestCommitConflictMapsTo409(t *testing.T) {
	h := newTestHandler(stubEditor{appendErr: domain.ErrConflict})
	do(t, h, http.MethodPost, "/dialogs", `{}`)
	do(t, h, http.MethodPut, "/dialogs/current/chapters",
		`{"chapters":[{"title":"Intro","suggestions":[{"quote":"q","suggestion":"a"}]}]}`)
	advanceToDiff(t, h)

	rec := do(t, h, http.MethodPost, "/dialogs/current/commit", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCommitBeforeDiffStepIsRejected(t *testing.T) {
	h := newTestHandler(stubEditor{})
	do(t, h, http.MethodPost, "/dialogs", `{}`)
	do(t, h, http.MethodPut, "/dialogs/current/chapters",
		`{"chapters":[{"title":"Intro","suggestions":[{"quote":"q","suggestion":"a"}]}]}`)

	rec := do(t, h, http.MethodPost, "/dialogs/current/commit", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var e errorPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	assert.Equal(t, "validation", e.Code)

	rec = do(t, h, http.MethodGet, "/dialogs/current", "")
	assert.Equal(t, http.StatusOK, rec.Code, "the dialog survives the early commit")
}

func TestImport(t *testing.T) {
	h := newTestHandler(stubEditor{})
	do(t, h, http.MethodPost, "/dialogs", `{}`)

	rec := do(t, h, http.MethodPost, "/dialogs/current/import",
		`{"annotations":[{"id":"a","sectionPath":"Intro","sentenceText":"q","opinion":"o"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeState(t, rec)
	chapters := state["chapters"].([]any)
	require.Len(t, chapters, 1)
	assert.Equal(t, "Intro", chapters[0].(map[string]any)["title"])

	rec = do(t, h, http.MethodPost, "/dialogs/current/import", `{"bogus":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/dialogs/current/import", `{"annotations":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOpenReplacesPreviousDialog(t *testing.T) {
	h := newTestHandler(stubEditor{})

	rec := do(t, h, http.MethodPost, "/dialogs", `{}`)
	first := decodeState(t, rec)["id"]

	rec = do(t, h, http.MethodPost, "/dialogs", `{}`)
	second := decodeState(t, rec)["id"]
	assert.NotEqual(t, first, second)

	rec = do(t, h, http.MethodGet, "/dialogs/current", "")
	assert.Equal(t, second, decodeState(t, rec)["id"])
}
