package importer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glosskit/gloss/pkg/domain"
)

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func TestNormalize_Defaults(t *testing.T) {
	im := New(WithClock(fixedClock(1700000000000)))

	a := im.Normalize(map[string]any{}, "Background")

	assert.True(t, strings.HasPrefix(a.ID, "import-1700000000000-"), "id %q", a.ID)
	assert.Len(t, a.ID, len("import-1700000000000-")+7)
	assert.Equal(t, "Background", a.SectionPath)
	assert.Equal(t, "import", a.CreatedBy)
	assert.Equal(t, int64(1700000000000), a.CreatedAt)
	assert.False(t, a.Resolved)
}

func TestNormalize_FallbackFields(t *testing.T) {
	im := New(WithIdentity("Reviewer"))

	a := im.Normalize(map[string]any{
		"quote":      "the cited sentence",
		"suggestion": "tighten this up",
		"resolved":   1,
	}, "")

	assert.Equal(t, "the cited sentence", a.SentenceText)
	assert.Equal(t, "tighten this up", a.Opinion)
	assert.Equal(t, "Reviewer", a.CreatedBy)
	assert.True(t, a.Resolved, "weakly typed truthy value coerces to bool")
}

func TestNormalize_PrimaryFieldsWin(t *testing.T) {
	im := New()

	a := im.Normalize(map[string]any{
		"id":           "  a-1  ",
		"sectionPath":  "Intro",
		"sentencePos":  "2.3",
		"sentenceText": "primary",
		"quote":        "shadowed",
		"opinion":      "keep",
		"suggestion":   "shadowed too",
		"createdBy":    "alice",
		"createdAt":    42,
	}, "Fallback")

	assert.Equal(t, "a-1", a.ID)
	assert.Equal(t, "Intro", a.SectionPath)
	assert.Equal(t, domain.OrderKey("2.3"), a.SentencePos)
	assert.Equal(t, "primary", a.SentenceText)
	assert.Equal(t, "keep", a.Opinion)
	assert.Equal(t, "alice", a.CreatedBy)
	assert.Equal(t, int64(42), a.CreatedAt)
}

func TestNormalize_NonRecordInput(t *testing.T) {
	im := New()

	a := im.Normalize("not a record", "Fallback")

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "Fallback", a.SectionPath)
}

func TestNormalize_GeneratedIDsAreUnique(t *testing.T) {
	im := New(WithClock(fixedClock(1)))
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		id := im.Normalize(nil, "").ID
		require.False(t, seen[id], "duplicate id %q", id)
		seen[id] = true
	}
}

func TestIngest_FlatList(t *testing.T) {
	im := New()

	got, err := im.Ingest([]byte(`{"annotations":[
		{"id":"a","sectionPath":"Intro","sentenceText":"s","opinion":"o"},
		{"id":"b","sentenceText":"t"}
	]}`), "Fallback")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Intro", got[0].SectionPath)
	assert.Equal(t, "Fallback", got[1].SectionPath)
}

func TestIngest_Groups(t *testing.T) {
	im := New()

	got, err := im.Ingest([]byte(`{"groups":[
		{"sectionPath":"Background","annotations":[
			{"id":"a","quote":"q1","suggestion":"s1"},
			{"id":"b","sectionPath":"Own","quote":"q2"}
		]},
		{"sectionPath":"Intro","annotations":[{"id":"c"}]}
	]}`), "")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Background", got[0].SectionPath)
	assert.Equal(t, "Own", got[1].SectionPath, "member sectionPath wins over the group's")
	assert.Equal(t, "Intro", got[2].SectionPath)
}

func TestIngest_InvalidShapes(t *testing.T) {
	im := New()

	for name, payload := range map[string]string{
		"not json":       "{",
		"array":          `[1,2,3]`,
		"no known key":   `{"items":[]}`,
		"string payload": `"hello"`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := im.Ingest([]byte(payload), "")
			assert.ErrorIs(t, err, domain.ErrInvalidFormat)
		})
	}
}

func TestIngest_Empty(t *testing.T) {
	im := New()

	_, err := im.Ingest([]byte(`{"annotations":[]}`), "")
	assert.ErrorIs(t, err, domain.ErrEmptyImport)

	_, err = im.Ingest([]byte(`{"groups":[{"sectionPath":"Intro","annotations":[]}]}`), "")
	assert.ErrorIs(t, err, domain.ErrEmptyImport)
}

func TestChapters(t *testing.T) {
	list := []domain.Annotation{
		{ID: "a", SectionPath: "Later", SentencePos: "5", SentenceText: "q1", Opinion: "o1"},
		{ID: "b", SectionPath: "Early", SentencePos: "1.2", SentenceText: "q2", Opinion: "o2"},
		{ID: "c", SectionPath: "Early", SentencePos: "1.1", SentenceText: "q3", Opinion: "o3"},
		{ID: "d", SectionPath: "", SentenceText: "q4", Opinion: "o4"},
	}

	got := Chapters(list, domain.NumericDotComparator, "Whole page")
	require.Len(t, got, 3)

	// The empty-key group sorts first (absent keys compare lowest).
	assert.Equal(t, "Whole page", got[0].Title)
	assert.Equal(t, "Early", got[1].Title)
	require.Len(t, got[1].Suggestions, 2)
	assert.Equal(t, "q3", got[1].Suggestions[0].Quote, "members sorted by position")
	assert.Equal(t, "Later", got[2].Title)
}
