// Package importer turns arbitrary annotation JSON into a validated
// annotation list and, from there, into chapters the composition can adopt.
//
// Imported files come from other tools and browsers, so every field is
// treated as optional and weakly typed. Normalization never fails; it fills
// gaps with generated ids, fallback sections and the importing identity.
package importer

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/glosskit/gloss/pkg/domain"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Importer normalizes untyped annotation records.
type Importer struct {
	identity string
	now      func() time.Time
	rnd      *rand.Rand
}

// Option configures an Importer.
type Option func(*Importer)

// WithIdentity sets the createdBy value used when a record carries none.
func WithIdentity(name string) Option {
	return func(im *Importer) {
		if name != "" {
			im.identity = name
		}
	}
}

// WithClock overrides the time source. Tests use it for stable output.
func WithClock(now func() time.Time) Option {
	return func(im *Importer) {
		if now != nil {
			im.now = now
		}
	}
}

// New creates an Importer.
func New(opts ...Option) *Importer {
	im := &Importer{
		identity: "import",
		now:      time.Now,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// rawAnnotation is the weakly typed shape an imported record is decoded
// into. Alternate field names (quote, suggestion) cover exports from older
// annotation tooling.
type rawAnnotation struct {
	ID           string `mapstructure:"id"`
	SectionPath  string `mapstructure:"sectionPath"`
	SentencePos  string `mapstructure:"sentencePos"`
	SentenceText string `mapstructure:"sentenceText"`
	Quote        string `mapstructure:"quote"`
	Opinion      string `mapstructure:"opinion"`
	Suggestion   string `mapstructure:"suggestion"`
	CreatedBy    string `mapstructure:"createdBy"`
	CreatedAt    int64  `mapstructure:"createdAt"`
	Resolved     bool   `mapstructure:"resolved"`
}

// generateID returns a session-unique id for records imported without one.
func (im *Importer) generateID() string {
	var b strings.Builder
	for i := 0; i < 7; i++ {
		b.WriteByte(idAlphabet[im.rnd.Intn(len(idAlphabet))])
	}
	return fmt.Sprintf("import-%d-%s", im.now().UnixMilli(), b.String())
}

// Normalize produces a structurally valid annotation from an arbitrary
// record. It never fails: missing fields fall back to generated or
// configured values.
func (im *Importer) Normalize(raw any, fallbackSection string) domain.Annotation {
	var rec rawAnnotation
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &rec,
	})
	if err == nil {
		// Decode errors leave rec partially filled, which is fine here.
		_ = dec.Decode(raw)
	}

	a := domain.Annotation{
		ID:           strings.TrimSpace(rec.ID),
		SectionPath:  strings.TrimSpace(rec.SectionPath),
		SentencePos:  domain.OrderKey(rec.SentencePos),
		SentenceText: rec.SentenceText,
		Opinion:      rec.Opinion,
		CreatedBy:    rec.CreatedBy,
		CreatedAt:    rec.CreatedAt,
		Resolved:     rec.Resolved,
	}
	if a.ID == "" {
		a.ID = im.generateID()
	}
	if a.SectionPath == "" {
		a.SectionPath = fallbackSection
	}
	if a.SentenceText == "" {
		a.SentenceText = rec.Quote
	}
	if a.Opinion == "" {
		a.Opinion = rec.Suggestion
	}
	if a.CreatedBy == "" {
		a.CreatedBy = im.identity
	}
	if a.CreatedAt == 0 {
		a.CreatedAt = im.now().UnixMilli()
	}
	return a
}

// importFile covers both accepted top-level shapes.
type importFile struct {
	Annotations []any `json:"annotations"`
	Groups      []struct {
		SectionPath string `json:"sectionPath"`
		Annotations []any  `json:"annotations"`
	} `json:"groups"`
}

// Ingest parses an annotation JSON document. It accepts a flat list under
// "annotations" or grouped records under "groups"; a member's own
// sectionPath wins over its group's. Other shapes fail with
// domain.ErrInvalidFormat, an empty result with domain.ErrEmptyImport.
func (im *Importer) Ingest(data []byte, fallbackSection string) ([]domain.Annotation, error) {
	var file importFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFormat, err)
	}

	var out []domain.Annotation
	switch {
	case file.Annotations != nil:
		for _, raw := range file.Annotations {
			out = append(out, im.Normalize(raw, fallbackSection))
		}
	case file.Groups != nil:
		for _, g := range file.Groups {
			section := g.SectionPath
			if section == "" {
				section = fallbackSection
			}
			for _, raw := range g.Annotations {
				out = append(out, im.Normalize(raw, section))
			}
		}
	default:
		return nil, fmt.Errorf("%w: expected an annotations or groups key", domain.ErrInvalidFormat)
	}

	if len(out) == 0 {
		return nil, domain.ErrEmptyImport
	}
	return out, nil
}

// Chapters groups and sorts the list, then converts each group to a chapter
// with one suggestion per annotation. fallbackTitle names groups whose
// section path is empty.
func Chapters(list []domain.Annotation, cmp domain.Comparator, fallbackTitle string) []domain.Chapter {
	groups := domain.BuildGroupsSorted(list, cmp)
	return domain.ChaptersFromGroups(groups, fallbackTitle)
}
