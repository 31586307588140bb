package middleware

import (
	"context"
	"regexp"

	"github.com/glosskit/gloss/pkg/domain"
	"github.com/glosskit/gloss/pkg/ports"
)

type maskingMiddleware struct {
	next     ports.AnnotationStore
	patterns []*regexp.Regexp
}

// NewMaskingMiddleware creates a middleware that redacts pattern matches from
// the free-text fields of annotations before they are persisted. Typical
// patterns cover emails or phone numbers quoted from a draft.
func NewMaskingMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.AnnotationStore) ports.AnnotationStore {
		return &maskingMiddleware{next: next, patterns: patterns}
	}
}

func (m *maskingMiddleware) Save(ctx context.Context, page string, list []domain.Annotation) error {
	// Clone so the in-memory set the dialog is using stays untouched.
	masked := make([]domain.Annotation, len(list))
	copy(masked, list)
	for i := range masked {
		masked[i].SentenceText = m.redact(masked[i].SentenceText)
		masked[i].Opinion = m.redact(masked[i].Opinion)
		masked[i].CreatedBy = m.redact(masked[i].CreatedBy)
	}
	return m.next.Save(ctx, page, masked)
}

func (m *maskingMiddleware) Load(ctx context.Context, page string) ([]domain.Annotation, error) {
	return m.next.Load(ctx, page)
}

func (m *maskingMiddleware) Delete(ctx context.Context, page string) error {
	return m.next.Delete(ctx, page)
}

func (m *maskingMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *maskingMiddleware) redact(s string) string {
	for _, p := range m.patterns {
		s = p.ReplaceAllString(s, "***")
	}
	return s
}
