package ports

import (
	"context"

	"github.com/glosskit/gloss/pkg/domain"
)

// AnnotationStore persists per-page annotation sets. The wizard's compose step
// loads from it; capture tools write to it.
type AnnotationStore interface {
	// Save persists the annotation set for a page, replacing any previous set.
	Save(ctx context.Context, page string, list []domain.Annotation) error

	// Load retrieves the annotation set for a page.
	// Returns domain.ErrPageNotFound if the page has no stored set.
	Load(ctx context.Context, page string) ([]domain.Annotation, error)

	// Delete removes the annotation set for a page.
	Delete(ctx context.Context, page string) error

	// List returns the pages that currently have stored sets.
	List(ctx context.Context) ([]string, error)
}
