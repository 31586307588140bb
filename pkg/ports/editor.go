package ports

import (
	"context"

	"github.com/glosskit/gloss/pkg/domain"
)

// SectionEditor mediates all reads and writes of document sections, enforcing
// optimistic concurrency and mapping every failure onto the domain error
// taxonomy.
type SectionEditor interface {
	// RetrieveFullText fetches the current text of a page (or one section of
	// it when sectionID is non-nil) together with the concurrency tokens of
	// the read. Returns domain.ErrNotFound when the remote store has no
	// matching revision and domain.ErrTransport on protocol failure.
	RetrieveFullText(ctx context.Context, pageTitle string, sectionID *int) (domain.SectionText, error)

	// AppendToSection appends raw wikitext to one section. It rejects with
	// domain.ErrValidation before any network call when pageTitle is empty or
	// sectionID is negative. A reported edit conflict surfaces as
	// domain.ErrConflict without retrying; other write failures surface as
	// domain.ErrCommit.
	AppendToSection(ctx context.Context, pageTitle string, sectionID int, appendText, summary string) error

	// ReplaceSectionText overwrites one section's wikitext. When ts is nil a
	// fresh read supplies the concurrency tokens; either way both tokens are
	// sent so the remote store can detect an intervening edit.
	ReplaceSectionText(ctx context.Context, pageTitle string, sectionID int, newText, summary string, ts *domain.SectionTimestamps) error

	// Render converts wikitext to its display form. It never fails: empty
	// input and every error collapse to an empty string at this boundary.
	Render(ctx context.Context, text, title string) string

	// CompareDiff renders the display diff between two text states, or a
	// "no difference" sentinel when the remote store reports no changes. On
	// failure the caller is responsible for a local fallback diff.
	CompareDiff(ctx context.Context, oldText, newText string) (string, error)
}
