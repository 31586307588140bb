package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/glosskit/gloss/internal/config"
	"github.com/glosskit/gloss/internal/importer"
	"github.com/glosskit/gloss/pkg/domain"
)

// ImportOptions contains all the configuration for the import command.
type ImportOptions struct {
	Config          *config.Config
	Path            string
	FallbackSection string
	Page            string
	Store           bool
	Debug           bool
}

// RunImport parses an annotation export file and prints the chapters it
// would produce. With Store set the annotations are persisted for the page.
func RunImport(opts ImportOptions) error {
	logger := createLogger(opts.Debug)
	notifier := NewConsoleNotifier(os.Stderr)

	engine, err := createEngine(opts.Config, logger, notifier)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(opts.Path)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", opts.Path, err)
	}

	list, err := engine.Importer().Ingest(data, opts.FallbackSection)
	if err != nil {
		return fmt.Errorf("error importing %s: %w", opts.Path, err)
	}

	chapters := importer.Chapters(list, domain.NumericDotComparator, "(unassigned section)")
	printSystemMessage("Imported %d annotations into %d chapters.", len(list), len(chapters))
	printChapters(chapters)

	if opts.Store {
		if opts.Page == "" {
			return fmt.Errorf("--page is required when storing annotations")
		}
		if err := engine.Store().Save(context.Background(), opts.Page, list); err != nil {
			return fmt.Errorf("error storing annotations for %s: %w", opts.Page, err)
		}
		printSystemMessage("Stored for page %q.", opts.Page)
	}
	return nil
}
