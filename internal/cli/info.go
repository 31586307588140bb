package cli

import (
	"context"
	"fmt"

	"github.com/glosskit/gloss/internal/config"
	"github.com/glosskit/gloss/internal/pageinfo"
)

// InfoOptions contains all the configuration for the info command.
type InfoOptions struct {
	Config *config.Config
	Page   string
	Debug  bool
}

// RunInfo prints an edit-history summary for a page.
func RunInfo(opts InfoOptions) error {
	if opts.Page == "" {
		return fmt.Errorf("a page title is required")
	}

	client := pageinfo.New(
		pageinfo.WithHost(opts.Config.StatsHost),
		pageinfo.WithLogger(createLogger(opts.Debug)),
	)
	fmt.Println(client.Summary(context.Background(), opts.Config.Wiki.Server, opts.Page))
	return nil
}
