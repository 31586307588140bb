package cli

import (
	"log"
	"log/slog"
	"os"

	"github.com/glosskit/gloss"
	"github.com/glosskit/gloss/internal/config"
	"github.com/glosskit/gloss/internal/logging"
	"github.com/glosskit/gloss/pkg/adapters/mcp"
)

// MCPOptions contains all the configuration for the mcp command.
type MCPOptions struct {
	Config *config.Config
	Debug  bool
}

// RunMCP serves the review tools over MCP stdio.
func RunMCP(opts MCPOptions) error {
	// Logs must stay off stdout so they never corrupt JSON-RPC framing.
	log.SetOutput(os.Stderr)
	logger := logging.New(slog.LevelInfo)
	if opts.Debug {
		logger = logging.New(slog.LevelDebug)
	}

	notifier := NewConsoleNotifier(os.Stderr)
	engine, err := createEngine(opts.Config, logger, notifier)
	if err != nil {
		return err
	}

	srv := mcp.NewServer(engine.Sessions(), engine.NewWizard, gloss.Version,
		mcp.WithLogger(logger),
		mcp.WithImporter(engine.Importer()),
	)

	logger.Info("starting MCP server", "transport", "stdio")
	return srv.ServeStdio()
}
