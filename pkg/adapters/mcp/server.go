// Package mcp exposes the review dialog as MCP tools over stdio, so agent
// hosts can compose, preview and commit reviews.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/glosskit/gloss/internal/importer"
	"github.com/glosskit/gloss/internal/logging"
	"github.com/glosskit/gloss/internal/wizard"
	"github.com/glosskit/gloss/pkg/domain"
	"github.com/glosskit/gloss/pkg/session"
)

// Opener builds a fresh wizard for the heading an agent selected.
type Opener func(headingHTML string) *wizard.Wizard

// Server wraps the dialog in an MCP server.
type Server struct {
	sessions  *session.Manager
	open      Opener
	importer  *importer.Importer
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithImporter sets the annotation importer backing import_annotations.
func WithImporter(im *importer.Importer) Option {
	return func(s *Server) {
		if im != nil {
			s.importer = im
		}
	}
}

// NewServer creates the MCP server and registers the review tools.
func NewServer(sessions *session.Manager, open Opener, version string, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		open:      open,
		importer:  importer.New(),
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("gloss-mcp", version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

type dialogState struct {
	ID        string           `json:"id"`
	Step      int              `json:"step"`
	Open      bool             `json:"open"`
	Saving    bool             `json:"saving"`
	PageTitle string           `json:"pageTitle"`
	SectionID *int             `json:"sectionId"`
	Chapters  []domain.Chapter `json:"chapters"`
	Draft     string           `json:"draft,omitempty"`
	Preview   string           `json:"previewHtml,omitempty"`
	DiffHTML  string           `json:"diffHtml,omitempty"`
	DiffLines []string         `json:"diffLines,omitempty"`
}

func stateOf(d *session.Dialog) dialogState {
	w := d.Wizard()
	t := w.Target()
	return dialogState{
		ID:        d.ID(),
		Step:      w.Step(),
		Open:      w.IsOpen(),
		Saving:    w.IsSaving(),
		PageTitle: t.PageTitle,
		SectionID: t.SectionID,
		Chapters:  w.Chapters(),
		Draft:     w.Draft(),
		Preview:   w.PreviewSurface().Content(),
		DiffHTML:  w.DiffSurface().Content(),
		DiffLines: w.DiffLines(),
	}
}

func stateResult(d *session.Dialog) *mcp.CallToolResult {
	jsonBytes, _ := json.Marshal(stateOf(d))
	return mcp.NewToolResultText(string(jsonBytes))
}

// withDialog runs fn against the active dialog and renders the resulting
// state, or a tool error when no dialog is open or fn fails.
func (s *Server) withDialog(fn func(*session.Dialog) error) (*mcp.CallToolResult, error) {
	var result *mcp.CallToolResult
	ok, err := s.sessions.With(func(d *session.Dialog) error {
		if err := fn(d); err != nil {
			return err
		}
		result = stateResult(d)
		return nil
	})
	if !ok {
		return mcp.NewToolResultError("no active review dialog; call open_review first"), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return result, nil
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("open_review",
		mcp.WithDescription("Open a review dialog for a section. Replaces any dialog already open. "+
			"Pass the HTML of the section heading so the edit target can be resolved."),
		mcp.WithString("heading_html", mcp.Description("Outer HTML of the section heading (optional)")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		headingHTML := request.GetString("heading_html", "")
		d := s.sessions.Acquire(s.open(headingHTML))
		s.logger.Info("dialog opened via mcp", "id", d.ID())
		return stateResult(d), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("review_state",
		mcp.WithDescription("Get the current review dialog state."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.withDialog(func(*session.Dialog) error { return nil })
	})

	s.mcpServer.AddTool(mcp.NewTool("advance_review",
		mcp.WithDescription("Move the dialog to the next step (edit draft, preview, diff)."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.withDialog(func(d *session.Dialog) error {
			d.Wizard().Advance(ctx)
			return nil
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("regress_review",
		mcp.WithDescription("Move the dialog back one step. Never refetches anything."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.withDialog(func(d *session.Dialog) error {
			d.Wizard().Regress()
			return nil
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("set_chapters",
		mcp.WithDescription("Replace the composition's chapters atomically."),
		mcp.WithString("chapters", mcp.Required(),
			mcp.Description(`JSON array of chapters: [{"title":…,"suggestions":[{"quote":…,"suggestion":…}]}]`)),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := request.RequireString("chapters")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var chapters []domain.Chapter
		if err := json.Unmarshal([]byte(raw), &chapters); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid chapters JSON: %v", err)), nil
		}
		return s.withDialog(func(d *session.Dialog) error {
			if !d.Wizard().ApplyChapters(ctx, chapters) {
				return fmt.Errorf("%w: empty chapter list", domain.ErrValidation)
			}
			return nil
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("import_annotations",
		mcp.WithDescription("Import an annotation JSON document ({annotations:[…]} or {groups:[…]}) into the composition."),
		mcp.WithString("data", mcp.Required(), mcp.Description("The annotation JSON document")),
		mcp.WithString("fallback_section", mcp.Description("Section path for annotations that carry none")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		data, err := request.RequireString("data")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		fallback := request.GetString("fallback_section", "")
		return s.withDialog(func(d *session.Dialog) error {
			list, err := s.importer.Ingest([]byte(data), fallback)
			if err != nil {
				return err
			}
			return d.Wizard().ApplyImported(ctx, list)
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("commit_review",
		mcp.WithDescription("Append the composed fragment to the target section. Only accepted from the final (diff) step; closes the dialog on success."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.withDialog(func(d *session.Dialog) error {
			return d.Wizard().Commit(ctx)
		})
	})
}
