// Package http exposes the review dialog over a small JSON API.
//
// There is at most one active dialog; the routes operate on "current" and
// return 404 when none is open. All dialog access is serialized through the
// session manager.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/glosskit/gloss/internal/importer"
	"github.com/glosskit/gloss/internal/logging"
	"github.com/glosskit/gloss/internal/wizard"
	"github.com/glosskit/gloss/pkg/domain"
	"github.com/glosskit/gloss/pkg/session"
)

// maxImportBytes bounds uploaded annotation files.
const maxImportBytes = 4 << 20

// Opener builds a fresh wizard for the heading the caller selected.
type Opener func(headingHTML string) *wizard.Wizard

// Server hosts the dialog routes.
type Server struct {
	sessions *session.Manager
	open     Opener
	importer *importer.Importer
	logger   *slog.Logger
	registry *prometheus.Registry
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

// WithImporter sets the annotation importer used by the import route.
func WithImporter(im *importer.Importer) Option {
	return func(s *Server) {
		if im != nil {
			s.importer = im
		}
	}
}

// WithRegistry exposes the given Prometheus registry on /metrics.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

// NewHandler builds the HTTP handler.
func NewHandler(sessions *session.Manager, open Opener, opts ...Option) http.Handler {
	s := &Server{
		sessions: sessions,
		open:     open,
		importer: importer.New(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.healthz)
	if s.registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	r.Route("/dialogs", func(r chi.Router) {
		r.Post("/", s.openDialog)
		r.Route("/current", func(r chi.Router) {
			r.Get("/", s.currentDialog)
			r.Post("/advance", s.advance)
			r.Post("/regress", s.regress)
			r.Post("/commit", s.commit)
			r.Put("/chapters", s.putChapters)
			r.Post("/import", s.importAnnotations)
		})
	})
	return r
}

type targetPayload struct {
	PageTitle string `json:"pageTitle"`
	SectionID *int   `json:"sectionId"`
}

type dialogState struct {
	ID        string           `json:"id"`
	Step      int              `json:"step"`
	Open      bool             `json:"open"`
	Saving    bool             `json:"saving"`
	Target    targetPayload    `json:"target"`
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
		Target:    targetPayload{PageTitle: t.PageTitle, SectionID: t.SectionID},
		Chapters:  w.Chapters(),
		Draft:     w.Draft(),
		Preview:   w.PreviewSurface().Content(),
		DiffHTML:  w.DiffSurface().Content(),
		DiffLines: w.DiffLines(),
	}
}

type errorPayload struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// errorCode maps the domain taxonomy to a wire code and HTTP status.
func errorCode(err error) (string, int) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "validation", http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrPageNotFound):
		return "not_found", http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return "conflict", http.StatusConflict
	case errors.Is(err, domain.ErrInvalidFormat):
		return "invalid_format", http.StatusBadRequest
	case errors.Is(err, domain.ErrEmptyImport):
		return "empty_import", http.StatusBadRequest
	case errors.Is(err, domain.ErrTransport), errors.Is(err, domain.ErrCommit):
		return "upstream", http.StatusBadGateway
	default:
		return "internal", http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code, status := errorCode(err)
	s.writeJSON(w, status, errorPayload{Code: code, Error: err.Error()})
}

func (s *Server) writeNoDialog(w http.ResponseWriter) {
	s.writeJSON(w, http.StatusNotFound, errorPayload{Code: "not_found", Error: "no active dialog"})
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) openDialog(w http.ResponseWriter, r *http.Request) {
	var body struct {
		HeadingHTML string `json:"headingHtml"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorPayload{Code: "invalid_format", Error: "invalid request body"})
		return
	}

	d := s.sessions.Acquire(s.open(body.HeadingHTML))
	s.logger.Info("dialog opened", "id", d.ID())
	s.writeJSON(w, http.StatusCreated, stateOf(d))
}

func (s *Server) currentDialog(w http.ResponseWriter, _ *http.Request) {
	s.withDialog(w, func(*session.Dialog) error { return nil })
}

func (s *Server) advance(w http.ResponseWriter, r *http.Request) {
	s.withDialog(w, func(d *session.Dialog) error {
		d.Wizard().Advance(r.Context())
		return nil
	})
}

func (s *Server) regress(w http.ResponseWriter, _ *http.Request) {
	s.withDialog(w, func(d *session.Dialog) error {
		d.Wizard().Regress()
		return nil
	})
}

func (s *Server) commit(w http.ResponseWriter, r *http.Request) {
	s.withDialog(w, func(d *session.Dialog) error {
		return d.Wizard().Commit(r.Context())
	})
}

func (s *Server) putChapters(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Chapters []domain.Chapter `json:"chapters"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorPayload{Code: "invalid_format", Error: "invalid request body"})
		return
	}
	s.withDialog(w, func(d *session.Dialog) error {
		if !d.Wizard().ApplyChapters(r.Context(), body.Chapters) {
			return domain.ErrValidation
		}
		return nil
	})
}

func (s *Server) importAnnotations(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorPayload{Code: "invalid_format", Error: "unreadable request body"})
		return
	}
	s.withDialog(w, func(d *session.Dialog) error {
		list, err := s.importer.Ingest(data, "")
		if err != nil {
			return err
		}
		return d.Wizard().ApplyImported(r.Context(), list)
	})
}

// withDialog runs fn under the session lock and writes either the resulting
// dialog state or the mapped error.
func (s *Server) withDialog(w http.ResponseWriter, fn func(*session.Dialog) error) {
	var state dialogState
	ok, err := s.sessions.With(func(d *session.Dialog) error {
		if err := fn(d); err != nil {
			return err
		}
		state = stateOf(d)
		return nil
	})
	if !ok {
		s.writeNoDialog(w)
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}
