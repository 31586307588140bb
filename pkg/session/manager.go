// Package session owns the single active review dialog.
//
// The wizard itself is not safe for concurrent use, so hosts that serve
// multiple callers (HTTP, MCP) funnel every dialog operation through the
// manager's lock. Acquiring a new dialog forcibly tears down the previous
// one: its state is discarded and any still-running continuations find a
// closed dialog and no-op.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/glosskit/gloss/internal/logging"
	"github.com/glosskit/gloss/internal/wizard"
)

// Dialog is one acquired review composition.
type Dialog struct {
	id        string
	wizard    *wizard.Wizard
	createdAt time.Time
}

// ID returns the dialog's unique id.
func (d *Dialog) ID() string { return d.id }

// Wizard returns the dialog's state machine. Callers reached it through
// Manager.With, which holds the serialization lock.
func (d *Dialog) Wizard() *wizard.Wizard { return d.wizard }

// CreatedAt returns when the dialog was acquired.
func (d *Dialog) CreatedAt() time.Time { return d.createdAt }

// Manager hands out the single active dialog.
type Manager struct {
	mu      sync.Mutex
	current *Dialog
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a Manager with no active dialog.
func NewManager(opts ...Option) *Manager {
	m := &Manager{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Acquire installs w as the active dialog, releasing any previous holder
// first.
func (m *Manager) Acquire(w *wizard.Wizard) *Dialog {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		m.logger.Info("releasing previous dialog", "id", m.current.id)
		m.current.wizard.Close()
	}
	m.current = &Dialog{
		id:        uuid.NewString(),
		wizard:    w,
		createdAt: time.Now(),
	}
	m.logger.Info("dialog acquired", "id", m.current.id)
	return m.current
}

// Release closes the given dialog if it is still the active one. Releasing
// a stale handle is a no-op.
func (m *Manager) Release(d *Dialog) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d == nil || m.current != d {
		return
	}
	m.current.wizard.Close()
	m.current = nil
	m.logger.Info("dialog released", "id", d.id)
}

// With runs fn against the active dialog under the serialization lock.
// It returns false without calling fn when no dialog is active or the
// active one has been closed.
func (m *Manager) With(fn func(*Dialog) error) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil || !m.current.wizard.IsOpen() {
		return false, nil
	}
	return true, fn(m.current)
}
