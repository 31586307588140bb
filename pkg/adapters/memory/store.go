// Package memory provides an in-memory AnnotationStore, useful for tests and
// single-process hosts.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/glosskit/gloss/pkg/domain"
)

// Store implements ports.AnnotationStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string][]domain.Annotation
	mu   sync.RWMutex
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		data: make(map[string][]domain.Annotation),
	}
}

// Save replaces the annotation set for a page.
func (s *Store) Save(ctx context.Context, page string, list []domain.Annotation) error {
	// Copy to ensure isolation, similar to serialization.
	copied := make([]domain.Annotation, len(list))
	copy(copied, list)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[page] = copied
	return nil
}

// Load retrieves the annotation set for a page.
func (s *Store) Load(ctx context.Context, page string) ([]domain.Annotation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list, ok := s.data[page]
	if !ok {
		return nil, domain.ErrPageNotFound
	}
	copied := make([]domain.Annotation, len(list))
	copy(copied, list)
	return copied, nil
}

// Delete removes the annotation set for a page.
func (s *Store) Delete(ctx context.Context, page string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, page)
	return nil
}

// List returns the stored pages in deterministic order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pages := make([]string, 0, len(s.data))
	for page := range s.data {
		pages = append(pages, page)
	}
	sort.Strings(pages)
	return pages, nil
}
