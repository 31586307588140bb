// Package tests holds reusable contract suites that verify adapter compliance
// with the ports interfaces.
package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/glosskit/gloss/pkg/domain"
	"github.com/glosskit/gloss/pkg/ports"
)

// RunAnnotationStoreContract verifies that a store behaves per ports.AnnotationStore.
func RunAnnotationStoreContract(t *testing.T, store ports.AnnotationStore) {
	t.Helper()
	ctx := context.Background()

	set := []domain.Annotation{
		{ID: "a1", SectionPath: "Plot", SentencePos: "1.2", SentenceText: "foo", Opinion: "bar", CreatedAt: 10},
		{ID: "a2", SectionPath: "", Opinion: "unfiled", CreatedAt: 20},
	}

	t.Run("Load_Missing", func(t *testing.T) {
		_, err := store.Load(ctx, "no-such-page")
		if !errors.Is(err, domain.ErrPageNotFound) {
			t.Fatalf("expected ErrPageNotFound, got %v", err)
		}
	})

	t.Run("Save_Load_Roundtrip", func(t *testing.T) {
		if err := store.Save(ctx, "Example", set); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		got, err := store.Load(ctx, "Example")
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if len(got) != len(set) {
			t.Fatalf("expected %d annotations, got %d", len(set), len(got))
		}
		if got[0].ID != "a1" || got[1].Opinion != "unfiled" {
			t.Errorf("loaded set does not match saved set: %+v", got)
		}
	})

	t.Run("Save_Replaces", func(t *testing.T) {
		if err := store.Save(ctx, "Example", set[:1]); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		got, err := store.Load(ctx, "Example")
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if len(got) != 1 {
			t.Errorf("expected replacement to 1 annotation, got %d", len(got))
		}
	})

	t.Run("List", func(t *testing.T) {
		if err := store.Save(ctx, "Other", set); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		pages, err := store.List(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		lookup := make(map[string]bool, len(pages))
		for _, p := range pages {
			lookup[p] = true
		}
		if !lookup["Example"] || !lookup["Other"] {
			t.Errorf("expected both pages listed, got %v", pages)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := store.Delete(ctx, "Example"); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if _, err := store.Load(ctx, "Example"); !errors.Is(err, domain.ErrPageNotFound) {
			t.Errorf("expected ErrPageNotFound after delete, got %v", err)
		}
	})
}
