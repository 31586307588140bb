package memory_test

import (
	"context"
	"testing"

	"github.com/glosskit/gloss/pkg/adapters/memory"
	"github.com/glosskit/gloss/pkg/domain"
	"github.com/glosskit/gloss/pkg/ports/tests"
)

func TestMemoryStore_Contract(t *testing.T) {
	tests.RunAnnotationStoreContract(t, memory.New())
}

func TestMemoryStore_SaveIsolatesCaller(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	list := []domain.Annotation{{ID: "a1", Opinion: "before"}}
	if err := store.Save(ctx, "Example", list); err != nil {
		t.Fatal(err)
	}

	// Mutating the caller's slice after Save must not leak into the store.
	list[0].Opinion = "after"

	got, err := store.Load(ctx, "Example")
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Opinion != "before" {
		t.Errorf("store leaked caller mutation: %q", got[0].Opinion)
	}
}
