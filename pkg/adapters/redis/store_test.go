package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisadapter "github.com/glosskit/gloss/pkg/adapters/redis"
	"github.com/glosskit/gloss/pkg/domain"
	"github.com/glosskit/gloss/pkg/ports/tests"
	backend "github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T, opts ...redisadapter.Option) *redisadapter.Store {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	return redisadapter.NewFromClient(client, opts...)
}

func TestRedisStore_Contract(t *testing.T) {
	tests.RunAnnotationStoreContract(t, newTestStore(t))
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	store := redisadapter.NewFromClient(client, redisadapter.WithPrefix("custom:"))

	ctx := context.Background()
	if err := store.Save(ctx, "Example", []domain.Annotation{{ID: "a1"}}); err != nil {
		t.Fatal(err)
	}
	if !mr.Exists("custom:Example") {
		t.Error("expected key under custom prefix")
	}
}

func TestRedisStore_TTLExpiresSets(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	store := redisadapter.NewFromClient(client, redisadapter.WithTTL(time.Minute))

	ctx := context.Background()
	if err := store.Save(ctx, "Example", []domain.Annotation{{ID: "a1"}}); err != nil {
		t.Fatal(err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := store.Load(ctx, "Example"); err != domain.ErrPageNotFound {
		t.Errorf("expected ErrPageNotFound after TTL, got %v", err)
	}
}
