package middleware

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glosskit/gloss/pkg/adapters/memory"
	"github.com/glosskit/gloss/pkg/domain"
)

func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, 32)
}

func TestEncryption_RoundTrip(t *testing.T) {
	inner := memory.New()
	store := Chain(inner, NewEncryptionMiddleware(EncryptionConfig{ActiveKey: testKey(1)}))

	in := []domain.Annotation{
		{ID: "a1", SectionPath: "Plot", SentenceText: "the hero", Opinion: "too vague"},
		{ID: "a2", SectionPath: "Cast"},
	}
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "Example", in))

	out, err := store.Load(ctx, "Example")
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestEncryption_StoredFormIsOpaque(t *testing.T) {
	inner := memory.New()
	store := Chain(inner, NewEncryptionMiddleware(EncryptionConfig{ActiveKey: testKey(1)}))

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "Example", []domain.Annotation{
		{ID: "a1", Opinion: "secret remark"},
	}))

	raw, err := inner.Load(ctx, "Example")
	require.NoError(t, err)
	require.Len(t, raw, 1)
	assert.Equal(t, "__encrypted__", raw[0].ID)
	assert.NotContains(t, raw[0].Opinion, "secret remark")
}

func TestEncryption_KeyRotation(t *testing.T) {
	inner := memory.New()
	ctx := context.Background()

	oldStore := Chain(inner, NewEncryptionMiddleware(EncryptionConfig{ActiveKey: testKey(1)}))
	require.NoError(t, oldStore.Save(ctx, "Example", []domain.Annotation{{ID: "a1"}}))

	rotated := Chain(inner, NewEncryptionMiddleware(EncryptionConfig{
		ActiveKey:    testKey(2),
		FallbackKeys: [][]byte{testKey(1)},
	}))
	out, err := rotated.Load(ctx, "Example")
	require.NoError(t, err)
	assert.Equal(t, "a1", out[0].ID)
}

func TestEncryption_RejectsPlainRecords(t *testing.T) {
	inner := memory.New()
	ctx := context.Background()
	require.NoError(t, inner.Save(ctx, "Example", []domain.Annotation{{ID: "a1"}}))

	store := Chain(inner, NewEncryptionMiddleware(EncryptionConfig{ActiveKey: testKey(1)}))
	_, err := store.Load(ctx, "Example")
	require.Error(t, err)
}

func TestEncryption_WrongKeyFails(t *testing.T) {
	inner := memory.New()
	ctx := context.Background()

	writer := Chain(inner, NewEncryptionMiddleware(EncryptionConfig{ActiveKey: testKey(1)}))
	require.NoError(t, writer.Save(ctx, "Example", []domain.Annotation{{ID: "a1"}}))

	reader := Chain(inner, NewEncryptionMiddleware(EncryptionConfig{ActiveKey: testKey(9)}))
	_, err := reader.Load(ctx, "Example")
	require.Error(t, err)
}
