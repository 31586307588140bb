package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/glosskit/gloss/pkg/domain"
	"github.com/glosskit/gloss/pkg/ports"
)

// envelopeID marks a stored record as an encrypted envelope rather than a
// plain annotation.
const envelopeID = "__encrypted__"

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.AnnotationStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that stores each page's
// annotation set as a single AES-GCM envelope record.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.AnnotationStore) ports.AnnotationStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) Save(ctx context.Context, page string, list []domain.Annotation) error {
	plainText, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to marshal annotations: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt annotations: %w", err)
	}

	// The envelope hides everything, including how many annotations exist.
	envelope := []domain.Annotation{{
		ID:      envelopeID,
		Opinion: base64.StdEncoding.EncodeToString(ciphertext),
	}}
	return m.next.Save(ctx, page, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, page string) ([]domain.Annotation, error) {
	envelope, err := m.next.Load(ctx, page)
	if err != nil {
		return nil, err
	}

	// Fail secure: once encryption is configured, plain records are rejected.
	if len(envelope) != 1 || envelope[0].ID != envelopeID {
		return nil, errors.New("stored annotations are missing the encrypted envelope")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(envelope[0].Opinion)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt annotations: %w", err)
	}

	var list []domain.Annotation
	if err := json.Unmarshal(plainText, &list); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted annotations: %w", err)
	}
	return list, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, page string) error {
	return m.next.Delete(ctx, page)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	ciphertextBytes := ciphertext[gcm.NonceSize():]

	return gcm.Open(nil, nonce, ciphertextBytes, nil)
}
