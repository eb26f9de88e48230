package database

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"os"

	"chatcourse/internal/constants"

	"golang.org/x/crypto/pbkdf2"
)

// encryptor protects user-mapping PII (display names, emails) at rest.
// Mapping ids are left in the clear: they are lookup keys and carry no
// personal data. Encryption is off unless CHATCOURSE_ENABLE_ENCRYPTION=true.
type encryptor struct {
	gcm cipher.AEAD
}

func newEncryptor() (*encryptor, error) {
	if os.Getenv("CHATCOURSE_ENABLE_ENCRYPTION") != "true" {
		return &encryptor{gcm: nil}, nil
	}

	secret := os.Getenv("CHATCOURSE_ENCRYPTION_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("CHATCOURSE_ENCRYPTION_SECRET is required when encryption is enabled")
	}
	if len(secret) < 16 {
		return nil, fmt.Errorf("encryption secret must be at least 16 characters")
	}

	key := pbkdf2.Key([]byte(secret), []byte("chatcourse-user-pii"), constants.PBKDF2Iterations, constants.EncryptionKeyLen, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &encryptor{gcm: gcm}, nil
}

// EncryptIfEnabled encrypts plaintext when encryption is configured, and
// passes it through unchanged otherwise. Empty strings always pass through.
func (e *encryptor) EncryptIfEnabled(plaintext string) (string, error) {
	if plaintext == "" || e.gcm == nil {
		return plaintext, nil
	}

	nonce := make([]byte, constants.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := e.gcm.Seal(nil, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(append(nonce, ciphertext...)), nil
}

// DecryptIfEnabled reverses EncryptIfEnabled.
func (e *encryptor) DecryptIfEnabled(ciphertext string) (string, error) {
	if ciphertext == "" || e.gcm == nil {
		return ciphertext, nil
	}

	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64: %w", err)
	}
	if len(data) < constants.NonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, sealed := data[:constants.NonceSize], data[constants.NonceSize:]
	plaintext, err := e.gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}
	return string(plaintext), nil
}
