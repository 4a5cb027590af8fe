package service

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// MinSigningSecretLength is the minimum accepted length of the configured signing secret.
	MinSigningSecretLength = 32

	tokenSigningInfo = "session-token-signing-v1"
	eventSigningInfo = "session-event-signing-v1"
)

// deriveKey uses HKDF-SHA256 to derive a 32-byte purpose-bound key from secret.
// The info parameter is versioned so the algorithm can change without key reuse.
func deriveKey(secret []byte, info string) ([]byte, error) {
	reader := hkdf.New(sha256.New, secret, nil, []byte(info))

	key := make([]byte, 32)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, err
	}

	return key, nil
}
