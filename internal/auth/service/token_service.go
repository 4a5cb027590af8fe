package service

import (
	"crypto/sha256"
	"encoding/hex"
)

// tokenService derives the allow-list key of a session token. Only this digest
// is persisted, so a database dump never yields a presentable token.
type tokenService struct{}

// HashToken returns the hex-encoded SHA-256 digest of the encoded token.
// The same token always maps to the same digest, which is what lookups rely on.
func (t *tokenService) HashToken(encoded string) string {
	sum := sha256.Sum256([]byte(encoded))
	return hex.EncodeToString(sum[:])
}

// NewTokenService creates a TokenService.
func NewTokenService() TokenService {
	return &tokenService{}
}
