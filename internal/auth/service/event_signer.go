package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"

	authDomain "github.com/allisson/sessions/internal/auth/domain"
)

type eventSigner struct {
	key []byte
}

// NewEventSigner creates an HMAC-SHA256 session event signer. The signing key
// is derived from secret with HKDF-SHA256 so it never equals the token key.
func NewEventSigner(secret []byte) (EventSigner, error) {
	if len(secret) < MinSigningSecretLength {
		return nil, authDomain.ErrWeakSigningSecret
	}

	key, err := deriveKey(secret, eventSigningInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to derive event signing key: %w", err)
	}

	return &eventSigner{key: key}, nil
}

// canonicalizeEvent converts an event to its canonical byte representation.
// Format: id || user_id || event_type || ip_address || user_agent || metadata || created_at
// Variable-length fields are length-prefixed to prevent ambiguity.
func (s *eventSigner) canonicalizeEvent(event *authDomain.SessionEvent) ([]byte, error) {
	buf := make([]byte, 0, 512)

	buf = append(buf, event.ID[:]...)
	if event.UserID != nil {
		buf = appendLengthPrefixed(buf, (*event.UserID)[:])
	} else {
		buf = appendLengthPrefixed(buf, nil)
	}

	buf = appendLengthPrefixed(buf, []byte(event.EventType))
	buf = appendLengthPrefixed(buf, []byte(event.IPAddress))
	buf = appendLengthPrefixed(buf, []byte(event.UserAgent))

	if event.Metadata != nil {
		// json.Marshal sorts map keys, which keeps the encoding deterministic
		metadataBytes, err := json.Marshal(event.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		buf = appendLengthPrefixed(buf, metadataBytes)
	} else {
		buf = appendLengthPrefixed(buf, nil)
	}

	timeBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(timeBytes, uint64(event.CreatedAt.UnixMicro()))
	buf = append(buf, timeBytes...)

	return buf, nil
}

// appendLengthPrefixed adds a 4-byte big-endian length prefix followed by data.
func appendLengthPrefixed(buf []byte, data []byte) []byte {
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))
	buf = append(buf, length...)
	buf = append(buf, data...)
	return buf
}

// Sign generates the HMAC-SHA256 signature for the event.
func (s *eventSigner) Sign(event *authDomain.SessionEvent) ([]byte, error) {
	canonical, err := s.canonicalizeEvent(event)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize event: %w", err)
	}

	mac := hmac.New(sha256.New, s.key)
	mac.Write(canonical)
	return mac.Sum(nil), nil
}

// Verify checks the event signature.
// Returns nil if valid, ErrSignatureInvalid if tampered or unsigned.
func (s *eventSigner) Verify(event *authDomain.SessionEvent) error {
	expectedSig, err := s.Sign(event)
	if err != nil {
		return fmt.Errorf("failed to compute expected signature: %w", err)
	}

	if !hmac.Equal(event.Signature, expectedSig) {
		return authDomain.ErrSignatureInvalid
	}

	return nil
}
