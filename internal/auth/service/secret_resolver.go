package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"gocloud.dev/secrets"

	// Register KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// secretResolver implements SecretResolver using gocloud.dev/secrets.
type secretResolver struct {
	logger *slog.Logger
}

// NewSecretResolver creates a new SecretResolver.
// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
func NewSecretResolver(logger *slog.Logger) SecretResolver {
	return &secretResolver{logger: logger}
}

func (r *secretResolver) Resolve(ctx context.Context, secret, keyURI string) ([]byte, error) {
	if secret == "" {
		return nil, fmt.Errorf("signing secret is not configured")
	}
	if keyURI == "" {
		return []byte(secret), nil
	}

	ciphertext, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to decode signing secret ciphertext: %w", err)
	}

	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil && r.logger != nil {
			r.logger.Error("failed to close KMS keeper", slog.Any("error", closeErr))
		}
	}()

	plaintext, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt signing secret: %w", err)
	}

	return plaintext, nil
}
