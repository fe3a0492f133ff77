package cmd

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// loadSigningKey reads a PEM or raw 64-byte Ed25519 private key from path.
// An empty path yields an ephemeral key when ephemeral is set.
func loadSigningKey(path string, ephemeral bool) (priv ed25519.PrivateKey, generated bool, err error) {
	if path == "" {
		if !ephemeral {
			return nil, false, errors.New("signing key required: set --key-file or SCENEAUTH_KEY_FILE")
		}
		_, priv, err = ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, false, fmt.Errorf("generate signing key: %w", err)
		}
		return priv, true, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("read signing key: %w", err)
	}
	if len(raw) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(raw), false, nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(raw)
	if err != nil {
		return nil, false, fmt.Errorf("parse signing key: %w", err)
	}
	key, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, false, errors.New("signing key is not ed25519")
	}
	return key, false, nil
}
