package internal

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
)

// NewSecret returns size random bytes encoded as unpadded base64url.
func NewSecret(size int) (string, error) {
	if size <= 0 {
		return "", errors.New("secret size must be > 0")
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
