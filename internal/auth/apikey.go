package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// KeyVerifier checks the engine API key presented at token issuance against
// its bcrypt hash. Only the hash is held in memory after startup.
type KeyVerifier struct {
	hash []byte
}

// NewKeyVerifier builds a verifier from a stored bcrypt hash. When no hash is
// configured, plainKey (the development fallback) is hashed at startup.
func NewKeyVerifier(hash, plainKey string, cost int) (*KeyVerifier, error) {
	if hash != "" {
		return &KeyVerifier{hash: []byte(hash)}, nil
	}
	if plainKey == "" {
		return nil, errors.New("no API key configured")
	}
	hashed, err := HashKey(plainKey, cost)
	if err != nil {
		return nil, err
	}
	return &KeyVerifier{hash: []byte(hashed)}, nil
}

// Verify compares a presented key against the stored hash.
func (v *KeyVerifier) Verify(key string) error {
	return bcrypt.CompareHashAndPassword(v.hash, []byte(key))
}

// HashKey hashes a plaintext key with the configured cost.
func HashKey(key string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(key), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
