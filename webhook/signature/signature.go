package signature

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// SecretPrefix marks secrets generated by this service
	SecretPrefix = "whsec_"

	// DefaultSecretBytes is the size of generated secrets (256 bits)
	DefaultSecretBytes = 32

	// MinSecretBytes is the minimum recommended secret size (192 bits)
	MinSecretBytes = 24

	// MaxSecretBytes is the maximum recommended secret size (512 bits)
	MaxSecretBytes = 64
)

// Secret represents a subscription signing secret
type Secret struct {
	raw    []byte
	base64 string
}

// GenerateSecret creates a new cryptographically secure signing secret
// between MinSecretBytes and MaxSecretBytes in size.
func GenerateSecret(size int) (Secret, error) {
	if size < MinSecretBytes || size > MaxSecretBytes {
		return Secret{}, fmt.Errorf("secret size must be between %d and %d bytes", MinSecretBytes, MaxSecretBytes)
	}

	bytes := make([]byte, size)
	if _, err := rand.Read(bytes); err != nil {
		return Secret{}, fmt.Errorf("generating random bytes: %w", err)
	}

	return Secret{
		raw:    bytes,
		base64: SecretPrefix + base64.StdEncoding.EncodeToString(bytes),
	}, nil
}

// ParseSecret parses a base64-encoded secret with the whsec_ prefix
func ParseSecret(encoded string) (Secret, error) {
	if !strings.HasPrefix(encoded, SecretPrefix) {
		return Secret{}, fmt.Errorf("secret must start with %s prefix", SecretPrefix)
	}

	b64 := strings.TrimPrefix(encoded, SecretPrefix)
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return Secret{}, fmt.Errorf("decoding base64 secret: %w", err)
	}

	if len(raw) < MinSecretBytes || len(raw) > MaxSecretBytes {
		return Secret{}, fmt.Errorf("secret size must be between %d and %d bytes", MinSecretBytes, MaxSecretBytes)
	}

	return Secret{
		raw:    raw,
		base64: encoded,
	}, nil
}

// String returns the base64-encoded secret with prefix
func (s Secret) String() string {
	return s.base64
}

// Bytes returns the raw secret bytes
func (s Secret) Bytes() []byte {
	return s.raw
}

/* Key returns the HMAC key for a stored secret
 * whsec_ secrets are decoded, anything else is used verbatim
 */
func Key(secret string) []byte {
	if s, err := ParseSecret(secret); err == nil {
		return s.Bytes()
	}
	return []byte(secret)
}

// Sign returns the hex encoded HMAC-SHA256 of payload keyed by key
// The payload must be the exact bytes put on the wire
func Sign(payload, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the signature of payload and compares it in constant time
// Returns false for signatures that are not valid hex
func Verify(payload []byte, sig string, key []byte) bool {
	expected, err := hex.DecodeString(strings.TrimSpace(sig))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, key)
	mac.Write(payload)

	// Use constant-time comparison to prevent timing attacks
	return hmac.Equal(expected, mac.Sum(nil))
}

// VerifyAny verifies the payload against several keys (for secret rotation)
func VerifyAny(payload []byte, sig string, keys ...[]byte) bool {
	for _, key := range keys {
		if Verify(payload, sig, key) {
			return true
		}
	}
	return false
}
