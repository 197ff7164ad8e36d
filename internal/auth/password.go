package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 100000
	pbkdf2KeyLen     = 32
	saltBytes        = 16
)

// HashPassword derives a PBKDF2-SHA256 hash and returns it in the
// stored "salt$digest" form. The salt is the hex encoding of random
// bytes and is fed to the KDF as ASCII, matching existing records.
func HashPassword(password string) (string, error) {
	raw := make([]byte, saltBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	salt := hex.EncodeToString(raw)
	digest := pbkdf2.Key([]byte(password), []byte(salt), pbkdf2Iterations, pbkdf2KeyLen, sha256.New)
	return salt + "$" + hex.EncodeToString(digest), nil
}

// VerifyPassword checks a plaintext password against a stored hash.
// A malformed stored value fails verification rather than erroring.
func VerifyPassword(stored, password string) bool {
	salt, want, ok := strings.Cut(stored, "$")
	if !ok || salt == "" || want == "" {
		return false
	}
	wantDigest, err := hex.DecodeString(want)
	if err != nil {
		return false
	}
	got := pbkdf2.Key([]byte(password), []byte(salt), pbkdf2Iterations, len(wantDigest), sha256.New)
	return subtle.ConstantTimeCompare(got, wantDigest) == 1
}

// GenerateTempPassword produces a short random password for admin
// resets, URL-safe base64 without padding.
func GenerateTempPassword() (string, error) {
	raw := make([]byte, 8)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate temporary password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
