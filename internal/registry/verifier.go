package registry

import (
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

// DeriveVerifier derives the password verifier stored in the ledger:
// argon2id over (password, salt), then sha-256 so the derived key itself
// never leaves the derivation site.
func DeriveVerifier(password string, salt []byte) []byte {
	key := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
	sum := sha256.Sum256(key)
	return sum[:]
}

// CheckVerifier compares a stored verifier with a candidate in constant time.
func CheckVerifier(verifier, candidate []byte) bool {
	return subtle.ConstantTimeCompare(verifier, candidate) == 1
}
