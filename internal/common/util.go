package common

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
)

var hhNumberRe = regexp.MustCompile(`^\d{6}$`)

// ValidHHNumber reports whether s is a well-formed 6-digit HH number.
// It checks shape only; registration status is the registry's concern.
func ValidHHNumber(s string) bool {
	return hhNumberRe.MatchString(s)
}

// MakeRandHexString returns a hex string encoding size random bytes
// (so the result is 2*size characters long).
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateRandByteArray returns size cryptographically random bytes.
// It panics if the system RNG fails, which is not recoverable anyway.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}
