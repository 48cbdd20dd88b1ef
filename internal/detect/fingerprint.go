// Package detect decides whether a page changed and which keywords are worth
// reporting. Every function here is pure: it receives already-extracted page
// text and previously stored counts and returns values for the caller to
// persist.
package detect

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns the hex-encoded SHA-256 digest of normalized page text.
// The empty string has a well-defined fingerprint like any other input.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
