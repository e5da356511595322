// Package hash computes the content fingerprints used as deduplication
// keys throughout the application. A fingerprint is a pure function of its
// normalized inputs: identical inputs always produce the same digest, so
// callers must pass parts in the same documented order every time to get
// cache hits.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// separator is mixed in between parts so that ("ab","c") and ("a","bc")
// never collide.
const separator = "\x1f"

// Fingerprint returns the SHA-256 hex digest over the given parts joined in
// order. It never fails.
func Fingerprint(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte(separator))
		}
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Bytes returns the SHA-256 hex digest of raw bytes. Used for file-identity
// hashing, where any byte difference must yield a different digest.
func Bytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// whitespaceRE collapses consecutive whitespace to a single space.
var whitespaceRE = regexp.MustCompile(`\s+`)

// NormalizeText canonicalizes free text before hashing: NFC normalization,
// trimmed edges, and internal whitespace runs collapsed to single spaces.
// Inputs differing only in whitespace or Unicode composition fingerprint
// identically.
func NormalizeText(s string) string {
	s = norm.NFC.String(s)
	s = whitespaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
	return s
}
