// Package sign computes content signatures for draw records.
package sign

import (
	"crypto/sha256"
	"encoding/hex"
)

// Signer derives a stable SHA-256 identity for a draw record. The digest is
// a pure function of (date, time-or-empty, result), so identical logical
// records always collide and any field change produces a new signature.
type Signer struct{}

// New returns a Signer.
func New() *Signer {
	return &Signer{}
}

// Sign hashes "date|time|result" and returns a lowercase hex digest.
func (Signer) Sign(drawDate, drawTime, resultText string) string {
	sum := sha256.Sum256([]byte(drawDate + "|" + drawTime + "|" + resultText))
	return hex.EncodeToString(sum[:])
}
