package syncer

import (
	"math/rand"
	"strings"
)

// Alphabet for sync codes. 0/O and 1/I are excluded so codes survive
// being read aloud or copied by hand.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeLength is the fixed length of a sync code
const CodeLength = 6

// GenerateCode returns a random sync code. The code space (32^6) is large
// enough that collisions between the handful of codes a personal
// deployment ever mints are ignored; codes are not secrets in a
// cryptographic sense, just unguessable-enough capabilities.
func GenerateCode() string {
	var b strings.Builder
	b.Grow(CodeLength)
	for i := 0; i < CodeLength; i++ {
		b.WriteByte(codeAlphabet[rand.Intn(len(codeAlphabet))])
	}
	return b.String()
}

// NormalizeCode uppercases and trims a user-entered code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidCode reports whether a normalized code has the expected shape
func ValidCode(code string) bool {
	return len(code) == CodeLength
}
