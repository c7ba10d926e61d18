package guest

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// CodeLength is the printable code length in characters.
const CodeLength = 8

// NewCode returns a short uppercase hex code suitable for barcode/QR
// encoding and manual transcription: the first 32 bits of a random
// 128-bit identifier. Truncation trades global uniqueness for
// readability; the store's unique constraint on the code is the safety
// net, and inserts retry with a fresh code on conflict.
//
// Never blocks. Panics only if the platform CSPRNG is unavailable,
// which is a fatal environment error rather than a recoverable one.
func NewCode() string {
	u := uuid.New()
	return strings.ToUpper(hex.EncodeToString(u[:CodeLength/2]))
}

// NormalizeCode uppercases and trims a scanned code so lookups are case-
// and whitespace-insensitive across camera, image, and keyboard-wedge
// scanners.
func NormalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
