// Package hasher computes the digests recorded for resolved configurations.
package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Prefix marks a digest as sha256 in lockfiles and command output.
const Prefix = "sha256:"

// CalculateSHA256 computes the SHA256 hash of the given content
// and returns it in the format "sha256:<hex_hash>".
func CalculateSHA256(content []byte) string {
	sum := sha256.Sum256(content)
	return Prefix + hex.EncodeToString(sum[:])
}

// Lines hashes lines as newline-terminated text, so ["a", "b"] and ["ab"]
// digest differently. Lines must not contain newlines themselves.
func Lines(lines ...string) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return CalculateSHA256([]byte(b.String()))
}

// Short trims a digest to its first n hex digits for display.
func Short(digest string, n int) string {
	hexPart := strings.TrimPrefix(digest, Prefix)
	if len(hexPart) > n {
		hexPart = hexPart[:n]
	}
	return hexPart
}
