// Package keyutil provides object key derivation and prefix handling
// for cache entries stored in S3/MinIO buckets.
package keyutil

import (
	"crypto/sha1" //nolint:gosec // Not used for security; stable object naming only.
	"encoding/hex"
	"path/filepath"
	"strings"
)

// NormalizePrefix normalizes the prefix path:
// - Converts backslashes to forward slashes
// - Removes leading and trailing slashes
// - Returns empty string if prefix is "." or empty.
func NormalizePrefix(prefix string) string {
	if prefix == "" || prefix == "." {
		return ""
	}

	// First convert backslashes to forward slashes (for Windows-style paths)
	prefix = strings.ReplaceAll(prefix, "\\", "/")

	// Clean the path (resolves . and ..)
	prefix = filepath.Clean(prefix)

	// Convert to forward slashes again (filepath.Clean may use OS separator)
	prefix = filepath.ToSlash(prefix)

	// Trim leading and trailing slashes
	prefix = strings.Trim(prefix, "/")

	return prefix
}

// JoinPrefix joins a prefix with an object name to create a full S3 key.
// It handles empty prefix correctly and uses forward slashes.
func JoinPrefix(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// ObjectName maps a logical cache key to its stored object name.
//
// Cache keys are arbitrary strings and may contain characters that are
// awkward or invalid in S3 object keys, so the key is hashed to a fixed
// hex name. SHA-1 keeps names short while making accidental collisions
// between distinct keys implausible.
func ObjectName(key string) string {
	sum := sha1.Sum([]byte(key)) //nolint:gosec // Not used for security.
	return hex.EncodeToString(sum[:])
}
