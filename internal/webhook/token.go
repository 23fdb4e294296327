// Package webhook implements token derivation and request authentication for
// inbound push callbacks.
package webhook

import (
	"crypto/sha512"
	"encoding/hex"
)

// Token derives the callback token for a request path. The construction is
// hex(sha512(path)) concatenated with the salt as ASCII, hex-encoded again.
// Registered hooks carry a token computed this way over the hook URL's path,
// so verification must reproduce the encoding bit for bit: the path must be
// the same decoded form in both places, query string excluded.
func Token(path, salt string) string {
	digest := sha512.Sum512([]byte(path))
	first := hex.EncodeToString(digest[:])
	return hex.EncodeToString([]byte(first + salt))
}
