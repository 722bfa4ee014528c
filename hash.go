package headinject

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// fingerprint returns the hex BLAKE2b-256 digest of a rendered snippet.
func fingerprint(content []byte) string {
	sum := blake2b.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// registryKey identifies a configuration document by codec and content.
type registryKey [blake2b.Size256]byte

// documentKey hashes the content type and document together. The separator
// keeps ("a", "bc") and ("ab", "c") apart.
func documentKey(contentType string, data []byte) registryKey {
	h, _ := blake2b.New256(nil) // only fails for oversized keys
	h.Write([]byte(contentType))
	h.Write([]byte{0})
	h.Write(data)
	var key registryKey
	h.Sum(key[:0])
	return key
}
