package alert

import (
	"crypto/sha256"
	"encoding/hex"
)

// OwnerKey derives the stable pseudo-identity that scopes saved searches.
// There are no accounts; the key binds identity to network origin plus a
// client-declared identifier, which is weak but enough for abuse limiting.
// One-way: the salt keeps the input triple unguessable from the key.
func OwnerKey(salt string, remoteAddr string, clientID string) string {
	sum := sha256.Sum256([]byte(salt + "|" + remoteAddr + "|" + clientID))
	return hex.EncodeToString(sum[:])
}
