package model

import (
	"crypto/rand"
	"encoding/hex"
)

// newID returns a short random identifier. Eight hex digits is plenty for a
// single workspace and keeps tree labels and JSON readable.
func newID() string {
	var b [4]byte
	rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
