package system

import (
	"crypto/ed25519"
)

// ProgramKey is the System Program id, 11111111111111111111111111111111.
//
// The all zero key is the System Program; it is referenced by instructions that
// allocate new accounts on behalf of another program.
var ProgramKey [32]byte

// ProgramPublicKey returns a fresh copy of ProgramKey.
func ProgramPublicKey() ed25519.PublicKey {
	key := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(key, ProgramKey[:])
	return key
}
