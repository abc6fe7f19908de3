package address_lookup_table

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/code-payments/code-alt/pkg/solana"
)

// GetAddress derives the address of a lookup table created by authority at
// recentSlot, along with its bump seed.
func GetAddress(authority ed25519.PublicKey, recentSlot uint64) (ed25519.PublicKey, uint8, error) {
	if err := solana.ValidatePublicKey(authority); err != nil {
		return nil, 0, err
	}

	var recentSlotBytes [8]byte
	binary.LittleEndian.PutUint64(recentSlotBytes[:], recentSlot)

	return solana.FindProgramAddressAndBump(
		ProgramKey,
		authority,
		recentSlotBytes[:],
	)
}
