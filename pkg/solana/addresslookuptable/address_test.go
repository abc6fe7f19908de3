package address_lookup_table

import (
	"encoding/binary"
	"testing"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-alt/pkg/solana"
)

func TestGetAddress(t *testing.T) {
	programID := solanago.MustPublicKeyFromBase58("AddressLookupTab1e1111111111111111111111111")

	for _, recentSlot := range []uint64{0, 1, 12345, 287_654_321, 1<<64 - 1} {
		authority := generateKeys(t, 1)[0]

		address, bump, err := GetAddress(authority, recentSlot)
		require.NoError(t, err)
		assert.False(t, solana.IsOnCurve(address))

		var slotBytes [8]byte
		binary.LittleEndian.PutUint64(slotBytes[:], recentSlot)

		expected, expectedBump, err := solanago.FindProgramAddress(
			[][]byte{authority, slotBytes[:]},
			programID,
		)
		require.NoError(t, err)
		assert.EqualValues(t, expected[:], address)
		assert.Equal(t, expectedBump, bump)
	}
}

func TestGetAddress_InvalidAuthority(t *testing.T) {
	_, _, err := GetAddress(make([]byte, 31), 1)
	assert.Equal(t, solana.ErrInvalidPublicKeyLength, err)
}
