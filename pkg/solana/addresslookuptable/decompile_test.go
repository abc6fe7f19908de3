package address_lookup_table

import (
	"crypto/ed25519"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-alt/pkg/solana"
)

func TestGetCommand(t *testing.T) {
	keys := generateKeys(t, 3)

	cmd, err := GetCommand(solana.NewInstruction(keys[0], []byte{0, 0, 0, 0}))
	assert.Equal(t, CommandUnknown, cmd)
	assert.Equal(t, solana.ErrIncorrectProgram, err)

	cmd, err = GetCommand(solana.NewInstruction(ProgramKey, []byte{0, 0}))
	assert.Equal(t, CommandUnknown, cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing data")

	cmd, err = GetCommand(solana.NewInstruction(ProgramKey, []byte{5, 0, 0, 0}))
	assert.Equal(t, CommandUnknown, cmd)
	assert.Error(t, err)

	instruction, err := Close(&CloseOptions{LookupTable: keys[0], Authority: keys[1], Recipient: keys[2]})
	require.NoError(t, err)
	cmd, err = GetCommand(instruction)
	require.NoError(t, err)
	assert.Equal(t, CommandCloseLookupTable, cmd)
}

func TestDecompileCreate(t *testing.T) {
	keys := generateKeys(t, 2)

	for _, shouldSign := range []bool{false, true} {
		instruction, address, err := Create(&CreateOptions{
			Authority:           keys[0],
			Payer:               keys[1],
			RecentSlot:          4242,
			AuthorityShouldSign: shouldSign,
		})
		require.NoError(t, err)

		decompiled, err := DecompileCreate(instruction)
		require.NoError(t, err)
		assert.Equal(t, address, decompiled.LookupTable)
		assert.Equal(t, keys[0], decompiled.Authority)
		assert.Equal(t, keys[1], decompiled.Payer)
		assert.EqualValues(t, 4242, decompiled.RecentSlot)
		assert.Equal(t, instruction.Data[12], decompiled.BumpSeed)
		assert.Equal(t, shouldSign, decompiled.AuthorityShouldSign)
	}
}

func TestDecompileFreezeDeactivateClose(t *testing.T) {
	keys := generateKeys(t, 3)

	freeze, err := Freeze(&FreezeOptions{LookupTable: keys[0], Authority: keys[1]})
	require.NoError(t, err)
	decompiledFreeze, err := DecompileFreeze(freeze)
	require.NoError(t, err)
	assert.Equal(t, keys[0], decompiledFreeze.LookupTable)
	assert.Equal(t, keys[1], decompiledFreeze.Authority)

	deactivate, err := Deactivate(&DeactivateOptions{LookupTable: keys[0], Authority: keys[1]})
	require.NoError(t, err)
	decompiledDeactivate, err := DecompileDeactivate(deactivate)
	require.NoError(t, err)
	assert.Equal(t, keys[0], decompiledDeactivate.LookupTable)
	assert.Equal(t, keys[1], decompiledDeactivate.Authority)

	closeInstruction, err := Close(&CloseOptions{LookupTable: keys[0], Authority: keys[1], Recipient: keys[2]})
	require.NoError(t, err)
	decompiledClose, err := DecompileClose(closeInstruction)
	require.NoError(t, err)
	assert.Equal(t, keys[2], decompiledClose.Recipient)

	// Freeze and deactivate share a layout, but not a command.
	_, err = DecompileFreeze(deactivate)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)
	_, err = DecompileDeactivate(freeze)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)
}

func TestDecompileExtend(t *testing.T) {
	keys := generateKeys(t, 5)

	withoutPayer, err := Extend(&ExtendOptions{
		LookupTable: keys[0],
		Authority:   keys[1],
		NewKeys:     []ed25519.PublicKey{keys[2], keys[3]},
	})
	require.NoError(t, err)

	decompiled, err := DecompileExtend(withoutPayer)
	require.NoError(t, err)
	assert.Equal(t, keys[0], decompiled.LookupTable)
	assert.Equal(t, keys[1], decompiled.Authority)
	assert.Equal(t, []ed25519.PublicKey{keys[2], keys[3]}, decompiled.NewKeys)
	assert.Nil(t, decompiled.Payer)

	withPayer, err := Extend(&ExtendOptions{
		LookupTable: keys[0],
		Authority:   keys[1],
		NewKeys:     []ed25519.PublicKey{keys[2]},
		Payer:       keys[4],
	})
	require.NoError(t, err)

	decompiled, err = DecompileExtend(withPayer)
	require.NoError(t, err)
	assert.Equal(t, keys[4], decompiled.Payer)
	assert.Equal(t, []ed25519.PublicKey{keys[2]}, decompiled.NewKeys)
}

func TestDecompile_Invalid(t *testing.T) {
	keys := generateKeys(t, 4)

	instruction, err := Extend(&ExtendOptions{
		LookupTable: keys[0],
		Authority:   keys[1],
		NewKeys:     []ed25519.PublicKey{keys[2]},
		Payer:       keys[3],
	})
	require.NoError(t, err)

	truncated := instruction
	truncated.Data = instruction.Data[:len(instruction.Data)-1]
	_, err = DecompileExtend(truncated)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "invalid instruction data size"), err)

	missingProgram := instruction
	missingProgram.Accounts = instruction.Accounts[:3]
	_, err = DecompileExtend(missingProgram)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "invalid number of accounts"), err)

	wrongSystemProgram := instruction
	wrongSystemProgram.Accounts = append([]solana.AccountMeta{}, instruction.Accounts...)
	wrongSystemProgram.Accounts[3] = solana.NewReadonlyAccountMeta(keys[0], false)
	_, err = DecompileExtend(wrongSystemProgram)
	assert.EqualError(t, err, "invalid system program account")

	notSigner := instruction
	notSigner.Accounts = append([]solana.AccountMeta{}, instruction.Accounts...)
	notSigner.Accounts[1].IsSigner = false
	_, err = DecompileExtend(notSigner)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "invalid signer flag"), err)

	otherProgram := instruction
	otherProgram.Program = keys[0]
	_, err = DecompileExtend(otherProgram)
	assert.Equal(t, solana.ErrIncorrectProgram, err)

	_, err = DecompileCreate(instruction)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)
}
