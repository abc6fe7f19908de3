package address_lookup_table

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/code-alt/pkg/solana"
	"github.com/code-payments/code-alt/pkg/solana/binary"
	"github.com/code-payments/code-alt/pkg/solana/system"
)

// GetCommand returns the command of an address lookup table instruction.
func GetCommand(i solana.Instruction) (Command, error) {
	if !bytes.Equal(i.Program, ProgramKey) {
		return CommandUnknown, solana.ErrIncorrectProgram
	}
	if len(i.Data) < commandSize {
		return CommandUnknown, errors.New("address lookup table instruction missing data")
	}

	var command uint32
	var offset int
	binary.GetUint32(i.Data, &command, &offset)

	if _, ok := descriptors[Command(command)]; !ok {
		return CommandUnknown, errors.Errorf("unknown address lookup table command: %d", command)
	}
	return Command(command), nil
}

type DecompiledCreate struct {
	LookupTable ed25519.PublicKey
	Authority   ed25519.PublicKey
	Payer       ed25519.PublicKey

	RecentSlot          uint64
	BumpSeed            uint8
	AuthorityShouldSign bool
}

func DecompileCreate(i solana.Instruction) (*DecompiledCreate, error) {
	if err := checkInstruction(i, CommandCreateLookupTable, 8+1); err != nil {
		return nil, err
	}
	if err := checkAccounts(i, CommandCreateLookupTable, false); err != nil {
		return nil, err
	}

	v := &DecompiledCreate{
		LookupTable:         i.Accounts[0].PublicKey,
		Authority:           i.Accounts[1].PublicKey,
		Payer:               i.Accounts[2].PublicKey,
		AuthorityShouldSign: i.Accounts[1].IsSigner,
	}

	offset := commandSize
	binary.GetUint64(i.Data[offset:], &v.RecentSlot, &offset)
	binary.GetUint8(i.Data[offset:], &v.BumpSeed, &offset)

	return v, nil
}

type DecompiledFreeze struct {
	LookupTable ed25519.PublicKey
	Authority   ed25519.PublicKey
}

func DecompileFreeze(i solana.Instruction) (*DecompiledFreeze, error) {
	if err := checkInstruction(i, CommandFreezeLookupTable, 0); err != nil {
		return nil, err
	}
	if err := checkAccounts(i, CommandFreezeLookupTable, false); err != nil {
		return nil, err
	}

	return &DecompiledFreeze{
		LookupTable: i.Accounts[0].PublicKey,
		Authority:   i.Accounts[1].PublicKey,
	}, nil
}

type DecompiledExtend struct {
	LookupTable ed25519.PublicKey
	Authority   ed25519.PublicKey
	NewKeys     []ed25519.PublicKey

	// Payer is nil when the extension was not funded by a payer.
	Payer ed25519.PublicKey
}

func DecompileExtend(i solana.Instruction) (*DecompiledExtend, error) {
	if err := checkCommand(i, CommandExtendLookupTable); err != nil {
		return nil, err
	}
	if len(i.Data) < commandSize+8 {
		return nil, errors.Errorf("invalid instruction data size: %d", len(i.Data))
	}

	var count uint64
	offset := commandSize
	binary.GetUint64(i.Data[offset:], &count, &offset)
	if count > MaxAddresses {
		return nil, errors.Errorf("too many new keys: %d", count)
	}

	if err := checkInstruction(i, CommandExtendLookupTable, 8+int(count)*ed25519.PublicKeySize); err != nil {
		return nil, err
	}
	if err := checkAccounts(i, CommandExtendLookupTable, true); err != nil {
		return nil, err
	}

	v := &DecompiledExtend{
		LookupTable: i.Accounts[0].PublicKey,
		Authority:   i.Accounts[1].PublicKey,
		NewKeys:     make([]ed25519.PublicKey, count),
	}
	if len(i.Accounts) == 4 {
		v.Payer = i.Accounts[2].PublicKey
	}

	for idx := range v.NewKeys {
		binary.GetKey32(i.Data[offset:], &v.NewKeys[idx], &offset)
	}

	return v, nil
}

type DecompiledDeactivate struct {
	LookupTable ed25519.PublicKey
	Authority   ed25519.PublicKey
}

func DecompileDeactivate(i solana.Instruction) (*DecompiledDeactivate, error) {
	if err := checkInstruction(i, CommandDeactivateLookupTable, 0); err != nil {
		return nil, err
	}
	if err := checkAccounts(i, CommandDeactivateLookupTable, false); err != nil {
		return nil, err
	}

	return &DecompiledDeactivate{
		LookupTable: i.Accounts[0].PublicKey,
		Authority:   i.Accounts[1].PublicKey,
	}, nil
}

type DecompiledClose struct {
	LookupTable ed25519.PublicKey
	Authority   ed25519.PublicKey
	Recipient   ed25519.PublicKey
}

func DecompileClose(i solana.Instruction) (*DecompiledClose, error) {
	if err := checkInstruction(i, CommandCloseLookupTable, 0); err != nil {
		return nil, err
	}
	if err := checkAccounts(i, CommandCloseLookupTable, false); err != nil {
		return nil, err
	}

	return &DecompiledClose{
		LookupTable: i.Accounts[0].PublicKey,
		Authority:   i.Accounts[1].PublicKey,
		Recipient:   i.Accounts[2].PublicKey,
	}, nil
}

func checkCommand(i solana.Instruction, command Command) error {
	actual, err := GetCommand(i)
	if err == solana.ErrIncorrectProgram {
		return err
	} else if err != nil || actual != command {
		return solana.ErrIncorrectInstruction
	}
	return nil
}

func checkInstruction(i solana.Instruction, command Command, argsSize int) error {
	if err := checkCommand(i, command); err != nil {
		return err
	}
	if len(i.Data) != commandSize+argsSize {
		return errors.Errorf("invalid instruction data size: %d", len(i.Data))
	}
	return nil
}

// checkAccounts verifies the account list against the command's template. The
// create authority's signer flag is caller controlled, so it is not checked.
func checkAccounts(i solana.Instruction, command Command, allowOptional bool) error {
	d := descriptors[command]

	expected := len(d.accounts)
	if allowOptional && len(i.Accounts) == len(d.accounts)-d.optionalSlots {
		expected = len(i.Accounts)
	}
	if len(i.Accounts) != expected {
		return errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}

	systemProgram := system.ProgramPublicKey()
	for idx, account := range i.Accounts {
		slot := d.accounts[idx]

		if account.IsWritable != slot.writable {
			return errors.Errorf("invalid writable flag for account %d", idx)
		}
		if command == CommandCreateLookupTable && idx == 1 {
			continue
		}
		if account.IsSigner != slot.signer {
			return errors.Errorf("invalid signer flag for account %d", idx)
		}
	}

	if expected == 4 && !bytes.Equal(i.Accounts[3].PublicKey, systemProgram) {
		return errors.New("invalid system program account")
	}
	return nil
}
