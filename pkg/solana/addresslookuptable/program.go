package address_lookup_table

import (
	"crypto/ed25519"
	"math"

	"github.com/code-payments/code-alt/pkg/solana"
	"github.com/code-payments/code-alt/pkg/solana/binary"
	"github.com/code-payments/code-alt/pkg/solana/system"
)

// Reference: https://github.com/solana-program/address-lookup-table/blob/main/program/src/instruction.rs

// AddressLookupTab1e1111111111111111111111111
var ProgramKey = ed25519.PublicKey{2, 119, 166, 175, 151, 51, 155, 122, 200, 141, 24, 146, 201, 4, 70, 245, 0, 2, 48, 146, 102, 246, 46, 83, 193, 24, 36, 73, 130, 0, 0, 0}

// Command is the u32 discriminant leading every instruction payload.
type Command uint32

const (
	CommandCreateLookupTable Command = iota
	CommandFreezeLookupTable
	CommandExtendLookupTable
	CommandDeactivateLookupTable
	CommandCloseLookupTable

	CommandUnknown = Command(math.MaxUint32)
)

const commandSize = 4

func (c Command) String() string {
	switch c {
	case CommandCreateLookupTable:
		return "create"
	case CommandFreezeLookupTable:
		return "freeze"
	case CommandExtendLookupTable:
		return "extend"
	case CommandDeactivateLookupTable:
		return "deactivate"
	case CommandCloseLookupTable:
		return "close"
	default:
		return "unknown"
	}
}

type accountSlot struct {
	signer   bool
	writable bool
}

// descriptor is the fixed shape of one instruction: its discriminant and the
// flags of every account position. The last optionalSlots positions may be
// omitted together.
type descriptor struct {
	command       Command
	accounts      []accountSlot
	optionalSlots int
}

var (
	tableSlot   = accountSlot{writable: true}
	signerSlot  = accountSlot{signer: true}
	payerSlot   = accountSlot{signer: true, writable: true}
	programSlot = accountSlot{}
)

var descriptors = map[Command]descriptor{
	// 0. [WRITE] Uninitialized lookup table
	// 1. [] Authority, signer only when requested by the caller
	// 2. [WRITE, SIGNER] Payer
	// 3. [] System program
	CommandCreateLookupTable: {
		command:  CommandCreateLookupTable,
		accounts: []accountSlot{tableSlot, {}, payerSlot, programSlot},
	},
	// 0. [WRITE] Lookup table
	// 1. [SIGNER] Authority
	CommandFreezeLookupTable: {
		command:  CommandFreezeLookupTable,
		accounts: []accountSlot{tableSlot, signerSlot},
	},
	// 0. [WRITE] Lookup table
	// 1. [SIGNER] Authority
	// 2. [WRITE, SIGNER] Payer, optional
	// 3. [] System program, only with a payer
	CommandExtendLookupTable: {
		command:       CommandExtendLookupTable,
		accounts:      []accountSlot{tableSlot, signerSlot, payerSlot, programSlot},
		optionalSlots: 2,
	},
	// 0. [WRITE] Lookup table
	// 1. [SIGNER] Authority
	CommandDeactivateLookupTable: {
		command:  CommandDeactivateLookupTable,
		accounts: []accountSlot{tableSlot, signerSlot},
	},
	// 0. [WRITE] Lookup table
	// 1. [WRITE, SIGNER] Authority
	// 2. [WRITE] Recipient
	CommandCloseLookupTable: {
		command:  CommandCloseLookupTable,
		accounts: []accountSlot{tableSlot, payerSlot, {writable: true}},
	},
}

// data allocates a payload with room for argsSize bytes after the command, and
// returns it with the offset of the first argument byte.
func (d descriptor) data(argsSize int) ([]byte, int) {
	data := make([]byte, commandSize+argsSize)

	var offset int
	binary.PutUint32(data[offset:], uint32(d.command), &offset)
	return data, offset
}

// instruction pairs the payload with keys laid over the account template.
func (d descriptor) instruction(data []byte, keys ...ed25519.PublicKey) solana.Instruction {
	if len(keys) != len(d.accounts) && len(keys) != len(d.accounts)-d.optionalSlots {
		panic("address lookup table: account count does not match instruction template")
	}

	accounts := make([]solana.AccountMeta, len(keys))
	for i, key := range keys {
		accounts[i] = solana.AccountMeta{
			PublicKey:  copyKey(key),
			IsSigner:   d.accounts[i].signer,
			IsWritable: d.accounts[i].writable,
		}
	}

	return solana.NewInstruction(copyKey(ProgramKey), data, accounts...)
}

// copyKey detaches a key from the caller's backing array, so a built
// instruction never changes after the fact.
func copyKey(key ed25519.PublicKey) ed25519.PublicKey {
	cloned := make(ed25519.PublicKey, len(key))
	copy(cloned, key)
	return cloned
}

// Create builds a CreateLookupTable instruction, returning it alongside the
// address of the table it will create.
func Create(opts *CreateOptions) (solana.Instruction, ed25519.PublicKey, error) {
	if err := opts.Validate(); err != nil {
		return solana.Instruction{}, nil, err
	}

	address, bumpSeed, err := GetAddress(opts.Authority, opts.RecentSlot)
	if err != nil {
		return solana.Instruction{}, nil, err
	}

	d := descriptors[CommandCreateLookupTable]
	data, offset := d.data(8 + 1)
	binary.PutUint64(data[offset:], opts.RecentSlot, &offset)
	binary.PutUint8(data[offset:], bumpSeed, &offset)

	instruction := d.instruction(
		data,
		address,
		opts.Authority,
		opts.Payer,
		system.ProgramPublicKey(),
	)
	instruction.Accounts[1].IsSigner = opts.AuthorityShouldSign

	return instruction, copyKey(address), nil
}

// Freeze builds a FreezeLookupTable instruction, permanently removing the
// table's authority.
func Freeze(opts *FreezeOptions) (solana.Instruction, error) {
	if err := opts.Validate(); err != nil {
		return solana.Instruction{}, err
	}

	d := descriptors[CommandFreezeLookupTable]
	data, _ := d.data(0)
	return d.instruction(data, opts.LookupTable, opts.Authority), nil
}

// Extend builds an ExtendLookupTable instruction appending NewKeys, in order,
// to the table. The payer and System Program accounts are only included when a
// payer is provided.
func Extend(opts *ExtendOptions) (solana.Instruction, error) {
	if err := opts.Validate(); err != nil {
		return solana.Instruction{}, err
	}

	d := descriptors[CommandExtendLookupTable]
	data, offset := d.data(8 + len(opts.NewKeys)*ed25519.PublicKeySize)
	binary.PutUint64(data[offset:], uint64(len(opts.NewKeys)), &offset)
	for _, key := range opts.NewKeys {
		binary.PutKey32(data[offset:], key, &offset)
	}

	keys := []ed25519.PublicKey{opts.LookupTable, opts.Authority}
	if opts.Payer != nil {
		keys = append(keys, opts.Payer, system.ProgramPublicKey())
	}

	return d.instruction(data, keys...), nil
}

// Deactivate builds a DeactivateLookupTable instruction.
func Deactivate(opts *DeactivateOptions) (solana.Instruction, error) {
	if err := opts.Validate(); err != nil {
		return solana.Instruction{}, err
	}

	d := descriptors[CommandDeactivateLookupTable]
	data, _ := d.data(0)
	return d.instruction(data, opts.LookupTable, opts.Authority), nil
}

// Close builds a CloseLookupTable instruction, sending the table's lamports to
// Recipient. The table must have been deactivated beforehand.
func Close(opts *CloseOptions) (solana.Instruction, error) {
	if err := opts.Validate(); err != nil {
		return solana.Instruction{}, err
	}

	d := descriptors[CommandCloseLookupTable]
	data, _ := d.data(0)
	return d.instruction(data, opts.LookupTable, opts.Authority, opts.Recipient), nil
}
