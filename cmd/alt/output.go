package main

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"io"
	"strings"

	"github.com/mr-tron/base58"

	"github.com/code-payments/code-alt/pkg/solana"
	alt "github.com/code-payments/code-alt/pkg/solana/addresslookuptable"
)

type accountOutput struct {
	PublicKey  string `json:"public_key"`
	IsSigner   bool   `json:"is_signer"`
	IsWritable bool   `json:"is_writable"`
}

type instructionOutput struct {
	LookupTable string          `json:"lookup_table,omitempty"`
	Program     string          `json:"program"`
	Accounts    []accountOutput `json:"accounts"`
	Data        string          `json:"data"`
}

func newInstructionOutput(instruction solana.Instruction, lookupTable ed25519.PublicKey) instructionOutput {
	accounts := make([]accountOutput, len(instruction.Accounts))
	for i, account := range instruction.Accounts {
		accounts[i] = accountOutput{
			PublicKey:  solanaKey(account.PublicKey),
			IsSigner:   account.IsSigner,
			IsWritable: account.IsWritable,
		}
	}

	return instructionOutput{
		LookupTable: solanaKey(lookupTable),
		Program:     solanaKey(instruction.Program),
		Accounts:    accounts,
		Data:        base64.StdEncoding.EncodeToString(instruction.Data),
	}
}

type lookupTableOutput struct {
	Authority                  *string  `json:"authority"`
	Frozen                     bool     `json:"frozen"`
	Active                     bool     `json:"active"`
	Addresses                  []string `json:"addresses"`
	DeactivationSlot           uint64   `json:"deactivation_slot"`
	LastExtendedSlot           uint64   `json:"last_extended_slot"`
	LastExtendedSlotStartIndex uint8    `json:"last_extended_slot_start_index"`
	ByteSize                   uint64   `json:"byte_size"`
}

func newLookupTableOutput(table *alt.LookupTable) lookupTableOutput {
	addresses := make([]string, len(table.Addresses))
	for i, address := range table.Addresses {
		addresses[i] = solanaKey(address)
	}

	var authority *string
	if key, ok := table.Authority.Key(); ok {
		encoded := solanaKey(key)
		authority = &encoded
	}

	return lookupTableOutput{
		Authority:                  authority,
		Frozen:                     table.IsFrozen(),
		Active:                     table.IsActive(),
		Addresses:                  addresses,
		DeactivationSlot:           table.DeactivationSlot,
		LastExtendedSlot:           table.LastExtendedSlot,
		LastExtendedSlotStartIndex: table.LastExtendedSlotStartIndex,
		ByteSize:                   table.ByteSize(),
	}
}

type sizeOutput struct {
	Keys     uint64 `json:"keys"`
	ByteSize uint64 `json:"byte_size"`
}

func solanaKey(key ed25519.PublicKey) string {
	if len(key) == 0 {
		return ""
	}
	return base58.Encode(key)
}

func flagName(field string) string {
	return strings.ReplaceAll(field, "_", "-")
}

func writeJSON(out io.Writer, v interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
