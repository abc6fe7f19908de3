package solana

import (
	solanago "github.com/gagliardetto/solana-go"
)

// ToSolanaGo converts the instruction into a gagliardetto/solana-go instruction,
// so it can be handed to transaction builders that speak that library's types.
//
// Keys and data are copied; the returned value shares no memory with i.
func (i Instruction) ToSolanaGo() *solanago.GenericInstruction {
	accounts := make(solanago.AccountMetaSlice, len(i.Accounts))
	for idx, account := range i.Accounts {
		accounts[idx] = solanago.NewAccountMeta(
			solanago.PublicKeyFromBytes(account.PublicKey),
			account.IsWritable,
			account.IsSigner,
		)
	}

	data := make([]byte, len(i.Data))
	copy(data, i.Data)

	return solanago.NewInstruction(
		solanago.PublicKeyFromBytes(i.Program),
		accounts,
		data,
	)
}
