package main

import (
	"crypto/ed25519"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/code-payments/code-alt/pkg/solana"
	alt "github.com/code-payments/code-alt/pkg/solana/addresslookuptable"
)

type instructionBuilder func(raw map[string]interface{}) (solana.Instruction, ed25519.PublicKey, error)

type instructionCommand struct {
	command alt.Command
	short   string
	fields  []string
	build   instructionBuilder
}

var instructionCommands = []instructionCommand{
	{
		command: alt.CommandCreateLookupTable,
		short:   "Build a CreateLookupTable instruction and derive the table address",
		fields:  []string{alt.FieldAuthority, alt.FieldPayer, alt.FieldRecentSlot, alt.FieldAuthorityShouldSign},
		build: func(raw map[string]interface{}) (solana.Instruction, ed25519.PublicKey, error) {
			opts, err := alt.NewCreateOptions(raw)
			if err != nil {
				return solana.Instruction{}, nil, err
			}
			return alt.Create(opts)
		},
	},
	{
		command: alt.CommandFreezeLookupTable,
		short:   "Build a FreezeLookupTable instruction",
		fields:  []string{alt.FieldLookupTable, alt.FieldAuthority},
		build: func(raw map[string]interface{}) (solana.Instruction, ed25519.PublicKey, error) {
			opts, err := alt.NewFreezeOptions(raw)
			if err != nil {
				return solana.Instruction{}, nil, err
			}
			instruction, err := alt.Freeze(opts)
			return instruction, opts.LookupTable, err
		},
	},
	{
		command: alt.CommandExtendLookupTable,
		short:   "Build an ExtendLookupTable instruction",
		fields:  []string{alt.FieldLookupTable, alt.FieldAuthority, alt.FieldNewKeys, alt.FieldPayer},
		build: func(raw map[string]interface{}) (solana.Instruction, ed25519.PublicKey, error) {
			opts, err := alt.NewExtendOptions(raw)
			if err != nil {
				return solana.Instruction{}, nil, err
			}
			instruction, err := alt.Extend(opts)
			return instruction, opts.LookupTable, err
		},
	},
	{
		command: alt.CommandDeactivateLookupTable,
		short:   "Build a DeactivateLookupTable instruction",
		fields:  []string{alt.FieldLookupTable, alt.FieldAuthority},
		build: func(raw map[string]interface{}) (solana.Instruction, ed25519.PublicKey, error) {
			opts, err := alt.NewDeactivateOptions(raw)
			if err != nil {
				return solana.Instruction{}, nil, err
			}
			instruction, err := alt.Deactivate(opts)
			return instruction, opts.LookupTable, err
		},
	},
	{
		command: alt.CommandCloseLookupTable,
		short:   "Build a CloseLookupTable instruction",
		fields:  []string{alt.FieldLookupTable, alt.FieldAuthority, alt.FieldRecipient},
		build: func(raw map[string]interface{}) (solana.Instruction, ed25519.PublicKey, error) {
			opts, err := alt.NewCloseOptions(raw)
			if err != nil {
				return solana.Instruction{}, nil, err
			}
			instruction, err := alt.Close(opts)
			return instruction, opts.LookupTable, err
		},
	},
}

var fieldUsage = map[string]string{
	alt.FieldAuthority:           "base58 authority public key",
	alt.FieldAuthorityShouldSign: "require the authority to sign the create instruction",
	alt.FieldLookupTable:         "base58 lookup table address",
	alt.FieldNewKeys:             "base58 public keys to append to the table",
	alt.FieldPayer:               "base58 payer public key",
	alt.FieldRecentSlot:          "recent slot used to derive the table address",
	alt.FieldRecipient:           "base58 public key receiving the closed table's lamports",
}

func newInstructionCommands(v *viper.Viper) []*cobra.Command {
	commands := make([]*cobra.Command, len(instructionCommands))
	for i, ic := range instructionCommands {
		commands[i] = ic.cobraCommand(v)
	}
	return commands
}

func (ic instructionCommand) cobraCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   ic.command.String(),
		Short: ic.short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logrus.StandardLogger().WithFields(logrus.Fields{
				"type":    "cmd/alt",
				"command": ic.command.String(),
			})

			raw := ic.rawOptions(v)
			log.WithField("fields", len(raw)).Debug("building instruction")

			instruction, lookupTable, err := ic.build(raw)
			if err != nil {
				log.WithError(err).Warn("failed to build instruction")
				return err
			}

			log.WithField("lookup_table", solanaKey(lookupTable)).Info("built instruction")
			return writeJSON(cmd.OutOrStdout(), newInstructionOutput(instruction, lookupTable))
		},
	}

	for _, field := range ic.fields {
		name := flagName(field)
		switch field {
		case alt.FieldAuthorityShouldSign:
			cmd.Flags().Bool(name, false, fieldUsage[field])
		case alt.FieldNewKeys:
			cmd.Flags().StringSlice(name, nil, fieldUsage[field])
		default:
			cmd.Flags().String(name, "", fieldUsage[field])
		}
	}

	return cmd
}

// rawOptions collects the command's fields from every viper source. Fields that
// no source sets are left out, so the validator applies its own defaults.
func (ic instructionCommand) rawOptions(v *viper.Viper) map[string]interface{} {
	raw := make(map[string]interface{})
	for _, field := range ic.fields {
		if !v.IsSet(field) {
			continue
		}

		value := v.Get(field)
		switch field {
		case alt.FieldAuthorityShouldSign:
			if b, err := cast.ToBoolE(value); err == nil {
				value = b
			}
		case alt.FieldNewKeys:
			if encoded, ok := value.(string); ok {
				value = splitKeyList(encoded)
			} else if keys, err := cast.ToStringSliceE(value); err == nil {
				value = keys
			}
		}
		raw[field] = value
	}
	return raw
}

// splitKeyList splits a comma separated key list the same way the --new-keys
// flag does. An empty string is an empty list.
func splitKeyList(encoded string) []string {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return []string{}
	}

	keys := strings.Split(encoded, ",")
	for i, key := range keys {
		keys[i] = strings.TrimSpace(key)
	}
	return keys
}
