package main

import (
	"encoding/base64"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	alt "github.com/code-payments/code-alt/pkg/solana/addresslookuptable"
)

const (
	fileKey = "file"
	rawKey  = "raw"
	keysKey = "keys"
)

func newDecodeCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode a lookup table account snapshot",
		Long: `Decode a lookup table account snapshot read from --file, or stdin when
the file is "-" or unset.

By default the input is a jsonParsed account snapshot. With --raw the input is
the base64 encoded account data.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logrus.StandardLogger().WithFields(logrus.Fields{
				"type":    "cmd/alt",
				"command": "decode",
			})

			path := v.GetString(fileKey)
			input, err := readInput(cmd, path)
			if err != nil {
				return err
			}

			var table *alt.LookupTable
			if v.GetBool(rawKey) {
				table, err = decodeRaw(input)
			} else {
				table, err = alt.DecodeSnapshotJSON(input)
			}
			if err != nil {
				log.WithError(err).Warn("failed to decode lookup table")
				return err
			}

			log.WithField("addresses", len(table.Addresses)).Debug("decoded lookup table")
			return writeJSON(cmd.OutOrStdout(), newLookupTableOutput(table))
		},
	}

	cmd.Flags().String(fileKey, "-", "path of the snapshot to decode, - for stdin")
	cmd.Flags().Bool(rawKey, false, "treat the input as base64 encoded account data")

	return cmd
}

func newSizeCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "size",
		Short: "Print the account size of a lookup table holding --keys addresses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := v.GetUint64(keysKey)
			return writeJSON(cmd.OutOrStdout(), sizeOutput{
				Keys:     keys,
				ByteSize: alt.ByteSize(keys),
			})
		},
	}

	cmd.Flags().Uint64(keysKey, 0, "number of addresses stored in the table")

	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		input, err := io.ReadAll(cmd.InOrStdin())
		return input, errors.Wrap(err, "failed to read stdin")
	}

	input, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Errorf("snapshot file %s does not exist", path)
	}
	return input, errors.Wrapf(err, "failed to read %s", path)
}

func decodeRaw(input []byte) (*alt.LookupTable, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(input)))
	if err != nil {
		return nil, errors.Wrap(err, "invalid base64 account data")
	}

	var table alt.LookupTable
	if err := table.Unmarshal(data); err != nil {
		return nil, err
	}
	return &table, nil
}
