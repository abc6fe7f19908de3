package main

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix = "ALT"

	configKey   = "config"
	logLevelKey = "log_level"

	defaultLogLevel = "info"
)

func newRootCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "alt",
		Short:        "Build and inspect Address Lookup Table program instructions",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd, v)
		},
	}

	cmd.PersistentFlags().String("config", "", "path to a config file holding option values")
	cmd.PersistentFlags().String("log-level", defaultLogLevel, "log level (trace, debug, info, warn, error)")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	v.SetDefault(logLevelKey, defaultLogLevel)

	cmd.AddCommand(
		newInstructionCommands(v)...,
	)
	cmd.AddCommand(
		newDecodeCommand(v),
		newSizeCommand(v),
	)

	return cmd
}

func initConfig(cmd *cobra.Command, v *viper.Viper) error {
	if err := bindFlags(v, cmd.Root().PersistentFlags()); err != nil {
		return err
	}
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return err
	}

	if path := v.GetString(configKey); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "failed to read config file %s", path)
		}
	}

	configureLogger(cmd.ErrOrStderr(), v.GetString(logLevelKey))
	return nil
}

// bindFlags maps every flag onto its snake_case viper key, so --recent-slot,
// ALT_RECENT_SLOT and recent_slot in a config file all resolve to the same value.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		err = v.BindPFlag(flagKey(f.Name), f)
	})
	return errors.Wrap(err, "failed to bind flags")
}

func flagKey(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

func configureLogger(out io.Writer, logLevel string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(strings.ToLower(logLevel))
	if err != nil {
		logrus.StandardLogger().WithField("log_level", logLevel).Warn("unknown log level, ignoring")
	} else {
		logrus.SetLevel(level)
	}

	logrus.SetOutput(out)
}
