package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sig-0/go-abse/log"
)

const (
	flagScenario  = "scenario"
	flagSize      = "size"
	flagLogLevel  = "log-level"
	flagLogFormat = "log-format"
)

func NewRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("ABSE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "abse-replay",
		Short:         "Replay score rounds through an adaptive baseline score evaluator",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().String(flagLogLevel, log.LogLevelInfo, "log level (debug|info|error)")
	root.PersistentFlags().String(flagLogFormat, log.LogFormatPlain, "log format (plain|json)")

	if err := v.BindPFlags(root.PersistentFlags()); err != nil {
		panic(err)
	}

	root.AddCommand(newRunCmd(v))

	return root
}
