package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Goopi7/crop-connect/internal/config"
	"github.com/Goopi7/crop-connect/internal/logger"
)

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree around a private viper instance so flags,
// CROPCTL_* variables and an optional config file resolve the same way
func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("CROPCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "cropctl",
		Short: "Operator tooling for the crop recommendation service",
		Long: `cropctl manages the crop catalogue and runs the recommendation engine offline.

  cropctl seed --file crops.json       # upsert a catalogue into the configured store
  cropctl recommend --soil-type loamy  # rank the embedded catalogue for a field
  cropctl tables                       # print the reference tables as YAML`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path := v.GetString("config")
			if path == "" {
				return nil
			}
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("error reading config file: %w", err)
			}
			return nil
		},
	}

	root.PersistentFlags().String("config", "", "cropctl config file (json|yaml)")
	root.PersistentFlags().String("log-level", "warn", "Log level (debug|info|warn|error)")
	_ = v.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	_ = v.BindPFlag("log-level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(newSeedCmd(v), newRecommendCmd(v), newTablesCmd(v))
	return root
}

func newLogger(v *viper.Viper) (*zap.Logger, error) {
	return logger.New(config.LoggingConfig{Level: v.GetString("log-level"), Format: "console"})
}
