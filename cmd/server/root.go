package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/content-platform-api/internal/config"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "content-platform-api",
		Short:         "Content publishing API server",
		SilenceUsage: true,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (YAML)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

// addOverrideFlags registers the flags that overlay file and env config
func addOverrideFlags(flags *pflag.FlagSet) {
	flags.String("port", "", "HTTP listen port")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: json or pretty")
	flags.String("store", "", "storage backend: postgres or memory")
	flags.String("migrations", "", "migrations directory")
}

func loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	return config.Load(configFile, flags)
}
