// Package cli implements the flowscope command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/dshills/flowscope/internal/config"
	"github.com/dshills/flowscope/internal/logging"
)

var (
	cfgFile    string
	pluginPath string
	logLevel   string

	// loaded by the root pre-run
	cfg *config.Config
	log *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flowscope",
		Short: "Flowscope network event analysis host",
		Long:  "Flowscope analyzes network event streams through an extensible plugin runtime. Plugins hook into file loading, event queuing, log writing, and connection analysis.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfgFile != "" {
				cfg, err = config.Load(cfgFile)
			} else {
				cfg, err = config.LoadDefault()
			}
			if err != nil {
				return err
			}

			// Flags win over file and environment.
			if pluginPath != "" {
				cfg.PluginPath = pluginPath
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}

			log = logging.New(nil, cfg.LogLevel)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./flowscope.toml, then ~/.flowscope/config.toml)")
	cmd.PersistentFlags().StringVar(&pluginPath, "plugin-path", "", "colon-separated plugin search directories")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newPluginsCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
