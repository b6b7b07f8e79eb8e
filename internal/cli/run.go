package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/flowscope/internal/config"
	"github.com/dshills/flowscope/internal/plugin"
	"github.com/dshills/flowscope/internal/reporter"
)

func newRunCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the analysis host",
		Long:  "Discovers and activates plugins, walks the initialization phases, and processes events until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHost(watch)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "reload configuration on file change")
	return cmd
}

func runHost(watch bool) error {
	rep := reporter.New(log)
	mgr := plugin.NewManager(plugin.WithReporter(rep))

	if err := mgr.SearchDynamicPlugins(cfg.PluginPath); err != nil {
		return err
	}
	for _, name := range cfg.RequestedPlugins() {
		mgr.RequestPlugin(name)
	}
	if err := mgr.ActivateDynamicPlugins(!cfg.Bare); err != nil {
		return err
	}

	if err := mgr.InitPreScript(); err != nil {
		return err
	}
	if err := mgr.InitBifs(); err != nil {
		return err
	}
	if err := mgr.InitPostScript(); err != nil {
		return err
	}
	defer mgr.FinishPlugins()

	for _, p := range mgr.ActivePlugins() {
		log.Info().Str("plugin", p.Meta().String()).Msg("active")
	}

	var watcher *config.Watcher
	if watch && cfgFile != "" {
		var err error
		watcher, err = config.NewWatcher(cfgFile)
		if err != nil {
			return err
		}
		defer watcher.Close()
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	log.Info().Msg("host running, waiting for events")
	for {
		if watcher == nil {
			<-signals
			return nil
		}
		select {
		case <-signals:
			return nil
		case newCfg := <-watcher.Updates():
			// Only the log level is safe to change while dispatch is
			// live; plugin changes need a restart.
			log = log.SetLevel(newCfg.LogLevel)
			log.Info().Str("level", newCfg.LogLevel).Msg("configuration reloaded")
		case err := <-watcher.Errors():
			rep.Warning("config reload failed: %v", err)
		}
	}
}
