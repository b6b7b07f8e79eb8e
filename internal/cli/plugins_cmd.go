package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/flowscope/internal/plugin"
	"github.com/dshills/flowscope/internal/reporter"
)

func newPluginsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "Manage plugins",
	}
	cmd.AddCommand(newPluginsListCmd())
	return cmd
}

func newPluginsListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List compiled-in and discovered plugins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr := plugin.NewManager(plugin.WithReporter(reporter.New(log)))
			if err := mgr.SearchDynamicPlugins(cfg.PluginPath); err != nil {
				return err
			}
			if all {
				if err := mgr.ActivateDynamicPlugins(true); err != nil {
					return err
				}
			}

			for _, p := range mgr.ActivePlugins() {
				meta := p.Meta()
				kind := "builtin"
				if meta.Dynamic {
					kind = "dynamic"
				}
				fmt.Printf("%-30s %-10s %s\n", meta.String(), kind, meta.Description)
				for _, c := range p.Components() {
					fmt.Printf("    provides %s\n", c)
				}
			}
			for _, ip := range mgr.InactivePlugins() {
				fmt.Printf("%-30s %-10s (%s)\n", ip.Name, "inactive", ip.Dir)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "activate discovered plugins to show full metadata")
	return cmd
}
