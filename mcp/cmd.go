package mcp

import (
	"github.com/ka2n/exo/config"
	"github.com/spf13/cobra"
)

// ConfigLoader builds the configuration for a command, including any flag
// overrides inherited from the root command
type ConfigLoader func(cmd *cobra.Command) (*config.Config, error)

// Command returns the MCP server command.
// version is reported to clients in the initialize handshake.
func Command(load ConfigLoader, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server",
		Long: `Serve the load_page tool over stdio.
The --render and --timeout flags set the defaults for every call.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			return NewServer(cfg, version).Run()
		},
	}
}
