package root

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/cecobask/wizardlite/cmd"
	"github.com/cecobask/wizardlite/cmd/configure"
	"github.com/cecobask/wizardlite/cmd/locate"
	"github.com/cecobask/wizardlite/cmd/setup"
)

func NewCommand(ctx context.Context) *cobra.Command {
	command := &cobra.Command{
		Use:     cmd.CommandNameRoot,
		Aliases: []string{cmd.CommandAliasRoot},
		Short:   "wizardlite command line interface",
		PersistentPreRun: func(c *cobra.Command, args []string) {
			c.SetOut(os.Stdout)
			c.SetErr(os.Stderr)
		},
		RunE: func(c *cobra.Command, args []string) error {
			return c.Help()
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	command.SetHelpCommand(&cobra.Command{
		Hidden: true,
	})
	command.PersistentFlags().String(cmd.FlagNameConfigFile, cmd.ConfigFileDefault, "path to the config file")
	command.PersistentFlags().Bool(cmd.FlagNameVerbose, false, "enable debug logging")
	command.AddCommand(
		configure.NewCommand(ctx),
		locate.NewCommand(ctx),
		setup.NewCommand(ctx),
	)
	command.SetOut(os.Stdout)
	command.SetErr(os.Stderr)
	return command
}
