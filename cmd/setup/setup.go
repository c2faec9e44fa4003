package setup

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cecobask/wizardlite/cmd"
	"github.com/cecobask/wizardlite/internal/chromedriver"
	"github.com/cecobask/wizardlite/internal/config"
	"github.com/cecobask/wizardlite/internal/host"
	"github.com/cecobask/wizardlite/internal/logger"
)

func NewCommand(ctx context.Context) *cobra.Command {
	return newCommand(ctx, runtime.GOOS)
}

// newCommand checks goos before the config is loaded.
func newCommand(ctx context.Context, goos string) *cobra.Command {
	var (
		conf      *config.Config
		hostError error
	)
	command := &cobra.Command{
		Use:   cmd.CommandNameSetup,
		Short: "Download the chromedriver release matching the installed Chrome",
		PreRunE: func(c *cobra.Command, args []string) error {
			if hostError = chromedriver.CheckHost(goos); hostError != nil {
				return nil
			}
			confPath, err := c.Flags().GetString(cmd.FlagNameConfigFile)
			if err != nil {
				return err
			}
			if conf, err = config.New(confPath, true); err != nil {
				return fmt.Errorf("error loading config: %w", err)
			}
			if err = conf.Validate(); err != nil {
				return fmt.Errorf("error validating config: %w", err)
			}
			return nil
		},
		RunE: func(c *cobra.Command, args []string) error {
			if hostError != nil {
				skip(c, hostError)
				return nil
			}
			verbose, err := c.Flags().GetBool(cmd.FlagNameVerbose)
			if err != nil {
				return err
			}
			log := logger.NewLogger(c.ErrOrStderr(), verbose)
			proxy, err := chromedriver.NewProxy(*conf.Driver.Proxy)
			if err != nil {
				return fmt.Errorf("error parsing proxy: %w", err)
			}
			probe := host.NewProbe(host.NewPowerShell(), host.DefaultQueries(), log)
			acquirer := chromedriver.NewAcquirer(conf.Driver, chromedriver.NewFetcher(nil), probe, log)
			return run(ctx, c, acquirer, proxy)
		},
	}
	return command
}

type acquirer interface {
	Acquire(ctx context.Context, proxy *chromedriver.Proxy) (*chromedriver.Handle, error)
}

func run(ctx context.Context, c *cobra.Command, a acquirer, proxy *chromedriver.Proxy) error {
	handle, err := a.Acquire(ctx, proxy)
	if errors.Is(err, chromedriver.ErrUnsupportedHost) {
		skip(c, err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("error acquiring chromedriver: %w", err)
	}
	color.New(color.FgGreen).Fprintf(c.OutOrStdout(), "chromedriver %s for Chrome %s installed at %s\n", handle.Release, handle.Version, handle.Path)
	return nil
}

func skip(c *cobra.Command, err error) {
	color.New(color.FgYellow).Fprintf(c.ErrOrStderr(), "skipping driver setup: %v\n", err)
}
