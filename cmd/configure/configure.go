package configure

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cecobask/wizardlite/cmd"
	"github.com/cecobask/wizardlite/internal/config"
)

func NewCommand(ctx context.Context) *cobra.Command {
	var (
		conf     *config.Config
		confPath string
	)
	command := &cobra.Command{
		Use:   cmd.CommandNameConfigure,
		Short: "Edit driver, browser and locate settings",
		PreRunE: func(c *cobra.Command, args []string) (err error) {
			if confPath, err = c.Flags().GetString(cmd.FlagNameConfigFile); err != nil {
				return err
			}
			if conf, err = config.New(confPath, false); err != nil {
				return fmt.Errorf("error loading config: %w", err)
			}
			return nil
		},
		RunE: func(c *cobra.Command, args []string) error {
			opts := []tea.ProgramOption{
				tea.WithContext(ctx),
				tea.WithOutput(c.OutOrStdout()),
			}
			teaModel, err := config.NewTeaProgram(conf.Flatten(), opts...).Run()
			if err != nil {
				return fmt.Errorf("error initializing text-based user interface for the %s command: %w", cmd.CommandNameConfigure, err)
			}
			saved, err := save(teaModel.(*config.Model), confPath)
			if err != nil {
				return err
			}
			if saved {
				color.New(color.FgGreen).Fprintf(c.OutOrStdout(), "configuration written to %s\n", confPath)
			}
			return nil
		},
	}
	return command
}

// save validates the edited values and writes them to path. An aborted session saves nothing.
func save(model *config.Model, path string) (bool, error) {
	if err := model.Err(); err != nil {
		if errors.Is(err, config.ErrUserAborted) {
			return false, nil
		}
		return false, fmt.Errorf("error occurred in the config model: %w", err)
	}
	conf, err := config.NewFromMap(model.Config())
	if err != nil {
		return false, fmt.Errorf("error loading config from map: %w", err)
	}
	if err = conf.Validate(); err != nil {
		return false, fmt.Errorf("error validating config: %w", err)
	}
	if err = conf.WriteFile(path); err != nil {
		return false, fmt.Errorf("error writing config file: %w", err)
	}
	return true, nil
}
