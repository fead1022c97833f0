package config

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/wandb/lovely-chart/cmd/lovely-chart/root/config/set"
)

func NewConfigCmd(fs afero.Fs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config <command>",
		Short: "Configuration commands",
		Long:  `Commands for managing the lovely-chart configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(set.NewSetCmd(fs))

	return cmd
}
