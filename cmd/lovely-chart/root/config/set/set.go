package set

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/wandb/lovely-chart/internal/config"
)

func NewSetCmd(fs afero.Fs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long:  `Set a configuration value that will be persisted in the config file.`,
		Example: heredoc.Doc(`
			# Always use the night theme
			$ lovely-chart config set theme night

			# Fetch detailed data when zooming in
			$ lovely-chart config set zoom_source https://charts.example.com/zoom

			# Give the minimap more room
			$ lovely-chart config set layout.minimap_rows 5
		`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]

			path, _ := cmd.Flags().GetString("config")
			if path == "" {
				var err error
				if path, err = config.DefaultPath(); err != nil {
					return err
				}
			}

			// A fresh instance keeps --set overrides out of the file.
			v := config.New(fs)
			if exists, _ := afero.Exists(fs, path); exists {
				if err := config.ReadFile(v, fs, path); err != nil {
					return err
				}
			}

			if err := config.Set(v, path, key, value); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Successfully set %s = %s\n", key, value)
			return nil
		},
	}

	return cmd
}
