package root

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wandb/lovely-chart/cmd/lovely-chart/root/config"
	"github.com/wandb/lovely-chart/cmd/lovely-chart/root/inspect"
	"github.com/wandb/lovely-chart/cmd/lovely-chart/root/render"
	"github.com/wandb/lovely-chart/cmd/lovely-chart/root/version"
	"github.com/wandb/lovely-chart/cmd/lovely-chart/root/view"
)

func NewRootCmd(fs afero.Fs, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lovely-chart <command> <flags>",
		Short: "Interactive charts in the terminal",
		Long:  `Draw line, bar, area, step and pie charts in the terminal and explore them.`,
		Example: heredoc.Doc(`
			$ lovely-chart view followers.json
			$ lovely-chart render --width 100 --height 30 views.yaml
			$ lovely-chart inspect --format yaml views.yaml
		`),
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("theme", "", "Theme: day, night or auto")
	cmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	_ = v.BindPFlag("theme", cmd.PersistentFlags().Lookup("theme"))
	_ = v.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))

	cmd.AddCommand(view.NewViewCmd(fs, v))
	cmd.AddCommand(render.NewRenderCmd(fs, v))
	cmd.AddCommand(inspect.NewInspectCmd(fs))
	cmd.AddCommand(config.NewConfigCmd(fs))
	cmd.AddCommand(version.NewVersionCmd())

	return cmd
}
