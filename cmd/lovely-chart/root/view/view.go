package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wandb/lovely-chart/cmd/lovely-chart/root/setup"
	"github.com/wandb/lovely-chart/internal/chartdata"
	"github.com/wandb/lovely-chart/internal/filewatch"
	"github.com/wandb/lovely-chart/internal/lovelychart"
	"github.com/wandb/lovely-chart/internal/observability"
	"github.com/wandb/lovely-chart/internal/tui"
	"github.com/wandb/lovely-chart/internal/zoomsource"
)

func NewViewCmd(fs afero.Fs, v *viper.Viper) *cobra.Command {
	var (
		watch   bool
		logFile string
	)

	cmd := &cobra.Command{
		Use:   "view <file>",
		Short: "Explore a chart interactively",
		Long: heredoc.Doc(`
			Show a chart in the terminal. Hover labels with the mouse or
			tab through them, drag the minimap to change the range and
			press enter to zoom into a label.

			Charts are read from JSON or YAML files.
		`),
		Example: heredoc.Doc(`
			# Explore a chart
			$ lovely-chart view followers.json

			# Redraw the chart whenever the file changes
			$ lovely-chart view --watch followers.json

			# Fetch detailed data from a server when zooming in
			$ lovely-chart view --zoom-source https://charts.example.com/zoom followers.json

			# Serve Prometheus metrics while viewing
			$ lovely-chart view --metrics :9090 followers.json
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			logOut := io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
				if err != nil {
					return fmt.Errorf("opening log file: %w", err)
				}
				defer f.Close()
				logOut = f
			}

			s, err := setup.Load(v, logOut)
			if err != nil {
				return err
			}
			defer s.Close()

			raw, err := chartdata.ParseFile(fs, path)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			registry := prometheus.NewRegistry()
			registry.MustRegister(collectors.NewGoCollector())

			opts := append(s.ChartOptions(), lovelychart.WithRegisterer(registry))
			if s.Config.ZoomSource != "" {
				source, err := zoomsource.Open(ctx, s.Config.ZoomSource, s.Logger)
				if err != nil {
					return err
				}
				opts = append(opts, lovelychart.WithDataSource(source))
			}

			if s.Config.Metrics != "" {
				stop := serveMetrics(s.Config.Metrics, registry, s.Logger)
				defer stop()
			}

			model, err := tui.NewModel(tui.Params{
				Raw:         raw,
				Logger:      s.Logger,
				Options:     opts,
				Context:     ctx,
				MinimapRows: s.Config.Layout.MinimapRows,
			})
			if err != nil {
				return err
			}

			program := tea.NewProgram(model,
				tea.WithAltScreen(),
				tea.WithMouseAllMotion(),
				tea.WithContext(ctx),
			)

			if watch {
				watcher, err := filewatch.Start(filewatch.Params{
					Logger: s.Logger,
					Path:   path,
					OnChart: func(raw *chartdata.RawChart) {
						program.Send(tui.ChartReloadedMsg{Raw: raw})
					},
				})
				if err != nil {
					return err
				}
				defer watcher.Finish()
			}

			_, err = program.Run()
			if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reload the chart when the file changes")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to this file")
	cmd.Flags().String("zoom-source", "", "URL detailed data is fetched from when zooming in")
	cmd.Flags().String("metrics", "", "Address to serve Prometheus metrics on")
	cmd.Flags().Bool("animations", true, "Animate transitions")
	_ = v.BindPFlag("zoom_source", cmd.Flags().Lookup("zoom-source"))
	_ = v.BindPFlag("metrics", cmd.Flags().Lookup("metrics"))
	_ = v.BindPFlag("animations", cmd.Flags().Lookup("animations"))

	return cmd
}

// serveMetrics serves the registry until the returned function is
// called.
func serveMetrics(
	addr string,
	registry *prometheus.Registry,
	logger *observability.CoreLogger,
) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.CaptureError(fmt.Errorf("view: metrics server: %v", err))
		}
	}()
	logger.Info("view: serving metrics", "addr", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}
