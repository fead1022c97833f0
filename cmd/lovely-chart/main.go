package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/wandb/lovely-chart/cmd/lovely-chart/root"
	"github.com/wandb/lovely-chart/internal/config"
)

var (
	cfgFile   string
	overrides []string

	fs  = afero.NewOsFs()
	v   = config.New(fs)
	cmd = root.NewRootCmd(fs, v)
)

func init() {
	cobra.OnInitialize(initConfig)
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default is $HOME/"+config.FileName+")")
	cmd.PersistentFlags().StringArrayVar(&overrides, "set", nil, "Override a setting for this run (key=value)")
}

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initConfig() {
	if err := config.ReadFile(v, fs, cfgFile); err != nil {
		fmt.Fprintln(os.Stderr, "Can't read config:", err)
		os.Exit(1)
	}
	if err := config.Override(v, overrides); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
