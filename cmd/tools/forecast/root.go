package main

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/crimecast/crimecast/internal/config"
	"github.com/crimecast/crimecast/internal/dataset"
	"github.com/crimecast/crimecast/internal/logging"
)

// options holds the persistent flags shared by all subcommands
type options struct {
	configPath string
	dataPath   string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast yearly crime counts with ARIMA and SARIMA",
		Long: `forecast loads the crime-count CSV, fits ARIMA(5,1,0) and
SARIMA(1,1,1)(1,1,1,12) to one jurisdiction and category and prints the
observed series next to both forecasts.`,
		Version:       fmt.Sprintf("%s (commit %s)", Version, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file path")
	cmd.PersistentFlags().StringVar(&opts.dataPath, "data", "", "dataset CSV (overrides dataset.path)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log fitting progress to stderr")

	cmd.AddCommand(newRunCmd(opts))
	cmd.AddCommand(newListCmd(opts))
	cmd.AddCommand(newWatchCmd(opts))

	return cmd
}

// loadConfig reads the config file, if any, and applies flag overrides
func (o *options) loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if o.dataPath != "" {
		cfg.Dataset.Path = o.dataPath
	}
	return cfg, nil
}

func (o *options) loadStore(cfg *config.Config) (*dataset.Store, error) {
	if cfg.Dataset.Path == "" {
		return nil, fmt.Errorf("no dataset: pass --data or set dataset.path")
	}
	return dataset.LoadFile(cfg.Dataset.Path, dataset.ColumnsFromConfig(cfg.Dataset.Columns))
}

// logger writes warnings to w, or everything when --verbose is set
func (o *options) logger(w io.Writer) *logging.Logger {
	level := zerolog.WarnLevel
	if o.verbose {
		level = zerolog.DebugLevel
	}
	return logging.NewWithWriter(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}, level)
}
