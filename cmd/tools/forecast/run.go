package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/crimecast/crimecast/internal/queue"
	"github.com/crimecast/crimecast/internal/services"
)

// errAllFailed makes the command exit non-zero after the failures have
// already been printed
var errAllFailed = errors.New("every model family failed")

type runOptions struct {
	jurisdiction string
	category     string
	horizon      int
	jsonOut      bool
	sequential   bool
}

func newRunCmd(opts *options) *cobra.Command {
	ro := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fit both families to one selection and print the forecasts",
		Example: `  forecast run --data crimes.csv --jurisdiction Delhi --category Theft
  forecast run -c configs/config.yaml -j Assam -k Burglary --horizon 10 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runForecast(ctx, opts, ro, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&ro.jurisdiction, "jurisdiction", "j", "", "jurisdiction (STATE/UT)")
	cmd.Flags().StringVarP(&ro.category, "category", "k", "", "crime category")
	cmd.Flags().IntVarP(&ro.horizon, "horizon", "n", 0, "years to forecast (default from config)")
	cmd.Flags().BoolVar(&ro.jsonOut, "json", false, "print the response as JSON")
	cmd.Flags().BoolVar(&ro.sequential, "sequential", false, "fit the families one after the other")
	_ = cmd.MarkFlagRequired("jurisdiction")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func runForecast(ctx context.Context, opts *options, ro *runOptions, out, errOut io.Writer) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if ro.sequential {
		cfg.Forecast.Concurrent = false
	}

	store, err := opts.loadStore(cfg)
	if err != nil {
		return err
	}

	publisher, err := queue.NewPublisher(cfg.Events)
	if err != nil {
		return fmt.Errorf("connect event backend: %w", err)
	}
	defer func() { _ = publisher.Close() }()

	svc := services.NewForecastService(opts.logger(errOut), store, cfg.Forecast, nil, publisher, nil).
		WithSubject(cfg.Events.Subject)

	horizon := ro.horizon
	if horizon == 0 {
		horizon = cfg.Forecast.DefaultHorizon
	}

	resp, err := svc.Execute(ctx, &services.ForecastRequest{
		Jurisdiction: ro.jurisdiction,
		Category:     ro.category,
		Horizon:      horizon,
	})
	if err != nil {
		return err
	}

	if ro.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return err
		}
	} else {
		printResponse(out, resp)
	}

	if resp.AllFailed() {
		return errAllFailed
	}
	return nil
}

func printResponse(out io.Writer, resp *services.ForecastResponse) {
	fmt.Fprintf(out, "%s / %s: %d observations, horizon %d, dataset %s\n",
		resp.Jurisdiction, resp.Category, len(resp.Observed), resp.Horizon, resp.DatasetVersion)
	if len(resp.Gaps) > 0 {
		fmt.Fprintf(out, "missing years: %v\n", resp.Gaps)
	}

	fmt.Fprintln(out, "\nObserved")
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "YEAR\tCOUNT")
	for _, p := range resp.Observed {
		fmt.Fprintf(tw, "%d\t%.0f\n", p.Period, p.Value)
	}
	_ = tw.Flush()

	for _, f := range resp.Families {
		fmt.Fprintf(out, "\n%s\n", f.Model)
		if f.Failed() {
			fmt.Fprintf(out, "forecast unavailable: %s during %s: %s\n", f.Error.Code, f.Error.Stage, f.Error.Message)
			continue
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "YEAR\tFORECAST")
		for _, p := range f.Predictions {
			fmt.Fprintf(tw, "%d\t%.2f\n", p.Period, p.Value)
		}
		_ = tw.Flush()
		if f.ModelInfo != nil {
			fmt.Fprintf(out, "log-likelihood %.3f, variance %.3f, %d iterations, %dms\n",
				f.ModelInfo.LogLikelihood, f.ModelInfo.Variance, f.ModelInfo.Iterations, f.DurationMs)
		}
	}
}
