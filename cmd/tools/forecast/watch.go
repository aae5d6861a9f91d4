package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/crimecast/crimecast/internal/queue"
	"github.com/crimecast/crimecast/internal/services"
)

func newWatchCmd(opts *options) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print forecast events published by the API",
		Long: `watch subscribes to the configured event subject and prints one line
per completed forecast. Only brokers with push delivery (nats, memory) can
be watched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			sub, err := queue.NewSubscriber(cfg.Events)
			if err != nil {
				return err
			}
			defer func() { _ = sub.Close() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return watchEvents(ctx, sub, cfg.Events.Subject, count, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&count, "count", 0, "exit after this many events (0 waits until interrupted)")
	return cmd
}

// watchEvents prints events of subject until ctx is done or count events
// have been printed
func watchEvents(ctx context.Context, sub queue.Subscriber, subject string, count int, out io.Writer) error {
	events := make(chan services.ForecastEvent, 16)

	err := sub.Subscribe(subject, func(data []byte) error {
		var event services.ForecastEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return fmt.Errorf("decode event: %w", err)
		}
		select {
		case events <- event:
		case <-ctx.Done():
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	defer func() { _ = sub.Unsubscribe(subject) }()

	seen := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-events:
			fmt.Fprintln(out, formatEvent(event))
			seen++
			if count > 0 && seen >= count {
				return nil
			}
		}
	}
}

func formatEvent(e services.ForecastEvent) string {
	families := make([]string, len(e.Families))
	for i, f := range e.Families {
		if f.Code != "" {
			families[i] = fmt.Sprintf("%s=%s(%s)", f.Family, f.Status, f.Code)
		} else {
			families[i] = fmt.Sprintf("%s=%s", f.Family, f.Status)
		}
	}
	return fmt.Sprintf("%s %s/%s h=%d %s %dms",
		e.CompletedAt.Format("2006-01-02T15:04:05Z"), e.Jurisdiction, e.Category, e.Horizon,
		strings.Join(families, " "), e.LatencyMs)
}
