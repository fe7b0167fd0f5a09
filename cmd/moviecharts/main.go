// Command moviecharts prints the viewing dashboard for a date range, reading
// records from a running movielog server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"movielog-server/internal/charts"
	"movielog-server/internal/model"
)

type options struct {
	server    string
	start     string
	end       string
	year      int
	title     string
	threshold int
	asJSON    bool
	watch     time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:          "moviecharts",
		Short:        "Print viewing statistics for a date range",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cmd.OutOrStdout(), o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.server, "server", envOr("MOVIELOG_SERVER", "http://localhost:3000"), "movielog server base URL")
	f.StringVar(&o.start, "start", "", "first day, yyyy-MM-dd (default: January 1 of --year)")
	f.StringVar(&o.end, "end", "", "last day, yyyy-MM-dd (default: December 31 of --year)")
	f.IntVar(&o.year, "year", time.Now().Year(), "year used for missing bounds")
	f.StringVar(&o.title, "title", "", "only count titles containing this text")
	f.IntVar(&o.threshold, "threshold", charts.DefaultOtherThreshold, "categories with at most this many viewings fold into Other")
	f.BoolVar(&o.asJSON, "json", false, "print the dashboard as JSON")
	f.DurationVar(&o.watch, "watch", 0, "reload and reprint at this interval")
	return cmd
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (o options) filter() (charts.Filter, error) {
	start, end := model.YearRange(o.year)
	if o.start != "" {
		d, err := model.ParseISODate(o.start)
		if err != nil {
			return charts.Filter{}, err
		}
		start = d
	}
	if o.end != "" {
		d, err := model.ParseISODate(o.end)
		if err != nil {
			return charts.Filter{}, err
		}
		end = d
	}
	if end.Before(start) {
		return charts.Filter{}, fmt.Errorf("--end %s is before --start %s", end, start)
	}
	return charts.Filter{Start: start, End: end, Title: o.title}, nil
}

func run(ctx context.Context, out io.Writer, o options) error {
	if o.threshold < 0 {
		return errors.New("--threshold must not be negative")
	}
	f, err := o.filter()
	if err != nil {
		return err
	}
	opts := charts.DefaultOptions()
	opts.Threshold = o.threshold
	loader := charts.NewLoader(charts.NewHTTPSource(o.server), opts)
	defer loader.Close()

	show := func() error {
		d, err := loader.Load(ctx, f)
		if err != nil {
			return err
		}
		if o.asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(d)
		}
		return render(out, d)
	}
	if err := show(); err != nil || o.watch <= 0 {
		return err
	}

	t := time.NewTicker(o.watch)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if err := show(); err != nil && !errors.Is(err, charts.ErrStale) {
				fmt.Fprintln(os.Stderr, "reload failed:", err)
			}
		}
	}
}
