package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"grapt/internal/config"
	"grapt/internal/influx"
	"grapt/internal/pipeline"
	"grapt/internal/server"
	"grapt/internal/series"
	"grapt/internal/watch"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve plots over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRenderer(*cfg)
			if err != nil {
				return err
			}
			var source *influx.Source
			if cfg.Influx.Enabled() {
				source, err = influx.New(cfg.Influx)
				if err != nil {
					return err
				}
				defer source.Close()
			} else {
				logrus.Info("No INFLUXDB_URL/INFLUXDB_BUCKET specified, /query is disabled")
			}
			return server.New(*cfg, r, source).ListenAndServe()
		},
	}
	cmd.Flags().StringVar(&cfg.HTTPPort, "port", cfg.HTTPPort, "HTTP port")
	return cmd
}

var errWatchStdin = errors.New("watch: stdin cannot be watched, name a file")

func noStdinArg(cmd *cobra.Command, args []string) error {
	if slices.Contains(args, "-") {
		return errWatchStdin
	}
	return nil
}

func newWatchCmd(cfg *config.Config) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch file...",
		Short: "Re-render whenever an input file changes",
		Args:  cobra.MatchAll(cobra.MinimumNArgs(1), noStdinArg),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watch.Run(ctx, args, debounce, func() error {
				return plotFiles(*cfg, args, nil, cmd.OutOrStdout(), true)
			})
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period before re-rendering")
	return cmd
}

func newQueryCmd(cfg *config.Config) *cobra.Command {
	var (
		sel   influx.Selector
		span  time.Duration
		end   string
		tags  map[string]string
		limit time.Duration
	)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Plot one field of an InfluxDB measurement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := pipeline.OptionsFromConfig(*cfg)
			if err != nil {
				return err
			}
			sel.Stop = time.Now()
			if end != "" {
				sel.Stop, err = time.Parse(time.RFC3339, end)
				if err != nil {
					return err
				}
			}
			sel.Start = sel.Stop.Add(-span)
			sel.Tags = tags

			source, err := influx.New(cfg.Influx)
			if err != nil {
				return err
			}
			defer source.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), limit)
			defer cancel()
			data, err := source.Series(ctx, sel)
			if err != nil {
				return err
			}
			plot, err := pipeline.Run(series.NewChain(data), opts)
			if err != nil {
				return err
			}
			return writePlot(*cfg, plot, cmd.OutOrStdout())
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&sel.Measurement, "measurement", "", "Measurement to read")
	flags.StringVar(&sel.Field, "field", "", "Field to plot")
	flags.DurationVar(&span, "range", 24*time.Hour, "How far back from --end to read")
	flags.StringVar(&end, "end", "", "End of the range, RFC3339 (default now)")
	flags.DurationVar(&sel.Every, "every", 0, "Average into windows of this length")
	flags.StringToStringVar(&tags, "tag", nil, "Tag filters, key=value")
	flags.DurationVar(&limit, "timeout", 30*time.Second, "Query timeout")
	cmd.MarkFlagRequired("measurement")
	cmd.MarkFlagRequired("field")
	return cmd
}
