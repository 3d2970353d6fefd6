// Command grapt plots numeric samples read from files or stdin to a PNG.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"grapt/internal/config"
	"grapt/internal/ingest"
	"grapt/internal/pipeline"
	"grapt/internal/render"
	"grapt/internal/series"
)

const version = "0.1.1"

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		logrus.Fatalf("Invalid environment: %v", err)
	}
	if err := newRootCmd(&cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	var logBase string
	if cfg.LogBase != 0 {
		logBase = fmt.Sprint(cfg.LogBase)
	}

	rootCmd := &cobra.Command{
		Use:   "grapt [file...]",
		Short: "Plot numeric samples to a PNG",
		Long: `grapt reads lines of one or two numbers (y, or x y) from each file, or
stdin when none are given, and draws every input as one line on a PNG.`,
		Version:       version,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogging(cfg.LogLevel); err != nil {
				return err
			}
			if cmd.Flags().Changed("log-base") {
				base, err := series.ParseBase(logBase)
				if err != nil {
					return err
				}
				cfg.LogBase = base
			}
			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return plotFiles(*cfg, args, cmd.InOrStdin(), cmd.OutOrStdout(), false)
		},
	}
	rootCmd.SetVersionTemplate("{{.Name}} version {{.Version}}\n")

	flags := rootCmd.PersistentFlags()
	flags.IntVarP(&cfg.Width, "width", "w", cfg.Width, "Width of canvas")
	flags.IntVarP(&cfg.Height, "height", "H", cfg.Height, "Height of canvas")
	flags.IntVarP(&cfg.Padding, "padding", "p", cfg.Padding, "Pixels reserved on every edge")
	flags.StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output filename, - for stdout")
	flags.StringVar(&cfg.Format, "format", cfg.Format, "Output format: png or csv")
	flags.StringVar(&logBase, "log-base", logBase, "Log-scale Y with this base (e for natural log)")
	flags.IntVar(&cfg.Smooth, "smooth", cfg.Smooth, "Overlay a block average of this many points per series")
	flags.IntVar(&cfg.MaxPoints, "max-points", cfg.MaxPoints, "Maximum points per series (0 for no limit)")
	flags.BoolVar(&cfg.Labels, "labels", cfg.Labels, "Draw extent labels")
	flags.StringVar(&cfg.FontPath, "font", cfg.FontPath, "TrueType font for labels")
	flags.Float64Var(&cfg.FontSize, "font-size", cfg.FontSize, "Label font size in points")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(newServeCmd(cfg), newWatchCmd(cfg), newQueryCmd(cfg))
	return rootCmd
}

func setupLogging(level string) error {
	l, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logrus.SetLevel(l)
	return nil
}

func newRenderer(cfg config.Config) (*render.Renderer, error) {
	face, err := render.LoadFace(cfg.FontPath, cfg.FontSize)
	if err != nil {
		return nil, err
	}
	opts := render.DefaultOptions()
	opts.Labels = cfg.Labels
	opts.Face = face
	return render.New(opts), nil
}

// plotFiles reads each path (stdin for none or "-") as one series and writes
// the plot. wholeLines holds back a trailing unterminated line.
func plotFiles(cfg config.Config, paths []string, stdin io.Reader, stdout io.Writer, wholeLines bool) error {
	opts, err := pipeline.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	inputs, closeAll, err := openInputs(paths, stdin)
	if err != nil {
		return err
	}
	defer closeAll()
	if wholeLines {
		for i := range inputs {
			inputs[i].Reader = ingest.NewLineReader(inputs[i].Reader)
		}
	}

	plot, err := pipeline.Build(inputs, opts)
	if err != nil {
		return err
	}
	return writePlot(cfg, plot, stdout)
}

func openInputs(paths []string, stdin io.Reader) ([]ingest.Input, func(), error) {
	if len(paths) == 0 {
		paths = []string{"-"}
	}
	var files []*os.File
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}
	inputs := make([]ingest.Input, 0, len(paths))
	for _, p := range paths {
		if p == "-" {
			inputs = append(inputs, ingest.Input{Name: "stdin", Reader: stdin})
			continue
		}
		f, err := os.Open(p)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		files = append(files, f)
		inputs = append(inputs, ingest.Input{Name: p, Reader: f})
	}
	return inputs, closeAll, nil
}

func writePlot(cfg config.Config, plot render.Plot, stdout io.Writer) error {
	if cfg.Format == "csv" {
		if cfg.Output == "-" || cfg.Output == config.DefaultOutput {
			return render.WriteCSV(stdout, plot.Chain)
		}
		f, err := os.Create(cfg.Output)
		if err != nil {
			return err
		}
		if err := render.WriteCSV(f, plot.Chain); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}

	r, err := newRenderer(cfg)
	if err != nil {
		return err
	}
	if cfg.Output == "-" {
		return r.WritePNG(stdout, plot)
	}
	return r.SavePNG(cfg.Output, plot)
}
