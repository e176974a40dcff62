package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MobilityData/gtfs-validator-sub014/internal/pipeline"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/config"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/errors"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/json"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/logger"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/observability"
)

type validateFlags struct {
	configFile  string
	output      string
	noticesFile string
	traceFile   string
	threads     int
	country     string
	date        string
	maxSamples  int
	logLevel    string
	failOnError bool
}

func newValidateCommand() *cobra.Command {
	var f validateFlags
	cmd := &cobra.Command{
		Use:   "validate <feed>",
		Short: "Validate a feed directory or zip archive",
		Long: `Validate a GTFS feed and write the report as JSON.

Example:
  gtfs-validator validate feed.zip --threads 4 --country-code FR --output report.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0], &f)
		},
	}

	cmd.Flags().StringVarP(&f.configFile, "config", "c", "", "Path to a YAML configuration file")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Report file (default: stdout)")
	cmd.Flags().StringVar(&f.noticesFile, "notices-file", "", "Write every aggregated notice as JSON lines to this file")
	cmd.Flags().StringVar(&f.traceFile, "trace-file", "", "Write tracing spans to this file (enables tracing)")
	cmd.Flags().IntVarP(&f.threads, "threads", "t", 0, "Number of loaders and validators running at once")
	cmd.Flags().StringVar(&f.country, "country-code", "", "ISO 3166-1 alpha-2 country code used to parse phone numbers")
	cmd.Flags().StringVar(&f.date, "date", "", "Validation date as YYYY-MM-DD (default: today)")
	cmd.Flags().IntVar(&f.maxSamples, "max-samples", 0, "Sample notices kept per notice code")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&f.failOnError, "fail-on-error", false, "Exit with status 2 when the report contains errors")
	return cmd
}

// applyFlags lets explicitly set flags win over the file and environment.
func applyFlags(cmd *cobra.Command, cfg *config.ValidationConfig, f *validateFlags) {
	flags := cmd.Flags()
	if flags.Changed("threads") {
		cfg.Threads = f.threads
	}
	if flags.Changed("country-code") {
		cfg.CountryCode = f.country
	}
	if flags.Changed("date") {
		cfg.ValidationDate = f.date
	}
	if flags.Changed("max-samples") {
		cfg.MaxSamplesPerCode = f.maxSamples
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if f.traceFile != "" {
		cfg.Observability.EnableTracing = true
	}
}

func runValidate(cmd *cobra.Command, location string, f *validateFlags) error {
	cfg, err := config.Load(f.configFile)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg, f)
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		Encoding:    cfg.Logging.Encoding,
		OutputPaths: cfg.Logging.OutputPaths,
	}); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to initialize logger")
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get().With(zap.String("component", "gtfs-validator-cli"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.Observability.EnableTracing {
		shutdown, closeTrace, err := startTracing(cfg, f.traceFile)
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(sctx); err != nil {
				log.Warn("failed to flush traces", zap.Error(err))
			}
			closeTrace()
		}()
	}

	p, err := pipeline.New(cfg, log)
	if err != nil {
		return err
	}
	result, err := p.RunPath(ctx, location)
	if err != nil {
		return err
	}

	if err := writeReport(cmd.OutOrStdout(), f.output, result); err != nil {
		return err
	}
	if f.noticesFile != "" {
		if err := writeNotices(f.noticesFile, result); err != nil {
			return err
		}
	}

	if f.failOnError && result.Report.Summary.Errors > 0 {
		return exitCode(exitFeedErrors)
	}
	return nil
}

func startTracing(cfg *config.ValidationConfig, traceFile string) (observability.ShutdownFunc, func(), error) {
	var (
		w         io.Writer = os.Stderr
		closeFile           = func() {}
	)
	if traceFile != "" {
		file, err := os.Create(traceFile) //nolint:gosec // G304: path comes from the CLI flag
		if err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrorTypeOutput, "failed to create trace file")
		}
		w, closeFile = file, func() { _ = file.Close() }
	}
	shutdown, err := observability.Init(observability.TracingConfig{
		ServiceName:    "gtfs-validator",
		ServiceVersion: version,
		SamplingRate:   cfg.Observability.TracingSampleRate,
		Writer:         w,
	})
	if err != nil {
		closeFile()
		return nil, nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to initialize tracing")
	}
	return shutdown, closeFile, nil
}

func writeReport(stdout io.Writer, output string, result *pipeline.Result) error {
	if output == "" {
		return json.MarshalToWriter(stdout, result, "  ")
	}
	file, err := os.Create(output) //nolint:gosec // G304: path comes from the CLI flag
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeOutput, "failed to create report file").
			WithDetail("path", output)
	}
	if err := json.MarshalToWriter(file, result, "  "); err != nil {
		_ = file.Close()
		return errors.Wrap(err, errors.ErrorTypeOutput, "failed to write report").
			WithDetail("path", output)
	}
	if err := file.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeOutput, "failed to close report file").
			WithDetail("path", output)
	}
	return nil
}

func writeNotices(path string, result *pipeline.Result) error {
	file, err := os.Create(path) //nolint:gosec // G304: path comes from the CLI flag
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeOutput, "failed to create notices file").
			WithDetail("path", path)
	}
	defer file.Close()

	enc := json.NewStreamingEncoder(file, false)
	for _, nr := range result.Report.Notices {
		if err := enc.Encode(nr); err != nil {
			return errors.Wrap(err, errors.ErrorTypeOutput, "failed to write notices").
				WithDetail("path", path)
		}
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeOutput, "failed to write notices").
			WithDetail("path", path)
	}
	return nil
}
