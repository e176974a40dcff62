// Package pipeline runs a complete validation: it loads the feed, runs the
// rules and resolves the collected notices into a report.
//
// # Overview
//
// A run goes through three stages:
//   - Load: every table is read into a columnar store
//   - Validate: the rules run on a bounded pool over the read-only feed
//   - Resolve: filters, severity overrides and aggregation build the report
//
// # Basic Usage
//
//	cfg := config.NewValidationConfig()
//	cfg.Threads = 4
//	p, err := pipeline.New(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	result, err := p.RunPath(ctx, "feed.zip")
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/MobilityData/gtfs-validator-sub014/pkg/config"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/errors"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/feed"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/input"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/logger"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/metrics"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/notice"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/observability"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/parse"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/pool"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/rules"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/schema"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/table"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/validator"
)

// Result is the outcome of one run.
type Result struct {
	RunID    string         `json:"runId"`
	Report   *notice.Report `json:"report"`
	Rows     int            `json:"rows"`
	Duration time.Duration  `json:"durationNs"`
	// Date is the validation date the rules used
	Date string `json:"validationDate"`
}

// Pipeline holds everything that is shared between runs.
type Pipeline struct {
	cfg        *config.ValidationConfig
	logger     *zap.Logger
	schemas    *schema.Registry
	validators *validator.Registry
	overrides  map[string]notice.Severity
	filters    []notice.Filter
	now        func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock sets the source of "now" used when no validation date is
// configured.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithFilters replaces the default notice filters.
func WithFilters(filters ...notice.Filter) Option {
	return func(p *Pipeline) { p.filters = filters }
}

// WithValidators replaces the rule registry.
func WithValidators(r *validator.Registry) Option {
	return func(p *Pipeline) { p.validators = r }
}

// DefaultFilters keeps a missing feed contact only when both the contact
// e-mail and the contact URL of the same feed_info.txt row are missing.
// A missing contact column counts as missing on every row.
func DefaultFilters() []notice.Filter {
	return notice.PairedMissingFields(table.MissingRecommendedField.Code, table.MissingRecommendedColumn.Code,
		schema.FeedInfo, "feed_contact_email", "feed_contact_url")
}

// New validates cfg and prepares a pipeline.
func New(cfg *config.ValidationConfig, log *zap.Logger, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.NewValidationConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Get()
	}

	p := &Pipeline{
		cfg:     cfg,
		logger:  log,
		schemas: schema.Default(),
		filters: DefaultFilters(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.validators == nil {
		p.validators = validator.NewRegistry()
		if err := rules.RegisterDefaults(p.validators, p.schemas); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to register rules")
		}
	}

	p.overrides = make(map[string]notice.Severity, len(cfg.SeverityOverrides))
	for code, name := range cfg.SeverityOverrides {
		s, err := notice.ParseSeverity(name)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid severity override").
				WithDetail("code", code)
		}
		p.overrides[code] = s
	}
	return p, nil
}

// RunPath validates the feed at a directory or zip archive.
func (p *Pipeline) RunPath(ctx context.Context, location string) (*Result, error) {
	in, err := input.Open(location)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	return p.Run(ctx, in)
}

// Run validates the feed read from in. The error is non-nil only for
// system failures; validation findings are in the report.
func (p *Pipeline) Run(ctx context.Context, in input.Input) (*Result, error) {
	runID := uuid.NewString()
	ctx = logger.WithRunID(ctx, runID)
	log := logger.WithContext(ctx, p.logger)
	ctx, span := observability.StartSpan(ctx, "validation.run", observability.AttrRunID.String(runID))

	result, err := p.run(ctx, log, runID, in)
	if result != nil {
		span.SetAttributes(
			observability.AttrRows.Int(result.Rows),
			attribute.Int("gtfs.errors", result.Report.Summary.Errors))
	}
	span.End(err)
	return result, err
}

func (p *Pipeline) run(ctx context.Context, log *zap.Logger, runID string, in input.Input) (*Result, error) {
	start := time.Now()
	collector := metrics.NewCollector(runID, p.cfg.Observability.EnableMetrics)
	notices := notice.NewContainer()
	date := p.cfg.Date(p.now())

	log.Info("validation started",
		zap.String("config", p.cfg.String()),
		zap.String("validation_date", date.Format(config.DateLayout)))

	loadTimer := metrics.NewTimer("load")
	tables := table.NewLoader(parse.NewParser(p.cfg.Region()),
		table.WithLogger(log),
		table.WithMetrics(collector),
		table.WithInternPool(pool.NewStringInternPool(0)))
	f, err := feed.NewLoader(p.schemas, tables,
		feed.WithThreads(p.cfg.Threads),
		feed.WithLogger(log)).Load(ctx, in, notices)
	if err != nil {
		collector.SystemError("input")
		return nil, err
	}
	log.Debug("feed loaded", zap.Duration(loadTimer.Name(), loadTimer.Stop()))
	p.memory(log, collector, "after load")

	validators, err := p.validators.Create()
	if err != nil {
		return nil, err
	}
	validateTimer := metrics.NewTimer("validate")
	env := validator.NewEnv(f, date, p.cfg.Region())
	scheduler := validator.NewScheduler(
		validator.WithThreads(p.cfg.Threads),
		validator.WithLogger(log),
		validator.WithMetrics(collector))
	if err := scheduler.Run(ctx, env, validators, notices); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "validation interrupted")
	}
	log.Debug("rules finished",
		zap.Int("validators", len(validators)),
		zap.Duration(validateTimer.Name(), validateTimer.Stop()))

	report := notice.Resolve(notices, notice.ResolveOptions{
		Filters:    p.filters,
		Overrides:  p.overrides,
		MaxSamples: p.cfg.MaxSamplesPerCode,
	})
	for _, nr := range report.Notices {
		collector.NoticesEmitted(nr.Code, nr.Severity.String(), nr.TotalNotices)
	}
	p.memory(log, collector, "after validation")

	result := &Result{
		RunID:    runID,
		Report:   report,
		Rows:     f.Rows(),
		Duration: time.Since(start),
		Date:     date.Format(config.DateLayout),
	}
	log.Info("validation finished",
		zap.Int("rows", result.Rows),
		zap.Int("errors", report.Summary.Errors),
		zap.Int("warnings", report.Summary.Warnings),
		zap.Int("infos", report.Summary.Infos),
		zap.Int("system_errors", len(report.SystemErrors)),
		zap.Duration("duration", result.Duration))
	if collector.Enabled() {
		log.Debug("run metrics", zap.Any("metrics", collector.GetAll()))
	}
	return result, nil
}

func (p *Pipeline) memory(log *zap.Logger, collector *metrics.Collector, stage string) {
	if !p.cfg.Observability.MemoryStats {
		return
	}
	snap := metrics.TakeMemorySnapshot()
	collector.Memory(snap)
	log.Info("memory usage", append([]zap.Field{zap.String("stage", stage)}, snap.Fields()...)...)
}
