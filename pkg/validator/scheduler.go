package validator

import (
	"context"
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/MobilityData/gtfs-validator-sub014/pkg/columnar"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/logger"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/metrics"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/notice"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/observability"
)

// DefaultGroupBatch is the number of row groups handled by one unit.
const DefaultGroupBatch = 512

// Scheduler runs rules on a bounded pool of goroutines.
type Scheduler struct {
	threads    int
	groupBatch int
	logger     *zap.Logger
	metrics    *metrics.Collector
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithThreads sets the pool size. One runs every unit sequentially.
func WithThreads(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.threads = n
		}
	}
}

// WithGroupBatch sets how many row groups a unit covers.
func WithGroupBatch(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.groupBatch = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithMetrics records unit latency and skipped rules in c.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Scheduler) { s.metrics = c }
}

// NewScheduler creates a scheduler.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{threads: 1, groupBatch: DefaultGroupBatch}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s
}

// unit is one independent piece of work.
type unit struct {
	validator Validator
	// run calls the rule through guard, once per call that may panic on its own
	run func(notices *notice.Container, guard guardFunc)
}

// guardFunc runs fn and turns a panic into a system error. fields are
// logged with the crash.
type guardFunc func(fn func(), fields ...zap.Field)

// Run executes validators against env. A rule whose required tables did not
// load is skipped. A panicking unit becomes a system error and does not
// stop the others. Run returns only the context error.
func (s *Scheduler) Run(ctx context.Context, env *Env, validators []Validator, notices *notice.Container) error {
	units := s.plan(env, validators)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.threads)
	for _, u := range units {
		if gctx.Err() != nil {
			break
		}
		u := u
		g.Go(func() error {
			s.execute(gctx, u, notices)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// plan splits validators into units. Grouping happens here, before any
// unit starts, so units only read the feed.
func (s *Scheduler) plan(env *Env, validators []Validator) []unit {
	var units []unit
	groups := make(map[[2]string]*columnar.Multimap)

	for _, v := range validators {
		if !env.Feed.Usable(v.Requires()...) {
			s.logger.Debug("validator skipped", zap.String("validator", v.Name()))
			s.metrics.ValidatorSkipped(v.Name())
			continue
		}

		switch rule := v.(type) {
		case FeedValidator:
			units = append(units, unit{validator: v, run: func(n *notice.Container, guard guardFunc) {
				guard(func() { rule.Validate(env, n) })
			}})

		case TableValidator:
			for _, name := range rule.Requires() {
				name := name
				c := env.Feed.Table(name)
				units = append(units, unit{validator: v, run: func(n *notice.Container, guard guardFunc) {
					guard(func() { rule.ValidateTable(env, c, n) }, zap.String("table", name))
				}})
			}

		case GroupValidator:
			filename, field := rule.GroupBy()
			key := [2]string{filename, field}
			mm, ok := groups[key]
			if !ok {
				mm = env.Feed.Table(filename).GroupBy(field)
				groups[key] = mm
			}
			keys := mm.Keys()
			for start := 0; start < len(keys); start += s.groupBatch {
				batch := keys[start:min(start+s.groupBatch, len(keys))]
				units = append(units, unit{validator: v, run: func(n *notice.Container, guard guardFunc) {
					for _, k := range batch {
						guard(func() { rule.ValidateGroup(env, k, mm.Get(k), n) }, zap.String("group", k))
					}
				}})
			}

		default:
			s.logger.Warn("validator has no known granularity", zap.String("validator", v.Name()))
		}
	}
	return units
}

func (s *Scheduler) execute(ctx context.Context, u unit, notices *notice.Container) {
	name := u.validator.Name()
	ctx = logger.WithValidator(ctx, name)
	_, span := observability.StartSpan(ctx, "validator.unit", observability.AttrValidator.String(name))

	var crash error
	defer func() {
		elapsed := span.End(crash)
		s.metrics.ObserveValidator(name, elapsed)
	}()

	// A panic ends only the call that raised it; the other groups of a
	// batch still run.
	guard := func(fn func(), fields ...zap.Field) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			err := fmt.Errorf("%v", r)
			if crash == nil {
				crash = err
			}
			notices.AddSystemError(notice.RuntimeExceptionInValidator.New(
				notice.F("validator", name),
				notice.F("exception", fmt.Sprintf("%T", r)),
				notice.F("message", err.Error())))
			s.metrics.SystemError(notice.RuntimeExceptionInValidator.Code)
			logger.WithContext(ctx, s.logger).Error("validator crashed",
				append(fields, zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))...)
		}()
		fn()
	}

	u.run(notices, guard)
}
