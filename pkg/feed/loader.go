package feed

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/MobilityData/gtfs-validator-sub014/pkg/input"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/logger"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/notice"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/schema"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/table"
)

// UnknownFile is reported for files the registry does not declare.
var UnknownFile = notice.Define("unknown_file", notice.Info)

// Loader loads feeds.
type Loader struct {
	registry *schema.Registry
	tables   *table.Loader
	threads  int
	logger   *zap.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithThreads loads up to n tables at a time.
func WithThreads(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.threads = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(l *Loader) { l.logger = log }
}

// NewLoader creates a feed loader for registry.
func NewLoader(registry *schema.Registry, tables *table.Loader, opts ...Option) *Loader {
	l := &Loader{registry: registry, tables: tables, threads: 1}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logger.Get()
	}
	return l
}

// Load reads every declared table of in. Load-time findings go to notices.
// The returned error is non-nil only when a listed file cannot be read.
func (l *Loader) Load(ctx context.Context, in input.Input, notices *notice.Container) (*Feed, error) {
	log := logger.WithContext(ctx, l.logger)
	start := time.Now()

	present := make(map[string]bool)
	for _, name := range in.Filenames() {
		if _, ok := l.registry.Table(name); ok {
			present[name] = true
			continue
		}
		notices.Add(UnknownFile.New(notice.F(notice.FieldFilename, name)))
	}

	schemas := l.registry.Tables()
	containers := make([]*table.Container, len(schemas))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.threads)
	for i, t := range schemas {
		if !present[t.Filename] {
			containers[i] = l.tables.Missing(t, notices)
			continue
		}
		i, t := i, t
		g.Go(func() error {
			c, err := l.loadTable(gctx, in, t, notices)
			containers[i] = c
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	f := New(l.registry, containers...)
	log.Info("feed loaded",
		zap.Int("tables", len(present)),
		zap.Int("rows", f.Rows()),
		zap.Duration("duration", time.Since(start)))
	return f, nil
}

func (l *Loader) loadTable(ctx context.Context, in input.Input, t *schema.TableSchema, notices *notice.Container) (c *table.Container, err error) {
	defer func() {
		if r := recover(); r != nil {
			notices.AddSystemError(notice.RuntimeExceptionInLoader.New(
				notice.F(notice.FieldFilename, t.Filename),
				notice.F("exception", "panic"),
				notice.F("message", fmt.Sprint(r))))
			l.logger.Error("table loader crashed",
				zap.String("table", t.Filename),
				zap.Any("panic", r))
			c, err = table.NewEmpty(t, table.StatusUnparsableHeaders), nil
		}
	}()

	rc, err := in.Open(t.Filename)
	if err != nil {
		return nil, err
	}
	defer closeQuietly(rc)
	return l.tables.Load(ctx, t, rc, notices), nil
}

func closeQuietly(c io.Closer) { _ = c.Close() }
