// Package table loads one GTFS file into a columnar store, checking its
// header and every row against the table schema.
package table

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/MobilityData/gtfs-validator-sub014/pkg/columnar"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/logger"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/metrics"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/notice"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/observability"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/parse"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/pool"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/schema"
)

// DefaultProgressInterval is the number of rows between progress logs.
const DefaultProgressInterval = 200_000

const utf8BOM = "\ufeff"

// Loader loads tables. A Loader is safe for concurrent use on distinct
// files.
type Loader struct {
	parser           *parse.Parser
	logger           *zap.Logger
	metrics          *metrics.Collector
	intern           *pool.StringInternPool
	progressInterval int
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(ld *Loader) { ld.logger = l }
}

// WithMetrics records row counts and statuses in c.
func WithMetrics(c *metrics.Collector) Option {
	return func(ld *Loader) { ld.metrics = c }
}

// WithInternPool shares ID strings through p.
func WithInternPool(p *pool.StringInternPool) Option {
	return func(ld *Loader) { ld.intern = p }
}

// WithProgressInterval logs progress every n rows.
func WithProgressInterval(n int) Option {
	return func(ld *Loader) {
		if n > 0 {
			ld.progressInterval = n
		}
	}
}

// NewLoader creates a loader that parses cells with parser.
func NewLoader(parser *parse.Parser, opts ...Option) *Loader {
	l := &Loader{
		parser:           parser,
		progressInterval: DefaultProgressInterval,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logger.Get()
	}
	if l.intern == nil {
		l.intern = pool.NewStringInternPool(0)
	}
	return l
}

// Missing returns the container of a table absent from the feed: status
// StatusMissingRequired for a required table, StatusEmpty otherwise.
func (l *Loader) Missing(t *schema.TableSchema, notices *notice.Container) *Container {
	status := StatusEmpty
	switch {
	case t.Required:
		notices.Add(MissingRequiredFile.New(notice.F(notice.FieldFilename, t.Filename)))
		status = StatusMissingRequired
	case t.Recommended:
		notices.Add(MissingRecommendedFile.New(notice.F(notice.FieldFilename, t.Filename)))
	}
	l.metrics.TableStatus(t.Filename, int(status))
	return newContainer(t, status, false)
}

// Load reads the CSV content of t from r. Findings are added to notices;
// the returned container is never nil.
func (l *Loader) Load(ctx context.Context, t *schema.TableSchema, r io.Reader, notices *notice.Container) *Container {
	ctx = logger.WithTable(ctx, t.Filename)
	log := logger.WithContext(ctx, l.logger)
	_, span := observability.StartSpan(ctx, "table.load", observability.AttrTable.String(t.Filename))

	c := newContainer(t, StatusNoFile, true, columnar.WithInternPool(l.intern))
	ld := &load{
		Loader:  l,
		table:   t,
		c:       c,
		notices: notices,
		log:     log,
	}
	err := ld.run(r)

	c.store.TrimToSize()
	l.metrics.RowsLoaded(t.Filename, c.Len())
	l.metrics.TableStatus(t.Filename, int(c.status))
	span.SetAttributes(
		observability.AttrRows.Int(c.Len()),
		observability.AttrStatus.String(c.status.String()),
	)
	elapsed := span.End(err)

	log.Debug("table loaded",
		zap.String("status", c.status.String()),
		zap.Int("rows", c.Len()),
		zap.Duration("duration", elapsed),
		zap.Int64("memory_bytes", c.store.MemoryUsage()),
		zap.Float64("bytes_per_record", c.store.MemoryPerRecord()))
	return c
}

// load is the state of one Load call.
type load struct {
	*Loader
	table   *schema.TableSchema
	c       *Container
	notices *notice.Container
	log     *zap.Logger

	// columns maps a schema field index to its CSV column, -1 when absent
	columns []int
	header  []string
	builder *columnar.Builder
	keys    map[string]int
}

func (ld *load) filename() notice.Field {
	return notice.F(notice.FieldFilename, ld.table.Filename)
}

func (ld *load) run(r io.Reader) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		ld.notices.Add(EmptyFile.New(ld.filename()))
		ld.c.status = StatusEmpty
		return nil
	}
	if err != nil {
		ld.c.status = StatusUnparsableHeaders
		return ld.readFailed(err, 0)
	}
	if !ld.parseHeader(header) {
		ld.c.status = StatusUnparsableHeaders
		return nil
	}
	ld.c.status = StatusParsableHeaders

	ld.builder = columnar.NewBuilder(ld.c.store)
	if pk := ld.table.PrimaryKey(); len(pk) > 0 {
		ld.keys = make(map[string]int)
	}

	throughput := metrics.NewThroughputTracker(ld.table.Filename)
	rowNumber := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNumber++
		if err != nil {
			return ld.readFailed(err, rowNumber)
		}
		ld.processRow(record, rowNumber)

		throughput.Increment(1)
		if rowNumber%ld.progressInterval == 0 {
			ld.log.Info("loading progress",
				zap.Int("rows", rowNumber),
				zap.Float64("rows_per_second", throughput.GetAndReset()))
		}
	}
	ld.c.status = StatusParsableHeadersAndRows
	return nil
}

// readFailed reports a malformed record as a notice and any other read
// error as a system error.
func (ld *load) readFailed(err error, rowNumber int) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		ld.notices.Add(CSVParsingFailed.New(
			ld.filename(),
			notice.F(notice.FieldCSVRowNumber, rowNumber),
			notice.F("message", perr.Err.Error())))
		ld.log.Warn("malformed csv record", zap.Int("row", rowNumber), zap.Error(err))
		return err
	}
	ld.notices.AddSystemError(notice.IOError.New(
		ld.filename(),
		notice.F("exception", "read"),
		notice.F("message", err.Error())))
	ld.log.Error("failed to read table", zap.Error(err))
	return err
}

// parseHeader maps the header onto the schema. It returns false when the
// header cannot be used at all.
func (ld *load) parseHeader(header []string) bool {
	header = append([]string(nil), header...)
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	if len(header) == 1 && strings.TrimSpace(header[0]) == "" {
		ld.notices.Add(EmptyFile.New(ld.filename()))
		return false
	}
	ld.header = header

	ld.columns = make([]int, len(ld.table.Fields))
	for i := range ld.columns {
		ld.columns[i] = -1
	}

	ok := true
	seen := make(map[string]int, len(header))
	for col, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			ld.notices.Add(EmptyColumnName.New(ld.filename(), notice.F("index", col)))
			ok = false
			continue
		}
		if first, dup := seen[name]; dup {
			ld.notices.Add(DuplicatedColumn.New(
				ld.filename(),
				notice.F(notice.FieldName, name),
				notice.F("firstIndex", first),
				notice.F("secondIndex", col)))
			ok = false
			continue
		}
		seen[name] = col
		ld.c.columns[name] = true

		field, known := ld.table.FieldIndex(name)
		if !known {
			ld.notices.Add(UnknownColumn.New(
				ld.filename(),
				notice.F(notice.FieldName, name),
				notice.F("index", col)))
			continue
		}
		ld.columns[field] = col
	}
	if !ok {
		return false
	}

	for i := range ld.table.Fields {
		f := &ld.table.Fields[i]
		if ld.columns[i] >= 0 {
			continue
		}
		switch {
		case f.Required:
			ld.notices.Add(MissingRequiredColumn.New(ld.filename(), notice.F(notice.FieldName, f.Name)))
		case f.Recommended:
			ld.notices.Add(MissingRecommendedColumn.New(ld.filename(), notice.F(notice.FieldName, f.Name)))
		}
	}
	return true
}

func (ld *load) processRow(record []string, rowNumber int) {
	if len(record) != len(ld.header) {
		ld.notices.Add(InvalidRowLength.New(
			ld.filename(),
			notice.F(notice.FieldCSVRowNumber, rowNumber),
			notice.F("rowLength", len(record)),
			notice.F("headerCount", len(ld.header))))
		return
	}

	b := ld.builder
	b.SetCSVRowNumber(rowNumber)
	buildable := true
	for i := range ld.table.Fields {
		col := ld.columns[i]
		if col < 0 {
			continue
		}
		f := &ld.table.Fields[i]
		raw := record[col]

		fatal := false
		v, present := ld.parser.Parse(raw, f, func(issue parse.Issue) {
			fatal = fatal || issue.Fatal
			ctx := make([]notice.Field, 0, 4+len(issue.Extra))
			ctx = append(ctx,
				ld.filename(),
				notice.F(notice.FieldCSVRowNumber, rowNumber),
				notice.F(notice.FieldName, f.Name),
				notice.F(notice.FieldValue, raw))
			ctx = append(ctx, issue.Extra...)
			ld.notices.Add(issue.Def.New(ctx...))
		})

		if !present {
			if f.Required {
				if !fatal {
					ld.notices.Add(MissingRequiredValue.New(
						ld.filename(),
						notice.F(notice.FieldCSVRowNumber, rowNumber),
						notice.F(notice.FieldName, f.Name)))
				}
				buildable = false
			} else if f.Recommended && !fatal {
				ld.notices.Add(MissingRecommendedField.New(
					ld.filename(),
					notice.F(notice.FieldCSVRowNumber, rowNumber),
					notice.F(notice.FieldName, f.Name)))
			}
			continue
		}

		switch f.Type.Kind() {
		case schema.KindInt:
			b.SetInt(i, v.Int)
		case schema.KindFloat:
			b.SetFloat(i, v.Float)
		default:
			b.SetString(i, v.Str)
		}
	}

	if !buildable {
		b.Clear()
		return
	}
	e := b.Build()
	ld.checkKey(e, rowNumber)
}

// checkKey reports a second row with the same primary key. Both rows stay
// stored.
func (ld *load) checkKey(e columnar.Entity, rowNumber int) {
	if ld.keys == nil {
		return
	}
	pk := ld.table.PrimaryKey()
	parts := make([]string, len(pk))
	for i, field := range pk {
		parts[i] = keyPart(e, ld.table.Field(field), field)
	}
	key := strings.Join(parts, "\x00")
	prev, dup := ld.keys[key]
	if !dup {
		ld.keys[key] = rowNumber
		return
	}
	ctx := []notice.Field{
		ld.filename(),
		notice.F(notice.FieldCSVRowNumber, rowNumber),
		notice.F("prevCsvRowNumber", prev),
	}
	for i, field := range pk {
		n := strconv.Itoa(i + 1)
		ctx = append(ctx,
			notice.F("fieldName"+n, ld.table.Field(field).Name),
			notice.F("fieldValue"+n, parts[i]))
	}
	ld.notices.Add(DuplicateKey.New(ctx...))
}

func keyPart(e columnar.Entity, f *schema.FieldSchema, field int) string {
	switch f.Type {
	case schema.TypeDate:
		if d, ok := e.Date(field); ok {
			return d.String()
		}
	case schema.TypeTime:
		if t, ok := e.Time(field); ok {
			return t.String()
		}
	}
	switch f.Type.Kind() {
	case schema.KindInt:
		if v, ok := e.Int(field); ok {
			return strconv.FormatInt(int64(v), 10)
		}
		return ""
	case schema.KindFloat:
		if v, ok := e.Float(field); ok {
			return strconv.FormatFloat(v, 'g', -1, 64)
		}
		return ""
	}
	return e.String(field)
}
