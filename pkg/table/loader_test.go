package table

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MobilityData/gtfs-validator-sub014/pkg/notice"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/parse"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/schema"
)

func newTestLoader() *Loader {
	return NewLoader(parse.NewParser(""), WithLogger(zap.NewNop()))
}

func loadCSV(t *testing.T, ts *schema.TableSchema, content string) (*Container, *notice.Container) {
	t.Helper()
	notices := notice.NewContainer()
	c := newTestLoader().Load(context.Background(), ts, strings.NewReader(content), notices)
	require.NotNil(t, c)
	return c, notices
}

func codeTable() *schema.TableSchema {
	return schema.NewTable("codes.txt",
		schema.Field("id", schema.TypeID).Req().Key(),
		schema.Field("code", schema.TypeText),
		schema.Field("rank", schema.TypeInteger),
		schema.Field("contact", schema.TypeText).Rec(),
	)
}

func TestLoadBuildsEntities(t *testing.T) {
	ts := codeTable()
	c, notices := loadCSV(t, ts, "id,code\na,xyz\nb,efg\n")

	assert.Equal(t, StatusParsableHeadersAndRows, c.Status())
	require.Equal(t, 2, c.Len())

	id, code := ts.MustIndex("id"), ts.MustIndex("code")
	first, second := c.Entities().At(0), c.Entities().At(1)
	assert.Equal(t, "a", first.String(id))
	assert.Equal(t, "xyz", first.String(code))
	assert.Equal(t, 1, first.CSVRowNumber())
	assert.Equal(t, "b", second.String(id))
	assert.Equal(t, "efg", second.String(code))
	assert.Equal(t, 2, second.CSVRowNumber())

	_, rankSet := first.Int(ts.MustIndex("rank"))
	assert.False(t, rankSet)
	assert.Equal(t, []string{"missing_recommended_column"}, notices.Codes())
	assert.True(t, c.HasColumn("code"))
	assert.False(t, c.HasColumn("rank"))
}

func TestMissingRequiredValueSkipsRow(t *testing.T) {
	ts := schema.NewTable("calendar_years.txt",
		schema.Field("service_id", schema.TypeID).Req(),
		schema.Field("year", schema.TypeInteger),
	)
	c, notices := loadCSV(t, ts, "service_id,year\n,2024\n")

	assert.Equal(t, StatusParsableHeadersAndRows, c.Status())
	assert.Equal(t, 0, c.Len())
	all := notices.Notices()
	require.Len(t, all, 1)
	n := all[0]
	assert.Equal(t, "missing_required_value", n.Code())
	row, _ := n.Get(notice.FieldCSVRowNumber)
	assert.Equal(t, 1, row)
	field, _ := n.Get(notice.FieldName)
	assert.Equal(t, "service_id", field)
}

func TestInvalidOptionalFieldKeepsEntity(t *testing.T) {
	ts := codeTable()
	c, notices := loadCSV(t, ts, "id,code,rank,contact\na,x,high,me\n")

	require.Equal(t, 1, c.Len())
	_, ok := c.Entities().At(0).Int(ts.MustIndex("rank"))
	assert.False(t, ok)
	got := notices.ByCode("invalid_integer")
	require.Len(t, got, 1)
	v, _ := got[0].Get(notice.FieldValue)
	assert.Equal(t, "high", v)
}

func TestInvalidRequiredFieldSkipsRow(t *testing.T) {
	ts := schema.NewTable("levels.txt",
		schema.Field("level_id", schema.TypeID).Req(),
		schema.Field("level_index", schema.TypeFloat).Req(),
	)
	c, notices := loadCSV(t, ts, "level_id,level_index\nL1,abc\nL2,1.5\n")

	require.Equal(t, 1, c.Len())
	assert.Equal(t, 2, c.Entities().At(0).CSVRowNumber())
	assert.Equal(t, []string{"invalid_float"}, notices.Codes())
}

func TestMissingRecommendedField(t *testing.T) {
	c, notices := loadCSV(t, codeTable(), "id,contact\na,\nb,me\n")
	assert.Equal(t, 2, c.Len())
	got := notices.ByCode("missing_recommended_field")
	require.Len(t, got, 1)
	row, _ := got[0].Get(notice.FieldCSVRowNumber)
	assert.Equal(t, 1, row)
}

func TestHeaderProblems(t *testing.T) {
	tests := []struct {
		name    string
		content string
		status  Status
		codes   []string
	}{
		{"empty file", "", StatusEmpty, []string{"empty_file"}},
		{"duplicated column", "id,code,id\na,b,c\n", StatusUnparsableHeaders, []string{"duplicated_column"}},
		{"unknown column", "id,colour,contact\na,red,me\n", StatusParsableHeadersAndRows, []string{"unknown_column"}},
		{"empty column name", "id,,contact\na,x,me\n", StatusUnparsableHeaders, []string{"empty_column_name"}},
		{"missing required column", "code,contact\nx,me\n", StatusParsableHeadersAndRows, []string{"missing_required_column"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, notices := loadCSV(t, codeTable(), tt.content)
			assert.Equal(t, tt.status, c.Status())
			assert.Equal(t, tt.codes, notices.Codes())
			assert.True(t, c.Present())
			if !tt.status.Usable() {
				assert.Zero(t, c.Len())
			}
		})
	}
}

func TestMissingRequiredColumnStillLoadsRows(t *testing.T) {
	ts := codeTable()
	c, _ := loadCSV(t, ts, "code,contact\nx,me\ny,you\n")
	require.Equal(t, 2, c.Len())
	assert.False(t, c.Entities().At(0).Has(ts.MustIndex("id")))
	assert.Equal(t, "y", c.Entities().At(1).String(ts.MustIndex("code")))
}

func TestInvalidRowLengthSkipsRow(t *testing.T) {
	c, notices := loadCSV(t, codeTable(), "id,code,contact\na,x\nb,y,me\nc,z,me,extra\n")
	require.Equal(t, 1, c.Len())
	assert.Equal(t, 2, c.Entities().At(0).CSVRowNumber())
	assert.Len(t, notices.ByCode("invalid_row_length"), 2)
}

func TestDuplicateKeyKeepsBothRows(t *testing.T) {
	c, notices := loadCSV(t, codeTable(), "id,contact\na,me\nb,me\na,you\n")
	assert.Equal(t, 3, c.Len())
	got := notices.ByCode("duplicate_key")
	require.Len(t, got, 1)
	row, _ := got[0].Get(notice.FieldCSVRowNumber)
	prev, _ := got[0].Get("prevCsvRowNumber")
	value, _ := got[0].Get("fieldValue1")
	assert.Equal(t, 3, row)
	assert.Equal(t, 1, prev)
	assert.Equal(t, "a", value)
}

func TestCompositeKey(t *testing.T) {
	ts := schema.NewTable("stop_times.txt",
		schema.Field("trip_id", schema.TypeID).Req().Key(),
		schema.Field("stop_sequence", schema.TypeInteger).Req().Key(),
	)
	_, notices := loadCSV(t, ts, "trip_id,stop_sequence\nT1,1\nT1,2\nT2,1\nT1,01\n")
	got := notices.ByCode("duplicate_key")
	require.Len(t, got, 1)
	row, _ := got[0].Get(notice.FieldCSVRowNumber)
	assert.Equal(t, 4, row)
}

func TestMalformedRecordStopsLoading(t *testing.T) {
	c, notices := loadCSV(t, codeTable(), "id,contact\na,me\nb,x\"y\nc,me\n")
	assert.Equal(t, StatusParsableHeaders, c.Status())
	assert.False(t, c.Status().Usable())
	assert.Equal(t, 1, c.Len())
	got := notices.ByCode("csv_parsing_failed")
	require.Len(t, got, 1)
	row, _ := got[0].Get(notice.FieldCSVRowNumber)
	assert.Equal(t, 2, row)
}

func TestByteOrderMarkIsIgnored(t *testing.T) {
	ts := codeTable()
	c, notices := loadCSV(t, ts, "\ufeffid,contact\na,me\n")
	require.Equal(t, 1, c.Len())
	assert.Equal(t, "a", c.Entities().At(0).String(ts.MustIndex("id")))
	assert.Empty(t, notices.ByCode("unknown_column"))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestReadErrorIsSystemError(t *testing.T) {
	notices := notice.NewContainer()
	c := newTestLoader().Load(context.Background(), codeTable(), failingReader{}, notices)
	assert.Equal(t, StatusUnparsableHeaders, c.Status())
	sys := notices.SystemErrors()
	require.Len(t, sys, 1)
	assert.Equal(t, "i_o_error", sys[0].Code())
}

func TestMissing(t *testing.T) {
	notices := notice.NewContainer()
	l := newTestLoader()

	required := schema.NewTable("agency.txt", schema.Field("agency_id", schema.TypeID)).MarkRequired()
	recommended := schema.NewTable("feed_info.txt", schema.Field("feed_lang", schema.TypeLanguageCode)).MarkRecommended()
	optional := schema.NewTable("levels.txt", schema.Field("level_id", schema.TypeID))

	for _, tt := range []struct {
		table  *schema.TableSchema
		status Status
	}{
		{required, StatusMissingRequired},
		{recommended, StatusEmpty},
		{optional, StatusEmpty},
	} {
		c := l.Missing(tt.table, notices)
		assert.Equal(t, tt.status, c.Status(), tt.table.Filename)
		assert.False(t, c.Present(), tt.table.Filename)
		assert.Zero(t, c.Len())
	}
	assert.Equal(t, []string{"missing_recommended_file", "missing_required_file"}, notices.Codes())
}

func TestEmptyColumnNameRejectsHeader(t *testing.T) {
	c, notices := loadCSV(t, codeTable(), "id,,contact\na,x,me\nb,y,you\n")
	assert.Equal(t, StatusUnparsableHeaders, c.Status())
	assert.Zero(t, c.Len())
	got := notices.ByCode("empty_column_name")
	require.Len(t, got, 1)
	index, _ := got[0].Get("index")
	assert.Equal(t, 1, index)
	assert.Empty(t, notices.ByCode("missing_recommended_field"))
}

func TestEmptyFileIsPresent(t *testing.T) {
	c, _ := loadCSV(t, codeTable(), "")
	assert.Equal(t, StatusEmpty, c.Status())
	assert.True(t, c.Present())
}

func TestStatusOrdering(t *testing.T) {
	assert.True(t, StatusParsableHeaders < StatusParsableHeadersAndRows)
	assert.True(t, StatusParsableHeadersAndRows.Usable())
	assert.False(t, StatusUnparsableHeaders.Usable())
	assert.Equal(t, "missing_required", StatusMissingRequired.String())
}
