package feed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MobilityData/gtfs-validator-sub014/pkg/input"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/notice"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/parse"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/schema"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/table"
)

func minimalFeed() map[string]string {
	return map[string]string{
		"agency.txt":     "agency_id,agency_name,agency_url,agency_timezone\nA1,Metro,https://metro.example.com,Europe/Paris\n",
		"stops.txt":      "stop_id,stop_name,stop_lat,stop_lon\nS1,Central,48.85,2.35\nS2,North,48.86,2.35\n",
		"routes.txt":     "route_id,agency_id,route_short_name,route_type\nR1,A1,1,3\n",
		"trips.txt":      "route_id,service_id,trip_id\nR1,WK,T1\n",
		"stop_times.txt": "trip_id,arrival_time,departure_time,stop_id,stop_sequence\nT1,08:00:00,08:00:00,S1,1\nT1,08:10:00,08:10:00,S2,2\n",
		"calendar.txt":   "service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date\nWK,1,1,1,1,1,0,0,20240101,20241231\n",
		"notes.txt":      "whatever\n",
	}
}

func loadFeed(t *testing.T, files map[string]string, threads int) (*Feed, *notice.Container) {
	t.Helper()
	notices := notice.NewContainer()
	tl := table.NewLoader(parse.NewParser(""), table.WithLogger(zap.NewNop()))
	l := NewLoader(schema.Default(), tl, WithThreads(threads), WithLogger(zap.NewNop()))
	f, err := l.Load(context.Background(), input.NewMemory(files), notices)
	require.NoError(t, err)
	return f, notices
}

func TestLoadFeed(t *testing.T) {
	f, notices := loadFeed(t, minimalFeed(), 1)

	assert.Equal(t, table.StatusParsableHeadersAndRows, f.Table(schema.StopTimes).Status())
	assert.Equal(t, 2, f.Table(schema.StopTimes).Len())
	assert.Equal(t, table.StatusEmpty, f.Table(schema.Shapes).Status())
	assert.False(t, f.Table(schema.Shapes).Present())
	assert.True(t, f.Table(schema.StopTimes).Present())
	assert.True(t, f.Usable(schema.Trips, schema.StopTimes))
	assert.False(t, f.Usable(schema.Shapes))
	assert.Nil(t, f.Table("notes.txt"))
	assert.Len(t, f.Filenames(), len(schema.Default().Tables()))

	unknown := notices.ByCode("unknown_file")
	require.Len(t, unknown, 1)
	name, _ := unknown[0].Get(notice.FieldFilename)
	assert.Equal(t, "notes.txt", name)
	assert.Len(t, notices.ByCode("missing_recommended_file"), 1)
}

func TestMissingRequiredTable(t *testing.T) {
	files := minimalFeed()
	delete(files, "routes.txt")
	f, notices := loadFeed(t, files, 2)

	assert.Equal(t, table.StatusMissingRequired, f.Table(schema.Routes).Status())
	got := notices.ByCode("missing_required_file")
	require.Len(t, got, 1)
	name, _ := got[0].Get(notice.FieldFilename)
	assert.Equal(t, schema.Routes, name)
}

func TestParallelLoadMatchesSequential(t *testing.T) {
	files := minimalFeed()
	files["stops.txt"] += "S3,,91,2.35\nS1,Dup,48.85,2.35\n"

	seq, seqNotices := loadFeed(t, files, 1)
	par, parNotices := loadFeed(t, files, 8)

	assert.Equal(t, seq.Rows(), par.Rows())
	assert.Equal(t, seqNotices.Notices(), parNotices.Notices())
}

func TestNewFillsAbsentTables(t *testing.T) {
	f := New(schema.Default())
	for _, name := range f.Filenames() {
		assert.Equal(t, table.StatusEmpty, f.Table(name).Status(), name)
		assert.False(t, f.Table(name).Present(), name)
	}
	assert.Zero(t, f.Rows())
}
