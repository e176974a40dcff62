package rules

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MobilityData/gtfs-validator-sub014/pkg/feed"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/input"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/notice"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/parse"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/schema"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/table"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/validator"
)

var validationDay = time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

func baseFeed() map[string]string {
	return map[string]string{
		"agency.txt":     "agency_id,agency_name,agency_url,agency_timezone\nA1,Metro,https://metro.example.com,Europe/Paris\n",
		"stops.txt":      "stop_id,stop_name,stop_lat,stop_lon,stop_url\nS1,Central,48.85,2.35,https://metro.example.com/s1\nS2,North,48.86,2.35,\n",
		"routes.txt":     "route_id,agency_id,route_short_name,route_type,route_url\nR1,A1,1,3,https://metro.example.com/r1\n",
		"trips.txt":      "route_id,service_id,trip_id\nR1,WK,T1\n",
		"stop_times.txt": "trip_id,arrival_time,departure_time,stop_id,stop_sequence\nT1,08:00:00,08:00:00,S1,1\nT1,08:10:00,08:11:00,S2,2\n",
		"calendar.txt":   "service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date\nWK,1,1,1,1,1,0,0,20240101,20241231\n",
	}
}

func loadFeed(t *testing.T, files map[string]string) *feed.Feed {
	t.Helper()
	tl := table.NewLoader(parse.NewParser(""), table.WithLogger(zap.NewNop()))
	f, err := feed.NewLoader(schema.Default(), tl, feed.WithLogger(zap.NewNop())).
		Load(context.Background(), input.NewMemory(files), notice.NewContainer())
	require.NoError(t, err)
	return f
}

func run(t *testing.T, files map[string]string, rules ...validator.Validator) *notice.Container {
	t.Helper()
	env := validator.NewEnv(loadFeed(t, files), validationDay, "")
	notices := notice.NewContainer()
	s := validator.NewScheduler(validator.WithLogger(zap.NewNop()))
	require.NoError(t, s.Run(context.Background(), env, rules, notices))
	return notices
}

func get(t *testing.T, n notice.Notice, field string) interface{} {
	t.Helper()
	v, ok := n.Get(field)
	require.True(t, ok, "missing context field %s", field)
	return v
}

func tripRouteRef() schema.ForeignKey {
	return schema.ForeignKey{ChildTable: schema.Trips, ChildField: "route_id", ParentTable: schema.Routes, ParentField: "route_id"}
}

func TestForeignKeyViolation(t *testing.T) {
	files := baseFeed()
	files["trips.txt"] = "route_id,service_id,trip_id\nR1,WK,T1\nR2,WK,T2\n"

	notices := run(t, files, NewForeignKey(tripRouteRef()))
	got := notices.ByCode("foreign_key_violation")
	require.Len(t, got, 1)
	assert.Equal(t, "R2", get(t, got[0], notice.FieldValue))
	assert.Equal(t, 2, get(t, got[0], notice.FieldCSVRowNumber))
	assert.Equal(t, schema.Trips, get(t, got[0], "childFilename"))
	assert.Equal(t, schema.Routes, get(t, got[0], "parentFilename"))
}

func TestForeignKeyAbsentParent(t *testing.T) {
	files := baseFeed()
	files["trips.txt"] = "route_id,service_id,trip_id,shape_id\nR1,WK,T1,SH1\nR1,WK,T2,\n"
	ref := schema.ForeignKey{ChildTable: schema.Trips, ChildField: "shape_id", ParentTable: schema.Shapes, ParentField: "shape_id"}

	got := run(t, files, NewForeignKey(ref)).ByCode("foreign_key_violation")
	require.Len(t, got, 1)
	assert.Equal(t, "SH1", get(t, got[0], notice.FieldValue))
}

func TestForeignKeySkipsEmptyParentFile(t *testing.T) {
	files := baseFeed()
	files["trips.txt"] = "route_id,service_id,trip_id,shape_id\nR1,WK,T1,SH1\n"
	files["shapes.txt"] = ""
	ref := schema.ForeignKey{ChildTable: schema.Trips, ChildField: "shape_id", ParentTable: schema.Shapes, ParentField: "shape_id"}
	assert.Empty(t, run(t, files, NewForeignKey(ref)).ByCode("foreign_key_violation"))
}

func TestForeignKeySkipsBrokenParent(t *testing.T) {
	files := baseFeed()
	files["routes.txt"] = "route_id,route_id\nR1,R1\n"
	files["trips.txt"] = "route_id,service_id,trip_id\nR9,WK,T1\n"
	assert.Empty(t, run(t, files, NewForeignKey(tripRouteRef())).ByCode("foreign_key_violation"))
}

func TestDecreasingShapeDistance(t *testing.T) {
	files := baseFeed()
	files["trips.txt"] = "route_id,service_id,trip_id,shape_id\nR1,WK,T1,S1\n"
	files["shapes.txt"] = "shape_id,shape_pt_lat,shape_pt_lon,shape_pt_sequence,shape_dist_traveled\n" +
		"S1,48.0,2.0,1,0\n" +
		"S1,48.1,2.0,2,5\n" +
		"S1,48.2,2.0,4,10\n" +
		"S1,48.3,2.0,3,3\n"

	got := run(t, files, ShapeDistance{}).ByCode("decreasing_shape_distance")
	require.Len(t, got, 1)
	assert.Equal(t, "S1", get(t, got[0], "shapeId"))
	assert.Equal(t, 3.0, get(t, got[0], "shapeDistTraveled"))
	assert.Equal(t, 5.0, get(t, got[0], "prevShapeDistTraveled"))
	assert.Equal(t, int32(3), get(t, got[0], "shapePtSequence"))
	assert.Equal(t, int32(2), get(t, got[0], "prevShapePtSequence"))
	assert.Equal(t, 4, get(t, got[0], notice.FieldCSVRowNumber))
	assert.Equal(t, 2, get(t, got[0], "prevCsvRowNumber"))
}

func TestUnusedShape(t *testing.T) {
	files := baseFeed()
	files["trips.txt"] = "route_id,service_id,trip_id,shape_id\nR1,WK,T1,S1\n"
	files["shapes.txt"] = "shape_id,shape_pt_lat,shape_pt_lon,shape_pt_sequence\n" +
		"S1,48.0,2.0,1\nS1,48.1,2.0,2\nS9,48.0,2.0,1\nS9,48.1,2.0,2\n"

	got := run(t, files, ShapeUsage{}).ByCode("unused_shape")
	require.Len(t, got, 1)
	assert.Equal(t, "S9", get(t, got[0], "shapeId"))
	assert.Equal(t, 3, get(t, got[0], notice.FieldCSVRowNumber))
}

func TestStopTimeOrdering(t *testing.T) {
	files := baseFeed()
	files["stop_times.txt"] = "trip_id,arrival_time,departure_time,stop_id,stop_sequence\n" +
		"T1,08:00:00,08:05:00,S1,1\n" +
		"T1,08:03:00,08:04:00,S2,2\n" +
		"T1,08:10:00,08:09:00,S1,3\n" +
		"T1,08:20:00,,S2,4\n" +
		"T1,,,S1,5\n"

	notices := run(t, files, StopTimeOrdering{})

	before := notices.ByCode("stop_time_with_arrival_before_previous_departure_time")
	require.Len(t, before, 1)
	assert.Equal(t, 2, get(t, before[0], notice.FieldCSVRowNumber))
	assert.Equal(t, 1, get(t, before[0], "prevCsvRowNumber"))
	assert.Equal(t, "08:05:00", get(t, before[0], "departureTime"))
	assert.Equal(t, "08:03:00", get(t, before[0], "arrivalTime"))

	inverted := notices.ByCode("stop_time_with_departure_before_arrival_time")
	require.Len(t, inverted, 1)
	assert.Equal(t, 3, get(t, inverted[0], notice.FieldCSVRowNumber))

	partial := notices.ByCode("stop_time_with_only_arrival_or_departure_time")
	require.Len(t, partial, 1)
	assert.Equal(t, "arrival_time", get(t, partial[0], "specifiedField"))
}

func TestStopTimesOrderedBySequenceNotFileOrder(t *testing.T) {
	files := baseFeed()
	files["stop_times.txt"] = "trip_id,arrival_time,departure_time,stop_id,stop_sequence\n" +
		"T1,09:00:00,09:00:00,S2,20\n" +
		"T1,08:00:00,08:00:00,S1,10\n"
	assert.Zero(t, run(t, files, StopTimeOrdering{}).Len())
}

func TestURLConsistency(t *testing.T) {
	files := baseFeed()
	files["routes.txt"] = "route_id,agency_id,route_short_name,route_type,route_url\n" +
		"R1,A1,1,3,https://metro.example.com\n" +
		"R2,A1,2,3,https://metro.example.com/r2\n"
	files["stops.txt"] = "stop_id,stop_name,stop_lat,stop_lon,stop_url\n" +
		"S1,Central,48.85,2.35,https://metro.example.com\n" +
		"S2,North,48.86,2.35,https://metro.example.com/r2\n" +
		"S3,South,48.84,2.35,https://metro.example.com/R2\n"
	files["trips.txt"] = "route_id,service_id,trip_id\nR1,WK,T1\n"

	notices := run(t, files, RouteAgencyURL{}, StopAgencyURL{}, StopRouteURL{})

	routes := notices.ByCode("same_route_and_agency_url")
	require.Len(t, routes, 1)
	assert.Equal(t, "R1", get(t, routes[0], "routeId"))
	assert.Equal(t, "Metro", get(t, routes[0], "agencyName"))

	stops := notices.ByCode("same_stop_and_agency_url")
	require.Len(t, stops, 1)
	assert.Equal(t, "S1", get(t, stops[0], "stopId"))

	stopRoutes := notices.ByCode("same_stop_and_route_url")
	require.Len(t, stopRoutes, 2)
	ids := []interface{}{get(t, stopRoutes[0], "stopId"), get(t, stopRoutes[1], "stopId")}
	assert.ElementsMatch(t, []interface{}{"S1", "S2"}, ids)
}

func TestCalendarPresence(t *testing.T) {
	files := baseFeed()
	delete(files, "calendar.txt")
	assert.Len(t, run(t, files, CalendarPresence{}).ByCode("missing_calendar_and_calendar_date_files"), 1)

	files["calendar_dates.txt"] = "service_id,date,exception_type\nWK,20240701,1\n"
	assert.Empty(t, run(t, files, CalendarPresence{}).ByCode("missing_calendar_and_calendar_date_files"))
}

func TestCalendarPresenceEmptyFileCounts(t *testing.T) {
	files := baseFeed()
	files["calendar.txt"] = ""
	f := loadFeed(t, files)
	require.Equal(t, table.StatusEmpty, f.Table(schema.Calendar).Status())
	require.True(t, f.Table(schema.Calendar).Present())
	require.False(t, f.Table(schema.CalendarDates).Present())

	assert.Empty(t, run(t, files, CalendarPresence{}).ByCode("missing_calendar_and_calendar_date_files"))
}

func TestExpiredCalendar(t *testing.T) {
	files := baseFeed()
	files["calendar.txt"] = "service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date\n" +
		"WK,1,1,1,1,1,0,0,20240101,20241231\n" +
		"OLD,1,1,1,1,1,0,0,20230101,20231231\n" +
		"EXT,0,0,0,0,0,1,1,20230101,20240301\n"
	files["calendar_dates.txt"] = "service_id,date,exception_type\nEXT,20240720,1\nOLD,20240720,2\n"

	got := run(t, files, CalendarExpiry{}).ByCode("expired_calendar")
	require.Len(t, got, 1)
	assert.Equal(t, "OLD", get(t, got[0], "serviceId"))
	assert.Equal(t, 2, get(t, got[0], notice.FieldCSVRowNumber))
}

func TestFeedInfoDates(t *testing.T) {
	files := baseFeed()
	files["feed_info.txt"] = "feed_publisher_name,feed_publisher_url,feed_lang,feed_start_date,feed_end_date\n" +
		"Metro,https://metro.example.com,fr,20241231,20240101\n"

	got := run(t, files, FeedInfoDates{}).ByCode("feed_info_start_date_after_end_date")
	require.Len(t, got, 1)
	assert.Equal(t, "20241231", get(t, got[0], "feedStartDate"))
	assert.Equal(t, "20240101", get(t, got[0], "feedEndDate"))
}

func TestRouteColorContrast(t *testing.T) {
	files := baseFeed()
	files["routes.txt"] = "route_id,agency_id,route_short_name,route_type,route_color,route_text_color\n" +
		"R1,A1,1,3,000000,FFFFFF\n" +
		"R2,A1,2,3,FFFF00,FFFFFF\n" +
		"R3,A1,3,3,FFFF00,\n" +
		"R4,A1,4,3,767676,FFFFFF\n"
	files["trips.txt"] = "route_id,service_id,trip_id\nR1,WK,T1\n"

	got := run(t, files, RouteColorContrast{}).ByCode("route_color_contrast")
	require.Len(t, got, 1)
	assert.Equal(t, "R2", get(t, got[0], "routeId"))
	assert.Equal(t, 2, get(t, got[0], notice.FieldCSVRowNumber))
	assert.Equal(t, "FFFF00", get(t, got[0], "routeColor"))
	assert.Less(t, get(t, got[0], "contrastRatio").(float64), MinColorContrast)
}

func TestRegisterDefaults(t *testing.T) {
	r := validator.NewRegistry()
	require.NoError(t, RegisterDefaults(r, schema.Default()))
	assert.Len(t, r.Names(), len(schema.Default().ForeignKeys())+10)
	assert.Contains(t, r.Names(), "foreign_key:trips.txt.route_id")
	assert.Error(t, RegisterDefaults(r, schema.Default()))

	all, err := r.Create()
	require.NoError(t, err)
	notices := run(t, baseFeed(), all...)
	assert.False(t, notices.HasErrors(), "clean feed raised %v", notices.Codes())
	assert.Empty(t, notices.SystemErrors())
}
