package pipeline

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MobilityData/gtfs-validator-sub014/pkg/config"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/errors"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/input"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/notice"
)

func feedFiles() map[string]string {
	return map[string]string{
		"agency.txt":     "agency_id,agency_name,agency_url,agency_timezone\nA1,Metro,https://metro.example.com,Europe/Paris\n",
		"stops.txt":      "stop_id,stop_name,stop_lat,stop_lon\nS1,Central,48.85,2.35\nS2,North,48.86,2.35\n",
		"routes.txt":     "route_id,agency_id,route_short_name,route_type\nR1,A1,1,3\n",
		"trips.txt":      "route_id,service_id,trip_id\nR1,WK,T1\nR2,WK,T2\n",
		"stop_times.txt": "trip_id,arrival_time,departure_time,stop_id,stop_sequence\nT1,08:00:00,08:00:00,S1,1\nT1,08:10:00,08:10:00,S2,2\n",
		"calendar.txt":   "service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date\nWK,1,1,1,1,1,0,0,20240101,20240501\n",
		"feed_info.txt": "feed_publisher_name,feed_publisher_url,feed_lang,feed_start_date,feed_end_date,feed_version,feed_contact_email,feed_contact_url\n" +
			"Metro,https://metro.example.com,fr,20240101,20241231,1,,\n" +
			"Metro,https://metro.example.com,fr,20240101,20241231,2,info@metro.example.com,\n",
	}
}

func testConfig() *config.ValidationConfig {
	cfg := config.NewValidationConfig()
	cfg.ValidationDate = "2024-06-15"
	cfg.Observability.EnableMetrics = false
	cfg.Observability.MemoryStats = false
	return cfg
}

func runFeed(t *testing.T, cfg *config.ValidationConfig, files map[string]string) *Result {
	t.Helper()
	p, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	result, err := p.Run(context.Background(), input.NewMemory(files))
	require.NoError(t, err)
	return result
}

func TestRunProducesReport(t *testing.T) {
	result := runFeed(t, testConfig(), feedFiles())
	report := result.Report

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "2024-06-15", result.Date)
	assert.Equal(t, 1, report.Total("foreign_key_violation"))
	assert.Equal(t, 1, report.Total("expired_calendar"))
	assert.Contains(t, report.ErrorCodes(), "foreign_key_violation")
	assert.Empty(t, report.SystemErrors)
	assert.Equal(t, 1, report.Summary.Errors)
}

func TestFeedContactFilter(t *testing.T) {
	report := runFeed(t, testConfig(), feedFiles()).Report

	entry, ok := report.Find("missing_recommended_field", notice.Warning)
	require.True(t, ok)
	require.Equal(t, 2, entry.TotalNotices)
	for _, sample := range entry.SampleNotices {
		for _, f := range sample {
			if f.Name == notice.FieldCSVRowNumber {
				assert.Equal(t, 1, f.Value)
			}
		}
	}
}

func TestFeedContactFilterWithoutURLColumn(t *testing.T) {
	files := feedFiles()
	files["feed_info.txt"] = "feed_publisher_name,feed_publisher_url,feed_lang,feed_start_date,feed_end_date,feed_version,feed_contact_email\n" +
		"Metro,https://metro.example.com,fr,20240101,20241231,1,\n" +
		"Metro,https://metro.example.com,fr,20240101,20241231,2,info@metro.example.com\n"
	report := runFeed(t, testConfig(), files).Report

	entry, ok := report.Find("missing_recommended_field", notice.Warning)
	require.True(t, ok)
	require.Equal(t, 1, entry.TotalNotices)
	fields := map[string]interface{}{}
	for _, f := range entry.SampleNotices[0] {
		fields[f.Name] = f.Value
	}
	assert.Equal(t, "feed_contact_email", fields[notice.FieldName])
	assert.Equal(t, 1, fields[notice.FieldCSVRowNumber])
	assert.Equal(t, 1, report.Total("missing_recommended_column"))
}

func TestSeverityOverride(t *testing.T) {
	cfg := testConfig()
	cfg.SeverityOverrides = map[string]string{"foreign_key_violation": "WARNING"}
	report := runFeed(t, cfg, feedFiles()).Report

	_, asError := report.Find("foreign_key_violation", notice.Error)
	_, asWarning := report.Find("foreign_key_violation", notice.Warning)
	assert.False(t, asError)
	assert.True(t, asWarning)
	assert.Zero(t, report.Summary.Errors)
}

func TestThreadCountDoesNotChangeReport(t *testing.T) {
	one := testConfig()
	eight := testConfig()
	eight.Threads = 8

	a := runFeed(t, one, feedFiles()).Report
	b := runFeed(t, eight, feedFiles()).Report
	assert.Equal(t, a.Notices, b.Notices)
	assert.Equal(t, a.Summary, b.Summary)
	assert.True(t, a.HasSameErrorCodes(b))
}

func TestClockUsedWithoutValidationDate(t *testing.T) {
	cfg := testConfig()
	cfg.ValidationDate = ""
	clock := func() time.Time { return time.Date(2023, time.March, 1, 15, 0, 0, 0, time.UTC) }
	p, err := New(cfg, zap.NewNop(), WithClock(clock))
	require.NoError(t, err)

	result, err := p.Run(context.Background(), input.NewMemory(feedFiles()))
	require.NoError(t, err)
	assert.Equal(t, "2023-03-01", result.Date)
	assert.Zero(t, result.Report.Total("expired_calendar"))
}

func TestInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.SeverityOverrides = map[string]string{"foreign_key_violation": "FATAL"}
	_, err := New(cfg, zap.NewNop())
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestUnreadableInput(t *testing.T) {
	p, err := New(testConfig(), zap.NewNop())
	require.NoError(t, err)
	_, err = p.RunPath(context.Background(), filepath.Join(t.TempDir(), "absent.zip"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeInput))
}
