package rules

import (
	"github.com/MobilityData/gtfs-validator-sub014/pkg/columnar"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/notice"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/schema"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/table"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/validator"
)

// exceptionAdded is the calendar_dates.txt exception_type adding service.
const exceptionAdded = 1

// CalendarPresence requires at least one of calendar.txt and
// calendar_dates.txt.
type CalendarPresence struct{}

func (CalendarPresence) Name() string { return "calendar_presence" }

func (CalendarPresence) Requires() []string { return nil }

func (CalendarPresence) Validate(env *validator.Env, notices *notice.Container) {
	absent := func(name string) bool {
		c := env.Feed.Table(name)
		return c == nil || !c.Present()
	}
	if absent(schema.Calendar) && absent(schema.CalendarDates) {
		notices.Add(MissingCalendarFiles.New())
	}
}

// CalendarExpiry reports calendar.txt services whose last day of service
// is before the validation date. A service extended by an added date in
// calendar_dates.txt on or after that day is still active.
type CalendarExpiry struct{}

func (CalendarExpiry) Name() string { return "expired_calendar" }

func (CalendarExpiry) Requires() []string { return []string{schema.Calendar} }

func (CalendarExpiry) Validate(env *validator.Env, notices *notice.Container) {
	today := env.ValidationDate
	extended := make(map[string]bool)
	if dates := env.Feed.Table(schema.CalendarDates); dates != nil && dates.Status().Usable() {
		t := dates.Schema()
		service, date, kind := t.MustIndex("service_id"), t.MustIndex("date"), t.MustIndex("exception_type")
		dates.Entities().Each(func(e columnar.Entity) bool {
			d, okDate := e.Date(date)
			k, okKind := e.Int(kind)
			if okDate && okKind && k == exceptionAdded && !d.Before(today) {
				extended[e.String(service)] = true
			}
			return true
		})
	}

	calendar := env.Feed.Table(schema.Calendar)
	t := calendar.Schema()
	service, end := t.MustIndex("service_id"), t.MustIndex("end_date")
	calendar.Entities().Each(func(e columnar.Entity) bool {
		last, ok := e.Date(end)
		id := e.String(service)
		if ok && last.Before(today) && !extended[id] {
			notices.Add(ExpiredCalendar.New(
				notice.F(notice.FieldCSVRowNumber, e.CSVRowNumber()),
				notice.F("serviceId", id)))
		}
		return true
	})
}

// FeedInfoDates checks that feed_start_date is not after feed_end_date.
type FeedInfoDates struct{}

func (FeedInfoDates) Name() string { return "feed_info_dates" }

func (FeedInfoDates) Requires() []string { return []string{schema.FeedInfo} }

func (FeedInfoDates) ValidateTable(_ *validator.Env, c *table.Container, notices *notice.Container) {
	t := c.Schema()
	startField, endField := t.MustIndex("feed_start_date"), t.MustIndex("feed_end_date")
	c.Entities().Each(func(e columnar.Entity) bool {
		start, okStart := e.Date(startField)
		end, okEnd := e.Date(endField)
		if okStart && okEnd && end.Before(start) {
			notices.Add(FeedInfoStartDateAfterEndDate.New(
				notice.F(notice.FieldCSVRowNumber, e.CSVRowNumber()),
				notice.F("feedStartDate", start.String()),
				notice.F("feedEndDate", end.String())))
		}
		return true
	})
}
