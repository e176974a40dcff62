// Package validator schedules validation rules over a loaded feed.
//
// A rule implements exactly one of FeedValidator, TableValidator or
// GroupValidator. The granularity decides how the scheduler splits the
// rule into independent work units.
package validator

import (
	"time"

	"github.com/MobilityData/gtfs-validator-sub014/pkg/columnar"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/feed"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/gtfs"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/notice"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/table"
)

// Env is the read-only input shared by every unit of a run.
type Env struct {
	Feed *feed.Feed
	// ValidationDate is the day the feed is validated for.
	ValidationDate gtfs.Date
	CountryCode    string
}

// NewEnv builds an environment validating f as of date.
func NewEnv(f *feed.Feed, date time.Time, countryCode string) *Env {
	return &Env{Feed: f, ValidationDate: gtfs.DateOf(date), CountryCode: countryCode}
}

// Validator is the part every rule shares.
type Validator interface {
	// Name identifies the rule in logs, metrics and system errors.
	Name() string
	// Requires lists the tables that must have loaded for the rule to run.
	Requires() []string
}

// FeedValidator runs once per feed.
type FeedValidator interface {
	Validator
	Validate(env *Env, notices *notice.Container)
}

// TableValidator runs once for each table it requires.
type TableValidator interface {
	Validator
	ValidateTable(env *Env, c *table.Container, notices *notice.Container)
}

// GroupValidator runs once per group of rows sharing a key, such as the
// stop times of one trip. Rows of a group are in file order.
type GroupValidator interface {
	Validator
	// GroupBy names the table and the field rows are grouped on.
	GroupBy() (filename, field string)
	ValidateGroup(env *Env, key string, rows []columnar.Entity, notices *notice.Container)
}
