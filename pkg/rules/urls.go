package rules

import (
	"github.com/MobilityData/gtfs-validator-sub014/pkg/columnar"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/notice"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/schema"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/table"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/validator"
)

// URLs are compared verbatim: a route or stop URL identical to another
// entity's URL is most likely a copied default.

// byURL indexes the entities of c by a URL field.
func byURL(c *table.Container, field string) *columnar.Multimap {
	if !c.HasColumn(field) {
		return columnar.NewMultimap()
	}
	return c.GroupBy(field)
}

// RouteAgencyURL reports routes whose route_url is an agency_url.
type RouteAgencyURL struct{}

func (RouteAgencyURL) Name() string { return "same_route_and_agency_url" }

func (RouteAgencyURL) Requires() []string { return []string{schema.Agency, schema.Routes} }

func (RouteAgencyURL) Validate(env *validator.Env, notices *notice.Container) {
	agency := env.Feed.Table(schema.Agency)
	agencies := byURL(agency, "agency_url")
	nameField := agency.Schema().MustIndex("agency_name")

	routes := env.Feed.Table(schema.Routes)
	idField := routes.Schema().MustIndex("route_id")
	urlField := routes.Schema().MustIndex("route_url")
	routes.Entities().Each(func(r columnar.Entity) bool {
		url := r.String(urlField)
		for _, a := range agencies.Get(url) {
			notices.Add(SameRouteAndAgencyURL.New(
				notice.F(notice.FieldCSVRowNumber, r.CSVRowNumber()),
				notice.F("routeId", r.String(idField)),
				notice.F("agencyName", a.String(nameField)),
				notice.F("routeUrl", url),
				notice.F("agencyCsvRowNumber", a.CSVRowNumber())))
		}
		return true
	})
}

// StopAgencyURL reports stops whose stop_url is an agency_url.
type StopAgencyURL struct{}

func (StopAgencyURL) Name() string { return "same_stop_and_agency_url" }

func (StopAgencyURL) Requires() []string { return []string{schema.Agency, schema.Stops} }

func (StopAgencyURL) Validate(env *validator.Env, notices *notice.Container) {
	agency := env.Feed.Table(schema.Agency)
	agencies := byURL(agency, "agency_url")
	nameField := agency.Schema().MustIndex("agency_name")

	stops := env.Feed.Table(schema.Stops)
	idField := stops.Schema().MustIndex("stop_id")
	urlField := stops.Schema().MustIndex("stop_url")
	stops.Entities().Each(func(s columnar.Entity) bool {
		url := s.String(urlField)
		for _, a := range agencies.Get(url) {
			notices.Add(SameStopAndAgencyURL.New(
				notice.F(notice.FieldCSVRowNumber, s.CSVRowNumber()),
				notice.F("stopId", s.String(idField)),
				notice.F("agencyName", a.String(nameField)),
				notice.F("stopUrl", url),
				notice.F("agencyCsvRowNumber", a.CSVRowNumber())))
		}
		return true
	})
}

// StopRouteURL reports stops whose stop_url is a route_url.
type StopRouteURL struct{}

func (StopRouteURL) Name() string { return "same_stop_and_route_url" }

func (StopRouteURL) Requires() []string { return []string{schema.Routes, schema.Stops} }

func (StopRouteURL) Validate(env *validator.Env, notices *notice.Container) {
	routes := env.Feed.Table(schema.Routes)
	byRoute := byURL(routes, "route_url")
	routeID := routes.Schema().MustIndex("route_id")

	stops := env.Feed.Table(schema.Stops)
	idField := stops.Schema().MustIndex("stop_id")
	urlField := stops.Schema().MustIndex("stop_url")
	stops.Entities().Each(func(s columnar.Entity) bool {
		url := s.String(urlField)
		for _, r := range byRoute.Get(url) {
			notices.Add(SameStopAndRouteURL.New(
				notice.F("stopCsvRowNumber", s.CSVRowNumber()),
				notice.F("stopId", s.String(idField)),
				notice.F("stopUrl", url),
				notice.F("routeId", r.String(routeID)),
				notice.F("routeCsvRowNumber", r.CSVRowNumber())))
		}
		return true
	})
}
