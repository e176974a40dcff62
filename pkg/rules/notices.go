package rules

import "github.com/MobilityData/gtfs-validator-sub014/pkg/notice"

var (
	ForeignKeyViolation = notice.Define("foreign_key_violation", notice.Error)

	UnusedShape             = notice.Define("unused_shape", notice.Warning)
	DecreasingShapeDistance = notice.Define("decreasing_shape_distance", notice.Error)

	ArrivalBeforePreviousDeparture = notice.Define("stop_time_with_arrival_before_previous_departure_time", notice.Error)
	DepartureBeforeArrival         = notice.Define("stop_time_with_departure_before_arrival_time", notice.Error)
	OnlyArrivalOrDeparture         = notice.Define("stop_time_with_only_arrival_or_departure_time", notice.Error)

	SameRouteAndAgencyURL = notice.Define("same_route_and_agency_url", notice.Warning)
	SameStopAndAgencyURL  = notice.Define("same_stop_and_agency_url", notice.Warning)
	SameStopAndRouteURL   = notice.Define("same_stop_and_route_url", notice.Warning)

	RouteColorContrastTooLow = notice.Define("route_color_contrast", notice.Warning)

	MissingCalendarFiles          = notice.Define("missing_calendar_and_calendar_date_files", notice.Error)
	ExpiredCalendar               = notice.Define("expired_calendar", notice.Warning)
	FeedInfoStartDateAfterEndDate = notice.Define("feed_info_start_date_after_end_date", notice.Error)
)
