package schema

// GTFS schedule filenames.
const (
	Agency        = "agency.txt"
	Stops         = "stops.txt"
	Routes        = "routes.txt"
	Trips         = "trips.txt"
	StopTimes     = "stop_times.txt"
	Calendar      = "calendar.txt"
	CalendarDates = "calendar_dates.txt"
	FareAttrs     = "fare_attributes.txt"
	FareRules     = "fare_rules.txt"
	Shapes        = "shapes.txt"
	Frequencies   = "frequencies.txt"
	Transfers     = "transfers.txt"
	Pathways      = "pathways.txt"
	Levels        = "levels.txt"
	FeedInfo      = "feed_info.txt"
	Attributions  = "attributions.txt"
	Translations  = "translations.txt"
)

func span(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for v := from; v <= to; v++ {
		out = append(out, v)
	}
	return out
}

var (
	boolean   = []int{0, 1}
	weekday   = boolean
	pickup    = span(0, 3)
	routeType = append(span(0, 7), 11, 12)
)

func gtfsTables() []*TableSchema {
	return []*TableSchema{
		NewTable(Agency,
			Field("agency_id", TypeID).Key(),
			Field("agency_name", TypeText).Req(),
			Field("agency_url", TypeURL).Req(),
			Field("agency_timezone", TypeTimezone).Req(),
			Field("agency_lang", TypeLanguageCode),
			Field("agency_phone", TypePhone),
			Field("agency_fare_url", TypeURL),
			Field("agency_email", TypeEmail),
		).MarkRequired(),

		NewTable(Stops,
			Field("stop_id", TypeID).Req().Key(),
			Field("stop_code", TypeText),
			Field("stop_name", TypeText),
			Field("tts_stop_name", TypeText),
			Field("stop_desc", TypeText),
			Field("stop_lat", TypeLatitude),
			Field("stop_lon", TypeLongitude),
			Field("zone_id", TypeID),
			Field("stop_url", TypeURL),
			Field("location_type", TypeEnum).Values(span(0, 4)...),
			Field("parent_station", TypeID).Ref(Stops, "stop_id"),
			Field("stop_timezone", TypeTimezone),
			Field("wheelchair_boarding", TypeEnum).Values(span(0, 2)...),
			Field("level_id", TypeID).Ref(Levels, "level_id"),
			Field("platform_code", TypeText),
		).MarkRequired(),

		NewTable(Routes,
			Field("route_id", TypeID).Req().Key(),
			Field("agency_id", TypeID).Ref(Agency, "agency_id"),
			Field("route_short_name", TypeText),
			Field("route_long_name", TypeText),
			Field("route_desc", TypeText),
			Field("route_type", TypeEnum).Req().Values(routeType...),
			Field("route_url", TypeURL),
			Field("route_color", TypeColor),
			Field("route_text_color", TypeColor),
			Field("route_sort_order", TypeInteger).Bound(NonNegative),
			Field("continuous_pickup", TypeEnum).Values(pickup...),
			Field("continuous_drop_off", TypeEnum).Values(pickup...),
			Field("network_id", TypeID),
		).MarkRequired(),

		NewTable(Trips,
			Field("route_id", TypeID).Req().Ref(Routes, "route_id"),
			Field("service_id", TypeID).Req(),
			Field("trip_id", TypeID).Req().Key(),
			Field("trip_headsign", TypeText),
			Field("trip_short_name", TypeText),
			Field("direction_id", TypeEnum).Values(boolean...),
			Field("block_id", TypeID),
			Field("shape_id", TypeID).Ref(Shapes, "shape_id"),
			Field("wheelchair_accessible", TypeEnum).Values(span(0, 2)...),
			Field("bikes_allowed", TypeEnum).Values(span(0, 2)...),
		).MarkRequired(),

		NewTable(StopTimes,
			Field("trip_id", TypeID).Req().Key().Ref(Trips, "trip_id"),
			Field("arrival_time", TypeTime),
			Field("departure_time", TypeTime),
			Field("stop_id", TypeID).Req().Ref(Stops, "stop_id"),
			Field("stop_sequence", TypeInteger).Req().Key().Bound(NonNegative),
			Field("stop_headsign", TypeText),
			Field("pickup_type", TypeEnum).Values(pickup...),
			Field("drop_off_type", TypeEnum).Values(pickup...),
			Field("continuous_pickup", TypeEnum).Values(pickup...),
			Field("continuous_drop_off", TypeEnum).Values(pickup...),
			Field("shape_dist_traveled", TypeFloat).Bound(NonNegative),
			Field("timepoint", TypeEnum).Values(boolean...),
		).MarkRequired(),

		NewTable(Calendar,
			Field("service_id", TypeID).Req().Key(),
			Field("monday", TypeEnum).Req().Values(weekday...),
			Field("tuesday", TypeEnum).Req().Values(weekday...),
			Field("wednesday", TypeEnum).Req().Values(weekday...),
			Field("thursday", TypeEnum).Req().Values(weekday...),
			Field("friday", TypeEnum).Req().Values(weekday...),
			Field("saturday", TypeEnum).Req().Values(weekday...),
			Field("sunday", TypeEnum).Req().Values(weekday...),
			Field("start_date", TypeDate).Req(),
			Field("end_date", TypeDate).Req(),
		),

		NewTable(CalendarDates,
			Field("service_id", TypeID).Req().Key(),
			Field("date", TypeDate).Req().Key(),
			Field("exception_type", TypeEnum).Req().Values(1, 2),
		),

		NewTable(FareAttrs,
			Field("fare_id", TypeID).Req().Key(),
			Field("price", TypeCurrencyAmount).Req().Bound(NonNegative),
			Field("currency_type", TypeCurrencyCode).Req(),
			Field("payment_method", TypeEnum).Req().Values(boolean...),
			Field("transfers", TypeEnum).Values(span(0, 2)...),
			Field("agency_id", TypeID).Ref(Agency, "agency_id"),
			Field("transfer_duration", TypeInteger).Bound(NonNegative),
		),

		NewTable(FareRules,
			Field("fare_id", TypeID).Req().Ref(FareAttrs, "fare_id"),
			Field("route_id", TypeID).Ref(Routes, "route_id"),
			Field("origin_id", TypeID),
			Field("destination_id", TypeID),
			Field("contains_id", TypeID),
		),

		NewTable(Shapes,
			Field("shape_id", TypeID).Req().Key(),
			Field("shape_pt_lat", TypeLatitude).Req(),
			Field("shape_pt_lon", TypeLongitude).Req(),
			Field("shape_pt_sequence", TypeInteger).Req().Key().Bound(NonNegative),
			Field("shape_dist_traveled", TypeFloat).Bound(NonNegative),
		),

		NewTable(Frequencies,
			Field("trip_id", TypeID).Req().Key().Ref(Trips, "trip_id"),
			Field("start_time", TypeTime).Req().Key(),
			Field("end_time", TypeTime).Req(),
			Field("headway_secs", TypeInteger).Req().Bound(Positive).Warn(60, 86400),
			Field("exact_times", TypeEnum).Values(boolean...),
		),

		NewTable(Transfers,
			Field("from_stop_id", TypeID).Key().Ref(Stops, "stop_id"),
			Field("to_stop_id", TypeID).Key().Ref(Stops, "stop_id"),
			Field("from_route_id", TypeID).Key().Ref(Routes, "route_id"),
			Field("to_route_id", TypeID).Key().Ref(Routes, "route_id"),
			Field("from_trip_id", TypeID).Key().Ref(Trips, "trip_id"),
			Field("to_trip_id", TypeID).Key().Ref(Trips, "trip_id"),
			Field("transfer_type", TypeEnum).Req().Values(span(0, 5)...),
			Field("min_transfer_time", TypeInteger).Bound(NonNegative).Warn(0, 3*3600),
		),

		NewTable(Pathways,
			Field("pathway_id", TypeID).Req().Key(),
			Field("from_stop_id", TypeID).Req().Ref(Stops, "stop_id"),
			Field("to_stop_id", TypeID).Req().Ref(Stops, "stop_id"),
			Field("pathway_mode", TypeEnum).Req().Values(span(1, 7)...),
			Field("is_bidirectional", TypeEnum).Req().Values(boolean...),
			Field("length", TypeFloat).Bound(NonNegative),
			Field("traversal_time", TypeInteger).Bound(Positive),
			Field("stair_count", TypeInteger).Bound(NonZero),
			Field("max_slope", TypeFloat),
			Field("min_width", TypeFloat).Bound(Positive),
			Field("signposted_as", TypeText),
			Field("reversed_signposted_as", TypeText),
		),

		NewTable(Levels,
			Field("level_id", TypeID).Req().Key(),
			Field("level_index", TypeFloat).Req(),
			Field("level_name", TypeText),
		),

		NewTable(FeedInfo,
			Field("feed_publisher_name", TypeText).Req(),
			Field("feed_publisher_url", TypeURL).Req(),
			Field("feed_lang", TypeLanguageCode).Req(),
			Field("default_lang", TypeLanguageCode),
			Field("feed_start_date", TypeDate).Rec(),
			Field("feed_end_date", TypeDate).Rec(),
			Field("feed_version", TypeText).Rec(),
			Field("feed_contact_email", TypeEmail).Rec(),
			Field("feed_contact_url", TypeURL).Rec(),
		).MarkRecommended(),

		NewTable(Attributions,
			Field("attribution_id", TypeID).Key(),
			Field("agency_id", TypeID).Ref(Agency, "agency_id"),
			Field("route_id", TypeID).Ref(Routes, "route_id"),
			Field("trip_id", TypeID).Ref(Trips, "trip_id"),
			Field("organization_name", TypeText).Req(),
			Field("is_producer", TypeEnum).Values(boolean...),
			Field("is_operator", TypeEnum).Values(boolean...),
			Field("is_authority", TypeEnum).Values(boolean...),
			Field("attribution_url", TypeURL),
			Field("attribution_email", TypeEmail),
			Field("attribution_phone", TypePhone),
		),

		NewTable(Translations,
			Field("table_name", TypeText).Req().Key(),
			Field("field_name", TypeText).Req().Key(),
			Field("language", TypeLanguageCode).Req().Key(),
			Field("translation", TypeText).Req(),
			Field("record_id", TypeID).Key(),
			Field("record_sub_id", TypeID).Key(),
			Field("field_value", TypeText).Key(),
		),
	}
}
