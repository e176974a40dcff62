package rules

import (
	"github.com/MobilityData/gtfs-validator-sub014/pkg/columnar"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/notice"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/schema"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/validator"
)

// StopTimeOrdering checks the times of one trip ordered by stop_sequence:
// a stop gives both times or neither, departure is not before arrival and
// arrival is not before the previous departure.
type StopTimeOrdering struct{}

func (StopTimeOrdering) Name() string { return "stop_time_ordering" }

func (StopTimeOrdering) Requires() []string { return []string{schema.StopTimes} }

func (StopTimeOrdering) GroupBy() (string, string) { return schema.StopTimes, "trip_id" }

func (StopTimeOrdering) ValidateGroup(env *validator.Env, tripID string, rows []columnar.Entity, notices *notice.Container) {
	t := env.Feed.Table(schema.StopTimes).Schema()
	seqField := t.MustIndex("stop_sequence")
	arrField := t.MustIndex("arrival_time")
	depField := t.MustIndex("departure_time")

	var (
		prev    columnar.Entity
		prevSet bool
	)
	for _, st := range sortedBy(rows, seqField) {
		seq, _ := st.Int(seqField)
		arr, hasArr := st.Time(arrField)
		dep, hasDep := st.Time(depField)

		if hasArr != hasDep {
			specified := "arrival_time"
			if hasDep {
				specified = "departure_time"
			}
			notices.Add(OnlyArrivalOrDeparture.New(
				notice.F(notice.FieldCSVRowNumber, st.CSVRowNumber()),
				notice.F("tripId", tripID),
				notice.F("stopSequence", seq),
				notice.F("specifiedField", specified)))
		}

		if hasArr && hasDep && dep < arr {
			notices.Add(DepartureBeforeArrival.New(
				notice.F(notice.FieldCSVRowNumber, st.CSVRowNumber()),
				notice.F("tripId", tripID),
				notice.F("stopSequence", seq),
				notice.F("departureTime", dep.String()),
				notice.F("arrivalTime", arr.String())))
		}

		if hasArr && prevSet {
			prevDep, _ := prev.Time(depField)
			if arr < prevDep {
				notices.Add(ArrivalBeforePreviousDeparture.New(
					notice.F(notice.FieldCSVRowNumber, st.CSVRowNumber()),
					notice.F("prevCsvRowNumber", prev.CSVRowNumber()),
					notice.F("tripId", tripID),
					notice.F("departureTime", prevDep.String()),
					notice.F("arrivalTime", arr.String())))
			}
		}

		if hasDep {
			prev, prevSet = st, true
		}
	}
}
