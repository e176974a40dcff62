package rules

import (
	"sort"

	"github.com/MobilityData/gtfs-validator-sub014/pkg/columnar"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/notice"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/schema"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/validator"
)

// ShapeUsage reports shapes that no trip uses.
type ShapeUsage struct{}

func (ShapeUsage) Name() string { return "shape_usage" }

func (ShapeUsage) Requires() []string { return []string{schema.Shapes, schema.Trips} }

func (ShapeUsage) Validate(env *validator.Env, notices *notice.Container) {
	trips := env.Feed.Table(schema.Trips)
	used := make(map[string]struct{})
	tripShape := trips.Schema().MustIndex("shape_id")
	trips.Entities().Each(func(e columnar.Entity) bool {
		if id := e.String(tripShape); id != "" {
			used[id] = struct{}{}
		}
		return true
	})

	shapes := env.Feed.Table(schema.Shapes)
	byShape := shapes.GroupBy("shape_id")
	for _, id := range byShape.Keys() {
		if _, ok := used[id]; ok {
			continue
		}
		first := byShape.Get(id)[0]
		notices.Add(UnusedShape.New(
			notice.F("shapeId", id),
			notice.F(notice.FieldCSVRowNumber, first.CSVRowNumber())))
	}
}

// ShapeDistance checks that shape_dist_traveled never decreases along a
// shape ordered by shape_pt_sequence.
type ShapeDistance struct{}

func (ShapeDistance) Name() string { return "shape_distance" }

func (ShapeDistance) Requires() []string { return []string{schema.Shapes} }

func (ShapeDistance) GroupBy() (string, string) { return schema.Shapes, "shape_id" }

func (ShapeDistance) ValidateGroup(env *validator.Env, shapeID string, rows []columnar.Entity, notices *notice.Container) {
	t := env.Feed.Table(schema.Shapes).Schema()
	seqField := t.MustIndex("shape_pt_sequence")
	distField := t.MustIndex("shape_dist_traveled")

	points := sortedBy(rows, seqField)
	var (
		prev    columnar.Entity
		prevSet bool
		prevD   float64
	)
	for _, p := range points {
		d, ok := p.Float(distField)
		if !ok {
			continue
		}
		if prevSet && d < prevD {
			seq, _ := p.Int(seqField)
			prevSeq, _ := prev.Int(seqField)
			notices.Add(DecreasingShapeDistance.New(
				notice.F("shapeId", shapeID),
				notice.F(notice.FieldCSVRowNumber, p.CSVRowNumber()),
				notice.F("shapeDistTraveled", d),
				notice.F("shapePtSequence", seq),
				notice.F("prevCsvRowNumber", prev.CSVRowNumber()),
				notice.F("prevShapeDistTraveled", prevD),
				notice.F("prevShapePtSequence", prevSeq)))
		}
		prev, prevSet, prevD = p, true, d
	}
}

// sortedBy returns rows ordered by an integer field, keeping file order
// between equal values.
func sortedBy(rows []columnar.Entity, field int) []columnar.Entity {
	out := append([]columnar.Entity(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		a, _ := out[i].Int(field)
		b, _ := out[j].Int(field)
		return a < b
	})
	return out
}
