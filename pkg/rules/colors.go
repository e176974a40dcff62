package rules

import (
	"math"

	"github.com/MobilityData/gtfs-validator-sub014/pkg/columnar"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/gtfs"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/notice"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/schema"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/table"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/validator"
)

// MinColorContrast is the WCAG 2.0 contrast ratio for normal text.
const MinColorContrast = 4.5

// RouteColorContrast flags routes whose text color does not stand out from
// the route color. Routes missing either color are not checked.
type RouteColorContrast struct{}

func (RouteColorContrast) Name() string { return "route_color_contrast" }

func (RouteColorContrast) Requires() []string { return []string{schema.Routes} }

func (RouteColorContrast) ValidateTable(_ *validator.Env, c *table.Container, notices *notice.Container) {
	if !c.HasColumn("route_color") || !c.HasColumn("route_text_color") {
		return
	}
	t := c.Schema()
	idField := t.MustIndex("route_id")
	colorField, textField := t.MustIndex("route_color"), t.MustIndex("route_text_color")
	c.Entities().Each(func(e columnar.Entity) bool {
		color, okColor := e.Color(colorField)
		text, okText := e.Color(textField)
		if !okColor || !okText {
			return true
		}
		if ratio := contrast(color, text); ratio < MinColorContrast {
			notices.Add(RouteColorContrastTooLow.New(
				notice.F(notice.FieldCSVRowNumber, e.CSVRowNumber()),
				notice.F("routeId", e.String(idField)),
				notice.F("routeColor", color.String()),
				notice.F("routeTextColor", text.String()),
				notice.F("contrastRatio", math.Round(ratio*100)/100)))
		}
		return true
	})
}

func contrast(a, b gtfs.Color) float64 {
	la, lb := a.Luminance(), b.Luminance()
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}
