// Package rules holds the cross-table and domain validation rules.
package rules

import (
	"github.com/MobilityData/gtfs-validator-sub014/pkg/schema"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/validator"
)

// RegisterDefaults adds every rule to r: one foreign key rule per reference
// declared by s, then the domain rules.
func RegisterDefaults(r *validator.Registry, s *schema.Registry) error {
	for _, ref := range s.ForeignKeys() {
		ref := ref
		fk := NewForeignKey(ref)
		if err := r.Register(fk.Name(), func() validator.Validator { return NewForeignKey(ref) }); err != nil {
			return err
		}
	}

	domain := []validator.Validator{
		ShapeUsage{},
		ShapeDistance{},
		StopTimeOrdering{},
		RouteAgencyURL{},
		StopAgencyURL{},
		StopRouteURL{},
		RouteColorContrast{},
		CalendarPresence{},
		CalendarExpiry{},
		FeedInfoDates{},
	}
	for _, v := range domain {
		v := v
		if err := r.Register(v.Name(), func() validator.Validator { return v }); err != nil {
			return err
		}
	}
	return nil
}
