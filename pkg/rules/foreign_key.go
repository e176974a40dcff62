package rules

import (
	"github.com/MobilityData/gtfs-validator-sub014/pkg/columnar"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/notice"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/schema"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/table"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/validator"
)

// ForeignKey checks one declared reference: every child value must exist
// among the parent values.
type ForeignKey struct {
	ref schema.ForeignKey
}

// NewForeignKey creates the rule for ref.
func NewForeignKey(ref schema.ForeignKey) *ForeignKey {
	return &ForeignKey{ref: ref}
}

func (v *ForeignKey) Name() string {
	return "foreign_key:" + v.ref.ChildTable + "." + v.ref.ChildField
}

// Requires names only the child. An absent parent file means every child
// value dangles.
func (v *ForeignKey) Requires() []string { return []string{v.ref.ChildTable} }

func (v *ForeignKey) Validate(env *validator.Env, notices *notice.Container) {
	child := env.Feed.Table(v.ref.ChildTable)
	parent := env.Feed.Table(v.ref.ParentTable)
	if parent == nil {
		return
	}
	absent := !parent.Present() && parent.Status() == table.StatusEmpty
	if !absent && !parent.Status().Usable() {
		return
	}

	childField, ok := child.Schema().FieldIndex(v.ref.ChildField)
	if !ok || !child.HasColumn(v.ref.ChildField) {
		return
	}
	keys := parentKeys(parent, v.ref.ParentField)

	child.Entities().Each(func(e columnar.Entity) bool {
		value := e.String(childField)
		if value == "" {
			return true
		}
		if _, found := keys[value]; !found {
			notices.Add(ForeignKeyViolation.New(
				notice.F("childFilename", v.ref.ChildTable),
				notice.F("childFieldName", v.ref.ChildField),
				notice.F("parentFilename", v.ref.ParentTable),
				notice.F("parentFieldName", v.ref.ParentField),
				notice.F(notice.FieldValue, value),
				notice.F(notice.FieldCSVRowNumber, e.CSVRowNumber())))
		}
		return true
	})
}

func parentKeys(parent *table.Container, field string) map[string]struct{} {
	keys := make(map[string]struct{}, parent.Len())
	idx, ok := parent.Schema().FieldIndex(field)
	if !ok {
		return keys
	}
	parent.Entities().Each(func(e columnar.Entity) bool {
		if v := e.String(idx); v != "" {
			keys[v] = struct{}{}
		}
		return true
	})
	return keys
}
