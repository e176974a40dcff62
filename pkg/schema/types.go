package schema

import "fmt"

// FieldType is the declared type of a GTFS column.
type FieldType int

const (
	TypeID FieldType = iota
	TypeText
	TypeEnum
	TypeInteger
	TypeFloat
	TypeCurrencyAmount
	TypeDate
	TypeTime
	TypeColor
	TypeLatitude
	TypeLongitude
	TypePhone
	TypeEmail
	TypeURL
	TypeCurrencyCode
	TypeTimezone
	TypeLanguageCode
)

var fieldTypeNames = [...]string{
	TypeID:             "id",
	TypeText:           "text",
	TypeEnum:           "enum",
	TypeInteger:        "integer",
	TypeFloat:          "float",
	TypeCurrencyAmount: "currency_amount",
	TypeDate:           "date",
	TypeTime:           "time",
	TypeColor:          "color",
	TypeLatitude:       "latitude",
	TypeLongitude:      "longitude",
	TypePhone:          "phone_number",
	TypeEmail:          "email",
	TypeURL:            "url",
	TypeCurrencyCode:   "currency_code",
	TypeTimezone:       "timezone",
	TypeLanguageCode:   "language_code",
}

func (t FieldType) String() string {
	if int(t) >= 0 && int(t) < len(fieldTypeNames) {
		return fieldTypeNames[t]
	}
	return fmt.Sprintf("FieldType(%d)", int(t))
}

// Kind is the physical column a field type is stored in.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "string"
	}
}

// Kind returns the storage kind of t. Dates, times, colors and enums are
// packed into int32 columns.
func (t FieldType) Kind() Kind {
	switch t {
	case TypeEnum, TypeInteger, TypeDate, TypeTime, TypeColor:
		return KindInt
	case TypeFloat, TypeCurrencyAmount, TypeLatitude, TypeLongitude:
		return KindFloat
	default:
		return KindString
	}
}

// Bounds constrains the sign of a numeric field.
type Bounds int

const (
	Unbounded Bounds = iota
	Positive
	NonNegative
	NonZero
)

func (b Bounds) String() string {
	switch b {
	case Positive:
		return "positive"
	case NonNegative:
		return "non_negative"
	case NonZero:
		return "non_zero"
	default:
		return "unbounded"
	}
}

// Allows reports whether v satisfies the bound.
func (b Bounds) Allows(v float64) bool {
	switch b {
	case Positive:
		return v > 0
	case NonNegative:
		return v >= 0
	case NonZero:
		return v != 0
	default:
		return true
	}
}

// Range is an inclusive numeric interval.
type Range struct {
	Min, Max float64
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Reference names the parent column of a foreign key.
type Reference struct {
	Table string
	Field string
}

// FieldSchema describes one column of a table.
type FieldSchema struct {
	Name        string
	Type        FieldType
	Required    bool
	Recommended bool
	PrimaryKey  bool
	ForeignKey  *Reference
	// Enum lists the recognized values of an enum field
	Enum   []int
	Bounds Bounds
	// Suspicious is the range outside which a valid value draws a warning
	Suspicious *Range
}

// Field starts a field description.
func Field(name string, t FieldType) FieldSchema {
	return FieldSchema{Name: name, Type: t}
}

// Req marks the field required.
func (f FieldSchema) Req() FieldSchema { f.Required = true; return f }

// Rec marks the field recommended.
func (f FieldSchema) Rec() FieldSchema { f.Recommended = true; return f }

// Key marks the field part of the primary key.
func (f FieldSchema) Key() FieldSchema { f.PrimaryKey = true; return f }

// Ref declares a foreign key to table.field.
func (f FieldSchema) Ref(table, field string) FieldSchema {
	f.ForeignKey = &Reference{Table: table, Field: field}
	return f
}

// Values sets the recognized enum values.
func (f FieldSchema) Values(values ...int) FieldSchema { f.Enum = values; return f }

// Bound sets the sign constraint.
func (f FieldSchema) Bound(b Bounds) FieldSchema { f.Bounds = b; return f }

// Warn sets the range outside which values are suspicious.
func (f FieldSchema) Warn(min, max float64) FieldSchema {
	f.Suspicious = &Range{Min: min, Max: max}
	return f
}

// HasEnumValue reports whether v is a recognized enum value.
func (f *FieldSchema) HasEnumValue(v int) bool {
	for _, e := range f.Enum {
		if e == v {
			return true
		}
	}
	return false
}
