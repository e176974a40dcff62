package notice

// Action is what a filter does to a notice.
type Action int

const (
	Keep Action = iota
	Drop
	Demote
)

// Decision is a filter verdict. Severity is used by Demote.
type Decision struct {
	Action   Action
	Severity Severity
}

// Index gives filters read access to the unfiltered notice set.
type Index struct {
	byCode map[string][]Notice
}

// NewIndex indexes notices by code.
func NewIndex(notices []Notice) *Index {
	idx := &Index{byCode: make(map[string][]Notice)}
	for _, n := range notices {
		idx.byCode[n.code] = append(idx.byCode[n.code], n)
	}
	return idx
}

// ByCode returns the notices with the given code.
func (idx *Index) ByCode(code string) []Notice {
	return idx.byCode[code]
}

// Filter decides the fate of one notice given the whole notice set.
// Every filter sees the same unfiltered set, so the order of filters does
// not change which companions they observe.
type Filter interface {
	Decide(n Notice, idx *Index) Decision
}

// FilterFunc adapts a function to Filter.
type FilterFunc func(n Notice, idx *Index) Decision

// Decide implements Filter.
func (f FilterFunc) Decide(n Notice, idx *Index) Decision { return f(n, idx) }

// Selector matches notices by code and exact context values.
type Selector struct {
	Code  string
	Match []Field
}

// Matches reports whether n is selected.
func (s Selector) Matches(n Notice) bool {
	if n.code != s.Code {
		return false
	}
	for _, want := range s.Match {
		got, ok := n.Get(want.Name)
		if !ok || compareValues(got, want.Value) != 0 {
			return false
		}
	}
	return true
}

// CompanionRule drops or demotes Subject notices depending on whether a
// Companion notice with the same JoinOn values exists.
//
// With WhenPresent false the rule acts unless a companion exists: the
// subject is reported only when its companion fires too. With WhenPresent
// true the rule acts when a companion exists.
type CompanionRule struct {
	Subject     Selector
	Companion   Selector
	JoinOn      []string
	WhenPresent bool
	Action      Action
	// DemoteTo is the severity given by a Demote action
	DemoteTo Severity
	// Alternates also count as companions, each joined on its own fields.
	Alternates []Companion
}

// Companion is a further companion of a CompanionRule.
type Companion struct {
	Selector Selector
	JoinOn   []string
}

// Decide implements Filter.
func (r CompanionRule) Decide(n Notice, idx *Index) Decision {
	if !r.Subject.Matches(n) {
		return Decision{}
	}
	if r.hasCompanion(n, idx) != r.WhenPresent {
		return Decision{}
	}
	return Decision{Action: r.Action, Severity: r.DemoteTo}
}

func (r CompanionRule) hasCompanion(n Notice, idx *Index) bool {
	if (Companion{Selector: r.Companion, JoinOn: r.JoinOn}).find(n, idx) {
		return true
	}
	for _, alt := range r.Alternates {
		if alt.find(n, idx) {
			return true
		}
	}
	return false
}

func (c Companion) find(n Notice, idx *Index) bool {
	for _, other := range idx.ByCode(c.Selector.Code) {
		if !c.Selector.Matches(other) {
			continue
		}
		joined := true
		for _, name := range c.JoinOn {
			a, okA := n.Get(name)
			b, okB := other.Get(name)
			if !okA || !okB || compareValues(a, b) != 0 {
				joined = false
				break
			}
		}
		if joined {
			return true
		}
	}
	return false
}

// PairedMissingFields returns the two rules that report a missing
// recommended field of a pair only when the other field of the same row
// is missing as well. The other field also counts as missing when its
// whole column is, as reported by a columnCode notice for the file.
func PairedMissingFields(fieldCode, columnCode, filename, first, second string) []Filter {
	sel := func(code, field string) Selector {
		return Selector{Code: code, Match: []Field{F(FieldFilename, filename), F(FieldName, field)}}
	}
	join := []string{FieldFilename, FieldCSVRowNumber}
	rule := func(subject, other string) Filter {
		return CompanionRule{
			Subject:    sel(fieldCode, subject),
			Companion:  sel(fieldCode, other),
			JoinOn:     join,
			Action:     Drop,
			Alternates: []Companion{{Selector: sel(columnCode, other), JoinOn: []string{FieldFilename}}},
		}
	}
	return []Filter{rule(first, second), rule(second, first)}
}

// applyFilters runs every filter over notices. Drop wins over Demote; a
// notice is demoted to the lowest severity asked for.
func applyFilters(notices []Notice, filters []Filter) []Notice {
	if len(filters) == 0 {
		return notices
	}
	idx := NewIndex(notices)
	out := make([]Notice, 0, len(notices))
	for _, n := range notices {
		dropped := false
		severity := n.severity
		for _, f := range filters {
			d := f.Decide(n, idx)
			switch d.Action {
			case Drop:
				dropped = true
			case Demote:
				if d.Severity < severity {
					severity = d.Severity
				}
			}
			if dropped {
				break
			}
		}
		if !dropped {
			out = append(out, n.WithSeverity(severity))
		}
	}
	return out
}
