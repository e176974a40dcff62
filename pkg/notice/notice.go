// Package notice defines validation findings and the run-scoped container
// that collects, filters and aggregates them into a report.
//
// A Notice is one value type for every kind of finding: a code, a severity
// and an ordered context of named values. Each rule declares its kinds
// once as Definitions and builds notices from them:
//
//	var UnusedShape = notice.Define("unused_shape", notice.Warning)
//
//	container.Add(UnusedShape.New(
//	    notice.F("shapeId", id),
//	    notice.F("csvRowNumber", row),
//	))
package notice

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Severity classifies a notice.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "ERROR"
	case Warning:
		return "WARNING"
	default:
		return "INFO"
	}
}

// MarshalText renders the severity name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a severity name, case-insensitively.
func (s *Severity) UnmarshalText(b []byte) error {
	v, err := ParseSeverity(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseSeverity parses INFO, WARNING or ERROR.
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToUpper(name) {
	case "INFO":
		return Info, nil
	case "WARNING":
		return Warning, nil
	case "ERROR":
		return Error, nil
	}
	return Info, fmt.Errorf("unknown severity %q", name)
}

// Field is one named context value.
type Field struct {
	Name  string
	Value interface{}
}

// F builds a context field.
func F(name string, value interface{}) Field {
	return Field{Name: name, Value: value}
}

// Notice is an immutable validation finding.
type Notice struct {
	code     string
	severity Severity
	context  []Field
}

// Code returns the notice code.
func (n Notice) Code() string { return n.code }

// Severity returns the notice severity.
func (n Notice) Severity() Severity { return n.severity }

// Context returns the ordered context. The slice must not be modified.
func (n Notice) Context() []Field { return n.context }

// Get returns the context value named name.
func (n Notice) Get(name string) (interface{}, bool) {
	for _, f := range n.context {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// WithSeverity returns a copy of n with another severity.
func (n Notice) WithSeverity(s Severity) Notice {
	n.severity = s
	return n
}

// Equal reports whether n and other have the same code and context.
func (n Notice) Equal(other Notice) bool {
	if n.code != other.code || len(n.context) != len(other.context) {
		return false
	}
	for i := range n.context {
		if n.context[i].Name != other.context[i].Name ||
			compareValues(n.context[i].Value, other.context[i].Value) != 0 {
			return false
		}
	}
	return true
}

func (n Notice) String() string {
	var b strings.Builder
	b.WriteString(n.code)
	b.WriteByte('[')
	b.WriteString(n.severity.String())
	b.WriteByte(']')
	for _, f := range n.context {
		fmt.Fprintf(&b, " %s=%v", f.Name, f.Value)
	}
	return b.String()
}

// Resolver computes a severity from a notice context.
type Resolver func(context []Field) Severity

// Definition declares one notice kind.
type Definition struct {
	Code     string
	Severity Severity
	Resolver Resolver
}

// New builds a notice of this kind.
func (d *Definition) New(fields ...Field) Notice {
	severity := d.Severity
	if d.Resolver != nil {
		severity = d.Resolver(fields)
	}
	return Notice{code: d.Code, severity: severity, context: fields}
}

var (
	catalogMu sync.RWMutex
	catalog   = make(map[string]*Definition)
)

// Define declares and registers a notice kind with a fixed severity.
// It panics if the code is already defined.
func Define(code string, severity Severity) *Definition {
	return register(&Definition{Code: code, Severity: severity})
}

// DefineResolved declares a notice kind whose severity depends on its
// context. severity is the nominal severity listed in the catalog.
func DefineResolved(code string, severity Severity, resolver Resolver) *Definition {
	return register(&Definition{Code: code, Severity: severity, Resolver: resolver})
}

func register(d *Definition) *Definition {
	catalogMu.Lock()
	defer catalogMu.Unlock()
	if _, dup := catalog[d.Code]; dup {
		panic("notice: duplicate definition " + d.Code)
	}
	catalog[d.Code] = d
	return d
}

// Lookup returns the definition of code.
func Lookup(code string) (*Definition, bool) {
	catalogMu.RLock()
	defer catalogMu.RUnlock()
	d, ok := catalog[code]
	return d, ok
}

// Definitions returns every registered definition sorted by code.
func Definitions() []*Definition {
	catalogMu.RLock()
	out := make([]*Definition, 0, len(catalog))
	for _, d := range catalog {
		out = append(out, d)
	}
	catalogMu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Common context field names.
const (
	FieldFilename     = "filename"
	FieldCSVRowNumber = "csvRowNumber"
	FieldName         = "fieldName"
	FieldValue        = "fieldValue"
)

// System notices raised outside of validation rules.
var (
	RuntimeExceptionInValidator = Define("runtime_exception_in_validator_error", Error)
	RuntimeExceptionInLoader    = Define("runtime_exception_in_loader_error", Error)
	IOError                     = Define("i_o_error", Error)
)
