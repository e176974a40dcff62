package notice

import (
	"bytes"
	"sort"

	"github.com/MobilityData/gtfs-validator-sub014/pkg/json"
)

// DefaultMaxSamples caps the sample contexts kept per report entry.
const DefaultMaxSamples = 100

// Context is an ordered notice context. It marshals to a JSON object whose
// keys keep their declaration order.
type Context []Field

// MarshalJSON implements json.Marshaler.
func (c Context) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// NoticeReport aggregates the notices sharing a code and severity.
type NoticeReport struct {
	Code          string    `json:"code"`
	Severity      Severity  `json:"severity"`
	TotalNotices  int       `json:"totalNotices"`
	SampleNotices []Context `json:"sampleNotices"`
}

// Summary counts notices by severity.
type Summary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
}

// Report is the resolved outcome of a run.
type Report struct {
	Notices      []NoticeReport `json:"notices"`
	Summary      Summary        `json:"summary"`
	SystemErrors []NoticeReport `json:"systemErrors,omitempty"`
}

// ResolveOptions configures Resolve.
type ResolveOptions struct {
	Filters   []Filter
	Overrides map[string]Severity
	// MaxSamples caps samples per entry; 0 means DefaultMaxSamples
	MaxSamples int
}

// Resolve filters the container's notices, applies severity overrides and
// aggregates them by code and severity. The container is not modified.
func Resolve(c *Container, opts ResolveOptions) *Report {
	maxSamples := opts.MaxSamples
	if maxSamples <= 0 {
		maxSamples = DefaultMaxSamples
	}

	notices := applyFilters(c.Notices(), opts.Filters)
	if len(opts.Overrides) > 0 {
		for i, n := range notices {
			if s, ok := opts.Overrides[n.code]; ok {
				notices[i] = n.WithSeverity(s)
			}
		}
	}

	report := &Report{
		Notices:      aggregate(notices, maxSamples),
		SystemErrors: aggregate(c.SystemErrors(), maxSamples),
	}
	for _, n := range notices {
		switch n.severity {
		case Error:
			report.Summary.Errors++
		case Warning:
			report.Summary.Warnings++
		default:
			report.Summary.Infos++
		}
	}
	return report
}

type groupKey struct {
	code     string
	severity Severity
}

// aggregate groups notices by code and severity. Entries are ordered by
// severity descending, then code; samples by context.
func aggregate(notices []Notice, maxSamples int) []NoticeReport {
	groups := make(map[groupKey][]Notice)
	for _, n := range notices {
		k := groupKey{n.code, n.severity}
		groups[k] = append(groups[k], n)
	}

	out := make([]NoticeReport, 0, len(groups))
	for k, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			return compareContexts(group[i].context, group[j].context) < 0
		})
		n := len(group)
		if n > maxSamples {
			n = maxSamples
		}
		samples := make([]Context, n)
		for i := 0; i < n; i++ {
			samples[i] = Context(group[i].context)
		}
		out = append(out, NoticeReport{
			Code:          k.code,
			Severity:      k.severity,
			TotalNotices:  len(group),
			SampleNotices: samples,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Severity != out[j].Severity {
			return out[i].Severity > out[j].Severity
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// Find returns the entry for code and severity.
func (r *Report) Find(code string, severity Severity) (NoticeReport, bool) {
	for _, e := range r.Notices {
		if e.Code == code && e.Severity == severity {
			return e, true
		}
	}
	return NoticeReport{}, false
}

// Total returns the total count of code across severities.
func (r *Report) Total(code string) int {
	total := 0
	for _, e := range r.Notices {
		if e.Code == code {
			total += e.TotalNotices
		}
	}
	return total
}

// ErrorCodes returns the codes with at least one ERROR notice, sorted.
func (r *Report) ErrorCodes() []string {
	var codes []string
	for _, e := range r.Notices {
		if e.Severity == Error {
			codes = append(codes, e.Code)
		}
	}
	sort.Strings(codes)
	return codes
}

// HasSameErrorCodes reports whether r and other raise errors with the
// same set of codes.
func (r *Report) HasSameErrorCodes(other *Report) bool {
	a, b := r.ErrorCodes(), other.ErrorCodes()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// NewErrorCodes returns the error codes of r that baseline does not raise.
func (r *Report) NewErrorCodes(baseline *Report) []string {
	known := make(map[string]bool)
	for _, code := range baseline.ErrorCodes() {
		known[code] = true
	}
	var out []string
	for _, code := range r.ErrorCodes() {
		if !known[code] {
			out = append(out, code)
		}
	}
	return out
}
