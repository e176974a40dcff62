package table

// Status is the load state of one table. Statuses are ordered: a table
// whose status is below StatusParsableHeadersAndRows cannot be validated.
type Status int

const (
	// StatusNoFile is the state of a table before its file is looked up.
	StatusNoFile Status = iota
	StatusMissingRequired
	// StatusEmpty covers an empty file and an absent optional file;
	// Container.Present tells them apart.
	StatusEmpty
	StatusUnparsableHeaders
	// StatusParsableHeaders means rows stopped loading on a malformed record.
	StatusParsableHeaders
	StatusParsableHeadersAndRows
)

var statusNames = [...]string{
	StatusNoFile:                 "no_file",
	StatusMissingRequired:        "missing_required",
	StatusEmpty:                  "empty",
	StatusUnparsableHeaders:      "unparsable_headers",
	StatusParsableHeaders:        "parsable_headers",
	StatusParsableHeadersAndRows: "parsable_headers_and_rows",
}

func (s Status) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// Usable reports whether validators may run against the table.
func (s Status) Usable() bool { return s >= StatusParsableHeadersAndRows }
