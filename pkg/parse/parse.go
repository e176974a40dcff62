// Package parse turns raw CSV cells into typed values according to the
// declared type of their column.
package parse

import (
	"math"
	"net/mail"
	"net/url"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // IANA zones on hosts without a zoneinfo database
	"unicode"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"

	"github.com/MobilityData/gtfs-validator-sub014/pkg/gtfs"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/notice"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/schema"
)

// Value is a parsed cell. Only the member matching the field kind is set.
type Value struct {
	Str   string
	Int   int32
	Float float64
}

// Issue is a problem found while parsing one cell.
type Issue struct {
	Def *notice.Definition
	// Fatal issues leave the field absent
	Fatal bool
	// Extra context appended after the cell location
	Extra []notice.Field
}

// Reporter receives the issues of a cell in the order they are found.
type Reporter func(Issue)

// Parser parses cells. It holds no per-cell state and is safe for
// concurrent use.
type Parser struct {
	region string
}

// NewParser creates a parser. countryCode is the ISO 3166-1 alpha-2 region
// used for phone numbers without an international prefix; it may be empty.
func NewParser(countryCode string) *Parser {
	return &Parser{region: strings.ToUpper(countryCode)}
}

// Parse parses raw according to f. It returns false when the field must be
// treated as absent: either raw is empty or a fatal issue was reported.
func (p *Parser) Parse(raw string, f *schema.FieldSchema, report Reporter) (Value, bool) {
	if trimmed := strings.TrimSpace(raw); trimmed != raw {
		report(Issue{Def: LeadingOrTrailingSpaces})
		raw = trimmed
	}
	if raw == "" {
		return Value{}, false
	}

	fail := func(def *notice.Definition, extra ...notice.Field) (Value, bool) {
		report(Issue{Def: def, Fatal: true, Extra: extra})
		return Value{}, false
	}

	switch f.Type {
	case schema.TypeID:
		if !isPrintableASCII(raw) {
			report(Issue{Def: NonASCIIOrNonPrintable})
		}
		return Value{Str: raw}, true

	case schema.TypeText:
		return Value{Str: raw}, true

	case schema.TypeInteger:
		v, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return fail(InvalidInteger)
		}
		if !f.Bounds.Allows(float64(v)) {
			return fail(NumberOutOfRange, notice.F("typeName", f.Bounds.String()+" integer"))
		}
		p.checkSuspicious(f, float64(v), report)
		return Value{Int: int32(v)}, true

	case schema.TypeEnum:
		v, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return fail(InvalidInteger)
		}
		if !f.HasEnumValue(int(v)) {
			report(Issue{Def: UnexpectedEnumValue})
		}
		return Value{Int: int32(v)}, true

	case schema.TypeFloat, schema.TypeCurrencyAmount:
		v, ok := parseFloat(raw)
		if !ok {
			return fail(InvalidFloat)
		}
		if !f.Bounds.Allows(v) {
			return fail(NumberOutOfRange, notice.F("typeName", f.Bounds.String()+" float"))
		}
		p.checkSuspicious(f, v, report)
		return Value{Float: v}, true

	case schema.TypeLatitude, schema.TypeLongitude:
		v, ok := parseFloat(raw)
		if !ok {
			return fail(InvalidFloat)
		}
		limit := 90.0
		if f.Type == schema.TypeLongitude {
			limit = 180
		}
		if v < -limit || v > limit {
			return fail(NumberOutOfRange, notice.F("typeName", f.Type.String()))
		}
		p.checkSuspicious(f, v, report)
		return Value{Float: v}, true

	case schema.TypeDate:
		d, err := gtfs.ParseDate(raw)
		if err != nil {
			return fail(InvalidDate)
		}
		return Value{Int: int32(d)}, true

	case schema.TypeTime:
		t, err := gtfs.ParseTime(raw)
		if err != nil {
			return fail(InvalidTime)
		}
		return Value{Int: int32(t)}, true

	case schema.TypeColor:
		c, err := gtfs.ParseColor(raw)
		if err != nil {
			return fail(InvalidColor)
		}
		return Value{Int: int32(c)}, true

	case schema.TypeURL:
		if !isValidURL(raw) {
			return fail(InvalidURL)
		}
		return Value{Str: raw}, true

	case schema.TypeEmail:
		if !isValidEmail(raw) {
			return fail(InvalidEmail)
		}
		return Value{Str: raw}, true

	case schema.TypePhone:
		if !p.isValidPhone(raw) {
			return fail(InvalidPhoneNumber)
		}
		return Value{Str: raw}, true

	case schema.TypeCurrencyCode:
		if _, err := currency.ParseISO(raw); err != nil {
			return fail(InvalidCurrency)
		}
		return Value{Str: raw}, true

	case schema.TypeTimezone:
		if !isValidTimezone(raw) {
			return fail(InvalidTimezone)
		}
		return Value{Str: raw}, true

	case schema.TypeLanguageCode:
		if _, err := language.Parse(raw); err != nil {
			return fail(InvalidLanguageCode)
		}
		return Value{Str: raw}, true
	}
	return Value{Str: raw}, true
}

func (p *Parser) checkSuspicious(f *schema.FieldSchema, v float64, report Reporter) {
	if f.Suspicious != nil && !f.Suspicious.Contains(v) {
		report(Issue{Def: SuspiciousNumericValue, Extra: []notice.Field{
			notice.F("rangeMin", f.Suspicious.Min),
			notice.F("rangeMax", f.Suspicious.Max),
		}})
	}
}

func parseFloat(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func isPrintableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

func isValidURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := u.Hostname()
	if host == "" || strings.ContainsFunc(host, unicode.IsSpace) {
		return false
	}
	return true
}

func isValidEmail(raw string) bool {
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return false
	}
	at := strings.LastIndexByte(raw, '@')
	return at > 0 && strings.Contains(raw[at+1:], ".")
}

func isValidTimezone(raw string) bool {
	if raw == "Local" {
		return false
	}
	_, err := time.LoadLocation(raw)
	return err == nil
}

// isValidPhone checks raw against the configured region. Without a region
// only numbers in international form can be checked; others must at least
// contain three digits.
func (p *Parser) isValidPhone(raw string) bool {
	if p.region == "" && !strings.HasPrefix(raw, "+") {
		digits := 0
		for _, r := range raw {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		return digits >= 3
	}
	num, err := phonenumbers.Parse(raw, p.region)
	if err != nil {
		return false
	}
	return phonenumbers.IsPossibleNumber(num)
}
