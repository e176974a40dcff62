// Package gtfs defines the packed value types of GTFS dates, times and
// colors. Each fits an int32 column of the entity store.
package gtfs

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

var (
	ErrInvalidDate  = errors.New("invalid date")
	ErrInvalidTime  = errors.New("invalid time")
	ErrInvalidColor = errors.New("invalid color")
)

// Date is a service day packed as YYYYMMDD.
type Date int32

// ParseDate parses the YYYYMMDD form.
func ParseDate(s string) (Date, error) {
	if len(s) != 8 {
		return 0, ErrInvalidDate
	}
	t, err := time.Parse("20060102", s)
	if err != nil {
		return 0, ErrInvalidDate
	}
	return DateOf(t), nil
}

// DateOf packs the calendar date of t.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date(y*10000 + int(m)*100 + d)
}

// Year returns the year of d.
func (d Date) Year() int { return int(d) / 10000 }

// Month returns the month of d.
func (d Date) Month() time.Month { return time.Month(int(d) / 100 % 100) }

// Day returns the day of month of d.
func (d Date) Day() int { return int(d) % 100 }

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool { return d < other }

func (d Date) String() string {
	return fmt.Sprintf("%08d", int32(d))
}

// Time is a stop time in seconds since noon minus 12h of the service day.
// It may exceed 24h for trips running past midnight.
type Time int32

// ParseTime parses H:MM:SS, HH:MM:SS or HHH:MM:SS.
func ParseTime(s string) (Time, error) {
	n := len(s)
	if n < 7 || n > 9 || s[n-3] != ':' || s[n-6] != ':' {
		return 0, ErrInvalidTime
	}
	h, err := digits(s[:n-6])
	if err != nil {
		return 0, ErrInvalidTime
	}
	m, err := digits(s[n-5 : n-3])
	if err != nil || m > 59 {
		return 0, ErrInvalidTime
	}
	sec, err := digits(s[n-2:])
	if err != nil || sec > 59 {
		return 0, ErrInvalidTime
	}
	return Time(h*3600 + m*60 + sec), nil
}

func digits(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, ErrInvalidTime
		}
	}
	return strconv.Atoi(s)
}

// NewTime builds a Time from its components.
func NewTime(h, m, s int) Time { return Time(h*3600 + m*60 + s) }

// Seconds returns the number of seconds since noon minus 12h.
func (t Time) Seconds() int { return int(t) }

// String renders HH:MM:SS.
func (t Time) String() string {
	s := int(t)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, s/60%60, s%60)
}

// Color is a 24-bit RGB value.
type Color int32

// ParseColor parses six hex digits without a leading '#'.
func ParseColor(s string) (Color, error) {
	if len(s) != 6 {
		return 0, ErrInvalidColor
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, ErrInvalidColor
	}
	return Color(v), nil
}

// String renders six upper-case hex digits.
func (c Color) String() string {
	return fmt.Sprintf("%06X", int32(c))
}

// Luminance returns the WCAG 2.0 relative luminance in [0, 1]: the
// weighted sum of the linearized sRGB channels.
func (c Color) Luminance() float64 {
	r := linear(int32(c)>>16&0xff)
	g := linear(int32(c)>>8&0xff)
	b := linear(int32(c)&0xff)
	return 0.2126*r + 0.7152*g + 0.0722*b
}

func linear(channel int32) float64 {
	v := float64(channel) / 255
	if v <= 0.03928 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}
