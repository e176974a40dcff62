package gtfs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("20240229")
	require.NoError(t, err)
	assert.Equal(t, Date(20240229), d)
	assert.Equal(t, 2024, d.Year())
	assert.Equal(t, time.February, d.Month())
	assert.Equal(t, 29, d.Day())
	assert.Equal(t, "20240229", d.String())
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), d.Time())

	for _, bad := range []string{"20230229", "2024-01-01", "2024011", "abcdefgh", ""} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrInvalidDate, bad)
	}
}

func TestDateOf(t *testing.T) {
	assert.Equal(t, Date(20231231), DateOf(time.Date(2023, 12, 31, 23, 59, 0, 0, time.UTC)))
	assert.True(t, Date(20230101).Before(Date(20230102)))
}

func TestParseTime(t *testing.T) {
	tests := map[string]Time{
		"8:05:09":   NewTime(8, 5, 9),
		"08:05:09":  NewTime(8, 5, 9),
		"25:00:00":  NewTime(25, 0, 0),
		"100:00:01": NewTime(100, 0, 1),
	}
	for in, want := range tests {
		got, err := ParseTime(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	assert.Equal(t, "25:00:00", NewTime(25, 0, 0).String())

	for _, bad := range []string{"8:5:09", "08:60:00", "08:00:60", "0a:00:00", "1000:00:00", "-1:00:00", ""} {
		_, err := ParseTime(bad)
		assert.ErrorIs(t, err, ErrInvalidTime, bad)
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("ff00A0")
	require.NoError(t, err)
	assert.Equal(t, "FF00A0", c.String())
	assert.InDelta(t, 1.0, Color(0xFFFFFF).Luminance(), 1e-9)
	assert.Zero(t, Color(0).Luminance())
	// mid grey is far darker than half once linearized
	assert.InDelta(t, 0.2159, Color(0x808080).Luminance(), 1e-3)
	assert.InDelta(t, 0.0331, Color(0x333333).Luminance(), 1e-3)

	for _, bad := range []string{"#FFFFFF", "FFF", "GGGGGG", ""} {
		_, err := ParseColor(bad)
		assert.ErrorIs(t, err, ErrInvalidColor, bad)
	}
}
