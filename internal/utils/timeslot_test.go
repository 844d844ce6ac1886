package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDateStrict(t *testing.T) {
	got, err := ParseDate("2024-05-01")
	assert.NoError(t, err)
	assert.Equal(t, "2024-05-01", got)

	got, err = ParseDate(" 2024-05-01 ")
	assert.NoError(t, err)
	assert.Equal(t, "2024-05-01", got)

	for _, bad := range []string{"2024-5-1", "01-05-2024", "2024/05/01", "", "yesterday"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestParseClockStrict(t *testing.T) {
	got, err := ParseClock("09:00")
	assert.NoError(t, err)
	assert.Equal(t, "09:00", got)

	for _, bad := range []string{"9:00", "09:00:00", "24:00", "09.00", ""} {
		_, err := ParseClock(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestNormalizeClock(t *testing.T) {
	assert.Equal(t, "09:00", NormalizeClock("09:00:00"))
	assert.Equal(t, "09:00", NormalizeClock("09:00"))
	assert.Equal(t, "9:0", NormalizeClock(" 9:0 "))
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     string
		want                           bool
	}{
		{"identical", "09:00", "10:00", "09:00", "10:00", true},
		{"partial", "09:00", "10:00", "09:30", "10:30", true},
		{"contained", "09:00", "12:00", "10:00", "11:00", true},
		{"adjacent after", "09:00", "10:00", "10:00", "11:00", false},
		{"adjacent before", "10:00", "11:00", "09:00", "10:00", false},
		{"disjoint", "09:00", "10:00", "14:00", "15:00", false},
		{"stored seconds form", "09:00:00", "10:00:00", "09:30", "10:30", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd))
			assert.Equal(t, tc.want, Overlaps(tc.bStart, tc.bEnd, tc.aStart, tc.aEnd), "overlap must be symmetric")
		})
	}
}

func TestSlotHours(t *testing.T) {
	assert.Equal(t, 1.0, SlotHours("09:00", "10:00"))
	assert.Equal(t, 1.5, SlotHours("09:00", "10:30"))
	assert.Equal(t, 0.0, SlotHours("10:00", "09:00"))
	assert.Equal(t, 0.0, SlotHours("bad", "10:00"))
}
