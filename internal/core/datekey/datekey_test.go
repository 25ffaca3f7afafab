package datekey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromTime(t *testing.T) {
	brt := time.FixedZone("BRT", -3*60*60)
	jst := time.FixedZone("JST", 9*60*60)

	tests := []struct {
		name string
		in   time.Time
		want Key
	}{
		{"zero padded", time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC), "2024-03-05"},
		{"late evening west of UTC", time.Date(2024, 3, 15, 23, 30, 0, 0, brt), "2024-03-15"},
		{"early morning east of UTC", time.Date(2024, 3, 15, 0, 15, 0, 0, jst), "2024-03-15"},
		{"year end", time.Date(2023, 12, 31, 23, 59, 59, 0, brt), "2023-12-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromTime(tt.in))
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"2024-03-15", false},
		{"2024-02-29", false},
		{"2023-02-29", true},
		{"2024-3-15", true},
		{"2024-03-5", true},
		{"20240315", true},
		{"2024/03/15", true},
		{"2024-03-15T00:00:00Z", true},
		{"", true},
		{"2024-13-01", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			k, err := Parse(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidKey)
				assert.True(t, k.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, Key(tt.in), k)
		})
	}
}

func TestParse_RoundTrip(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)
	for i := range 400 {
		day := start.AddDate(0, 0, i)
		k := FromTime(day)

		parsed, err := Parse(k.String())
		require.NoError(t, err)

		got, err := parsed.Time(time.Local)
		require.NoError(t, err)
		assert.Equal(t, k, FromTime(got))
	}
}

func TestKey_AddDays(t *testing.T) {
	assert.Equal(t, Key("2024-03-01"), MustParse("2024-02-29").AddDays(1))
	assert.Equal(t, Key("2023-12-31"), MustParse("2024-01-01").AddDays(-1))
	assert.Equal(t, Key("2024-03-22"), MustParse("2024-03-15").AddDays(7))
}

func TestKey_AddMonths(t *testing.T) {
	tests := []struct {
		from string
		n    int
		want Key
	}{
		{"2024-01-31", 1, "2024-02-29"},
		{"2023-01-31", 1, "2023-02-28"},
		{"2024-03-31", -1, "2024-02-29"},
		{"2024-12-15", 1, "2025-01-15"},
		{"2024-01-15", -1, "2023-12-15"},
		{"2024-05-31", 1, "2024-06-30"},
	}

	for _, tt := range tests {
		t.Run(tt.from, func(t *testing.T) {
			assert.Equal(t, tt.want, MustParse(tt.from).AddMonths(tt.n))
		})
	}
}

func TestKey_Weekday(t *testing.T) {
	assert.Equal(t, time.Friday, MustParse("2024-03-15").Weekday())
	assert.Equal(t, time.Sunday, MustParse("2024-09-01").Weekday())
}

func TestKey_FirstOfMonth(t *testing.T) {
	assert.Equal(t, Key("2024-02-01"), MustParse("2024-02-29").FirstOfMonth())
}

func TestKey_SameMonth(t *testing.T) {
	assert.True(t, MustParse("2024-02-01").SameMonth(MustParse("2024-02-29")))
	assert.False(t, MustParse("2024-02-01").SameMonth(MustParse("2023-02-01")))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, DaysBetween("2024-03-15", "2024-03-15"))
	assert.Equal(t, 3, DaysBetween("2024-03-15", "2024-03-18"))
	assert.Equal(t, -1, DaysBetween("2024-03-15", "2024-03-14"))
	assert.Equal(t, 366, DaysBetween("2024-01-01", "2025-01-01"))
	// Spans the US spring-forward transition.
	assert.Equal(t, 1, DaysBetween("2024-03-10", "2024-03-11"))
}

func TestToday(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.Local) }
	assert.Equal(t, Key("2024-03-15"), Today(now))
}

func TestParseHuman(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.Local)

	t.Run("canonical key", func(t *testing.T) {
		k, err := ParseHuman(" 2024-04-01 ", now)
		require.NoError(t, err)
		assert.Equal(t, Key("2024-04-01"), k)
	})

	t.Run("tomorrow", func(t *testing.T) {
		k, err := ParseHuman("tomorrow", now)
		require.NoError(t, err)
		assert.Equal(t, Key("2024-03-16"), k)
	})

	t.Run("gibberish", func(t *testing.T) {
		_, err := ParseHuman("qwxz", now)
		require.Error(t, err)
	})
}
