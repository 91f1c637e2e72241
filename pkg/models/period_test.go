package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(DateLayout, s)
	require.NoError(t, err)
	return d
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("2023-06")
	require.NoError(t, err)
	assert.Equal(t, Period{Year: 2023, Month: 6}, p)

	for _, bad := range []string{"", "2023-13", "2023/06", "06-2023", "2023-6-1"} {
		_, err := ParsePeriod(bad)
		assert.Error(t, err, bad)
	}
}

func TestPeriod_Validate(t *testing.T) {
	assert.NoError(t, Period{Year: 2023, Month: 1}.Validate())
	assert.NoError(t, Period{Year: 2023, Month: 12}.Validate())
	assert.Error(t, Period{Year: 2023, Month: 0}.Validate())
	assert.Error(t, Period{Year: 2023, Month: 13}.Validate())
	assert.Error(t, Period{Year: 0, Month: 5}.Validate())
}

func TestPeriod_Contains(t *testing.T) {
	p := Period{Year: 2023, Month: 6}

	tests := []struct {
		date string
		want bool
	}{
		{"2023-06-01", true},
		{"2023-06-15", true},
		{"2023-06-30", true},
		{"2023-05-31", false},
		{"2023-07-01", false},
		{"2022-06-15", false},
		{"2024-06-15", false},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Contains(date(t, tt.date)))
		})
	}
}

func TestPeriod_Naming(t *testing.T) {
	p := Period{Year: 2023, Month: 6}
	assert.Equal(t, "2023-06", p.String())
	assert.Equal(t, "2023_6", p.Key())
}

func TestPeriod_FilingDeadline(t *testing.T) {
	assert.Equal(t, date(t, "2023-07-25"), Period{Year: 2023, Month: 6}.FilingDeadline())
	assert.Equal(t, date(t, "2024-01-25"), Period{Year: 2023, Month: 12}.FilingDeadline())
}
