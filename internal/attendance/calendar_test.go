package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodFromText(t *testing.T) {
	p, ok := PeriodFromText("统计日期：2025-11-26 至 2025-12-25 报表生成于 2025-12-26")
	require.True(t, ok)
	assert.Equal(t, "2025-11-26 ~ 2025-12-25", p.String())
	assert.Equal(t, "11", p.MonthLabel())
	assert.Len(t, p.Dates(), 30)

	_, ok = PeriodFromText("月度汇总")
	assert.False(t, ok)

	_, ok = PeriodFromText("2025-12-25 至 2025-11-26")
	assert.False(t, ok)
}

func TestNewPeriod(t *testing.T) {
	_, err := NewPeriod("2025-13-01", "2025-12-25")
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	p, err := NewPeriod("2025-12-01", "2025-12-01")
	require.NoError(t, err)
	assert.Len(t, p.Dates(), 1)
}

func TestOnDate(t *testing.T) {
	date := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		raw      string
		expected bool
	}{
		{"2025-12-01", true},
		{"2025-12-01 星期一", true},
		{"2025/12/01", true},
		{"25-12-01 星期一", true},
		{"12-01", true},
		{"2024-12-01", false},
		{"2025-12-02", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, OnDate(tt.raw, date))
		})
	}
}

func TestIsWeekend(t *testing.T) {
	assert.False(t, IsWeekend(monday))
	assert.True(t, IsWeekend(saturday))
	assert.True(t, IsWeekend(saturday.AddDate(0, 0, 1)))
}
