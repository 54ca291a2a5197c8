package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "0"},
		{"nan", "0"},
		{"--", "0"},
		{"3", "3"},
		{"1.5天", "1.5"},
		{" 0.5 ", "0.5"},
		{".5", "0.5"},
		{"-.5", "-0.5"},
		{"-2.5", "-2.5"},
		{"存班 4 天", "4"},
		{"2次 (3分钟)", "2"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseNumber(tt.input)
			assert.True(t, d(tt.expected).Equal(got), "got %s", got)
		})
	}
}

func TestParseOptionalNumber(t *testing.T) {
	v, ok := ParseOptionalNumber("1.5")
	assert.True(t, ok)
	assert.True(t, d("1.5").Equal(v))

	_, ok = ParseOptionalNumber("")
	assert.False(t, ok)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "张三", NormalizeName(" 张 三 "))
	assert.Equal(t, "李四", NormalizeName("李四\t"))
}

func TestNormalizeDayKey(t *testing.T) {
	tests := []struct {
		header   string
		expected string
		ok       bool
	}{
		{"5", "5", true},
		{"05", "5", true},
		{"5.0", "5", true},
		{"31", "31", true},
		{"32", "", false},
		{"0", "", false},
		{"5.5", "", false},
		{"姓名", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			key, ok := NormalizeDayKey(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, key)
		})
	}
}

func TestLookupDay(t *testing.T) {
	date := time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC)

	s, ok := lookupDay(map[string]DayStatus{"5": {Text: "休息"}}, date)
	assert.True(t, ok)
	assert.Equal(t, "休息", s.Text)

	s, ok = lookupDay(map[string]DayStatus{"05": {Text: "请假"}}, date)
	assert.True(t, ok)
	assert.Equal(t, "请假", s.Text)

	_, ok = lookupDay(map[string]DayStatus{"6": {Text: "正常"}}, date)
	assert.False(t, ok)
}
