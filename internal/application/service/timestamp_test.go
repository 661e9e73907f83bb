package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTimestamp(t *testing.T) {
	zone := time.FixedZone("CET", 3600)
	now := time.Date(2024, 11, 11, 14, 30, 0, 0, zone)

	tests := []struct {
		name  string
		epoch int64
		now   time.Time
		want  string
	}{
		{"now", now.Unix(), now, "at 14:30"},
		{"earlier today", time.Date(2024, 11, 11, 0, 5, 0, 0, zone).Unix(), now, "at 00:05"},
		{"25 hours ago", now.Unix() - 90000, now, "yesterday"},
		{"just before midnight", time.Date(2024, 11, 10, 23, 59, 0, 0, zone).Unix(),
			time.Date(2024, 11, 11, 0, 1, 0, 0, zone), "yesterday"},
		{"start of previous day", time.Date(2024, 11, 10, 0, 0, 0, 0, zone).Unix(), now, "yesterday"},
		{"two days ago", now.AddDate(0, 0, -2).Unix(), now, "a long time ago"},
		{"last year", now.AddDate(-1, 0, 0).Unix(), now, "a long time ago"},
		{"tomorrow", now.AddDate(0, 0, 1).Unix(), now, "a long time ago"},
		{"yesterday across a month boundary", time.Date(2024, 10, 31, 12, 0, 0, 0, zone).Unix(),
			time.Date(2024, 11, 1, 8, 0, 0, 0, zone), "yesterday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTimestamp(tt.epoch, tt.now))
		})
	}
}

func TestFormatTimestampUsesCallerZone(t *testing.T) {
	// 23:30 UTC is already the next day in Tokyo
	epoch := time.Date(2024, 11, 10, 23, 30, 0, 0, time.UTC).Unix()
	tokyo := time.FixedZone("JST", 9*3600)
	now := time.Date(2024, 11, 11, 10, 0, 0, 0, tokyo)

	assert.Equal(t, "at 08:30", FormatTimestamp(epoch, now))
	assert.Equal(t, "yesterday", FormatTimestamp(epoch, now.In(time.UTC).Add(12*time.Hour)))
}
