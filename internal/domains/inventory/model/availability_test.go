package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"lodge/internal/domains/inventory/model"
	"lodge/shared/timezone"
)

func day(value string) time.Time {
	parsed, err := timezone.ParseDay(value)
	if err != nil {
		panic(err)
	}

	return parsed
}

func TestIsAvailable(t *testing.T) {
	entries := []model.Entry{
		{PropertyID: "prop-1", Date: day("2026-09-01"), Available: true},
		{PropertyID: "prop-1", Date: day("2026-09-02"), Available: false},
		{PropertyID: "prop-1", Date: day("2026-09-04"), Available: true},
	}

	tests := []struct {
		name string
		date time.Time
		want bool
	}{
		{
			name: "open day",
			date: day("2026-09-01"),
			want: true,
		},
		{
			name: "closed day",
			date: day("2026-09-02"),
			want: false,
		},
		{
			name: "day without entry is not available",
			date: day("2026-09-03"),
			want: false,
		},
		{
			name: "time of day does not matter",
			date: time.Date(2026, 9, 1, 23, 59, 0, 0, time.UTC),
			want: true,
		},
		{
			name: "non-utc timestamp truncates to the utc day",
			date: time.Date(2026, 9, 2, 12, 0, 0, 0, time.FixedZone("UTC+7", 7*3600)),
			want: false,
		},
		{
			name: "offset crossing midnight resolves to the previous utc day",
			date: time.Date(2026, 9, 2, 2, 0, 0, 0, time.FixedZone("UTC+7", 7*3600)),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, model.IsAvailable(entries, tt.date))
		})
	}
}

func TestIsAvailable_EmptyList(t *testing.T) {
	assert.False(t, model.IsAvailable(nil, day("2026-09-01")))
}

func TestSetAvailability(t *testing.T) {
	t.Run("updates existing entry in place", func(t *testing.T) {
		entries := []model.Entry{
			{PropertyID: "prop-1", Date: day("2026-09-01"), Available: true},
			{PropertyID: "prop-1", Date: day("2026-09-02"), Available: true},
		}

		result := model.SetAvailability(entries, "prop-1", day("2026-09-01"), false)

		assert.Len(t, result, 2)
		assert.False(t, model.IsAvailable(result, day("2026-09-01")))
		assert.True(t, model.IsAvailable(result, day("2026-09-02")))
	})

	t.Run("appends entry for a new day", func(t *testing.T) {
		entries := []model.Entry{
			{PropertyID: "prop-1", Date: day("2026-09-01"), Available: true},
		}

		result := model.SetAvailability(entries, "prop-1", day("2026-09-05"), true)

		assert.Len(t, result, 2)
		assert.True(t, model.IsAvailable(result, day("2026-09-05")))
	})

	t.Run("collapses duplicate entries for the same day", func(t *testing.T) {
		entries := []model.Entry{
			{PropertyID: "prop-1", Date: day("2026-09-01"), Available: true},
			{PropertyID: "prop-1", Date: day("2026-09-01"), Available: false},
		}

		result := model.SetAvailability(entries, "prop-1", day("2026-09-01"), true)

		assert.Len(t, result, 1)
		assert.True(t, result[0].Available)
	})

	t.Run("works on an empty list", func(t *testing.T) {
		result := model.SetAvailability(nil, "prop-1", day("2026-09-01"), true)

		assert.Len(t, result, 1)
		assert.Equal(t, "prop-1", result[0].PropertyID)
		assert.True(t, result[0].Available)
	})
}

func TestExpandRange(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		want     []time.Time
	}{
		{
			name:     "single night",
			checkIn:  day("2026-09-01"),
			checkOut: day("2026-09-02"),
			want:     []time.Time{day("2026-09-01")},
		},
		{
			name:     "three nights exclude check-out day",
			checkIn:  day("2026-09-01"),
			checkOut: day("2026-09-04"),
			want:     []time.Time{day("2026-09-01"), day("2026-09-02"), day("2026-09-03")},
		},
		{
			name:     "zero-length range yields nothing",
			checkIn:  day("2026-09-01"),
			checkOut: day("2026-09-01"),
			want:     nil,
		},
		{
			name:     "inverted range yields nothing",
			checkIn:  day("2026-09-04"),
			checkOut: day("2026-09-01"),
			want:     nil,
		},
		{
			name:     "crosses month boundary",
			checkIn:  day("2026-09-29"),
			checkOut: day("2026-10-02"),
			want:     []time.Time{day("2026-09-29"), day("2026-09-30"), day("2026-10-01")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, model.ExpandRange(tt.checkIn, tt.checkOut))
		})
	}
}

func TestValidateRange(t *testing.T) {
	entries := []model.Entry{
		{PropertyID: "prop-1", Date: day("2026-09-01"), Available: true},
		{PropertyID: "prop-1", Date: day("2026-09-02"), Available: false},
		{PropertyID: "prop-1", Date: day("2026-09-03"), Available: true},
		{PropertyID: "prop-1", Date: day("2026-09-04"), Available: true},
	}

	tests := []struct {
		name          string
		checkIn       time.Time
		checkOut      time.Time
		wantOK        bool
		wantConflicts []time.Time
	}{
		{
			name:     "all nights open",
			checkIn:  day("2026-09-03"),
			checkOut: day("2026-09-05"),
			wantOK:   true,
		},
		{
			name:          "closed night reported",
			checkIn:       day("2026-09-01"),
			checkOut:      day("2026-09-04"),
			wantOK:        false,
			wantConflicts: []time.Time{day("2026-09-02")},
		},
		{
			name:          "missing night reported alongside closed night in date order",
			checkIn:       day("2026-09-01"),
			checkOut:      day("2026-09-06"),
			wantOK:        false,
			wantConflicts: []time.Time{day("2026-09-02"), day("2026-09-05")},
		},
		{
			name:     "empty range has nothing to conflict",
			checkIn:  day("2026-09-01"),
			checkOut: day("2026-09-01"),
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, conflicts := model.ValidateRange(entries, tt.checkIn, tt.checkOut)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantConflicts, conflicts)
		})
	}
}

func TestDedupe(t *testing.T) {
	t.Run("last entry wins for duplicate days", func(t *testing.T) {
		entries := []model.Entry{
			{PropertyID: "prop-1", Date: day("2026-09-01"), Available: true},
			{PropertyID: "prop-1", Date: day("2026-09-02"), Available: true},
			{PropertyID: "prop-1", Date: day("2026-09-01"), Available: false},
		}

		result := model.Dedupe(entries)

		assert.Len(t, result, 2)
		assert.False(t, model.IsAvailable(result, day("2026-09-01")))
		assert.True(t, model.IsAvailable(result, day("2026-09-02")))
	})

	t.Run("normalizes timestamps to the utc day", func(t *testing.T) {
		entries := []model.Entry{
			{PropertyID: "prop-1", Date: time.Date(2026, 9, 1, 15, 30, 0, 0, time.UTC), Available: true},
		}

		result := model.Dedupe(entries)

		assert.Len(t, result, 1)
		assert.Equal(t, day("2026-09-01"), result[0].Date)
	})

	t.Run("keeps first-seen order", func(t *testing.T) {
		entries := []model.Entry{
			{PropertyID: "prop-1", Date: day("2026-09-03"), Available: true},
			{PropertyID: "prop-1", Date: day("2026-09-01"), Available: true},
			{PropertyID: "prop-1", Date: day("2026-09-03"), Available: false},
		}

		result := model.Dedupe(entries)

		assert.Len(t, result, 2)
		assert.Equal(t, day("2026-09-03"), result[0].Date)
		assert.False(t, result[0].Available)
		assert.Equal(t, day("2026-09-01"), result[1].Date)
	})

	t.Run("empty input stays empty", func(t *testing.T) {
		assert.Empty(t, model.Dedupe(nil))
	})
}
