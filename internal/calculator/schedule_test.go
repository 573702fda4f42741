package calculator

import (
	"testing"
	"time"

	"github.com/tundeajayi/esusu/internal/models"
)

func TestCycleDueDate(t *testing.T) {
	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 9, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name  string
		start time.Time
		freq  models.Frequency
		cycle int
		want  time.Time
	}{
		{"daily cycle 1 is the start date", date(2025, time.March, 1), models.FrequencyDaily, 1, date(2025, time.March, 1)},
		{"daily cycle 4", date(2025, time.March, 1), models.FrequencyDaily, 4, date(2025, time.March, 4)},
		{"daily crosses month boundary", date(2025, time.March, 30), models.FrequencyDaily, 3, date(2025, time.April, 1)},
		{"weekly cycle 3", date(2025, time.March, 1), models.FrequencyWeekly, 3, date(2025, time.March, 15)},
		{"monthly cycle 2", date(2025, time.March, 15), models.FrequencyMonthly, 2, date(2025, time.April, 15)},
		{"monthly jan 31 clamps to feb 28", date(2025, time.January, 31), models.FrequencyMonthly, 2, date(2025, time.February, 28)},
		{"monthly jan 31 leap year clamps to feb 29", date(2024, time.January, 31), models.FrequencyMonthly, 2, date(2024, time.February, 29)},
		{"monthly jan 31 recovers in march", date(2025, time.January, 31), models.FrequencyMonthly, 3, date(2025, time.March, 31)},
		{"monthly crosses year boundary", date(2025, time.November, 30), models.FrequencyMonthly, 4, date(2026, time.February, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CycleDueDate(tt.start, tt.freq, tt.cycle)
			if !got.Equal(tt.want) {
				t.Errorf("CycleDueDate(%v, %s, %d) = %v, want %v",
					tt.start, tt.freq, tt.cycle, got, tt.want)
			}
		})
	}
}
