package amortization

import (
	"testing"
	"time"

	"github.com/finledger/ledger-service/internal/models"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextPaymentDate(t *testing.T) {
	tests := []struct {
		name      string
		from      time.Time
		frequency models.PaymentFrequency
		want      time.Time
	}{
		{"Weekly", date(2024, time.March, 1), models.FrequencyWeekly, date(2024, time.March, 8)},
		{"BiWeekly", date(2024, time.March, 1), models.FrequencyBiWeekly, date(2024, time.March, 15)},
		{"Monthly", date(2024, time.March, 15), models.FrequencyMonthly, date(2024, time.April, 15)},
		{"MonthlyClampLeap", date(2024, time.January, 31), models.FrequencyMonthly, date(2024, time.February, 29)},
		{"MonthlyClampNonLeap", date(2023, time.January, 31), models.FrequencyMonthly, date(2023, time.February, 28)},
		{"MonthlyClamp30", date(2024, time.March, 31), models.FrequencyMonthly, date(2024, time.April, 30)},
		{"QuarterlyClamp", date(2023, time.November, 30), models.FrequencyQuarterly, date(2024, time.February, 29)},
		{"AnnuallyFromLeapDay", date(2024, time.February, 29), models.FrequencyAnnually, date(2025, time.February, 28)},
		{"YearBoundary", date(2024, time.December, 15), models.FrequencyMonthly, date(2025, time.January, 15)},
		{"UnknownDefaultsToMonth", date(2024, time.May, 10), "every-other-day", date(2024, time.June, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextPaymentDate(tt.from, tt.frequency))
		})
	}
}

func TestGregorianLeapRule(t *testing.T) {
	// Century years are leap only when divisible by 400.
	assert.Equal(t, date(1900, time.February, 28), NextPaymentDate(date(1900, time.January, 31), models.FrequencyMonthly))
	assert.Equal(t, date(2000, time.February, 29), NextPaymentDate(date(2000, time.January, 31), models.FrequencyMonthly))
}
