package amortization

import (
	"time"

	"github.com/finledger/ledger-service/internal/models"
)

// NextPaymentDate returns the scheduled date that follows d for the given
// payment frequency. Month-based frequencies clamp the day-of-month to the
// last valid day of the target month (Jan 31 -> Feb 28/29). Unknown
// frequencies advance by one calendar month.
func NextPaymentDate(d time.Time, frequency models.PaymentFrequency) time.Time {
	switch frequency {
	case models.FrequencyWeekly:
		return d.AddDate(0, 0, 7)
	case models.FrequencyBiWeekly:
		return d.AddDate(0, 0, 14)
	case models.FrequencyQuarterly:
		return addMonthsClamped(d, 3)
	case models.FrequencyAnnually:
		return addMonthsClamped(d, 12)
	default:
		return addMonthsClamped(d, 1)
	}
}

// addMonthsClamped adds calendar months without the day-overflow
// normalization of time.AddDate. If the arithmetic still produces an
// unusable day it falls back to a 30-day-per-month approximation instead
// of failing.
func addMonthsClamped(d time.Time, months int) time.Time {
	year, month, day := d.Date()
	m := int(month) - 1 + months
	year += m / 12
	m = m % 12
	if m < 0 {
		m += 12
		year--
	}
	target := time.Month(m + 1)
	if max := daysInMonth(year, target); day > max {
		day = max
	}
	if day < 1 {
		return d.AddDate(0, 0, 30*months)
	}
	return time.Date(year, target, day, 0, 0, 0, 0, d.Location())
}

func daysInMonth(year int, month time.Month) int {
	switch month {
	case time.February:
		if isLeapYear(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// truncateDay normalizes a timestamp to midnight UTC so dates compare and
// index consistently regardless of the stored time-of-day.
func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
