package amortization

import (
	"math"

	"github.com/finledger/ledger-service/internal/models"
)

// compoundingsPerYear maps a compounding period to its annual count.
// Unknown values fall back to monthly.
func compoundingsPerYear(p models.CompoundingPeriod) int {
	switch p {
	case models.CompoundingDaily:
		return 365
	case models.CompoundingMonthly:
		return 12
	case models.CompoundingQuarterly:
		return 4
	case models.CompoundingAnnually:
		return 1
	default:
		return 12
	}
}

// paymentsPerYear maps a payment frequency to its annual count.
// Unknown values fall back to monthly.
func paymentsPerYear(f models.PaymentFrequency) int {
	switch f {
	case models.FrequencyWeekly:
		return 52
	case models.FrequencyBiWeekly:
		return 26
	case models.FrequencyMonthly:
		return 12
	case models.FrequencyQuarterly:
		return 4
	case models.FrequencyAnnually:
		return 1
	default:
		return 12
	}
}

// PeriodRate converts a nominal annual percentage rate into the effective
// rate for a single payment period. The nominal rate is first converted to
// an effective annual rate using the compounding frequency, then de-annualized
// to the payment frequency.
func PeriodRate(annualRatePct float64, compounding models.CompoundingPeriod, frequency models.PaymentFrequency) float64 {
	nComp := compoundingsPerYear(compounding)
	nPay := paymentsPerYear(frequency)
	if nComp == 0 || nPay == 0 {
		return 0
	}

	ear := math.Pow(1+annualRatePct/100/float64(nComp), float64(nComp)) - 1
	rate := math.Pow(1+ear, 1/float64(nPay)) - 1
	return RoundRate(rate)
}
