package amortization

import (
	"math"
	"time"

	"github.com/finledger/ledger-service/internal/models"
	"github.com/sirupsen/logrus"
)

// MaxIterations caps a schedule at ~100 years of monthly payments so the
// builder terminates even for contradictory terms (e.g. a payment smaller
// than the interest due). A schedule of exactly this length did not converge.
const MaxIterations = 1200

// Builder generates reconciled amortization schedules. It holds no per-build
// state; every Build call owns its consumed-payment set and matcher, so
// independent liabilities can be processed concurrently.
type Builder struct {
	log *logrus.Logger
}

// NewBuilder initializes a schedule builder
func NewBuilder(log *logrus.Logger) *Builder {
	return &Builder{log: log}
}

// Build produces the ordered payment-by-payment schedule for the liability,
// reconciling the theoretical payment calendar against the recorded payments.
// It never fails for a well-formed liability: underivable payment amounts fall
// back to the full balance due in one payment, and negative amounts clamp to
// zero. Schedule-wide totals are attached to the last entry.
func (b *Builder) Build(liability *models.Liability, payments []*models.Payment) []*models.ScheduleEntry {
	rate := PeriodRate(liability.InterestRate, liability.CompoundingPeriod, liability.PaymentFrequency)
	matcher := NewPaymentMatcher(payments)
	consumed := make(map[string]bool, len(payments))

	balance := RoundMoney(liability.PrincipalAmount)
	current := truncateDay(liability.StartDate)

	var end *time.Time
	if liability.EndDate != nil {
		e := truncateDay(*liability.EndDate)
		end = &e
	}
	var deferralEnd *time.Time
	if liability.DeferralPeriodMonths > 0 {
		d := addMonthsClamped(current, liability.DeferralPeriodMonths)
		deferralEnd = &d
	}

	fixedPayment := liability.PaymentAmount > 0
	scheduledPayment := b.initialPayment(liability, rate, current, end)
	recomputed := false

	entries := make([]*models.ScheduleEntry, 0, 32)

	for number := 1; number <= MaxIterations; number++ {
		isDeferred := deferralEnd != nil && current.Before(*deferralEnd)

		// One-time recompute of the theoretical payment on the first period
		// at or after the deferral end: the balance may have grown through
		// capitalization, and fewer periods remain until the end date.
		if deferralEnd != nil && !isDeferred && !fixedPayment && !recomputed {
			scheduledPayment = b.recomputePayment(balance, rate, current, end, liability.PaymentFrequency)
			recomputed = true
		}

		interestForPeriod := RoundMoney(balance * rate)

		var entry *models.ScheduleEntry
		if actual := matcher.FindUnconsumed(current, consumed); actual != nil {
			consumed[actual.TransactionID] = true
			entry = applyActualPayment(actual, current, balance, interestForPeriod, isDeferred, liability.DeferralType)
		} else {
			res := ApplyDeferralPolicy(balance, interestForPeriod, scheduledPayment, isDeferred, liability.DeferralType)
			entry = &models.ScheduleEntry{
				PaymentDate:         current,
				ScheduledDate:       current,
				PaymentAmount:       res.EffectivePayment,
				PrincipalAmount:     res.PrincipalPaid,
				InterestAmount:      res.InterestPaid,
				CapitalizedInterest: res.CapitalizedInterest,
				RemainingPrincipal:  res.NewBalance,
				IsDeferred:          isDeferred,
				DeferralType:        liability.DeferralType,
			}
		}
		entry.PaymentNumber = number
		balance = entry.RemainingPrincipal
		entries = append(entries, entry)

		if balance <= 0 && !isDeferred {
			break
		}
		if end != nil && !current.Before(*end) {
			break
		}

		next := NextPaymentDate(current, liability.PaymentFrequency)
		if end != nil && next.After(*end) && balance > 0 {
			// The cadence would step past the end date: settle the remaining
			// balance plus its last interest accrual in one balloon payment.
			interest := RoundMoney(balance * rate)
			entries = append(entries, &models.ScheduleEntry{
				PaymentNumber:         number + 1,
				PaymentDate:           next,
				ScheduledDate:         next,
				PaymentAmount:         RoundMoney(balance + interest),
				PrincipalAmount:       balance,
				InterestAmount:        interest,
				RemainingPrincipal:    0,
				IsDeferred:            false,
				DeferralType:          liability.DeferralType,
				IsFinalBalloonPayment: true,
			})
			balance = 0
			break
		}
		current = next
	}

	if len(entries) >= MaxIterations {
		b.log.Warnf("Schedule for liability %d hit the %d-iteration cap and did not converge", liability.ID, MaxIterations)
	}

	entries = appendTrailingPayments(entries, payments, consumed, liability.DeferralType)
	attachSummary(entries)
	return entries
}

// initialPayment derives the theoretical periodic payment. A configured
// payment amount wins; otherwise the annuity formula over the periods between
// start and end date applies; with no end date either, the deterministic
// fallback is the full balance due in one payment.
func (b *Builder) initialPayment(liability *models.Liability, rate float64, start time.Time, end *time.Time) float64 {
	if liability.PaymentAmount > 0 {
		return RoundMoney(liability.PaymentAmount)
	}
	if end != nil {
		return annuityPayment(liability.PrincipalAmount, rate, countPeriods(start, *end, liability.PaymentFrequency))
	}
	return RoundMoney(liability.PrincipalAmount)
}

func (b *Builder) recomputePayment(balance, rate float64, current time.Time, end *time.Time, frequency models.PaymentFrequency) float64 {
	if end == nil {
		return RoundMoney(balance)
	}
	return annuityPayment(balance, rate, countPeriods(current, *end, frequency))
}

// annuityPayment is the standard PMT formula, degrading to straight-line
// division at zero rate.
func annuityPayment(principal, rate float64, periods int) float64 {
	if periods <= 0 {
		return RoundMoney(principal)
	}
	if rate == 0 {
		return RoundMoney(principal / float64(periods))
	}
	pow := math.Pow(1+rate, float64(periods))
	return RoundMoney(principal * rate * pow / (pow - 1))
}

// countPeriods counts the payment dates from `from` to `to` inclusive.
func countPeriods(from, to time.Time, frequency models.PaymentFrequency) int {
	n := 0
	for d := from; !d.After(to) && n < MaxIterations; d = NextPaymentDate(d, frequency) {
		n++
	}
	if n == 0 {
		n = 1
	}
	return n
}

// applyActualPayment turns a recorded payment into a schedule entry, taking
// the principal/interest split from the record. A record with a zero split
// has it inferred: interest-first during partial deferral, all principal
// otherwise. Extra payments reduce principal on top of the recorded split.
func applyActualPayment(p *models.Payment, scheduled time.Time, balance, interestForPeriod float64, isDeferred bool, deferralType models.DeferralType) *models.ScheduleEntry {
	principal := p.PrincipalAmount
	interest := p.InterestAmount
	if principal == 0 && interest == 0 && p.Amount > 0 {
		if isDeferred && deferralType == models.DeferralPartial {
			interest = math.Min(p.Amount, interestForPeriod)
			principal = p.Amount - interest
		} else {
			principal = p.Amount
		}
	}
	principal = RoundMoney(principal)
	interest = RoundMoney(interest)

	newBalance := RoundMoney(balance - principal - p.ExtraPayment)
	if newBalance < 0 {
		newBalance = 0
	}

	paymentDate := truncateDay(p.PaymentDate)
	return &models.ScheduleEntry{
		PaymentDate:        paymentDate,
		ScheduledDate:      scheduled,
		PaymentAmount:      RoundMoney(p.Amount),
		PrincipalAmount:    principal,
		InterestAmount:     interest,
		RemainingPrincipal: newBalance,
		TransactionID:      p.TransactionID,
		IsActualPayment:    true,
		ExtraPayment:       p.ExtraPayment,
		DateShifted:        !paymentDate.Equal(scheduled),
		IsDeferred:         isDeferred,
		DeferralType:       deferralType,
	}
}

// appendTrailingPayments adds any unconsumed payment dated strictly after the
// last scheduled entry as an extra entry. This covers early payoffs and lump
// payments recorded outside the normal cadence. Payments arrive ordered by
// (payment_date, transaction_id) from the store.
func appendTrailingPayments(entries []*models.ScheduleEntry, payments []*models.Payment, consumed map[string]bool, deferralType models.DeferralType) []*models.ScheduleEntry {
	if len(entries) == 0 {
		return entries
	}
	last := entries[len(entries)-1]
	lastDate := last.ScheduledDate
	balance := last.RemainingPrincipal
	number := last.PaymentNumber

	for _, p := range payments {
		if consumed[p.TransactionID] {
			continue
		}
		day := truncateDay(p.PaymentDate)
		if !day.After(lastDate) {
			continue
		}
		consumed[p.TransactionID] = true
		number++

		principal := p.PrincipalAmount
		interest := p.InterestAmount
		if principal == 0 && interest == 0 && p.Amount > 0 {
			principal = p.Amount
		}
		principal = RoundMoney(principal)
		newBalance := RoundMoney(balance - principal - p.ExtraPayment)
		if newBalance < 0 {
			newBalance = 0
		}

		entries = append(entries, &models.ScheduleEntry{
			PaymentNumber:      number,
			PaymentDate:        day,
			ScheduledDate:      day,
			PaymentAmount:      RoundMoney(p.Amount),
			PrincipalAmount:    principal,
			InterestAmount:     RoundMoney(interest),
			RemainingPrincipal: newBalance,
			TransactionID:      p.TransactionID,
			IsActualPayment:    true,
			ExtraPayment:       p.ExtraPayment,
			DeferralType:       deferralType,
		})
		balance = newBalance
	}
	return entries
}

// attachSummary sums interest, principal and capitalized interest across all
// entries onto the final one.
func attachSummary(entries []*models.ScheduleEntry) {
	if len(entries) == 0 {
		return
	}
	var interest, principal, capitalized float64
	for _, e := range entries {
		interest += e.InterestAmount
		principal += e.PrincipalAmount
		capitalized += e.CapitalizedInterest
	}
	entries[len(entries)-1].Summary = &models.ScheduleSummary{
		TotalInterestPaid:        RoundMoney(interest),
		TotalPrincipalPaid:       RoundMoney(principal),
		TotalCapitalizedInterest: RoundMoney(capitalized),
	}
}
