package amortization

import (
	"time"

	"github.com/finledger/ledger-service/internal/models"
)

// matchToleranceDays is how far an actual payment may drift from its
// scheduled date and still satisfy that period.
const matchToleranceDays = 5

const dateKeyLayout = "2006-01-02"

// PaymentMatcher indexes recorded payments by date and resolves the
// best-matching unconsumed payment for a scheduled date within the tolerance
// window. All state is scoped to a single schedule build.
type PaymentMatcher struct {
	byDate map[string][]*models.Payment // exact day -> payments in recorded order
	window map[string]windowTarget      // any day in a payment's window -> best exact day
}

type windowTarget struct {
	exactKey string
	exact    time.Time
	distance int
}

// NewPaymentMatcher builds the date index and tolerance-window map for the
// given payment set.
func NewPaymentMatcher(payments []*models.Payment) *PaymentMatcher {
	m := &PaymentMatcher{
		byDate: make(map[string][]*models.Payment, len(payments)),
		window: make(map[string]windowTarget, len(payments)*(2*matchToleranceDays+1)),
	}
	for _, p := range payments {
		exact := truncateDay(p.PaymentDate)
		m.byDate[exact.Format(dateKeyLayout)] = append(m.byDate[exact.Format(dateKeyLayout)], p)
	}
	for _, p := range payments {
		exact := truncateDay(p.PaymentDate)
		exactKey := exact.Format(dateKeyLayout)
		for offset := -matchToleranceDays; offset <= matchToleranceDays; offset++ {
			day := exact.AddDate(0, 0, offset).Format(dateKeyLayout)
			distance := offset
			if distance < 0 {
				distance = -distance
			}
			cur, ok := m.window[day]
			// Smallest day distance wins; ties break to the earliest date.
			if !ok || distance < cur.distance || (distance == cur.distance && exact.Before(cur.exact)) {
				m.window[day] = windowTarget{exactKey: exactKey, exact: exact, distance: distance}
			}
		}
	}
	return m
}

// FindUnconsumed resolves the actual payment satisfying scheduledDate, or nil.
// Resolution order: exact date match first, then the closest date inside the
// tolerance window. From the candidates at the resolved date, the first whose
// transaction id is not in consumed wins. A payment is never returned twice
// across one build as long as the caller records returned ids in consumed.
func (m *PaymentMatcher) FindUnconsumed(scheduledDate time.Time, consumed map[string]bool) *models.Payment {
	key := truncateDay(scheduledDate).Format(dateKeyLayout)
	candidates := m.byDate[key]
	if len(candidates) == 0 {
		if target, ok := m.window[key]; ok {
			candidates = m.byDate[target.exactKey]
		}
	}
	for _, p := range candidates {
		if !consumed[p.TransactionID] {
			return p
		}
	}
	return nil
}
