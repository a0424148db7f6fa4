package amortization

import "github.com/finledger/ledger-service/internal/models"

// PolicyResult is the monetary outcome of applying the deferral policy to a
// single period. All amounts are rounded to 2 decimal places.
type PolicyResult struct {
	PrincipalPaid       float64
	InterestPaid        float64
	CapitalizedInterest float64
	NewBalance          float64
	EffectivePayment    float64
}

// ApplyDeferralPolicy computes how one period's payment splits between
// principal, interest and capitalization.
//
// Inside the deferral window: "partial" collects interest only, "total"
// collects nothing and adds the period's interest to the balance, "none"
// amortizes normally despite being nominally in deferral. Outside the window
// standard amortization applies with principal clamped to [0, balance].
func ApplyDeferralPolicy(balanceBefore, interestForPeriod, scheduledPayment float64, isDeferred bool, deferralType models.DeferralType) PolicyResult {
	if isDeferred {
		switch deferralType {
		case models.DeferralPartial:
			interest := RoundMoney(interestForPeriod)
			return PolicyResult{
				InterestPaid:     interest,
				NewBalance:       RoundMoney(balanceBefore),
				EffectivePayment: interest,
			}
		case models.DeferralTotal:
			capitalized := RoundMoney(interestForPeriod)
			return PolicyResult{
				CapitalizedInterest: capitalized,
				NewBalance:          RoundMoney(balanceBefore + capitalized),
			}
		}
		// DeferralNone falls through to standard amortization.
	}

	interest := RoundMoney(interestForPeriod)
	principal := RoundMoney(scheduledPayment - interest)
	if principal < 0 {
		principal = 0
	}
	if principal > balanceBefore {
		principal = RoundMoney(balanceBefore)
	}
	return PolicyResult{
		PrincipalPaid:    principal,
		InterestPaid:     interest,
		NewBalance:       RoundMoney(balanceBefore - principal),
		EffectivePayment: RoundMoney(principal + interest),
	}
}
