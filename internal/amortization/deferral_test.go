package amortization

import (
	"testing"

	"github.com/finledger/ledger-service/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestApplyDeferralPolicy(t *testing.T) {
	tests := []struct {
		name         string
		balance      float64
		interest     float64
		payment      float64
		isDeferred   bool
		deferralType models.DeferralType
		want         PolicyResult
	}{
		{
			name:    "StandardAmortization",
			balance: 10000, interest: 100, payment: 500,
			want: PolicyResult{PrincipalPaid: 400, InterestPaid: 100, NewBalance: 9600, EffectivePayment: 500},
		},
		{
			name:    "StandardPaymentBelowInterest",
			balance: 10000, interest: 100, payment: 50,
			want: PolicyResult{PrincipalPaid: 0, InterestPaid: 100, NewBalance: 10000, EffectivePayment: 100},
		},
		{
			name:    "StandardFinalPaymentClampsToBalance",
			balance: 300, interest: 3, payment: 500,
			want: PolicyResult{PrincipalPaid: 300, InterestPaid: 3, NewBalance: 0, EffectivePayment: 303},
		},
		{
			name:    "DeferredNoneAmortizesNormally",
			balance: 10000, interest: 100, payment: 500,
			isDeferred: true, deferralType: models.DeferralNone,
			want: PolicyResult{PrincipalPaid: 400, InterestPaid: 100, NewBalance: 9600, EffectivePayment: 500},
		},
		{
			name:    "DeferredPartialCollectsInterestOnly",
			balance: 10000, interest: 100, payment: 500,
			isDeferred: true, deferralType: models.DeferralPartial,
			want: PolicyResult{PrincipalPaid: 0, InterestPaid: 100, NewBalance: 10000, EffectivePayment: 100},
		},
		{
			name:    "DeferredTotalCapitalizes",
			balance: 10000, interest: 100, payment: 500,
			isDeferred: true, deferralType: models.DeferralTotal,
			want: PolicyResult{CapitalizedInterest: 100, NewBalance: 10100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyDeferralPolicy(tt.balance, tt.interest, tt.payment, tt.isDeferred, tt.deferralType)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyDeferralPolicyRoundsEveryStep(t *testing.T) {
	got := ApplyDeferralPolicy(1000.005, 8.333333, 100.004, false, models.DeferralNone)
	assert.Equal(t, 8.33, got.InterestPaid)
	assert.Equal(t, 91.67, got.PrincipalPaid)
	assert.Equal(t, 100.00, got.EffectivePayment)
}
