package models

import "time"

// CompoundingPeriod is how often interest compounds on a liability.
type CompoundingPeriod string

const (
	CompoundingDaily     CompoundingPeriod = "daily"
	CompoundingMonthly   CompoundingPeriod = "monthly"
	CompoundingQuarterly CompoundingPeriod = "quarterly"
	CompoundingAnnually  CompoundingPeriod = "annually"
)

// PaymentFrequency is the cadence of scheduled payments.
type PaymentFrequency string

const (
	FrequencyWeekly    PaymentFrequency = "weekly"
	FrequencyBiWeekly  PaymentFrequency = "bi-weekly"
	FrequencyMonthly   PaymentFrequency = "monthly"
	FrequencyQuarterly PaymentFrequency = "quarterly"
	FrequencyAnnually  PaymentFrequency = "annually"
)

// DeferralType selects how payments behave during the deferral window.
type DeferralType string

const (
	DeferralNone    DeferralType = "none"    // standard amortization even inside the window
	DeferralPartial DeferralType = "partial" // interest-only payments
	DeferralTotal   DeferralType = "total"   // nothing collected, interest capitalizes
)

// Liability represents a loan or other amortizing debt.
// The term fields are read-only inputs to the amortization engine.
type Liability struct {
	ID                   int64             `json:"id"`
	UserID               int64             `json:"user_id"`
	AccountID            int64             `json:"account_id"`
	Name                 string            `json:"name"`
	PrincipalAmount      float64           `json:"principal_amount"`
	InterestRate         float64           `json:"interest_rate"` // annual, percent
	CompoundingPeriod    CompoundingPeriod `json:"compounding_period"`
	PaymentFrequency     PaymentFrequency  `json:"payment_frequency"`
	StartDate            time.Time         `json:"start_date"`
	EndDate              *time.Time        `json:"end_date,omitempty"`
	PaymentAmount        float64           `json:"payment_amount,omitempty"` // 0 means derived by the engine
	DeferralPeriodMonths int               `json:"deferral_period_months"`
	DeferralType         DeferralType      `json:"deferral_type"`
	HMAC                 string            `json:"hmac"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}
