package models

// LiabilityBurden represents debt burden analytics for one liability
type LiabilityBurden struct {
	PeriodicPayment float64 `json:"periodic_payment"`
	TotalBalance    float64 `json:"total_balance"`
	BurdenRatio     float64 `json:"burden_ratio"` // PeriodicPayment / TotalBalance
}

// LiabilityAnalytics summarizes a generated schedule for reporting
type LiabilityAnalytics struct {
	LiabilityID              int64           `json:"liability_id"`
	PaymentCount             int             `json:"payment_count"`
	TotalInterestPaid        float64         `json:"total_interest_paid"`
	TotalPrincipalPaid       float64         `json:"total_principal_paid"`
	TotalCapitalizedInterest float64         `json:"total_capitalized_interest"`
	ProjectedPayoffDate      string          `json:"projected_payoff_date"` // Format: YYYY-MM-DD
	RemainingPrincipal       float64         `json:"remaining_principal"`
	Converged                bool            `json:"converged"`
	Burden                   LiabilityBurden `json:"burden"`
}
