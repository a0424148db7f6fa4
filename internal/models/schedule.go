package models

import "time"

// ScheduleEntry is one row of a generated amortization schedule.
// A theoretical (unrealized) entry has an empty TransactionID.
type ScheduleEntry struct {
	PaymentNumber         int              `json:"payment_number"`
	PaymentDate           time.Time        `json:"payment_date"`
	ScheduledDate         time.Time        `json:"scheduled_date"`
	PaymentAmount         float64          `json:"payment_amount"`
	PrincipalAmount       float64          `json:"principal_amount"`
	InterestAmount        float64          `json:"interest_amount"`
	CapitalizedInterest   float64          `json:"capitalized_interest"`
	RemainingPrincipal    float64          `json:"remaining_principal"`
	TransactionID         string           `json:"transaction_id,omitempty"`
	IsActualPayment       bool             `json:"is_actual_payment"`
	ExtraPayment          float64          `json:"extra_payment"`
	DateShifted           bool             `json:"date_shifted"`
	IsDeferred            bool             `json:"is_deferred"`
	DeferralType          DeferralType     `json:"deferral_type"`
	IsFinalBalloonPayment bool             `json:"is_final_balloon_payment,omitempty"`
	Summary               *ScheduleSummary `json:"summary,omitempty"` // set on the last entry only
}

// ScheduleSummary carries schedule-wide totals, attached to the last entry.
type ScheduleSummary struct {
	TotalInterestPaid        float64 `json:"total_interest_paid"`
	TotalPrincipalPaid       float64 `json:"total_principal_paid"`
	TotalCapitalizedInterest float64 `json:"total_capitalized_interest"`
}
