package models

import "time"

// Payment is an actually-recorded payment against a liability.
// TransactionID is the owning identity used for idempotent matching;
// amount ≈ principal + interest + extra is enforced upstream at recording time.
type Payment struct {
	ID              int64     `json:"id"`
	LiabilityID     int64     `json:"liability_id"`
	TransactionID   string    `json:"transaction_id"`
	PaymentDate     time.Time `json:"payment_date"`
	Amount          float64   `json:"amount"`
	PrincipalAmount float64   `json:"principal_amount"`
	InterestAmount  float64   `json:"interest_amount"`
	ExtraPayment    float64   `json:"extra_payment"`
	CreatedAt       time.Time `json:"created_at"`
}
