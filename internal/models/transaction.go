package models

import "time"

// Transaction represents a ledger transaction
type Transaction struct {
	ID          int64     `json:"id"`
	ToAccountID int64     `json:"to_account_id"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	CreatedAt   string    `json:"created_at"`
	UpdatedAt   string    `json:"updated_at"`
}
