package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/finledger/ledger-service/internal/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(user *models.User) error {
	query := `
		INSERT INTO ledger.users (username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(query, user.Username, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM ledger.users
		WHERE email = $1`
	err := r.db.QueryRow(query, email).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// FindUserByID retrieves a user by id
func (r *Repository) FindUserByID(id int64) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM ledger.users
		WHERE id = $1`
	err := r.db.QueryRow(query, id).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// CreateAccount creates a new account in the database
func (r *Repository) CreateAccount(account *models.Account) error {
	query := `
		INSERT INTO ledger.accounts (user_id, name, balance, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(query, account.UserID, account.Name, account.Balance, account.Currency).
		Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// FindAccountByID returns the owning user id of an account
func (r *Repository) FindAccountByID(accountID int64) (int64, error) {
	var userID int64
	query := `SELECT user_id FROM ledger.accounts WHERE id = $1`
	err := r.db.QueryRow(query, accountID).Scan(&userID)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("account %d: %w", accountID, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to find account: %w", err)
	}
	return userID, nil
}

// CreateLiability creates a new liability in the database
func (r *Repository) CreateLiability(liability *models.Liability) error {
	query := `
		INSERT INTO ledger.liabilities (
			user_id, account_id, name, principal_amount, interest_rate,
			compounding_period, payment_frequency, start_date, end_date,
			payment_amount, deferral_period_months, deferral_type, hmac,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(query,
		liability.UserID, liability.AccountID, liability.Name,
		liability.PrincipalAmount, liability.InterestRate,
		liability.CompoundingPeriod, liability.PaymentFrequency,
		liability.StartDate, liability.EndDate, liability.PaymentAmount,
		liability.DeferralPeriodMonths, liability.DeferralType, liability.HMAC).
		Scan(&liability.ID, &liability.CreatedAt, &liability.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create liability: %w", err)
	}
	return nil
}

// FindLiabilityByID retrieves a liability with its full terms
func (r *Repository) FindLiabilityByID(id int64) (*models.Liability, error) {
	liability := &models.Liability{}
	query := `
		SELECT id, user_id, account_id, name, principal_amount, interest_rate,
		       compounding_period, payment_frequency, start_date, end_date,
		       payment_amount, deferral_period_months, deferral_type, hmac,
		       created_at, updated_at
		FROM ledger.liabilities
		WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(
		&liability.ID, &liability.UserID, &liability.AccountID, &liability.Name,
		&liability.PrincipalAmount, &liability.InterestRate,
		&liability.CompoundingPeriod, &liability.PaymentFrequency,
		&liability.StartDate, &liability.EndDate, &liability.PaymentAmount,
		&liability.DeferralPeriodMonths, &liability.DeferralType, &liability.HMAC,
		&liability.CreatedAt, &liability.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("liability %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find liability: %w", err)
	}
	return liability, nil
}

// ListLiabilities retrieves all liabilities
func (r *Repository) ListLiabilities() ([]*models.Liability, error) {
	query := `
		SELECT id, user_id, account_id, name, principal_amount, interest_rate,
		       compounding_period, payment_frequency, start_date, end_date,
		       payment_amount, deferral_period_months, deferral_type, hmac,
		       created_at, updated_at
		FROM ledger.liabilities
		ORDER BY id`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list liabilities: %w", err)
	}
	defer rows.Close()

	var liabilities []*models.Liability
	for rows.Next() {
		liability := &models.Liability{}
		if err := rows.Scan(
			&liability.ID, &liability.UserID, &liability.AccountID, &liability.Name,
			&liability.PrincipalAmount, &liability.InterestRate,
			&liability.CompoundingPeriod, &liability.PaymentFrequency,
			&liability.StartDate, &liability.EndDate, &liability.PaymentAmount,
			&liability.DeferralPeriodMonths, &liability.DeferralType, &liability.HMAC,
			&liability.CreatedAt, &liability.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan liability: %w", err)
		}
		liabilities = append(liabilities, liability)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate liabilities: %w", err)
	}
	return liabilities, nil
}

// CreatePayment records an actual payment against a liability. A missing
// transaction id gets a generated one.
func (r *Repository) CreatePayment(payment *models.Payment) error {
	if payment.TransactionID == "" {
		payment.TransactionID = uuid.NewString()
	}
	query := `
		INSERT INTO ledger.payments (
			liability_id, transaction_id, payment_date, amount,
			principal_amount, interest_amount, extra_payment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRow(query,
		payment.LiabilityID, payment.TransactionID, payment.PaymentDate,
		payment.Amount, payment.PrincipalAmount, payment.InterestAmount,
		payment.ExtraPayment).
		Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// FindPaymentsByLiability retrieves the recorded payments for a liability,
// ordered by payment date with transaction id as the stable tie-break.
func (r *Repository) FindPaymentsByLiability(liabilityID int64) ([]*models.Payment, error) {
	query := `
		SELECT id, liability_id, transaction_id, payment_date, amount,
		       principal_amount, interest_amount, extra_payment, created_at
		FROM ledger.payments
		WHERE liability_id = $1
		ORDER BY payment_date, transaction_id`
	rows, err := r.db.Query(query, liabilityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		payment := &models.Payment{}
		if err := rows.Scan(
			&payment.ID, &payment.LiabilityID, &payment.TransactionID,
			&payment.PaymentDate, &payment.Amount, &payment.PrincipalAmount,
			&payment.InterestAmount, &payment.ExtraPayment, &payment.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}
	return payments, nil
}

// FindTransaction looks up a ledger transaction by its idempotency key
// (date, destination account, description).
func (r *Repository) FindTransaction(date time.Time, toAccountID int64, description string) (*models.Transaction, error) {
	tx := &models.Transaction{}
	query := `
		SELECT id, to_account_id, amount, type, description, date, created_at, updated_at
		FROM ledger.transactions
		WHERE date = $1 AND to_account_id = $2 AND description = $3`
	err := r.db.QueryRow(query, date, toAccountID, description).Scan(
		&tx.ID, &tx.ToAccountID, &tx.Amount, &tx.Type, &tx.Description,
		&tx.Date, &tx.CreatedAt, &tx.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}
	return tx, nil
}

// CreateTransaction posts a new ledger transaction
func (r *Repository) CreateTransaction(tx *models.Transaction) error {
	query := `
		INSERT INTO ledger.transactions (to_account_id, amount, type, description, date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(query, tx.ToAccountID, tx.Amount, tx.Type, tx.Description, tx.Date).
		Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}
