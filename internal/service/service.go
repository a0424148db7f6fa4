package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/finledger/ledger-service/internal/amortization"
	"github.com/finledger/ledger-service/internal/config"
	"github.com/finledger/ledger-service/internal/models"
	"github.com/finledger/ledger-service/internal/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// splitTolerance is how far a payment's amount may diverge from the sum of
// its principal/interest/extra split before it is rejected.
const splitTolerance = 0.01

// Store is the record-store contract the service depends on; the postgres
// repository implements it.
type Store interface {
	CreateUser(user *models.User) error
	FindUserByEmail(email string) (*models.User, error)
	FindUserByID(id int64) (*models.User, error)
	CreateAccount(account *models.Account) error
	FindAccountByID(accountID int64) (int64, error)
	CreateLiability(liability *models.Liability) error
	FindLiabilityByID(id int64) (*models.Liability, error)
	ListLiabilities() ([]*models.Liability, error)
	CreatePayment(payment *models.Payment) error
	FindPaymentsByLiability(liabilityID int64) ([]*models.Payment, error)
	FindTransaction(date time.Time, toAccountID int64, description string) (*models.Transaction, error)
	CreateTransaction(tx *models.Transaction) error
}

// KeyRateProvider supplies the default annual rate for new liabilities.
type KeyRateProvider interface {
	GetKeyRate() (float64, error)
}

// Notifier sends user-facing emails. Optional; a nil Notifier disables mail.
type Notifier interface {
	SendPaymentReminder(to, username, liabilityName string, paymentDate time.Time, amount float64) error
	SendPaymentRecorded(to, username, liabilityName string, amount, remaining float64) error
}

// Service handles business logic
type Service struct {
	store   Store
	log     *logrus.Logger
	config  *config.Config
	builder *amortization.Builder
	rates   KeyRateProvider
	mail    Notifier
}

// NewService initializes a new service. rates and mail may be nil.
func NewService(store Store, log *logrus.Logger, cfg *config.Config, rates KeyRateProvider, mail Notifier) *Service {
	return &Service{
		store:   store,
		log:     log,
		config:  cfg,
		builder: amortization.NewBuilder(log),
		rates:   rates,
		mail:    mail,
	}
}

// Register creates a new user with hashed password
func (s *Service) Register(username, email, password string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.store.CreateUser(user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(email, password string) (string, error) {
	user, err := s.store.FindUserByEmail(email)
	if err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", user.ID),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}

// CreateAccount creates a new account for the authenticated user
func (s *Service) CreateAccount(ctx context.Context, name, currency string) (*models.Account, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		UserID:   userID,
		Name:     name,
		Balance:  0.0,
		Currency: currency,
	}

	if err := s.store.CreateAccount(account); err != nil {
		return nil, err
	}

	s.log.Infof("Account created for user %d: %s", userID, account.Currency)
	return account, nil
}

// CreateLiabilityInput carries the caller-supplied liability terms.
type CreateLiabilityInput struct {
	AccountID            int64                    `json:"account_id"`
	Name                 string                   `json:"name"`
	PrincipalAmount      float64                  `json:"principal_amount"`
	InterestRate         float64                  `json:"interest_rate"`
	UseKeyRate           bool                     `json:"use_key_rate"`
	CompoundingPeriod    models.CompoundingPeriod `json:"compounding_period"`
	PaymentFrequency     models.PaymentFrequency  `json:"payment_frequency"`
	StartDate            time.Time                `json:"start_date"`
	EndDate              *time.Time               `json:"end_date,omitempty"`
	PaymentAmount        float64                  `json:"payment_amount,omitempty"`
	DeferralPeriodMonths int                      `json:"deferral_period_months"`
	DeferralType         models.DeferralType      `json:"deferral_type"`
}

// CreateLiability validates and stores a new liability for the authenticated
// user. When UseKeyRate is set, the annual rate is taken from the central bank
// key-rate feed instead of the request.
func (s *Service) CreateLiability(ctx context.Context, input CreateLiabilityInput) (*models.Liability, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	accountUserID, err := s.store.FindAccountByID(input.AccountID)
	if err != nil {
		return nil, err
	}
	if accountUserID != userID {
		return nil, fmt.Errorf("account does not belong to user")
	}

	if input.PrincipalAmount <= 0 {
		return nil, fmt.Errorf("principal amount must be positive")
	}
	if input.InterestRate < 0 {
		return nil, fmt.Errorf("interest rate must not be negative")
	}
	if input.DeferralPeriodMonths < 0 {
		return nil, fmt.Errorf("deferral period must not be negative")
	}
	if input.EndDate != nil && !input.StartDate.Before(*input.EndDate) {
		return nil, fmt.Errorf("start date must precede end date")
	}

	rate := input.InterestRate
	if input.UseKeyRate {
		if s.rates == nil {
			return nil, fmt.Errorf("key rate source is not configured")
		}
		rate, err = s.rates.GetKeyRate()
		if err != nil {
			return nil, fmt.Errorf("failed to get key rate: %w", err)
		}
	}

	compounding := input.CompoundingPeriod
	if compounding == "" {
		compounding = models.CompoundingMonthly
	}
	frequency := input.PaymentFrequency
	if frequency == "" {
		frequency = models.FrequencyMonthly
	}
	deferralType := input.DeferralType
	if deferralType == "" {
		deferralType = models.DeferralNone
	}

	liability := &models.Liability{
		UserID:               userID,
		AccountID:            input.AccountID,
		Name:                 input.Name,
		PrincipalAmount:      input.PrincipalAmount,
		InterestRate:         rate,
		CompoundingPeriod:    compounding,
		PaymentFrequency:     frequency,
		StartDate:            input.StartDate,
		EndDate:              input.EndDate,
		PaymentAmount:        input.PaymentAmount,
		DeferralPeriodMonths: input.DeferralPeriodMonths,
		DeferralType:         deferralType,
	}
	liability.HMAC = utils.LiabilityHMAC(liability.PrincipalAmount, liability.InterestRate,
		string(liability.PaymentFrequency), liability.StartDate, s.config.HMACSecret)

	if err := s.store.CreateLiability(liability); err != nil {
		return nil, err
	}

	s.log.Infof("Liability created for user %d: %s (%.2f at %.2f%%)", userID, liability.Name, liability.PrincipalAmount, liability.InterestRate)
	return liability, nil
}

// RecordPaymentInput carries one recorded real-world payment.
type RecordPaymentInput struct {
	TransactionID   string    `json:"transaction_id,omitempty"`
	PaymentDate     time.Time `json:"payment_date"`
	Amount          float64   `json:"amount"`
	PrincipalAmount float64   `json:"principal_amount"`
	InterestAmount  float64   `json:"interest_amount"`
	ExtraPayment    float64   `json:"extra_payment"`
}

// RecordPayment stores an actual payment against a liability and notifies the
// owner. The amount must reconcile with its split within a cent.
func (s *Service) RecordPayment(ctx context.Context, liabilityID int64, input RecordPaymentInput) (*models.Payment, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	liability, err := s.store.FindLiabilityByID(liabilityID)
	if err != nil {
		return nil, err
	}
	if liability.UserID != userID {
		return nil, fmt.Errorf("liability does not belong to user")
	}

	if input.Amount <= 0 {
		return nil, fmt.Errorf("payment amount must be positive")
	}
	if input.ExtraPayment < 0 {
		return nil, fmt.Errorf("extra payment must not be negative")
	}
	split := input.PrincipalAmount + input.InterestAmount + input.ExtraPayment
	if split > 0 && math.Abs(input.Amount-split) > splitTolerance {
		return nil, fmt.Errorf("payment amount %.2f does not match split %.2f", input.Amount, split)
	}

	payment := &models.Payment{
		LiabilityID:     liabilityID,
		TransactionID:   input.TransactionID,
		PaymentDate:     input.PaymentDate,
		Amount:          input.Amount,
		PrincipalAmount: input.PrincipalAmount,
		InterestAmount:  input.InterestAmount,
		ExtraPayment:    input.ExtraPayment,
	}
	if err := s.store.CreatePayment(payment); err != nil {
		return nil, err
	}
	s.log.Infof("Payment recorded for liability %d: %.2f on %s", liabilityID, payment.Amount, payment.PaymentDate.Format("2006-01-02"))

	if s.mail != nil {
		if user, uerr := s.store.FindUserByID(userID); uerr == nil {
			schedule, serr := s.GenerateAmortizationSchedule(liabilityID)
			remaining := liability.PrincipalAmount
			if serr == nil && len(schedule) > 0 {
				remaining = schedule[len(schedule)-1].RemainingPrincipal
			}
			if merr := s.mail.SendPaymentRecorded(user.Email, user.Username, liability.Name, payment.Amount, remaining); merr != nil {
				s.log.Warnf("Payment notification for liability %d not sent: %v", liabilityID, merr)
			}
		}
	}

	return payment, nil
}

// GenerateAmortizationSchedule reconciles the liability's theoretical payment
// calendar against its recorded payments and returns the full schedule. A
// schedule of exactly the iteration cap length did not converge.
func (s *Service) GenerateAmortizationSchedule(liabilityID int64) ([]*models.ScheduleEntry, error) {
	liability, err := s.store.FindLiabilityByID(liabilityID)
	if err != nil {
		return nil, err
	}

	if liability.HMAC != "" && !utils.VerifyLiabilityHMAC(liability.HMAC, liability.PrincipalAmount,
		liability.InterestRate, string(liability.PaymentFrequency), liability.StartDate, s.config.HMACSecret) {
		s.log.Warnf("Liability %d failed HMAC verification", liabilityID)
	}

	payments, err := s.store.FindPaymentsByLiability(liabilityID)
	if err != nil {
		return nil, err
	}

	return s.builder.Build(liability, payments), nil
}

// PostCapitalizedInterest materializes ledger expense transactions for every
// capitalized-interest entry in the liability's schedule. Posting is
// idempotent on (date, account, description): repeated invocations are no-ops
// after the first successful run. A failed write is logged and skipped; the
// count of newly posted transactions is returned.
func (s *Service) PostCapitalizedInterest(liabilityID int64) (int, error) {
	liability, err := s.store.FindLiabilityByID(liabilityID)
	if err != nil {
		return 0, err
	}

	schedule, err := s.GenerateAmortizationSchedule(liabilityID)
	if err != nil {
		return 0, err
	}

	posted := 0
	for _, entry := range schedule {
		if !entry.IsDeferred || entry.DeferralType != models.DeferralTotal || entry.CapitalizedInterest <= splitTolerance {
			continue
		}

		description := fmt.Sprintf("Capitalized interest: liability %d, payment %d", liability.ID, entry.PaymentNumber)
		if existing, ferr := s.store.FindTransaction(entry.PaymentDate, liability.AccountID, description); ferr == nil && existing != nil {
			continue
		}

		tx := &models.Transaction{
			ToAccountID: liability.AccountID,
			Amount:      entry.CapitalizedInterest,
			Type:        "expense",
			Description: description,
			Date:        entry.PaymentDate,
		}
		if cerr := s.store.CreateTransaction(tx); cerr != nil {
			s.log.Errorf("Failed to post capitalized interest for liability %d period %d: %v", liability.ID, entry.PaymentNumber, cerr)
			continue
		}
		posted++
	}

	if posted > 0 {
		s.log.Infof("Posted %d capitalized interest transactions for liability %d", posted, liability.ID)
	}
	return posted, nil
}

// PostAllCapitalizedInterest runs the capitalization poster over every
// liability, tolerating per-liability failures.
func (s *Service) PostAllCapitalizedInterest() (int, error) {
	liabilities, err := s.store.ListLiabilities()
	if err != nil {
		return 0, err
	}

	total := 0
	for _, liability := range liabilities {
		if liability.DeferralType != models.DeferralTotal {
			continue
		}
		posted, perr := s.PostCapitalizedInterest(liability.ID)
		if perr != nil {
			s.log.Errorf("Capitalization posting failed for liability %d: %v", liability.ID, perr)
			continue
		}
		total += posted
	}
	return total, nil
}

// SendUpcomingReminders emails each liability owner about the next theoretical
// payment falling due within the configured window. Returns the number of
// reminders sent.
func (s *Service) SendUpcomingReminders(now time.Time) (int, error) {
	if s.mail == nil {
		return 0, nil
	}
	liabilities, err := s.store.ListLiabilities()
	if err != nil {
		return 0, err
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	horizon := today.AddDate(0, 0, s.config.ReminderDays)

	sent := 0
	for _, liability := range liabilities {
		schedule, serr := s.GenerateAmortizationSchedule(liability.ID)
		if serr != nil {
			s.log.Errorf("Reminder schedule build failed for liability %d: %v", liability.ID, serr)
			continue
		}
		for _, entry := range schedule {
			if entry.IsActualPayment || entry.PaymentAmount <= 0 {
				continue
			}
			if entry.ScheduledDate.Before(today) || entry.ScheduledDate.After(horizon) {
				continue
			}
			user, uerr := s.store.FindUserByID(liability.UserID)
			if uerr != nil {
				s.log.Errorf("Reminder user lookup failed for liability %d: %v", liability.ID, uerr)
				break
			}
			if merr := s.mail.SendPaymentReminder(user.Email, user.Username, liability.Name, entry.ScheduledDate, entry.PaymentAmount); merr == nil {
				sent++
			}
			break // one reminder per liability per run
		}
	}
	return sent, nil
}

// GetLiabilityAnalytics summarizes a liability's schedule for reporting.
func (s *Service) GetLiabilityAnalytics(liabilityID int64) (*models.LiabilityAnalytics, error) {
	liability, err := s.store.FindLiabilityByID(liabilityID)
	if err != nil {
		return nil, err
	}
	schedule, err := s.GenerateAmortizationSchedule(liabilityID)
	if err != nil {
		return nil, err
	}
	if len(schedule) == 0 {
		return &models.LiabilityAnalytics{LiabilityID: liabilityID, Converged: true}, nil
	}

	last := schedule[len(schedule)-1]
	analytics := &models.LiabilityAnalytics{
		LiabilityID:         liabilityID,
		PaymentCount:        len(schedule),
		ProjectedPayoffDate: last.PaymentDate.Format("2006-01-02"),
		RemainingPrincipal:  last.RemainingPrincipal,
		Converged:           len(schedule) < amortization.MaxIterations,
	}
	if last.Summary != nil {
		analytics.TotalInterestPaid = last.Summary.TotalInterestPaid
		analytics.TotalPrincipalPaid = last.Summary.TotalPrincipalPaid
		analytics.TotalCapitalizedInterest = last.Summary.TotalCapitalizedInterest
	}

	// Burden uses the first full amortizing payment as the periodic load.
	for _, entry := range schedule {
		if !entry.IsDeferred && entry.PaymentAmount > 0 {
			analytics.Burden = models.LiabilityBurden{
				PeriodicPayment: entry.PaymentAmount,
				TotalBalance:    liability.PrincipalAmount,
			}
			if liability.PrincipalAmount > 0 {
				analytics.Burden.BurdenRatio = entry.PaymentAmount / liability.PrincipalAmount
			}
			break
		}
	}
	return analytics, nil
}

func userIDFromContext(ctx context.Context) (int64, error) {
	userIDStr, ok := ctx.Value("userID").(string)
	if !ok || userIDStr == "" {
		return 0, fmt.Errorf("user ID not found in context")
	}
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user ID: %w", err)
	}
	return userID, nil
}
