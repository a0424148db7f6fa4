package service

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/finledger/ledger-service/internal/config"
	"github.com/finledger/ledger-service/internal/models"
	"github.com/finledger/ledger-service/internal/repository"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store for exercising the service without a
// database.
type fakeStore struct {
	users        map[int64]*models.User
	liabilities  map[int64]*models.Liability
	payments     map[int64][]*models.Payment
	transactions []*models.Transaction
	failCreates  bool
	nextID       int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       map[int64]*models.User{},
		liabilities: map[int64]*models.Liability{},
		payments:    map[int64][]*models.Payment{},
		nextID:      1,
	}
}

func (f *fakeStore) CreateUser(user *models.User) error {
	user.ID = f.nextID
	f.nextID++
	f.users[user.ID] = user
	return nil
}

func (f *fakeStore) FindUserByEmail(email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, repository.ErrNotFound)
}

func (f *fakeStore) FindUserByID(id int64) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user %d: %w", id, repository.ErrNotFound)
}

func (f *fakeStore) CreateAccount(account *models.Account) error {
	account.ID = f.nextID
	f.nextID++
	return nil
}

func (f *fakeStore) FindAccountByID(accountID int64) (int64, error) {
	return 1, nil
}

func (f *fakeStore) CreateLiability(liability *models.Liability) error {
	liability.ID = f.nextID
	f.nextID++
	f.liabilities[liability.ID] = liability
	return nil
}

func (f *fakeStore) FindLiabilityByID(id int64) (*models.Liability, error) {
	if l, ok := f.liabilities[id]; ok {
		return l, nil
	}
	return nil, fmt.Errorf("liability %d: %w", id, repository.ErrNotFound)
}

func (f *fakeStore) ListLiabilities() ([]*models.Liability, error) {
	var out []*models.Liability
	for _, l := range f.liabilities {
		out = append(out, l)
	}
	return out, nil
}

func (f *fakeStore) CreatePayment(payment *models.Payment) error {
	payment.ID = f.nextID
	f.nextID++
	f.payments[payment.LiabilityID] = append(f.payments[payment.LiabilityID], payment)
	return nil
}

func (f *fakeStore) FindPaymentsByLiability(liabilityID int64) ([]*models.Payment, error) {
	return f.payments[liabilityID], nil
}

func (f *fakeStore) FindTransaction(date time.Time, toAccountID int64, description string) (*models.Transaction, error) {
	for _, tx := range f.transactions {
		if tx.Date.Equal(date) && tx.ToAccountID == toAccountID && tx.Description == description {
			return tx, nil
		}
	}
	return nil, fmt.Errorf("transaction: %w", repository.ErrNotFound)
}

func (f *fakeStore) CreateTransaction(tx *models.Transaction) error {
	if f.failCreates {
		return fmt.Errorf("write failed")
	}
	tx.ID = f.nextID
	f.nextID++
	f.transactions = append(f.transactions, tx)
	return nil
}

func testService(store Store) *Service {
	log := logrus.New()
	log.SetOutput(io.Discard)
	cfg := &config.Config{JWTSecret: "secret", HMACSecret: "secret", ReminderDays: 3}
	return NewService(store, log, cfg, nil, nil)
}

func deferredLiability() *models.Liability {
	end := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	return &models.Liability{
		AccountID:            1,
		UserID:               1,
		Name:                 "Car loan",
		PrincipalAmount:      10000,
		InterestRate:         12,
		CompoundingPeriod:    models.CompoundingMonthly,
		PaymentFrequency:     models.FrequencyMonthly,
		StartDate:            time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndDate:              &end,
		DeferralPeriodMonths: 3,
		DeferralType:         models.DeferralTotal,
	}
}

func TestGenerateAmortizationScheduleNotFound(t *testing.T) {
	svc := testService(newFakeStore())

	_, err := svc.GenerateAmortizationSchedule(42)
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGenerateAmortizationSchedule(t *testing.T) {
	store := newFakeStore()
	require.NoError(t, store.CreateLiability(deferredLiability()))
	svc := testService(store)

	schedule, err := svc.GenerateAmortizationSchedule(1)
	require.NoError(t, err)
	require.NotEmpty(t, schedule)
	assert.Equal(t, 1, schedule[0].PaymentNumber)
	assert.True(t, schedule[0].IsDeferred)
	require.NotNil(t, schedule[len(schedule)-1].Summary)
}

func TestPostCapitalizedInterestIdempotent(t *testing.T) {
	store := newFakeStore()
	require.NoError(t, store.CreateLiability(deferredLiability()))
	svc := testService(store)

	posted, err := svc.PostCapitalizedInterest(1)
	require.NoError(t, err)
	assert.Equal(t, 3, posted, "three deferral periods capitalize interest")
	assert.Len(t, store.transactions, 3)

	// A second run must find the existing transactions and post nothing.
	posted, err = svc.PostCapitalizedInterest(1)
	require.NoError(t, err)
	assert.Zero(t, posted)
	assert.Len(t, store.transactions, 3)

	for _, tx := range store.transactions {
		assert.Equal(t, "expense", tx.Type)
		assert.Greater(t, tx.Amount, 0.0)
	}
}

func TestPostCapitalizedInterestSkipsFailedWrites(t *testing.T) {
	store := newFakeStore()
	require.NoError(t, store.CreateLiability(deferredLiability()))
	store.failCreates = true
	svc := testService(store)

	posted, err := svc.PostCapitalizedInterest(1)
	require.NoError(t, err, "write failures are skipped, not fatal")
	assert.Zero(t, posted)
}

func TestRecordPaymentRejectsMismatchedSplit(t *testing.T) {
	store := newFakeStore()
	require.NoError(t, store.CreateUser(&models.User{Email: "u@example.com"}))
	liability := deferredLiability()
	require.NoError(t, store.CreateLiability(liability))
	svc := testService(store)

	ctx := context.WithValue(context.Background(), "userID", "1")
	_, err := svc.RecordPayment(ctx, liability.ID, RecordPaymentInput{
		PaymentDate:     time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
		Amount:          100,
		PrincipalAmount: 50,
		InterestAmount:  20,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match split")
}

func TestRecordPaymentStoresPayment(t *testing.T) {
	store := newFakeStore()
	require.NoError(t, store.CreateUser(&models.User{Email: "u@example.com"}))
	liability := deferredLiability()
	require.NoError(t, store.CreateLiability(liability))
	svc := testService(store)

	ctx := context.WithValue(context.Background(), "userID", "1")
	payment, err := svc.RecordPayment(ctx, liability.ID, RecordPaymentInput{
		TransactionID:   "tx-1",
		PaymentDate:     time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
		Amount:          100,
		PrincipalAmount: 80,
		InterestAmount:  20,
	})
	require.NoError(t, err)
	assert.Equal(t, "tx-1", payment.TransactionID)
	assert.Len(t, store.payments[liability.ID], 1)
}

func TestGetLiabilityAnalytics(t *testing.T) {
	store := newFakeStore()
	require.NoError(t, store.CreateLiability(deferredLiability()))
	svc := testService(store)

	analytics, err := svc.GetLiabilityAnalytics(1)
	require.NoError(t, err)
	assert.True(t, analytics.Converged)
	assert.InDelta(t, 303.01, analytics.TotalCapitalizedInterest, 0.001)
	assert.Greater(t, analytics.Burden.PeriodicPayment, 0.0)
	assert.Greater(t, analytics.Burden.BurdenRatio, 0.0)
}
