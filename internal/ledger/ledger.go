// Package ledger implements the account ledger engine: customers, checking
// and savings accounts, the money-movement operations, and the background
// interest accrual scheduler. The Ledger is the single point of mutation
// serialization; accounts own their locks and the Ledger acquires them in
// ascending account-number order.
package ledger

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/banksim/ledger-engine/internal/events"
	"github.com/banksim/ledger-engine/internal/interfaces"
	"github.com/banksim/ledger-engine/internal/money"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Policy holds the per-account parameters applied to newly created accounts.
// The interest rate is per accrual tick; the source material never settled on
// a single rate/period, so both are configuration, not constants.
type Policy struct {
	OverdraftLimit     money.Money
	DailyWithdrawalCap int
	InterestRate       money.Rate
}

// DefaultPolicy mirrors the simulator's historical defaults: 500.00 overdraft,
// five withdrawals per day, 5% interest per tick.
func DefaultPolicy() Policy {
	return Policy{
		OverdraftLimit:     money.MustParse("500.00"),
		DailyWithdrawalCap: 5,
		InterestRate:       money.MustParseRate("0.05"),
	}
}

// Ledger owns the account collection, sequences account numbers, and drives
// write-through persistence. The collection lock (mu) guards the maps and the
// number counter only; each account's own lock guards its state, so adding an
// account never blocks an in-flight operation on an existing one.
type Ledger struct {
	store     interfaces.SnapshotStore
	publisher interfaces.EventPublisher
	log       *zap.Logger
	policy    Policy

	mu                sync.RWMutex
	customers         map[string]*Customer
	accounts          map[int]Account
	nextAccountNumber int

	// saveMu serializes write-through saves; the backing store is a single
	// shared file, so concurrent saves must not interleave.
	saveMu sync.Mutex
}

func NewLedger(store interfaces.SnapshotStore, publisher interfaces.EventPublisher, log *zap.Logger, policy Policy) *Ledger {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{
		store:     store,
		publisher: publisher,
		log:       log,
		policy:    policy,
		customers: make(map[string]*Customer),
		accounts:  make(map[int]Account),
	}
}

// RegisterCustomer adds a customer. Documents are unique across the ledger.
func (l *Ledger) RegisterCustomer(ctx context.Context, name, document string) (*Customer, error) {
	l.mu.Lock()
	for _, c := range l.customers {
		if c.Document == document {
			l.mu.Unlock()
			return nil, ErrDuplicateCustomer
		}
	}
	cust := &Customer{
		ID:        uuid.New().String(),
		Name:      name,
		Document:  document,
		CreatedAt: time.Now(),
	}
	l.customers[cust.ID] = cust
	l.mu.Unlock()

	if err := l.persist(ctx); err != nil {
		return nil, err
	}
	return cust, nil
}

// FindCustomer looks a customer up by ID.
func (l *Ledger) FindCustomer(id string) (*Customer, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	c, ok := l.customers[id]
	if !ok {
		return nil, ErrCustomerNotFound
	}
	cp := *c
	return &cp, nil
}

// FindCustomerByDocument looks a customer up by their document.
func (l *Ledger) FindCustomerByDocument(document string) (*Customer, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, c := range l.customers {
		if c.Document == document {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrCustomerNotFound
}

// CreateChecking opens a checking account for an existing customer. A
// customer holds at most one account of each type. The assigned number is
// persisted immediately so a crash cannot reuse it.
func (l *Ledger) CreateChecking(ctx context.Context, customerID string, credentialHash []byte) (*CheckingAccount, error) {
	acct := &CheckingAccount{
		overdraftLimit:     l.policy.OverdraftLimit,
		dailyWithdrawalCap: l.policy.DailyWithdrawalCap,
	}
	if err := l.admitAccount(ctx, customerID, credentialHash, acct); err != nil {
		return nil, err
	}
	return acct, nil
}

// CreateSavings opens a savings account for an existing customer.
func (l *Ledger) CreateSavings(ctx context.Context, customerID string, credentialHash []byte) (*SavingsAccount, error) {
	acct := &SavingsAccount{
		interestRate: l.policy.InterestRate,
	}
	if err := l.admitAccount(ctx, customerID, credentialHash, acct); err != nil {
		return nil, err
	}
	return acct, nil
}

func (l *Ledger) admitAccount(ctx context.Context, customerID string, credentialHash []byte, acct Account) error {
	st := acct.state()
	l.mu.Lock()
	if _, ok := l.customers[customerID]; !ok {
		l.mu.Unlock()
		return ErrCustomerNotFound
	}
	for _, a := range l.accounts {
		if a.OwnerID() == customerID && a.Kind() == acct.Kind() {
			l.mu.Unlock()
			return ErrDuplicateAccountType
		}
	}
	l.nextAccountNumber++
	st.number = l.nextAccountNumber
	st.ownerID = customerID
	st.credentialHash = credentialHash
	l.accounts[st.number] = acct
	l.mu.Unlock()

	if err := l.persist(ctx); err != nil {
		return err
	}
	l.log.Info("account created",
		zap.Int("number", st.number),
		zap.String("kind", string(acct.Kind())),
		zap.String("customer_id", customerID))
	return nil
}

// Authenticate returns the account handle when the presented credential
// matches the stored hash. Hashing itself belongs to the caller; the engine
// only compares opaque bytes.
func (l *Ledger) Authenticate(number int, credential []byte) (Account, error) {
	a, err := l.FindAccount(number)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare(a.state().credentialHash, credential) != 1 {
		return nil, ErrInvalidCredentials
	}
	return a, nil
}

// FindAccount looks an account up by number.
func (l *Ledger) FindAccount(number int) (Account, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	a, ok := l.accounts[number]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return a, nil
}

// FindAccountsByOwner returns the customer's accounts in ascending number
// order.
func (l *Ledger) FindAccountsByOwner(customerID string) []Account {
	l.mu.RLock()
	var out []Account
	for _, a := range l.accounts {
		if a.OwnerID() == customerID {
			out = append(out, a)
		}
	}
	l.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Number() < out[j].Number() })
	return out
}

// SavingsAccounts returns every savings account in ascending number order.
// Used by the accrual scheduler for its sweep.
func (l *Ledger) SavingsAccounts() []*SavingsAccount {
	l.mu.RLock()
	var out []*SavingsAccount
	for _, a := range l.accounts {
		if s, ok := a.(*SavingsAccount); ok {
			out = append(out, s)
		}
	}
	l.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Number() < out[j].Number() })
	return out
}

// Statement returns the account's transaction history in chronological order.
func (l *Ledger) Statement(number int) ([]TransactionRecord, error) {
	a, err := l.FindAccount(number)
	if err != nil {
		return nil, err
	}
	return a.Statement(), nil
}

// Apply runs one operation: it resolves and locks the involved accounts in
// ascending number order, invokes the operation, persists on success, and
// publishes the resulting event. The operation's result is returned
// unchanged; validation failures mutate nothing.
func (l *Ledger) Apply(ctx context.Context, op Operation) error {
	nums := append([]int(nil), op.accountNumbers()...)
	sort.Ints(nums)
	for i := 1; i < len(nums); i++ {
		if nums[i] == nums[i-1] {
			return ErrSameAccount
		}
	}

	l.mu.RLock()
	accts := make(map[int]Account, len(nums))
	for _, n := range nums {
		a, ok := l.accounts[n]
		if !ok {
			l.mu.RUnlock()
			return ErrAccountNotFound
		}
		accts[n] = a
	}
	l.mu.RUnlock()

	// Fixed global lock order prevents deadlock between concurrent
	// two-account operations in opposite directions.
	for _, n := range nums {
		accts[n].state().mu.Lock()
	}
	now := time.Now()
	mutated, err := op.apply(accts, now)
	for i := len(nums) - 1; i >= 0; i-- {
		accts[nums[i]].state().mu.Unlock()
	}
	if err != nil {
		return err
	}
	if !mutated {
		return nil
	}

	if err := l.persist(ctx); err != nil {
		return err
	}
	l.publish(op, now)
	return nil
}

// AccrueInterest applies one interest tick to a savings account and returns
// the interest credited (zero when the balance was non-positive).
func (l *Ledger) AccrueInterest(ctx context.Context, number int) (money.Money, error) {
	op := &interestAccrual{accountNumber: number}
	if err := l.Apply(ctx, op); err != nil {
		return money.Zero(), err
	}
	return op.applied, nil
}

// persist snapshots the ledger and writes it through to the store. A failed
// save surfaces as ErrPersistence without rolling back in-memory state: the
// caller is told durability is uncertain.
func (l *Ledger) persist(ctx context.Context) error {
	l.saveMu.Lock()
	defer l.saveMu.Unlock()
	if err := l.store.Save(ctx, l.Snapshot()); err != nil {
		l.log.Error("write-through save failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

func (l *Ledger) publish(op Operation, now time.Time) {
	var (
		topic string
		event any
	)
	switch o := op.(type) {
	case *Deposit:
		topic = events.TopicTransactions
		event = events.TransactionCompleted{
			TransactionID: o.record.ID,
			Kind:          string(KindDeposit),
			AccountNumber: o.AccountNumber,
			Amount:        o.Amount,
			OccurredAt:    now,
		}
	case *Withdraw:
		topic = events.TopicTransactions
		event = events.TransactionCompleted{
			TransactionID: o.record.ID,
			Kind:          string(KindWithdraw),
			AccountNumber: o.AccountNumber,
			Amount:        o.Amount,
			OccurredAt:    now,
		}
	case *Transfer:
		topic = events.TopicTransactions
		event = events.TransactionCompleted{
			TransactionID:       o.outRecord.ID,
			Kind:                "transfer",
			AccountNumber:       o.FromAccount,
			CounterpartyAccount: o.ToAccount,
			Amount:              o.Amount,
			OccurredAt:          now,
		}
	case *LoanDisbursement:
		topic = events.TopicTransactions
		event = events.TransactionCompleted{
			TransactionID: o.record.ID,
			Kind:          string(KindLoanDisbursement),
			AccountNumber: o.AccountNumber,
			Amount:        o.Principal,
			OccurredAt:    now,
		}
	case *interestAccrual:
		topic = events.TopicInterest
		event = events.InterestApplied{
			AccountNumber: o.accountNumber,
			Amount:        o.applied,
			Rate:          o.rate.String(),
			OccurredAt:    o.at,
		}
	default:
		return
	}
	if err := l.publisher.Publish(topic, event); err != nil {
		l.log.Warn("event publish failed", zap.String("topic", topic), zap.Error(err))
	}
}
