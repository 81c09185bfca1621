package ledger

import (
	"sync"
	"time"

	"github.com/banksim/ledger-engine/internal/money"
	"github.com/google/uuid"
)

// AccountKind discriminates the two account variants.
type AccountKind string

const (
	AccountChecking AccountKind = "checking"
	AccountSavings  AccountKind = "savings"
)

// creditMultiple caps a loan principal at this multiple of the account's
// overdraft limit. A crude credit-worthiness proxy tied to the account's
// existing risk tolerance; a policy constant, not a law of banking.
const creditMultiple = 5

// Account is the closed set of account variants. Exported methods are safe
// for concurrent use; unexported mutators must only be called by the Ledger
// with the account lock held.
type Account interface {
	Number() int
	OwnerID() string
	Kind() AccountKind
	Balance() money.Money
	Statement() []TransactionRecord

	state() *accountState
	deposit(kind Kind, amount money.Money, now time.Time) (TransactionRecord, error)
	withdraw(kind Kind, amount money.Money, now time.Time) (TransactionRecord, error)
	rollbackWithdrawal(rec TransactionRecord, amount money.Money)
}

// accountState holds the fields common to both variants. The mutex guards
// every field below it for the full read-validate-mutate-append sequence of
// one operation, not just the balance write.
type accountState struct {
	mu sync.Mutex

	number         int
	ownerID        string
	credentialHash []byte
	balance        money.Money
	history        []TransactionRecord
}

func (a *accountState) state() *accountState { return a }

func (a *accountState) Number() int { return a.number }

func (a *accountState) OwnerID() string { return a.ownerID }

// Balance returns the last-committed balance. It takes the account lock, so
// it never observes a mid-mutation value.
func (a *accountState) Balance() money.Money {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// Statement returns a copy of the history in chronological order.
func (a *accountState) Statement() []TransactionRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]TransactionRecord, len(a.history))
	copy(out, a.history)
	return out
}

// deposit credits the account. Shared by both variants: the only rule is that
// the amount must be positive.
func (a *accountState) deposit(kind Kind, amount money.Money, now time.Time) (TransactionRecord, error) {
	if !amount.IsPositive() {
		return TransactionRecord{}, ErrInvalidAmount
	}
	a.balance = a.balance.Add(amount)
	rec := newRecord(kind, amount, now)
	a.history = append(a.history, rec)
	return rec, nil
}

// rollbackWithdrawal compensates a withdrawal that was part of a larger
// operation whose later leg failed: the amount is credited back and the
// history entry removed, as if the withdrawal never happened.
func (a *accountState) rollbackWithdrawal(rec TransactionRecord, amount money.Money) {
	a.balance = a.balance.Add(amount)
	if n := len(a.history); n > 0 && a.history[n-1].ID == rec.ID {
		a.history = a.history[:n-1]
	}
}

// CheckingAccount permits overdraft up to a limit, caps withdrawals per
// calendar day, and can take loans.
type CheckingAccount struct {
	accountState

	overdraftLimit     money.Money
	dailyWithdrawalCap int
	withdrawalsToday   int
	lastWithdrawalDate time.Time
	loans              []*Loan
}

func (c *CheckingAccount) Kind() AccountKind { return AccountChecking }

// OverdraftLimit is the negative-balance floor the account may reach.
func (c *CheckingAccount) OverdraftLimit() money.Money { return c.overdraftLimit }

func (c *CheckingAccount) DailyWithdrawalCap() int { return c.dailyWithdrawalCap }

// Loans returns a copy of the account's loans in issue order.
func (c *CheckingAccount) Loans() []Loan {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Loan, len(c.loans))
	for i, l := range c.loans {
		out[i] = *l
	}
	return out
}

// withdraw debits a checking account. The daily counter resets lazily on the
// first attempt of a new calendar day; the balance may go negative down to
// -overdraftLimit.
func (c *CheckingAccount) withdraw(kind Kind, amount money.Money, now time.Time) (TransactionRecord, error) {
	if !amount.IsPositive() {
		return TransactionRecord{}, ErrInvalidAmount
	}
	if !sameDay(c.lastWithdrawalDate, now) {
		c.withdrawalsToday = 0
	}
	c.lastWithdrawalDate = now
	if c.withdrawalsToday >= c.dailyWithdrawalCap {
		return TransactionRecord{}, ErrDailyLimitExceeded
	}
	if amount.GreaterThan(c.balance.Add(c.overdraftLimit)) {
		return TransactionRecord{}, ErrInsufficientFunds
	}
	c.balance = c.balance.Sub(amount)
	c.withdrawalsToday++
	rec := newRecord(kind, amount, now)
	c.history = append(c.history, rec)
	return rec, nil
}

func (c *CheckingAccount) rollbackWithdrawal(rec TransactionRecord, amount money.Money) {
	c.accountState.rollbackWithdrawal(rec, amount)
	if c.withdrawalsToday > 0 {
		c.withdrawalsToday--
	}
}

// requestLoan credits the principal to the balance and records the loan.
// The principal may not exceed creditMultiple times the overdraft limit.
func (c *CheckingAccount) requestLoan(principal money.Money, installments int, now time.Time) (TransactionRecord, error) {
	if !principal.IsPositive() || installments <= 0 {
		return TransactionRecord{}, ErrInvalidAmount
	}
	if principal.GreaterThan(c.overdraftLimit.MulInt(creditMultiple)) {
		return TransactionRecord{}, ErrCreditLimitExceeded
	}
	c.loans = append(c.loans, &Loan{
		ID:           uuid.New().String(),
		Principal:    principal,
		Installments: installments,
		IssuedAt:     now,
	})
	c.balance = c.balance.Add(principal)
	rec := newRecord(KindLoanDisbursement, principal, now)
	c.history = append(c.history, rec)
	return rec, nil
}

// SavingsAccount accrues interest and never goes negative.
type SavingsAccount struct {
	accountState

	interestRate    money.Rate
	lastAccrualTime time.Time
}

func (s *SavingsAccount) Kind() AccountKind { return AccountSavings }

// InterestRate is the rate applied per accrual tick.
func (s *SavingsAccount) InterestRate() money.Rate { return s.interestRate }

func (s *SavingsAccount) LastAccrualTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccrualTime
}

// withdraw debits a savings account. No overdraft, no daily cap.
func (s *SavingsAccount) withdraw(kind Kind, amount money.Money, now time.Time) (TransactionRecord, error) {
	if !amount.IsPositive() {
		return TransactionRecord{}, ErrInvalidAmount
	}
	if amount.GreaterThan(s.balance) {
		return TransactionRecord{}, ErrInsufficientFunds
	}
	s.balance = s.balance.Sub(amount)
	rec := newRecord(kind, amount, now)
	s.history = append(s.history, rec)
	return rec, nil
}

// accrueInterest applies one tick of simple interest: balance-at-tick times
// rate, rounded to two places. A zero-or-negative balance (or an interest
// amount that rounds to zero) is a no-op.
func (s *SavingsAccount) accrueInterest(now time.Time) (money.Money, bool) {
	if s.balance.Sign() <= 0 {
		return money.Zero(), false
	}
	interest := s.balance.Mul(s.interestRate)
	if !interest.IsPositive() {
		return money.Zero(), false
	}
	s.balance = s.balance.Add(interest)
	s.history = append(s.history, newRecord(KindInterest, interest, now))
	s.lastAccrualTime = now
	return interest, true
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
