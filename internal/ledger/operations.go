package ledger

import (
	"time"

	"github.com/banksim/ledger-engine/internal/money"
)

// Operation is a single money movement applied atomically by the Ledger.
// apply runs with the locks of every involved account held; it returns
// whether any state was mutated. A validation failure mutates nothing.
type Operation interface {
	accountNumbers() []int
	apply(accts map[int]Account, now time.Time) (bool, error)
}

// Deposit credits an amount to one account.
type Deposit struct {
	AccountNumber int
	Amount        money.Money

	record TransactionRecord
}

func NewDeposit(accountNumber int, amount money.Money) *Deposit {
	return &Deposit{AccountNumber: accountNumber, Amount: amount}
}

func (op *Deposit) accountNumbers() []int { return []int{op.AccountNumber} }

func (op *Deposit) apply(accts map[int]Account, now time.Time) (bool, error) {
	rec, err := accts[op.AccountNumber].deposit(KindDeposit, op.Amount, now)
	if err != nil {
		return false, err
	}
	op.record = rec
	return true, nil
}

// Withdraw debits an amount from one account under that account's own rules
// (overdraft and daily cap on checking, non-negative balance on savings).
type Withdraw struct {
	AccountNumber int
	Amount        money.Money

	record TransactionRecord
}

func NewWithdraw(accountNumber int, amount money.Money) *Withdraw {
	return &Withdraw{AccountNumber: accountNumber, Amount: amount}
}

func (op *Withdraw) accountNumbers() []int { return []int{op.AccountNumber} }

func (op *Withdraw) apply(accts map[int]Account, now time.Time) (bool, error) {
	rec, err := accts[op.AccountNumber].withdraw(KindWithdraw, op.Amount, now)
	if err != nil {
		return false, err
	}
	op.record = rec
	return true, nil
}

// Transfer moves an amount between two accounts: a withdrawal leg on the
// source followed by a deposit leg on the destination. Both histories receive
// a record tagged with their role.
type Transfer struct {
	FromAccount int
	ToAccount   int
	Amount      money.Money

	outRecord TransactionRecord
}

func NewTransfer(fromAccount, toAccount int, amount money.Money) *Transfer {
	return &Transfer{FromAccount: fromAccount, ToAccount: toAccount, Amount: amount}
}

func (op *Transfer) accountNumbers() []int { return []int{op.FromAccount, op.ToAccount} }

func (op *Transfer) apply(accts map[int]Account, now time.Time) (bool, error) {
	if !op.Amount.IsPositive() {
		return false, ErrInvalidAmount
	}
	src, dst := accts[op.FromAccount], accts[op.ToAccount]
	outRec, err := src.withdraw(KindTransferOut, op.Amount, now)
	if err != nil {
		return false, err
	}
	if _, err := dst.deposit(KindTransferIn, op.Amount, now); err != nil {
		// The engine must never lose money: credit the source back before
		// reporting the failed destination leg.
		src.rollbackWithdrawal(outRec, op.Amount)
		return false, err
	}
	op.outRecord = outRec
	return true, nil
}

// LoanDisbursement credits a loan principal to a checking account.
type LoanDisbursement struct {
	AccountNumber int
	Principal     money.Money
	Installments  int

	record TransactionRecord
}

func NewLoanDisbursement(accountNumber int, principal money.Money, installments int) *LoanDisbursement {
	return &LoanDisbursement{AccountNumber: accountNumber, Principal: principal, Installments: installments}
}

func (op *LoanDisbursement) accountNumbers() []int { return []int{op.AccountNumber} }

func (op *LoanDisbursement) apply(accts map[int]Account, now time.Time) (bool, error) {
	c, ok := accts[op.AccountNumber].(*CheckingAccount)
	if !ok {
		return false, ErrUnsupportedAccountType
	}
	rec, err := c.requestLoan(op.Principal, op.Installments, now)
	if err != nil {
		return false, err
	}
	op.record = rec
	return true, nil
}

// interestAccrual is one accrual tick on one savings account, applied through
// the same locking path as foreground operations.
type interestAccrual struct {
	accountNumber int

	applied money.Money
	rate    money.Rate
	at      time.Time
}

func (op *interestAccrual) accountNumbers() []int { return []int{op.accountNumber} }

func (op *interestAccrual) apply(accts map[int]Account, now time.Time) (bool, error) {
	s, ok := accts[op.accountNumber].(*SavingsAccount)
	if !ok {
		return false, ErrUnsupportedAccountType
	}
	interest, applied := s.accrueInterest(now)
	if !applied {
		return false, nil
	}
	op.applied = interest
	op.rate = s.interestRate
	op.at = now
	return true, nil
}
