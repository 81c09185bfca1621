// Package storage defines the serialized form of the ledger state exchanged
// with a snapshot store. The types here are plain data carriers; all business
// rules live in the ledger package.
package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account kinds as stored in a snapshot.
const (
	AccountKindChecking = "checking"
	AccountKindSavings  = "savings"
)

// Snapshot is the full persisted state of the ledger: every customer, every
// account with its history, and the account-number counter.
type Snapshot struct {
	NextAccountNumber int        `json:"next_account_number"`
	Customers         []Customer `json:"customers"`
	Accounts          []Account  `json:"accounts"`
}

type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Document  string    `json:"document"`
	CreatedAt time.Time `json:"created_at"`
}

// Account carries the union of checking and savings fields; Kind discriminates
// which of the type-specific fields are meaningful.
type Account struct {
	Number         int                 `json:"number"`
	Kind           string              `json:"kind"`
	OwnerID        string              `json:"owner_id"`
	CredentialHash []byte              `json:"credential_hash"`
	Balance        decimal.Decimal     `json:"balance"`
	History        []TransactionRecord `json:"history"`

	// checking
	OverdraftLimit     decimal.Decimal `json:"overdraft_limit,omitempty"`
	DailyWithdrawalCap int             `json:"daily_withdrawal_cap,omitempty"`
	WithdrawalsToday   int             `json:"withdrawals_today,omitempty"`
	LastWithdrawalDate time.Time       `json:"last_withdrawal_date,omitzero"`
	Loans              []Loan          `json:"loans,omitempty"`

	// savings
	InterestRate    decimal.Decimal `json:"interest_rate,omitempty"`
	LastAccrualTime time.Time       `json:"last_accrual_time,omitzero"`
}

type TransactionRecord struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
}

type Loan struct {
	ID               string          `json:"id"`
	Principal        decimal.Decimal `json:"principal"`
	Installments     int             `json:"installments"`
	InstallmentsPaid int             `json:"installments_paid"`
	AmountPaid       decimal.Decimal `json:"amount_paid"`
	IssuedAt         time.Time       `json:"issued_at"`
}
