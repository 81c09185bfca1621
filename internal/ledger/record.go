package ledger

import (
	"time"

	"github.com/banksim/ledger-engine/internal/money"
	"github.com/google/uuid"
)

// Kind tags a history entry with the movement that produced it. Transfer legs
// carry their role so a statement can tell direction from the kind alone.
type Kind string

const (
	KindDeposit          Kind = "deposit"
	KindWithdraw         Kind = "withdraw"
	KindTransferIn       Kind = "transfer_in"
	KindTransferOut      Kind = "transfer_out"
	KindInterest         Kind = "interest"
	KindLoanDisbursement Kind = "loan_disbursement"
)

// TransactionRecord is one immutable entry in an account's history.
// History order is insertion order, which is chronological order.
type TransactionRecord struct {
	ID        string      `json:"id"`
	Kind      Kind        `json:"kind"`
	Amount    money.Money `json:"amount"`
	Timestamp time.Time   `json:"timestamp"`
}

func newRecord(kind Kind, amount money.Money, at time.Time) TransactionRecord {
	return TransactionRecord{
		ID:        uuid.New().String(),
		Kind:      kind,
		Amount:    amount,
		Timestamp: at,
	}
}
