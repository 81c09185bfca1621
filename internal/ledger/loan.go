package ledger

import (
	"time"

	"github.com/banksim/ledger-engine/internal/money"
)

// Loan is a disbursed credit line attached to a checking account. Loans are
// never deleted; repayment only accumulates InstallmentsPaid and AmountPaid.
type Loan struct {
	ID               string      `json:"id"`
	Principal        money.Money `json:"principal"`
	Installments     int         `json:"installments"`
	InstallmentsPaid int         `json:"installments_paid"`
	AmountPaid       money.Money `json:"amount_paid"`
	IssuedAt         time.Time   `json:"issued_at"`
}
