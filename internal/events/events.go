// Package events defines the payloads published after successful ledger
// mutations. Publishing is best-effort: a failed publish is logged and never
// fails the operation that produced it.
package events

import (
	"time"

	"github.com/banksim/ledger-engine/internal/money"
)

const (
	TopicTransactions = "ledger.transactions"
	TopicInterest     = "ledger.interest"
)

type TransactionCompleted struct {
	TransactionID       string      `json:"transaction_id"`
	Kind                string      `json:"kind"`
	AccountNumber       int         `json:"account_number"`
	CounterpartyAccount int         `json:"counterparty_account,omitempty"`
	Amount              money.Money `json:"amount"`
	OccurredAt          time.Time   `json:"occurred_at"`
}

type InterestApplied struct {
	AccountNumber int         `json:"account_number"`
	Amount        money.Money `json:"amount"`
	Rate          string      `json:"rate"`
	OccurredAt    time.Time   `json:"occurred_at"`
}

// NopPublisher discards every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(topic string, event any) error { return nil }
