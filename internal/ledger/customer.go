package ledger

import "time"

// Customer is an account owner. Attribute validation (name, document,
// birthdate formats) belongs to the registration front, not the engine.
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Document  string    `json:"document"`
	CreatedAt time.Time `json:"created_at"`
}
