package ledger

import "errors"

// Domain errors. Validation failures are recoverable: the operation is
// rejected with no state change and the caller may retry with corrected
// input. ErrPersistence is the exception — see Ledger.Apply.
var (
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrDailyLimitExceeded     = errors.New("daily withdrawal limit exceeded")
	ErrCreditLimitExceeded    = errors.New("requested principal exceeds credit limit")
	ErrAccountNotFound        = errors.New("account not found")
	ErrCustomerNotFound       = errors.New("customer not found")
	ErrDuplicateCustomer      = errors.New("customer with this document already exists")
	ErrDuplicateAccountType   = errors.New("customer already holds an account of this type")
	ErrSameAccount            = errors.New("source and destination accounts are the same")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrUnsupportedAccountType = errors.New("operation not supported for this account type")

	// ErrPersistence wraps a failed write-through save. In-memory state is
	// NOT rolled back; the caller is told durability is uncertain.
	ErrPersistence = errors.New("persistence failure")
)
