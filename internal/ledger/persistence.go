package ledger

import (
	"fmt"
	"sort"

	"github.com/banksim/ledger-engine/internal/money"
	"github.com/banksim/ledger-engine/internal/storage"
)

// Snapshot exports the full ledger state for persistence. Accounts are read
// one at a time under their own lock, never while holding another account's
// lock, so a snapshot can run while operations proceed on other accounts.
func (l *Ledger) Snapshot() storage.Snapshot {
	l.mu.RLock()
	snap := storage.Snapshot{NextAccountNumber: l.nextAccountNumber}
	customers := make([]*Customer, 0, len(l.customers))
	for _, c := range l.customers {
		customers = append(customers, c)
	}
	accounts := make([]Account, 0, len(l.accounts))
	for _, a := range l.accounts {
		accounts = append(accounts, a)
	}
	l.mu.RUnlock()

	sort.Slice(customers, func(i, j int) bool { return customers[i].ID < customers[j].ID })
	for _, c := range customers {
		snap.Customers = append(snap.Customers, storage.Customer{
			ID:        c.ID,
			Name:      c.Name,
			Document:  c.Document,
			CreatedAt: c.CreatedAt,
		})
	}

	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Number() < accounts[j].Number() })
	for _, a := range accounts {
		snap.Accounts = append(snap.Accounts, snapshotAccount(a))
	}
	return snap
}

func snapshotAccount(a Account) storage.Account {
	st := a.state()
	st.mu.Lock()
	defer st.mu.Unlock()

	out := storage.Account{
		Number:         st.number,
		OwnerID:        st.ownerID,
		CredentialHash: st.credentialHash,
		Balance:        st.balance.Decimal(),
	}
	for _, rec := range st.history {
		out.History = append(out.History, storage.TransactionRecord{
			ID:        rec.ID,
			Kind:      string(rec.Kind),
			Amount:    rec.Amount.Decimal(),
			Timestamp: rec.Timestamp,
		})
	}

	switch acct := a.(type) {
	case *CheckingAccount:
		out.Kind = storage.AccountKindChecking
		out.OverdraftLimit = acct.overdraftLimit.Decimal()
		out.DailyWithdrawalCap = acct.dailyWithdrawalCap
		out.WithdrawalsToday = acct.withdrawalsToday
		out.LastWithdrawalDate = acct.lastWithdrawalDate
		for _, loan := range acct.loans {
			out.Loans = append(out.Loans, storage.Loan{
				ID:               loan.ID,
				Principal:        loan.Principal.Decimal(),
				Installments:     loan.Installments,
				InstallmentsPaid: loan.InstallmentsPaid,
				AmountPaid:       loan.AmountPaid.Decimal(),
				IssuedAt:         loan.IssuedAt,
			})
		}
	case *SavingsAccount:
		out.Kind = storage.AccountKindSavings
		out.InterestRate = acct.interestRate.Decimal()
		out.LastAccrualTime = acct.lastAccrualTime
	}
	return out
}

// Restore hydrates the ledger from a snapshot, replacing any current state.
// Called once at process start, before any operation or the scheduler runs.
func (l *Ledger) Restore(snap storage.Snapshot) error {
	customers := make(map[string]*Customer, len(snap.Customers))
	for _, c := range snap.Customers {
		customers[c.ID] = &Customer{
			ID:        c.ID,
			Name:      c.Name,
			Document:  c.Document,
			CreatedAt: c.CreatedAt,
		}
	}

	accounts := make(map[int]Account, len(snap.Accounts))
	for _, sa := range snap.Accounts {
		acct, err := restoreAccount(sa)
		if err != nil {
			return err
		}
		accounts[sa.Number] = acct
	}

	next := snap.NextAccountNumber
	for n := range accounts {
		if n > next {
			next = n
		}
	}

	l.mu.Lock()
	l.customers = customers
	l.accounts = accounts
	l.nextAccountNumber = next
	l.mu.Unlock()
	return nil
}

// copyInto transfers the data fields of a freshly built, unshared state
// without copying the embedded mutex.
func (s *accountState) copyInto(dst *accountState) {
	dst.number = s.number
	dst.ownerID = s.ownerID
	dst.credentialHash = s.credentialHash
	dst.balance = s.balance
	dst.history = s.history
}

func restoreAccount(sa storage.Account) (Account, error) {
	st := accountState{
		number:         sa.Number,
		ownerID:        sa.OwnerID,
		credentialHash: sa.CredentialHash,
		balance:        money.FromDecimal(sa.Balance),
	}
	for _, rec := range sa.History {
		st.history = append(st.history, TransactionRecord{
			ID:        rec.ID,
			Kind:      Kind(rec.Kind),
			Amount:    money.FromDecimal(rec.Amount),
			Timestamp: rec.Timestamp,
		})
	}

	switch sa.Kind {
	case storage.AccountKindChecking:
		acct := &CheckingAccount{
			overdraftLimit:     money.FromDecimal(sa.OverdraftLimit),
			dailyWithdrawalCap: sa.DailyWithdrawalCap,
			withdrawalsToday:   sa.WithdrawalsToday,
			lastWithdrawalDate: sa.LastWithdrawalDate,
		}
		st.copyInto(&acct.accountState)
		for _, loan := range sa.Loans {
			acct.loans = append(acct.loans, &Loan{
				ID:               loan.ID,
				Principal:        money.FromDecimal(loan.Principal),
				Installments:     loan.Installments,
				InstallmentsPaid: loan.InstallmentsPaid,
				AmountPaid:       money.FromDecimal(loan.AmountPaid),
				IssuedAt:         loan.IssuedAt,
			})
		}
		return acct, nil
	case storage.AccountKindSavings:
		acct := &SavingsAccount{
			interestRate:    money.RateFromDecimal(sa.InterestRate),
			lastAccrualTime: sa.LastAccrualTime,
		}
		st.copyInto(&acct.accountState)
		return acct, nil
	default:
		return nil, fmt.Errorf("restore account %d: unknown kind %q", sa.Number, sa.Kind)
	}
}
