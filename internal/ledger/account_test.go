package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/banksim/ledger-engine/internal/money"
)

func newChecking(balance, overdraft string, cap int) *CheckingAccount {
	return &CheckingAccount{
		accountState:       accountState{number: 1, balance: money.MustParse(balance)},
		overdraftLimit:     money.MustParse(overdraft),
		dailyWithdrawalCap: cap,
	}
}

func newSavings(balance, rate string) *SavingsAccount {
	return &SavingsAccount{
		accountState: accountState{number: 1, balance: money.MustParse(balance)},
		interestRate: money.MustParseRate(rate),
	}
}

func TestDepositRejectsNonPositive(t *testing.T) {
	for _, amount := range []string{"0.00", "-10.00"} {
		c := newChecking("100.00", "500.00", 5)
		_, err := c.deposit(KindDeposit, money.MustParse(amount), time.Now())
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("deposit %s: err = %v, want ErrInvalidAmount", amount, err)
		}
		if !c.balance.Equal(money.MustParse("100.00")) || len(c.history) != 0 {
			t.Fatalf("deposit %s mutated state", amount)
		}
	}
}

func TestDepositCreditsAndRecords(t *testing.T) {
	c := newChecking("0.00", "500.00", 5)
	rec, err := c.deposit(KindDeposit, money.MustParse("250.00"), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if !c.balance.Equal(money.MustParse("250.00")) {
		t.Fatalf("balance = %s, want 250.00", c.balance)
	}
	if len(c.history) != 1 || c.history[0].ID != rec.ID || c.history[0].Kind != KindDeposit {
		t.Fatalf("history = %+v", c.history)
	}
}

func TestCheckingWithdrawRules(t *testing.T) {
	tests := []struct {
		name    string
		balance string
		amount  string
		wantErr error
		wantBal string
	}{
		{"within balance", "300.00", "100.00", nil, "200.00"},
		{"into overdraft", "0.00", "200.00", nil, "-200.00"},
		{"to overdraft floor", "0.00", "500.00", nil, "-500.00"},
		{"past overdraft floor", "0.00", "500.01", ErrInsufficientFunds, "0.00"},
		{"zero amount", "300.00", "0.00", ErrInvalidAmount, "300.00"},
		{"negative amount", "300.00", "-5.00", ErrInvalidAmount, "300.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newChecking(tt.balance, "500.00", 5)
			_, err := c.withdraw(KindWithdraw, money.MustParse(tt.amount), time.Now())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if !c.balance.Equal(money.MustParse(tt.wantBal)) {
				t.Fatalf("balance = %s, want %s", c.balance, tt.wantBal)
			}
			if tt.wantErr != nil && len(c.history) != 0 {
				t.Fatal("failed withdraw appended history")
			}
		})
	}
}

// The worked example from the rules: balance 0, overdraft 500, cap 3.
// Withdraw 200 succeeds into overdraft; withdraw 400 then exceeds the
// remaining 300 of headroom and fails without touching the balance.
func TestCheckingOverdraftExample(t *testing.T) {
	c := newChecking("0.00", "500.00", 3)
	now := time.Now()

	if _, err := c.withdraw(KindWithdraw, money.MustParse("200.00"), now); err != nil {
		t.Fatal(err)
	}
	if !c.balance.Equal(money.MustParse("-200.00")) || c.withdrawalsToday != 1 {
		t.Fatalf("after first withdraw: balance %s, withdrawalsToday %d", c.balance, c.withdrawalsToday)
	}

	_, err := c.withdraw(KindWithdraw, money.MustParse("400.00"), now)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if !c.balance.Equal(money.MustParse("-200.00")) {
		t.Fatalf("failed withdraw changed balance to %s", c.balance)
	}
}

func TestCheckingDailyCap(t *testing.T) {
	const dailyCap = 3
	c := newChecking("1000.00", "500.00", dailyCap)
	now := time.Now()

	for i := 0; i < dailyCap; i++ {
		if _, err := c.withdraw(KindWithdraw, money.MustParse("10.00"), now); err != nil {
			t.Fatalf("withdraw %d: %v", i+1, err)
		}
	}
	_, err := c.withdraw(KindWithdraw, money.MustParse("10.00"), now)
	if !errors.Is(err, ErrDailyLimitExceeded) {
		t.Fatalf("withdraw %d: err = %v, want ErrDailyLimitExceeded", dailyCap+1, err)
	}
	if !c.balance.Equal(money.MustParse("970.00")) {
		t.Fatalf("balance = %s, want 970.00", c.balance)
	}
}

func TestCheckingDailyCapResetsNextDay(t *testing.T) {
	c := newChecking("1000.00", "500.00", 2)
	yesterday := time.Now().AddDate(0, 0, -1)
	c.lastWithdrawalDate = yesterday
	c.withdrawalsToday = 2

	if _, err := c.withdraw(KindWithdraw, money.MustParse("10.00"), time.Now()); err != nil {
		t.Fatalf("withdraw on new day: %v", err)
	}
	if c.withdrawalsToday != 1 {
		t.Fatalf("withdrawalsToday = %d, want 1 after lazy reset", c.withdrawalsToday)
	}
}

func TestSavingsWithdrawNoOverdraft(t *testing.T) {
	s := newSavings("100.00", "0.05")
	now := time.Now()

	if _, err := s.withdraw(KindWithdraw, money.MustParse("100.01"), now); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if _, err := s.withdraw(KindWithdraw, money.MustParse("-1.00"), now); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}
	if _, err := s.withdraw(KindWithdraw, money.MustParse("100.00"), now); err != nil {
		t.Fatal(err)
	}
	if !s.balance.IsZero() {
		t.Fatalf("balance = %s, want 0.00", s.balance)
	}
}

func TestRequestLoan(t *testing.T) {
	tests := []struct {
		name         string
		principal    string
		installments int
		wantErr      error
	}{
		{"valid", "1000.00", 12, nil},
		{"at credit limit", "2500.00", 12, nil},
		{"over credit limit", "2500.01", 12, ErrCreditLimitExceeded},
		{"zero principal", "0.00", 12, ErrInvalidAmount},
		{"zero installments", "1000.00", 0, ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newChecking("0.00", "500.00", 5)
			_, err := c.requestLoan(money.MustParse(tt.principal), tt.installments, time.Now())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if len(c.loans) != 0 || !c.balance.IsZero() || len(c.history) != 0 {
					t.Fatal("failed loan mutated state")
				}
				return
			}
			if len(c.loans) != 1 {
				t.Fatalf("loans = %d, want 1", len(c.loans))
			}
			loan := c.loans[0]
			if loan.InstallmentsPaid != 0 || !loan.AmountPaid.IsZero() {
				t.Fatalf("new loan has repayment state: %+v", loan)
			}
			if !c.balance.Equal(money.MustParse(tt.principal)) {
				t.Fatalf("balance = %s, want %s", c.balance, tt.principal)
			}
			if len(c.history) != 1 || c.history[0].Kind != KindLoanDisbursement {
				t.Fatalf("history = %+v", c.history)
			}
		})
	}
}

func TestAccrueInterest(t *testing.T) {
	s := newSavings("1000.00", "0.05")
	now := time.Now()

	interest, applied := s.accrueInterest(now)
	if !applied {
		t.Fatal("expected accrual to apply")
	}
	if !interest.Equal(money.MustParse("50.00")) {
		t.Fatalf("interest = %s, want 50.00", interest)
	}
	if !s.balance.Equal(money.MustParse("1050.00")) {
		t.Fatalf("balance = %s, want 1050.00", s.balance)
	}
	if len(s.history) != 1 || s.history[0].Kind != KindInterest {
		t.Fatalf("history = %+v", s.history)
	}
	if !s.lastAccrualTime.Equal(now) {
		t.Fatal("lastAccrualTime not updated")
	}
}

func TestAccrueInterestNoOpOnNonPositiveBalance(t *testing.T) {
	for _, balance := range []string{"0.00", "-10.00"} {
		s := newSavings(balance, "0.05")
		if _, applied := s.accrueInterest(time.Now()); applied {
			t.Fatalf("accrual applied on balance %s", balance)
		}
		if len(s.history) != 0 {
			t.Fatalf("accrual on balance %s appended history", balance)
		}
	}
}

func TestAccrueInterestSkipsSubCentResult(t *testing.T) {
	s := newSavings("0.01", "0.05")
	if _, applied := s.accrueInterest(time.Now()); applied {
		t.Fatal("accrual applied an amount that rounds to zero")
	}
	if !s.balance.Equal(money.MustParse("0.01")) || len(s.history) != 0 {
		t.Fatal("no-op accrual mutated state")
	}
}

// The compensation path for a failed second transfer leg: the withdrawal is
// undone completely, including the daily counter and the history entry.
func TestRollbackWithdrawal(t *testing.T) {
	c := newChecking("300.00", "500.00", 5)
	now := time.Now()

	rec, err := c.withdraw(KindTransferOut, money.MustParse("100.00"), now)
	if err != nil {
		t.Fatal(err)
	}
	c.rollbackWithdrawal(rec, money.MustParse("100.00"))

	if !c.balance.Equal(money.MustParse("300.00")) {
		t.Fatalf("balance = %s, want 300.00", c.balance)
	}
	if len(c.history) != 0 {
		t.Fatalf("history = %+v, want empty", c.history)
	}
	if c.withdrawalsToday != 0 {
		t.Fatalf("withdrawalsToday = %d, want 0", c.withdrawalsToday)
	}
}
