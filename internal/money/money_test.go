package money

import (
	"encoding/json"
	"testing"
)

func TestParseRoundsToTwoPlaces(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"100", "100.00"},
		{"100.5", "100.50"},
		{"100.555", "100.56"},
		{"100.554", "100.55"},
		{"-0.005", "-0.01"},
		{"0", "0.00"},
	}
	for _, tt := range tests {
		m, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.in, err)
		}
		if got := m.String(); got != tt.want {
			t.Errorf("Parse(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := Parse("not-a-number"); err == nil {
		t.Fatal("expected error for invalid amount")
	}
	if _, err := ParseRate("12%"); err == nil {
		t.Fatal("expected error for invalid rate")
	}
}

func TestArithmeticKeepsCents(t *testing.T) {
	// The classic binary-float trap: 0.10 + 0.20 must be exactly 0.30.
	sum := MustParse("0.10").Add(MustParse("0.20"))
	if !sum.Equal(MustParse("0.30")) {
		t.Fatalf("0.10 + 0.20 = %s, want 0.30", sum)
	}

	// A long add/sub chain must not drift.
	m := Zero()
	for i := 0; i < 1000; i++ {
		m = m.Add(MustParse("0.01"))
	}
	if !m.Equal(MustParse("10.00")) {
		t.Fatalf("1000 * 0.01 = %s, want 10.00", m)
	}
}

func TestMulRoundsResult(t *testing.T) {
	tests := []struct {
		amount string
		rate   string
		want   string
	}{
		{"1000.00", "0.05", "50.00"},
		{"1050.00", "0.05", "52.50"},
		{"33.33", "0.10", "3.33"},
		{"0.01", "0.05", "0.00"},
	}
	for _, tt := range tests {
		got := MustParse(tt.amount).Mul(MustParseRate(tt.rate))
		if got.String() != tt.want {
			t.Errorf("%s * %s = %s, want %s", tt.amount, tt.rate, got, tt.want)
		}
	}
}

func TestMulInt(t *testing.T) {
	if got := MustParse("500.00").MulInt(5); !got.Equal(MustParse("2500.00")) {
		t.Fatalf("500.00 * 5 = %s, want 2500.00", got)
	}
}

func TestCents(t *testing.T) {
	if got := MustParse("12.34").Cents(); got != 1234 {
		t.Fatalf("Cents() = %d, want 1234", got)
	}
	if got := FromCents(-50).String(); got != "-0.50" {
		t.Fatalf("FromCents(-50) = %s, want -0.50", got)
	}
}

func TestComparisons(t *testing.T) {
	a, b := MustParse("10.00"), MustParse("20.00")
	if !a.LessThan(b) || !b.GreaterThan(a) {
		t.Fatal("comparison mismatch")
	}
	if !a.IsPositive() || a.IsZero() || a.IsNegative() {
		t.Fatal("sign predicates mismatch")
	}
	if Zero().Sign() != 0 {
		t.Fatal("Zero().Sign() != 0")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	type doc struct {
		Amount Money `json:"amount"`
	}
	out, err := json.Marshal(doc{Amount: MustParse("1050.5")})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"amount":"1050.50"}` {
		t.Fatalf("marshal = %s", out)
	}

	var in doc
	if err := json.Unmarshal([]byte(`{"amount":"99.999"}`), &in); err != nil {
		t.Fatal(err)
	}
	if in.Amount.String() != "100.00" {
		t.Fatalf("unmarshal rounded = %s, want 100.00", in.Amount)
	}
	// Bare numbers are accepted too.
	if err := json.Unmarshal([]byte(`{"amount":25.5}`), &in); err != nil {
		t.Fatal(err)
	}
	if in.Amount.String() != "25.50" {
		t.Fatalf("unmarshal bare = %s, want 25.50", in.Amount)
	}
}
