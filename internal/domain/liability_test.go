package domain

import (
	"encoding/json"
	"math"
	"testing"

	"cloud.google.com/go/civil"
)

func TestLiability_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantAPR     float64
		wantMinimum *float64
		wantOverdue bool
	}{
		{
			name:        "canonical field names",
			input:       `{"account_id":"card_001","apr_percentage":24.99,"minimum_payment_amount":100,"last_payment_amount":100,"is_overdue":false}`,
			wantAPR:     24.99,
			wantMinimum: Float(100),
		},
		{
			name:        "short field names",
			input:       `{"account_id":"card_001","apr":19.5,"minimum_payment":35,"is_overdue":true}`,
			wantAPR:     19.5,
			wantMinimum: Float(35),
			wantOverdue: true,
		},
		{
			name:        "short name wins when both present",
			input:       `{"account_id":"card_001","apr":21,"apr_percentage":18,"minimum_payment":40,"minimum_payment_amount":25}`,
			wantAPR:     21,
			wantMinimum: Float(40),
		},
		{
			name:        "zero short name falls back to canonical",
			input:       `{"account_id":"card_001","apr":0,"apr_percentage":18,"minimum_payment":0,"minimum_payment_amount":25}`,
			wantAPR:     18,
			wantMinimum: Float(25),
		},
		{
			name:    "missing terms",
			input:   `{"account_id":"card_001"}`,
			wantAPR: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l Liability
			if err := json.Unmarshal([]byte(tt.input), &l); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if l.AccountID != "card_001" {
				t.Errorf("AccountID = %q, want card_001", l.AccountID)
			}
			if l.APRPercentage != tt.wantAPR {
				t.Errorf("APRPercentage = %v, want %v", l.APRPercentage, tt.wantAPR)
			}
			if (l.MinimumPaymentAmount == nil) != (tt.wantMinimum == nil) {
				t.Fatalf("MinimumPaymentAmount = %v, want %v", l.MinimumPaymentAmount, tt.wantMinimum)
			}
			if tt.wantMinimum != nil && *l.MinimumPaymentAmount != *tt.wantMinimum {
				t.Errorf("MinimumPaymentAmount = %v, want %v", *l.MinimumPaymentAmount, *tt.wantMinimum)
			}
			if l.IsOverdue != tt.wantOverdue {
				t.Errorf("IsOverdue = %v, want %v", l.IsOverdue, tt.wantOverdue)
			}
		})
	}
}

func TestLiability_MarshalUsesCanonicalNames(t *testing.T) {
	date := civil.Date{Year: 2025, Month: 3, Day: 14}
	l := Liability{AccountID: "card_001", APRPercentage: 24.99, MinimumPaymentAmount: Float(100), LastPaymentDate: &date}

	data, err := json.Marshal(l)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var back map[string]interface{}
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if _, ok := back["apr_percentage"]; !ok {
		t.Errorf("expected apr_percentage in %s", data)
	}
	if _, ok := back["apr"]; ok {
		t.Errorf("did not expect apr in %s", data)
	}
	if back["last_payment_date"] != "2025-03-14" {
		t.Errorf("last_payment_date = %v, want 2025-03-14", back["last_payment_date"])
	}
}

func TestLiability_MonthlyRate(t *testing.T) {
	l := Liability{APRPercentage: 12}
	if got := l.MonthlyRate(); math.Abs(got-0.01) > 1e-12 {
		t.Errorf("MonthlyRate() = %v, want 0.01", got)
	}
}

func TestAccountType_IsSavings(t *testing.T) {
	tests := []struct {
		typ  AccountType
		want bool
	}{
		{AccountTypeSavings, true},
		{AccountTypeMoneyMarket, true},
		{AccountTypeHSA, true},
		{AccountTypeChecking, false},
		{AccountTypeCreditCard, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			if got := tt.typ.IsSavings(); got != tt.want {
				t.Errorf("IsSavings() = %v, want %v", got, tt.want)
			}
		})
	}
}
