package whatif

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmortizeDebt_ZeroRate(t *testing.T) {
	got := AmortizeDebt(1000, 0, 100)

	assert.Equal(t, PaidOff, got.Outcome)
	assert.Equal(t, 10, got.Months)
	assert.Equal(t, 0.0, got.TotalInterest)
	assert.Equal(t, 1000.0, got.TotalPaid)
	assert.Equal(t, MonthsOf(10), got.MonthsToPayoff())
}

func TestAmortizeDebt_Outcomes(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		payment   float64
		want      PayoffOutcome
	}{
		{name: "payment below interest", principal: 1000, rate: 0.02, payment: 15, want: NonAmortizing},
		{name: "payment equal to interest", principal: 1000, rate: 0.02, payment: 20, want: NonAmortizing},
		{name: "slow payoff hits cap", principal: 100000, rate: 0.01, payment: 1000.01, want: ExceedsCap},
		{name: "ordinary payoff", principal: 3000, rate: 0.2499 / 12, payment: 300, want: PaidOff},
		{name: "nothing owed", principal: 0, rate: 0.02, payment: 0, want: PaidOff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AmortizeDebt(tt.principal, tt.rate, tt.payment)
			assert.Equal(t, tt.want, got.Outcome)
			assert.Equal(t, tt.want == PaidOff, got.Reachable())
			if got.Reachable() {
				assert.LessOrEqual(t, got.Months, MaxIterations)
				assert.InDelta(t, tt.principal+got.TotalInterest, got.TotalPaid, 1e-9)
			}
		})
	}
}

func TestAmortizeDebt_InterestAccrues(t *testing.T) {
	got := AmortizeDebt(1000, 0.01, 500)

	require.True(t, got.Reachable())
	// 1000 -> 510 -> 15.1 -> 0
	assert.Equal(t, 3, got.Months)
	assert.InDelta(t, 10+5.1+0.151, got.TotalInterest, 1e-9)
}

func TestPayoff_MarshalJSON(t *testing.T) {
	t.Run("unreachable figures are null", func(t *testing.T) {
		raw, err := json.Marshal(AmortizeDebt(1000, 0.02, 10))
		require.NoError(t, err)
		assert.JSONEq(t,
			`{"outcome":"non_amortizing","months_to_payoff":null,"total_interest":null,"total_paid":null}`,
			string(raw))
	})

	t.Run("paid off", func(t *testing.T) {
		raw, err := json.Marshal(AmortizeDebt(1000, 0, 100))
		require.NoError(t, err)
		assert.JSONEq(t,
			`{"outcome":"paid_off","months_to_payoff":10,"total_interest":0,"total_paid":1000}`,
			string(raw))
	})
}

func TestMonths_JSON(t *testing.T) {
	raw, err := json.Marshal(struct {
		A Months `json:"a"`
		B Months `json:"b"`
	}{A: MonthsOf(7), B: Unreachable})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":7,"b":null}`, string(raw))

	var back struct {
		A Months `json:"a"`
		B Months `json:"b"`
	}
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, MonthsOf(7), back.A)
	assert.Equal(t, Unreachable, back.B)
}

func TestMonths_Less(t *testing.T) {
	assert.True(t, MonthsOf(3).Less(MonthsOf(4)))
	assert.False(t, MonthsOf(4).Less(MonthsOf(4)))
	assert.True(t, MonthsOf(999).Less(Unreachable))
	assert.False(t, Unreachable.Less(MonthsOf(1)))
	assert.False(t, Unreachable.Less(Unreachable))
}

func TestMonthsToSavingsGoal(t *testing.T) {
	tests := []struct {
		name         string
		current      float64
		target       float64
		contribution float64
		want         Months
	}{
		{name: "no interest", current: 0, target: 1000, contribution: 100, want: MonthsOf(10)},
		{name: "already there", current: 1000, target: 1000, contribution: 100, want: MonthsOf(0)},
		{name: "no contribution", current: 0, target: 1000, contribution: 0, want: Unreachable},
		{name: "beyond cap", current: 0, target: 1e9, contribution: 1, want: Unreachable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, monthsToSavingsGoal(tt.current, tt.target, tt.contribution, 0))
		})
	}
}

func TestComparePayoffs(t *testing.T) {
	slow := AmortizeDebt(3000, 0.2499/12, 100)
	fast := AmortizeDebt(3000, 0.2499/12, 300)
	never := AmortizeDebt(3000, 0.2499/12, 50)

	got := comparePayoffs(slow, fast)
	assert.Greater(t, got.InterestSaved, 0.0)
	assert.Greater(t, got.MonthsSaved, 0)
	assert.InDelta(t, got.InterestSaved/slow.TotalInterest*100, got.PercentInterestSaved, 1e-9)
	assert.False(t, got.Unbounded)

	assert.Equal(t, PayoffSavings{Unbounded: true}, comparePayoffs(never, fast))
	assert.Equal(t, PayoffSavings{}, comparePayoffs(never, never))
}

func TestRequiredPayment(t *testing.T) {
	assert.Equal(t, 100.0, RequiredPayment(1200, 0, 12))
	assert.Equal(t, 101.0, RequiredPayment(1201, 0, 12))
	assert.Equal(t, 0.0, RequiredPayment(0, 0.02, 12))
	assert.Equal(t, 0.0, RequiredPayment(1000, 0.02, 0))

	// Annuity payment on 3000 at 24.99% APR over 12 months is about 285.12.
	assert.Equal(t, 286.0, RequiredPayment(3000, 0.2499/12, 12))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "$1,234.50", money(1234.5))
	assert.Equal(t, "$25.98", money(25.98))
	assert.Equal(t, "$0.00", money(0))
}
