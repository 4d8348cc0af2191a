package whatif

import (
	"encoding/json"
)

const (
	// MaxIterations bounds every month-by-month loop in this package.
	MaxIterations = 1000

	// payoffThreshold is the balance at which a debt counts as repaid.
	payoffThreshold = 0.01
)

// PayoffOutcome tags how an amortization run ended.
type PayoffOutcome string

const (
	// PaidOff means the balance reached zero within MaxIterations.
	PaidOff PayoffOutcome = "paid_off"
	// NonAmortizing means the payment never exceeds the accruing interest.
	NonAmortizing PayoffOutcome = "non_amortizing"
	// ExceedsCap means the balance was still open after MaxIterations months.
	ExceedsCap PayoffOutcome = "exceeds_cap"
)

// Payoff is the result of amortizing a debt at a fixed payment. Months,
// TotalInterest and TotalPaid are only meaningful when Outcome is PaidOff.
type Payoff struct {
	Outcome       PayoffOutcome
	Months        int
	TotalInterest float64
	TotalPaid     float64
}

// Reachable reports whether the debt is repaid.
func (p Payoff) Reachable() bool {
	return p.Outcome == PaidOff
}

// MonthsToPayoff returns the payoff horizon.
func (p Payoff) MonthsToPayoff() Months {
	if !p.Reachable() {
		return Unreachable
	}
	return MonthsOf(p.Months)
}

type payoffJSON struct {
	Outcome        PayoffOutcome `json:"outcome"`
	MonthsToPayoff Months        `json:"months_to_payoff"`
	TotalInterest  *float64      `json:"total_interest"`
	TotalPaid      *float64      `json:"total_paid"`
}

// MarshalJSON writes unreachable figures as null next to the outcome tag.
func (p Payoff) MarshalJSON() ([]byte, error) {
	out := payoffJSON{Outcome: p.Outcome, MonthsToPayoff: p.MonthsToPayoff()}
	if p.Reachable() {
		interest, paid := p.TotalInterest, p.TotalPaid
		out.TotalInterest = &interest
		out.TotalPaid = &paid
	}
	return json.Marshal(out)
}

// AmortizeDebt repays principal month by month: interest accrues on the
// open balance, then the rest of the payment reduces principal. A payment
// that does not exceed the first month's interest never shrinks the debt
// and is reported as NonAmortizing without iterating.
func AmortizeDebt(principal, monthlyRate, monthlyPayment float64) Payoff {
	if principal <= payoffThreshold {
		return Payoff{Outcome: PaidOff, TotalPaid: principal}
	}
	if monthlyPayment <= principal*monthlyRate {
		return Payoff{Outcome: NonAmortizing}
	}

	balance := principal
	var totalInterest float64
	months := 0
	for balance > payoffThreshold && months < MaxIterations {
		interest := balance * monthlyRate
		reduction := monthlyPayment - interest
		if reduction > balance {
			reduction = balance
		}
		balance -= reduction
		totalInterest += interest
		months++
	}

	if balance > payoffThreshold {
		return Payoff{Outcome: ExceedsCap}
	}
	return Payoff{
		Outcome:       PaidOff,
		Months:        months,
		TotalInterest: totalInterest,
		TotalPaid:     principal + totalInterest,
	}
}

// monthsToSavingsGoal compounds monthly (contribution first, then interest)
// until the balance reaches target.
func monthsToSavingsGoal(current, target, contribution, monthlyRate float64) Months {
	if contribution <= 0 {
		return Unreachable
	}

	balance := current
	months := 0
	for balance < target && months < MaxIterations {
		balance += contribution
		balance += balance * monthlyRate
		months++
	}

	if balance < target {
		return Unreachable
	}
	return MonthsOf(months)
}

// PayoffSavings compares a baseline payoff with an alternative one.
type PayoffSavings struct {
	InterestSaved        float64 `json:"interest_saved"`
	MonthsSaved          int     `json:"months_saved"`
	PercentInterestSaved float64 `json:"percent_interest_saved"`
	// Unbounded is set when the baseline never pays off but the alternative
	// does; the numeric savings are then left at zero.
	Unbounded bool `json:"unbounded"`
}

func comparePayoffs(baseline, alt Payoff) PayoffSavings {
	switch {
	case !alt.Reachable():
		return PayoffSavings{}
	case !baseline.Reachable():
		return PayoffSavings{Unbounded: true}
	}

	saved := baseline.TotalInterest - alt.TotalInterest
	out := PayoffSavings{
		InterestSaved: saved,
		MonthsSaved:   baseline.Months - alt.Months,
	}
	if baseline.TotalInterest > 0 {
		out.PercentInterestSaved = saved / baseline.TotalInterest * 100
	}
	return out
}

// rank orders savings for comparison, unbounded savings ranking highest.
func (s PayoffSavings) rank() float64 {
	if s.Unbounded {
		return maxRank
	}
	return s.InterestSaved
}

const maxRank = 1e308
