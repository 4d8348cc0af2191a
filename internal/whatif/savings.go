package whatif

import (
	"math"
)

// SavingsState is a savings position and the emergency-fund months it covers.
type SavingsState struct {
	SavingsBalance      float64 `json:"savings_balance"`
	MonthlyInflow       float64 `json:"monthly_inflow"`
	EmergencyFundMonths float64 `json:"emergency_fund_months"`
}

// ProjectedSavings is the position at the end of the projection horizon.
type ProjectedSavings struct {
	FinalBalance        float64 `json:"final_balance"`
	TotalContributions  float64 `json:"total_contributions"`
	InterestEarned      float64 `json:"interest_earned"`
	EmergencyFundMonths float64 `json:"emergency_fund_months"`
}

type SavingsGrowth struct {
	BalanceIncrease float64 `json:"balance_increase"`
	PercentGrowth   float64 `json:"percent_growth"`
	MonthlyRate     float64 `json:"monthly_rate"`
	AnnualAPY       float64 `json:"annual_apy"`
}

type GrowthPoint struct {
	Month          int     `json:"month"`
	Balance        float64 `json:"balance"`
	Contributions  float64 `json:"contributions"`
	InterestEarned float64 `json:"interest_earned"`
}

// IncreasedSavingsResult projects compounding savings contributions.
// MonthsToTarget is null when no target was set above the current balance
// or the target is not reached within MaxIterations months.
type IncreasedSavingsResult struct {
	Type                ScenarioType     `json:"scenario_type"`
	MonthlyContribution float64          `json:"monthly_contribution"`
	TargetAmount        float64          `json:"target_amount,omitempty"`
	ProjectionMonths    int              `json:"projection_months"`
	CurrentState        SavingsState     `json:"current_state"`
	ProjectedState      ProjectedSavings `json:"projected_state"`
	Growth              SavingsGrowth    `json:"growth"`
	MonthsToTarget      Months           `json:"months_to_target"`
	SavingsTimeline     []GrowthPoint    `json:"savings_timeline"`
	Recommendation      string           `json:"recommendation"`
}

func (r *IncreasedSavingsResult) Scenario() ScenarioType     { return ScenarioIncreasedSavings }
func (r *IncreasedSavingsResult) RecommendationText() string { return r.Recommendation }

// IncreasedSavings projects adding monthlyAmount to savings each month at
// SavingsAPY. Each month the contribution lands first, then interest accrues.
// A targetAmount of zero means no target.
func (s *Simulator) IncreasedSavings(monthlyAmount, targetAmount float64, months int) (*IncreasedSavingsResult, error) {
	if monthlyAmount < 0 || math.IsNaN(monthlyAmount) {
		return nil, invalidInput("monthly amount must be non-negative, got %v", monthlyAmount)
	}
	if targetAmount < 0 {
		return nil, invalidInput("target amount must be non-negative, got %v", targetAmount)
	}
	months = projectionMonths(months)

	current := s.signals.Savings.CurrentSavingsBalance
	timeline := make([]GrowthPoint, 0, months+1)
	balance := current
	for m := 0; m <= months; m++ {
		if m > 0 {
			balance += monthlyAmount
			balance += balance * savingsMonthlyRate
		}
		contributed := monthlyAmount * float64(m)
		timeline = append(timeline, GrowthPoint{
			Month:          m,
			Balance:        balance,
			Contributions:  contributed,
			InterestEarned: balance - current - contributed,
		})
	}
	last := timeline[len(timeline)-1]

	expenses := s.averageMonthlyExpenses()
	growth := SavingsGrowth{
		BalanceIncrease: last.Balance - current,
		MonthlyRate:     savingsMonthlyRate,
		AnnualAPY:       SavingsAPY,
	}
	if current > 0 {
		growth.PercentGrowth = (last.Balance/current - 1) * 100
	}

	toTarget := Unreachable
	if targetAmount > current {
		toTarget = monthsToSavingsGoal(current, targetAmount, monthlyAmount, savingsMonthlyRate)
	}

	res := &IncreasedSavingsResult{
		Type:                ScenarioIncreasedSavings,
		MonthlyContribution: monthlyAmount,
		TargetAmount:        targetAmount,
		ProjectionMonths:    months,
		CurrentState: SavingsState{
			SavingsBalance:      current,
			MonthlyInflow:       s.signals.Savings.MonthlySavingsInflow,
			EmergencyFundMonths: current / expenses,
		},
		ProjectedState: ProjectedSavings{
			FinalBalance:        last.Balance,
			TotalContributions:  last.Contributions,
			InterestEarned:      last.InterestEarned,
			EmergencyFundMonths: last.Balance / expenses,
		},
		Growth:          growth,
		MonthsToTarget:  toTarget,
		SavingsTimeline: timeline,
	}
	res.Recommendation = savingsRecommendation(res)
	return res, nil
}
