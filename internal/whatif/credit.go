package whatif

import (
	"math"
)

// UtilizationPoint is the projected card state at the end of a month.
type UtilizationPoint struct {
	Month       int     `json:"month"`
	Balance     float64 `json:"balance"`
	Utilization float64 `json:"utilization"`
}

// ExtraPaymentResult projects paying more than the minimum on a card.
type ExtraPaymentResult struct {
	Type                 ScenarioType       `json:"scenario_type"`
	AccountID            string             `json:"account_id"`
	CurrentBalance       float64            `json:"current_balance"`
	CreditLimit          float64            `json:"credit_limit"`
	APR                  float64            `json:"apr"`
	ExtraPayment         float64            `json:"extra_payment"`
	CurrentScenario      PaymentPlan        `json:"current_scenario"`
	ExtraPaymentScenario PaymentPlan        `json:"extra_payment_scenario"`
	Savings              PayoffSavings      `json:"savings"`
	UtilizationTimeline  []UtilizationPoint `json:"utilization_timeline"`
	Recommendation       string             `json:"recommendation"`
}

func (r *ExtraPaymentResult) Scenario() ScenarioType     { return ScenarioExtraCreditPayment }
func (r *ExtraPaymentResult) RecommendationText() string { return r.Recommendation }

// ExtraCreditPayment compares paying the liability's minimum against paying
// minimum plus extraPayment on the given card.
func (s *Simulator) ExtraCreditPayment(accountID string, extraPayment float64, months int) (*ExtraPaymentResult, error) {
	if extraPayment < 0 || math.IsNaN(extraPayment) {
		return nil, invalidInput("extra payment must be non-negative, got %v", extraPayment)
	}
	acc, liab, err := s.creditTerms(accountID)
	if err != nil {
		return nil, err
	}
	months = projectionMonths(months)

	balance := acc.BalanceCurrent
	limit := acc.Limit()
	rate := liab.MonthlyRate()
	minimum := liab.MinimumPayment()
	payment := minimum + extraPayment

	current := planAt(balance, rate, minimum)
	extra := planAt(balance, rate, payment)
	savings := comparePayoffs(current.Payoff, extra.Payoff)

	return &ExtraPaymentResult{
		Type:                 ScenarioExtraCreditPayment,
		AccountID:            accountID,
		CurrentBalance:       balance,
		CreditLimit:          limit,
		APR:                  liab.APRPercentage,
		ExtraPayment:         extraPayment,
		CurrentScenario:      current,
		ExtraPaymentScenario: extra,
		Savings:              savings,
		UtilizationTimeline:  utilizationTimeline(balance, limit, rate, payment, timelineLength(months, extra.Payoff)),
		Recommendation:       creditRecommendation(savings, extra),
	}, nil
}

// timelineLength stops the timeline one month after payoff.
func timelineLength(months int, p Payoff) int {
	if p.Reachable() && p.Months+1 < months {
		return p.Months + 1
	}
	return months
}

func utilizationTimeline(balance, limit, monthlyRate, payment float64, n int) []UtilizationPoint {
	points := make([]UtilizationPoint, 0, n)
	for month := 0; month < n; month++ {
		balance = math.Max(0, balance+balance*monthlyRate-payment)
		var util float64
		if limit > 0 {
			util = balance / limit * 100
		}
		points = append(points, UtilizationPoint{Month: month, Balance: balance, Utilization: util})
	}
	return points
}

// GoalPaymentResult is the payment needed to clear a card in a target horizon.
type GoalPaymentResult struct {
	Type                   ScenarioType  `json:"scenario_type"`
	AccountID              string        `json:"account_id"`
	CurrentBalance         float64       `json:"current_balance"`
	APR                    float64       `json:"apr"`
	TargetMonths           int           `json:"target_months"`
	RequiredMonthlyPayment float64       `json:"required_monthly_payment"`
	CurrentMinimumPayment  float64       `json:"current_minimum_payment"`
	PaymentIncrease        float64       `json:"payment_increase"`
	MaxMonthlyPayment      float64       `json:"max_monthly_payment,omitempty"`
	IsFeasible             bool          `json:"is_feasible"`
	ActualMonths           Months        `json:"actual_months"`
	CurrentScenario        PaymentPlan   `json:"current_scenario"`
	GoalScenario           PaymentPlan   `json:"goal_scenario"`
	Savings                PayoffSavings `json:"savings"`
	Recommendation         string        `json:"recommendation"`
}

func (r *GoalPaymentResult) Scenario() ScenarioType     { return ScenarioGoalBasedPayment }
func (r *GoalPaymentResult) RecommendationText() string { return r.Recommendation }

// GoalBasedPayment finds the whole-unit monthly payment that clears the card
// in targetMonths. A positive maxMonthlyPayment caps the payment; when the cap
// is below the requirement the plan is projected at the cap instead.
func (s *Simulator) GoalBasedPayment(accountID string, targetMonths int, maxMonthlyPayment float64) (*GoalPaymentResult, error) {
	if targetMonths <= 0 || targetMonths > MaxIterations {
		return nil, invalidInput("target months must be between 1 and %d, got %d", MaxIterations, targetMonths)
	}
	if maxMonthlyPayment < 0 {
		return nil, invalidInput("max monthly payment must be non-negative, got %v", maxMonthlyPayment)
	}
	acc, liab, err := s.creditTerms(accountID)
	if err != nil {
		return nil, err
	}

	balance := acc.BalanceCurrent
	rate := liab.MonthlyRate()
	minimum := liab.MinimumPayment()
	required := RequiredPayment(balance, rate, targetMonths)

	feasible := maxMonthlyPayment == 0 || required <= maxMonthlyPayment
	payment := required
	if !feasible {
		payment = maxMonthlyPayment
	}

	current := planAt(balance, rate, minimum)
	goal := planAt(balance, rate, payment)

	// A feasible plan is quoted at the target; rounding the payment up can
	// clear the balance earlier.
	actual := MonthsOf(targetMonths)
	if !feasible {
		actual = goal.Payoff.MonthsToPayoff()
	}

	res := &GoalPaymentResult{
		Type:                   ScenarioGoalBasedPayment,
		AccountID:              accountID,
		CurrentBalance:         balance,
		APR:                    liab.APRPercentage,
		TargetMonths:           targetMonths,
		RequiredMonthlyPayment: required,
		CurrentMinimumPayment:  minimum,
		PaymentIncrease:        required - minimum,
		MaxMonthlyPayment:      maxMonthlyPayment,
		IsFeasible:             feasible,
		ActualMonths:           actual,
		CurrentScenario:        current,
		GoalScenario:           goal,
		Savings:                comparePayoffs(current.Payoff, goal.Payoff),
	}
	res.Recommendation = goalRecommendation(res)
	return res, nil
}

// RequiredPayment is the annuity payment clearing principal in n months at
// monthlyRate, rounded up to the next whole currency unit.
func RequiredPayment(principal, monthlyRate float64, n int) float64 {
	if principal <= 0 || n <= 0 {
		return 0
	}
	if monthlyRate == 0 {
		return ceilCurrency(principal / float64(n))
	}
	growth := math.Pow(1+monthlyRate, float64(n))
	return ceilCurrency(principal * monthlyRate * growth / (growth - 1))
}
