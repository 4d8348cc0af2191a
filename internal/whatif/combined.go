package whatif

import (
	"fmt"
)

// ScenarioSpec describes one scenario to run. Which fields apply depends on
// Type; unused fields are ignored.
type ScenarioSpec struct {
	Type              ScenarioType   `json:"type" yaml:"type"`
	AccountID         string         `json:"account_id,omitempty" yaml:"account_id,omitempty"`
	Amount            float64        `json:"amount,omitempty" yaml:"amount,omitempty"`
	Subscriptions     []Subscription `json:"subscriptions,omitempty" yaml:"subscriptions,omitempty"`
	TargetAmount      float64        `json:"target_amount,omitempty" yaml:"target_amount,omitempty"`
	TargetMonths      int            `json:"target_months,omitempty" yaml:"target_months,omitempty"`
	MaxMonthlyPayment float64        `json:"max_monthly_payment,omitempty" yaml:"max_monthly_payment,omitempty"`
	Scenarios         []ScenarioSpec `json:"scenarios,omitempty" yaml:"scenarios,omitempty"`
	Months            int            `json:"months,omitempty" yaml:"months,omitempty"`
}

// Run evaluates a single scenario spec. Comparisons are built with Compare
// from two already-run results and cannot be run from a spec.
func (s *Simulator) Run(spec ScenarioSpec) (Result, error) {
	var (
		res Result
		err error
	)
	switch spec.Type {
	case ScenarioExtraCreditPayment:
		res, err = nonNil(s.ExtraCreditPayment(spec.AccountID, spec.Amount, spec.Months))
	case ScenarioSubscriptionCancellation:
		res, err = nonNil(s.SubscriptionCancellation(spec.Subscriptions, spec.Months))
	case ScenarioIncreasedSavings:
		res, err = nonNil(s.IncreasedSavings(spec.Amount, spec.TargetAmount, spec.Months))
	case ScenarioGoalBasedPayment:
		res, err = nonNil(s.GoalBasedPayment(spec.AccountID, spec.TargetMonths, spec.MaxMonthlyPayment))
	case ScenarioCombined:
		res, err = nonNil(s.Combined(spec.Scenarios, spec.Months))
	default:
		return nil, invalidInput("unsupported scenario type %q", spec.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("Run: %s: %w", spec.Type, err)
	}
	return res, nil
}

// nonNil keeps a typed nil pointer from becoming a non-nil Result.
func nonNil[T Result](r T, err error) (Result, error) {
	if err != nil {
		return nil, err
	}
	return r, nil
}

// CashFlowContribution is one sub-scenario's signed effect on monthly cash:
// positive frees cash, negative consumes it.
type CashFlowContribution struct {
	Scenario      ScenarioType `json:"scenario_type"`
	MonthlyAmount float64      `json:"monthly_amount"`
}

// CombinedResult nets several scenarios run against the same snapshot.
type CombinedResult struct {
	Type                     ScenarioType           `json:"scenario_type"`
	IndividualScenarios      []Result               `json:"individual_scenarios"`
	Contributions            []CashFlowContribution `json:"contributions"`
	MonthlyCashFlowImpact    float64                `json:"monthly_cash_flow_impact"`
	AnnualCashFlowImpact     float64                `json:"annual_cash_flow_impact"`
	TotalInterestSaved       float64                `json:"total_interest_saved"`
	InterestSavingsUnbounded bool                   `json:"interest_savings_unbounded"`
	TotalSubscriptionSavings float64                `json:"total_subscription_savings"`
	ProjectionMonths         int                    `json:"projection_months"`
	Summary                  []string               `json:"summary"`
	Recommendation           string                 `json:"recommendation"`
}

func (r *CombinedResult) Scenario() ScenarioType     { return ScenarioCombined }
func (r *CombinedResult) RecommendationText() string { return r.Recommendation }

// Combined runs credit payment, subscription cancellation and savings specs
// over a shared horizon. The net monthly impact is the sum of the signed
// contributions: payments and savings are outflows, cancellations inflows.
func (s *Simulator) Combined(specs []ScenarioSpec, months int) (*CombinedResult, error) {
	if len(specs) == 0 {
		return nil, invalidInput("combined scenario needs at least one sub-scenario")
	}
	months = projectionMonths(months)

	res := &CombinedResult{
		Type:                ScenarioCombined,
		IndividualScenarios: make([]Result, 0, len(specs)),
		Contributions:       make([]CashFlowContribution, 0, len(specs)),
		ProjectionMonths:    months,
		Summary:             make([]string, 0, len(specs)),
	}

	var subscriptionMonthly float64
	for i, spec := range specs {
		var (
			result Result
			flow   float64
		)
		switch spec.Type {
		case ScenarioExtraCreditPayment:
			r, err := s.ExtraCreditPayment(spec.AccountID, spec.Amount, months)
			if err != nil {
				return nil, fmt.Errorf("Combined: scenario %d: %w", i, err)
			}
			flow = -r.ExtraPayment
			if r.Savings.Unbounded {
				res.InterestSavingsUnbounded = true
			}
			res.TotalInterestSaved += r.Savings.InterestSaved
			res.Summary = append(res.Summary, sprintf("Save %s in credit card interest", money(r.Savings.InterestSaved)))
			result = r
		case ScenarioSubscriptionCancellation:
			r, err := s.SubscriptionCancellation(spec.Subscriptions, months)
			if err != nil {
				return nil, fmt.Errorf("Combined: scenario %d: %w", i, err)
			}
			flow = r.MonthlySavings
			subscriptionMonthly += r.MonthlySavings
			res.Summary = append(res.Summary, sprintf("Free up %s/month from subscriptions", money(r.MonthlySavings)))
			result = r
		case ScenarioIncreasedSavings:
			r, err := s.IncreasedSavings(spec.Amount, spec.TargetAmount, months)
			if err != nil {
				return nil, fmt.Errorf("Combined: scenario %d: %w", i, err)
			}
			flow = -r.MonthlyContribution
			res.Summary = append(res.Summary, sprintf("Grow savings to %s", money(r.ProjectedState.FinalBalance)))
			result = r
		default:
			return nil, fmt.Errorf("Combined: scenario %d: %w", i,
				invalidInput("type %q cannot be combined", spec.Type))
		}

		res.IndividualScenarios = append(res.IndividualScenarios, result)
		res.Contributions = append(res.Contributions, CashFlowContribution{Scenario: spec.Type, MonthlyAmount: flow})
	}

	flows := make([]float64, 0, len(res.Contributions))
	for _, c := range res.Contributions {
		flows = append(flows, c.MonthlyAmount)
	}
	net := sumAmounts(flows...)
	res.MonthlyCashFlowImpact = net.InexactFloat64()
	res.AnnualCashFlowImpact = net.Mul(twelve).InexactFloat64()
	res.TotalSubscriptionSavings = sumAmounts(subscriptionMonthly).Mul(twelve).InexactFloat64()
	res.Recommendation = combinedRecommendation(res)
	return res, nil
}
