package whatif

// Scenario labels used in comparisons.
const (
	LabelA = "A"
	LabelB = "B"
)

// MetricDelta is one metric measured on both scenarios. Difference is B - A.
type MetricDelta struct {
	Metric     string  `json:"metric"`
	A          float64 `json:"a"`
	B          float64 `json:"b"`
	Difference float64 `json:"difference"`
}

func delta(metric string, a, b float64) MetricDelta {
	return MetricDelta{Metric: metric, A: a, B: b, Difference: b - a}
}

// ComparisonResult sets two scenario results side by side. Metrics and
// BetterScenario are only filled when both results share a type.
type ComparisonResult struct {
	Type           ScenarioType  `json:"scenario_type"`
	ScenarioA      Result        `json:"scenario_a"`
	ScenarioB      Result        `json:"scenario_b"`
	SameType       bool          `json:"same_type"`
	ComparedType   ScenarioType  `json:"compared_type,omitempty"`
	Metrics        []MetricDelta `json:"metrics"`
	BetterScenario string        `json:"better_scenario,omitempty"`
	Summary        []string      `json:"summary"`
	Recommendation string        `json:"recommendation"`
}

func (r *ComparisonResult) Scenario() ScenarioType     { return ScenarioComparison }
func (r *ComparisonResult) RecommendationText() string { return r.Recommendation }

// Compare contrasts two results. For results of the same type it ranks them
// by that type's headline metric, ties going to A.
func Compare(a, b Result) (*ComparisonResult, error) {
	if a == nil || b == nil {
		return nil, invalidInput("comparison needs two scenario results")
	}

	res := &ComparisonResult{
		Type:      ScenarioComparison,
		ScenarioA: a,
		ScenarioB: b,
		Metrics:   []MetricDelta{},
		Summary:   []string{describe(LabelA, a), describe(LabelB, b)},
	}
	if a.Scenario() != b.Scenario() {
		res.Recommendation = crossTypeRecommendation
		return res, nil
	}

	res.SameType = true
	res.ComparedType = a.Scenario()

	var scoreA, scoreB float64
	switch ra := a.(type) {
	case *ExtraPaymentResult:
		rb, ok := b.(*ExtraPaymentResult)
		if !ok {
			return nil, mismatched(b)
		}
		res.Metrics = append(res.Metrics,
			delta("interest_saved", ra.Savings.InterestSaved, rb.Savings.InterestSaved),
			delta("months_saved", float64(ra.Savings.MonthsSaved), float64(rb.Savings.MonthsSaved)),
			delta("monthly_payment", ra.ExtraPaymentScenario.MonthlyPayment, rb.ExtraPaymentScenario.MonthlyPayment),
		)
		scoreA, scoreB = ra.Savings.rank(), rb.Savings.rank()
	case *SubscriptionCancellationResult:
		rb, ok := b.(*SubscriptionCancellationResult)
		if !ok {
			return nil, mismatched(b)
		}
		res.Metrics = append(res.Metrics,
			delta("monthly_savings", ra.MonthlySavings, rb.MonthlySavings),
			delta("annual_savings", ra.AnnualSavings, rb.AnnualSavings),
		)
		scoreA, scoreB = ra.MonthlySavings, rb.MonthlySavings
	case *IncreasedSavingsResult:
		rb, ok := b.(*IncreasedSavingsResult)
		if !ok {
			return nil, mismatched(b)
		}
		res.Metrics = append(res.Metrics,
			delta("final_balance", ra.ProjectedState.FinalBalance, rb.ProjectedState.FinalBalance),
			delta("interest_earned", ra.ProjectedState.InterestEarned, rb.ProjectedState.InterestEarned),
		)
		scoreA, scoreB = ra.ProjectedState.FinalBalance, rb.ProjectedState.FinalBalance
	case *GoalPaymentResult:
		rb, ok := b.(*GoalPaymentResult)
		if !ok {
			return nil, mismatched(b)
		}
		res.Metrics = append(res.Metrics,
			delta("interest_saved", ra.Savings.InterestSaved, rb.Savings.InterestSaved),
			delta("required_monthly_payment", ra.RequiredMonthlyPayment, rb.RequiredMonthlyPayment),
		)
		scoreA, scoreB = ra.Savings.rank(), rb.Savings.rank()
	case *CombinedResult:
		rb, ok := b.(*CombinedResult)
		if !ok {
			return nil, mismatched(b)
		}
		res.Metrics = append(res.Metrics,
			delta("monthly_cash_flow_impact", ra.MonthlyCashFlowImpact, rb.MonthlyCashFlowImpact),
			delta("total_interest_saved", ra.TotalInterestSaved, rb.TotalInterestSaved),
		)
		scoreA, scoreB = ra.MonthlyCashFlowImpact, rb.MonthlyCashFlowImpact
	default:
		res.Recommendation = genericComparisonRecommendation
		return res, nil
	}

	res.BetterScenario = LabelA
	if scoreB > scoreA {
		res.BetterScenario = LabelB
	}
	res.Recommendation = comparisonRecommendation(res)
	return res, nil
}

func mismatched(r Result) error {
	return invalidInput("unexpected result implementation %T for %s", r, r.Scenario())
}
