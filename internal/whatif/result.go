package whatif

// ScenarioType discriminates scenario results on the wire.
type ScenarioType string

const (
	ScenarioExtraCreditPayment       ScenarioType = "extra_credit_payment"
	ScenarioSubscriptionCancellation ScenarioType = "subscription_cancellation"
	ScenarioIncreasedSavings         ScenarioType = "increased_savings"
	ScenarioGoalBasedPayment         ScenarioType = "goal_based_payment"
	ScenarioCombined                 ScenarioType = "combined"
	ScenarioComparison               ScenarioType = "comparison"
)

// Valid reports whether t names a known scenario.
func (t ScenarioType) Valid() bool {
	switch t {
	case ScenarioExtraCreditPayment, ScenarioSubscriptionCancellation, ScenarioIncreasedSavings,
		ScenarioGoalBasedPayment, ScenarioCombined, ScenarioComparison:
		return true
	}
	return false
}

// Result is implemented by every scenario result.
type Result interface {
	Scenario() ScenarioType
	RecommendationText() string
}

// PaymentPlan is a payoff projection at one fixed monthly payment.
type PaymentPlan struct {
	MonthlyPayment float64 `json:"monthly_payment"`
	Payoff         Payoff  `json:"payoff"`
}

func planAt(balance, monthlyRate, payment float64) PaymentPlan {
	return PaymentPlan{
		MonthlyPayment: payment,
		Payoff:         AmortizeDebt(balance, monthlyRate, payment),
	}
}

// Subscription is a recurring charge a user could cancel.
type Subscription struct {
	Name   string  `json:"name" yaml:"name"`
	Amount float64 `json:"amount" yaml:"amount"`
}
