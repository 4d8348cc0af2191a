package whatif

import (
	"github.com/shopspring/decimal"
)

// SavingsPoint is cumulative freed cash at the end of a month.
type SavingsPoint struct {
	Month             int     `json:"month"`
	MonthlySavings    float64 `json:"monthly_savings"`
	CumulativeSavings float64 `json:"cumulative_savings"`
}

// SubscriptionCancellationResult projects the cash freed by cancelling
// subscriptions. Savings accrue linearly; nothing compounds.
type SubscriptionCancellationResult struct {
	Type                     ScenarioType   `json:"scenario_type"`
	SubscriptionsCanceled    []Subscription `json:"subscriptions_canceled"`
	MonthlySavings           float64        `json:"monthly_savings"`
	AnnualSavings            float64        `json:"annual_savings"`
	CurrentSubscriptionSpend float64        `json:"current_subscription_spend"`
	NewSubscriptionSpend     float64        `json:"new_subscription_spend"`
	PercentReduction         float64        `json:"percent_reduction"`
	SavingsTimeline          []SavingsPoint `json:"savings_timeline"`
	AlternativeUses          []string       `json:"alternative_uses"`
	Recommendation           string         `json:"recommendation"`
}

func (r *SubscriptionCancellationResult) Scenario() ScenarioType {
	return ScenarioSubscriptionCancellation
}
func (r *SubscriptionCancellationResult) RecommendationText() string { return r.Recommendation }

// SubscriptionCancellation projects cancelling subs over months+1 points,
// month 0 included.
func (s *Simulator) SubscriptionCancellation(subs []Subscription, months int) (*SubscriptionCancellationResult, error) {
	amounts := make([]float64, 0, len(subs))
	for _, sub := range subs {
		if sub.Amount < 0 {
			return nil, invalidInput("subscription %q has negative amount %v", sub.Name, sub.Amount)
		}
		amounts = append(amounts, sub.Amount)
	}
	months = projectionMonths(months)

	monthly := sumAmounts(amounts...)
	current := s.signals.Subscriptions.MonthlyRecurringSpend

	timeline := make([]SavingsPoint, 0, months+1)
	for m := 0; m <= months; m++ {
		timeline = append(timeline, SavingsPoint{
			Month:             m,
			MonthlySavings:    monthly.InexactFloat64(),
			CumulativeSavings: monthly.Mul(decimal.NewFromInt(int64(m))).InexactFloat64(),
		})
	}

	var reduction float64
	if current > 0 {
		reduction = monthly.InexactFloat64() / current * 100
	}
	remaining := decimal.NewFromFloat(current).Sub(monthly)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	canceled := make([]Subscription, len(subs))
	copy(canceled, subs)

	res := &SubscriptionCancellationResult{
		Type:                     ScenarioSubscriptionCancellation,
		SubscriptionsCanceled:    canceled,
		MonthlySavings:           monthly.InexactFloat64(),
		AnnualSavings:            monthly.Mul(twelve).InexactFloat64(),
		CurrentSubscriptionSpend: current,
		NewSubscriptionSpend:     remaining.InexactFloat64(),
		PercentReduction:         reduction,
		SavingsTimeline:          timeline,
		AlternativeUses:          alternativeUses(monthly.InexactFloat64()),
	}
	res.Recommendation = subscriptionRecommendation(res)
	return res, nil
}
