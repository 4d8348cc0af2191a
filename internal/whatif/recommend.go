package whatif

import (
	"math"
)

const (
	crossTypeRecommendation = "These scenarios affect different aspects of your finances. " +
		"Consider your priorities: debt payoff, spending reduction, or savings growth."
	genericComparisonRecommendation = "Compare the scenarios to see which better aligns with your financial goals."
)

func creditRecommendation(savings PayoffSavings, extra PaymentPlan) string {
	switch {
	case !extra.Payoff.Reachable():
		return sprintf("At %s/month this balance is not paid off. Increase the payment to make progress on the debt.",
			money(extra.MonthlyPayment))
	case savings.Unbounded:
		return sprintf("Your minimum payment never clears this balance. Paying %s/month makes you debt-free in %d months.",
			money(extra.MonthlyPayment), extra.Payoff.Months)
	case savings.InterestSaved > 1000:
		return sprintf("Excellent impact! Paying extra will save you %s in interest and get you debt-free %d months sooner.",
			money(savings.InterestSaved), savings.MonthsSaved)
	case savings.InterestSaved > 500:
		return sprintf("Good strategy. You'll save %s in interest and pay off your balance %d months faster.",
			money(savings.InterestSaved), savings.MonthsSaved)
	}
	return sprintf("This will save %s and reduce your debt timeline by %d months.",
		money(savings.InterestSaved), savings.MonthsSaved)
}

func subscriptionRecommendation(r *SubscriptionCancellationResult) string {
	if r.MonthlySavings > 100 {
		return sprintf("Significant savings opportunity! Canceling these %d subscriptions frees up %s/month (%s/year).",
			len(r.SubscriptionsCanceled), money(r.MonthlySavings), money(r.AnnualSavings))
	}
	return sprintf("Canceling these subscriptions saves %s/month (%s/year).",
		money(r.MonthlySavings), money(r.AnnualSavings))
}

func alternativeUses(monthly float64) []string {
	return []string{
		sprintf("Emergency fund: Add %s/month to savings", money(monthly)),
		sprintf("Debt payoff: Pay down credit cards %s faster", money(monthly)),
		sprintf("Investment: Contribute %s/month to retirement", money(monthly)),
		sprintf("Annual savings: %s/year for major goals", money(monthly*12)),
	}
}

func savingsRecommendation(r *IncreasedSavingsResult) string {
	coverage := r.ProjectedState.EmergencyFundMonths
	switch {
	case coverage >= 6:
		return sprintf("Excellent! At %.1f months of coverage, you'll have a robust emergency fund.", coverage)
	case coverage >= 3:
		return sprintf("Good progress. You'll reach %.1f months of emergency coverage, meeting the recommended 3-6 month target.", coverage)
	case r.MonthsToTarget.Reachable:
		return sprintf("You'll reach your savings goal in %d months at %s/month. Keep building toward 3-6 months of expenses.",
			r.MonthsToTarget.N, money(r.MonthlyContribution))
	}
	return sprintf("You'll have %.1f months of coverage. Keep building toward the 3-6 month emergency fund target.", coverage)
}

func goalRecommendation(r *GoalPaymentResult) string {
	switch {
	case r.IsFeasible && r.RequiredMonthlyPayment <= r.CurrentMinimumPayment:
		return sprintf("Your minimum payment of %s already pays off this balance within %d months.",
			money(r.CurrentMinimumPayment), r.TargetMonths)
	case r.IsFeasible:
		return sprintf("To pay off your debt in %d months, increase your monthly payment from %s to %s. This will save %s in interest.",
			r.TargetMonths, money(r.CurrentMinimumPayment), money(r.RequiredMonthlyPayment), money(r.Savings.InterestSaved))
	case !r.ActualMonths.Reachable:
		return sprintf("To pay off in %d months, you'd need %s/month. At your max of %s/month the balance is not paid off.",
			r.TargetMonths, money(r.RequiredMonthlyPayment), money(r.MaxMonthlyPayment))
	}
	return sprintf("To pay off in %d months, you'd need %s/month (%d months at your max of %s/month). You'll still save %s in interest compared to minimum payments.",
		r.TargetMonths, money(r.RequiredMonthlyPayment), r.ActualMonths.N, money(r.MaxMonthlyPayment), money(r.Savings.InterestSaved))
}

func combinedRecommendation(r *CombinedResult) string {
	net := r.MonthlyCashFlowImpact
	interest := money(r.TotalInterestSaved)
	subs := money(r.TotalSubscriptionSavings)
	switch {
	case net > 0:
		return sprintf("Great strategy! This plan improves your cash flow by %s/month, saves %s in interest, and frees up %s/year from subscriptions.",
			money(net), interest, subs)
	case net == 0:
		return sprintf("This plan is cash-flow neutral but saves %s in interest and frees up %s/year from subscriptions.",
			interest, subs)
	}
	return sprintf("This plan requires %s/month additional cash flow but will save %s in interest and free up %s/year from subscriptions. Consider phasing in changes gradually.",
		money(math.Abs(net)), interest, subs)
}

// describe is the one-line impact of r used in comparison summaries.
func describe(label string, r Result) string {
	switch v := r.(type) {
	case *ExtraPaymentResult:
		return sprintf("Scenario %s: Saves %s in interest", label, money(v.Savings.InterestSaved))
	case *SubscriptionCancellationResult:
		return sprintf("Scenario %s: Saves %s/month from subscriptions", label, money(v.MonthlySavings))
	case *IncreasedSavingsResult:
		return sprintf("Scenario %s: Grows savings to %s", label, money(v.ProjectedState.FinalBalance))
	case *GoalPaymentResult:
		return sprintf("Scenario %s: Pays %s/month toward a %d-month payoff goal", label,
			money(v.GoalScenario.MonthlyPayment), v.TargetMonths)
	case *CombinedResult:
		return sprintf("Scenario %s: Changes monthly cash flow by %s", label, money(v.MonthlyCashFlowImpact))
	}
	return sprintf("Scenario %s: %s", label, r.Scenario())
}

func comparisonRecommendation(r *ComparisonResult) string {
	if len(r.Metrics) == 0 {
		return genericComparisonRecommendation
	}
	if unboundedWinner(r) {
		return sprintf("Scenario %s pays off a balance the other scenario never clears.", r.BetterScenario)
	}
	head := r.Metrics[0]
	if head.Difference == 0 {
		return "Both scenarios have the same impact."
	}

	bWins := r.BetterScenario == LabelB
	gap := math.Abs(head.Difference)
	switch r.ComparedType {
	case ScenarioExtraCreditPayment:
		a := r.ScenarioA.(*ExtraPaymentResult)
		b := r.ScenarioB.(*ExtraPaymentResult)
		if bWins {
			return sprintf("Scenario B saves %s more in interest and pays off %d months faster.",
				money(gap), b.Savings.MonthsSaved-a.Savings.MonthsSaved)
		}
		return sprintf("Scenario A saves %s more in interest, but requires %s/month more.",
			money(gap), money(a.ExtraPaymentScenario.MonthlyPayment-b.ExtraPaymentScenario.MonthlyPayment))
	case ScenarioSubscriptionCancellation:
		if bWins {
			return sprintf("Scenario B saves %s more per month (%s/year).", money(gap), money(math.Abs(r.Metrics[1].Difference)))
		}
		return sprintf("Scenario A saves %s more per month.", money(gap))
	case ScenarioIncreasedSavings:
		if bWins {
			return sprintf("Scenario B grows your savings %s more, earning %s additional interest.",
				money(gap), money(r.Metrics[1].Difference))
		}
		return sprintf("Scenario A grows your savings %s more.", money(gap))
	case ScenarioGoalBasedPayment:
		return sprintf("Scenario %s saves %s more in interest.", r.BetterScenario, money(gap))
	case ScenarioCombined:
		return sprintf("Scenario %s leaves you %s/month better off in cash flow.", r.BetterScenario, money(gap))
	}
	return genericComparisonRecommendation
}

// unboundedWinner reports whether exactly one side clears a debt that its
// baseline never would.
func unboundedWinner(r *ComparisonResult) bool {
	var a, b PayoffSavings
	switch va := r.ScenarioA.(type) {
	case *ExtraPaymentResult:
		a, b = va.Savings, r.ScenarioB.(*ExtraPaymentResult).Savings
	case *GoalPaymentResult:
		a, b = va.Savings, r.ScenarioB.(*GoalPaymentResult).Savings
	default:
		return false
	}
	return a.Unbounded != b.Unbounded
}
