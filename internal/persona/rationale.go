package persona

import (
	"fmt"
	"strings"

	"github.com/dvloznov/spendsense/internal/signals"
)

const defaultRationale = "Based on your financial patterns, we've selected educational content to help you build better financial habits."

// Rationale explains a persona match using the measured values that
// triggered it. The text is a fixed template per persona.
func Rationale(id ID, b signals.Bundle) string {
	switch id {
	case HighUtilization:
		c := b.Credit
		var reasons []string
		if c.MaxUtilization >= 50 {
			reasons = append(reasons, fmt.Sprintf("credit card utilization at %.1f%%", c.MaxUtilization))
		}
		if c.IsOverdue {
			reasons = append(reasons, "overdue payments detected")
		}
		if c.MinimumPaymentOnly {
			reasons = append(reasons, "making minimum payments only")
		}
		if c.HasInterestCharges {
			reasons = append(reasons, "accruing interest charges")
		}
		return fmt.Sprintf("You have %s. Focus on reducing credit utilization and interest costs.", strings.Join(reasons, ", "))

	case VariableIncome:
		i := b.Income
		return fmt.Sprintf("Your income arrives every %.0f days on average, and you have %.1f months of cash buffer. "+
			"Building emergency reserves and using percent-based budgets can help smooth irregular income.",
			i.MedianPayGap, i.CashFlowBuffer)

	case SubscriptionHeavy:
		s := b.Subscriptions
		return fmt.Sprintf("You have %d recurring subscriptions costing $%.2f per month (%.1f%% of spending). "+
			"Auditing subscriptions could free up significant money.",
			s.NumRecurringMerchants, s.MonthlyRecurringSpend, s.SubscriptionShare)

	case SavingsBuilder:
		s := b.Savings
		return fmt.Sprintf("You're saving $%.2f per month with %.1f months of emergency coverage. "+
			"Let's optimize your savings strategy with better accounts and automation.",
			s.MonthlySavingsInflow, s.EmergencyFundCoverage)

	case EmergencyFundStarter:
		return fmt.Sprintf("You have stable income (every %.0f days), but only %.1f months of emergency savings. "+
			"Building a 3-6 month emergency fund should be your priority.",
			b.Income.MedianPayGap, b.Savings.EmergencyFundCoverage)
	}

	return defaultRationale
}
