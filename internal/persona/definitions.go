// Package persona classifies a user into one of five behavioral personas.
package persona

// ID identifies a persona. None means no persona matched.
type ID string

const (
	None                 ID = "none"
	HighUtilization      ID = "high_utilization"
	VariableIncome       ID = "variable_income"
	SubscriptionHeavy    ID = "subscription_heavy"
	EmergencyFundStarter ID = "emergency_fund_starter"
	SavingsBuilder       ID = "savings_builder"
)

const (
	unassignedName  = "Unassigned"
	unassignedFocus = "General financial education"
)

// Definition describes a persona. Priority 1 is the most urgent.
type Definition struct {
	ID           ID     `json:"id"`
	Name         string `json:"name"`
	Criteria     string `json:"criteria"`
	PrimaryFocus string `json:"primary_focus"`
	Priority     int    `json:"priority"`
}

// definitions is ordered by priority and never mutated after init.
var definitions = []Definition{
	{
		ID:           HighUtilization,
		Name:         "High Utilization",
		Criteria:     "Credit card utilization ≥50% OR interest charges OR minimum-payment-only OR overdue",
		PrimaryFocus: "Reduce utilization and interest; payment planning and autopay education",
		Priority:     1,
	},
	{
		ID:           VariableIncome,
		Name:         "Variable Income Budgeter",
		Criteria:     "Median pay gap > 45 days AND cash-flow buffer < 1 month",
		PrimaryFocus: "Percent-based budgets, emergency fund basics, smoothing strategies",
		Priority:     2,
	},
	{
		ID:           SubscriptionHeavy,
		Name:         "Subscription-Heavy",
		Criteria:     "Recurring merchants ≥3 AND (monthly recurring spend ≥$50 OR subscription share ≥10%)",
		PrimaryFocus: "Subscription audit, cancellation/negotiation tips, bill alerts",
		Priority:     3,
	},
	{
		ID:           EmergencyFundStarter,
		Name:         "Emergency Fund Starter",
		Criteria:     "Emergency fund coverage < 1 month AND stable income AND no high utilization",
		PrimaryFocus: "Building emergency fund, automatic transfers, short-term savings goals",
		Priority:     4,
	},
	{
		ID:           SavingsBuilder,
		Name:         "Savings Builder",
		Criteria:     "Savings growth ≥2% OR net savings inflow ≥$200/month, AND all cards <30% utilization",
		PrimaryFocus: "Goal setting, automation, APY optimization (HYSA/CD basics)",
		Priority:     5,
	},
}

// Definitions returns a copy of the persona table in priority order.
func Definitions() []Definition {
	return append([]Definition(nil), definitions...)
}

// Lookup returns the definition for id.
func Lookup(id ID) (Definition, bool) {
	for _, d := range definitions {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}
