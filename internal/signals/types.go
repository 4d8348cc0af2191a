// Package signals derives behavioral signals from a user's ledger.
//
// Every detector is a pure function of its inputs. Missing data never
// produces an error: each numeric field falls back to zero and each flag to
// false, so absence of data reads the same as "behavior not detected".
package signals

import "time"

const (
	// DefaultWindowDays is the look-back window for savings and income.
	DefaultWindowDays = 180

	// SubscriptionWindowDays is the look-back window for recurring spend.
	SubscriptionWindowDays = 90

	// ExpenseWindowDays is the trailing window used for average monthly expenses.
	ExpenseWindowDays = 90

	daysPerMonth = 30
)

// Bundle is the complete set of signals detected for one user.
type Bundle struct {
	UserID        string              `json:"user_id"`
	WindowDays    int                 `json:"window_days"`
	Subscriptions SubscriptionSignals `json:"subscriptions"`
	Savings       SavingsSignals      `json:"savings"`
	Credit        CreditSignals       `json:"credit"`
	Income        IncomeSignals       `json:"income"`
	DetectedAt    time.Time           `json:"detected_at"`
}

// RecurringMerchant describes one merchant classified as recurring.
type RecurringMerchant struct {
	Name          string  `json:"name"`
	Count         int     `json:"count"`
	AverageAmount float64 `json:"average_amount"`
	MonthlyAmount float64 `json:"monthly_amount"`
}

// SubscriptionSignals summarizes recurring spend.
type SubscriptionSignals struct {
	RecurringMerchants    []RecurringMerchant `json:"recurring_merchants"`
	NumRecurringMerchants int                 `json:"num_recurring_merchants"`
	MonthlyRecurringSpend float64             `json:"monthly_recurring_spend"`
	SubscriptionShare     float64             `json:"subscription_share"` // percent of window spend
}

// MerchantNames returns the names of the recurring merchants.
func (s SubscriptionSignals) MerchantNames() []string {
	names := make([]string, 0, len(s.RecurringMerchants))
	for _, m := range s.RecurringMerchants {
		names = append(names, m.Name)
	}
	return names
}

// SavingsSignals summarizes savings-account behavior.
type SavingsSignals struct {
	NetSavingsInflow       float64 `json:"net_savings_inflow"`
	SavingsGrowthRate      float64 `json:"savings_growth_rate"` // percent over the window
	MonthlySavingsInflow   float64 `json:"monthly_savings_inflow"`
	CurrentSavingsBalance  float64 `json:"current_savings_balance"`
	EmergencyFundCoverage  float64 `json:"emergency_fund_coverage"` // months
	AverageMonthlyExpenses float64 `json:"average_monthly_expenses"`
}

// CreditSignals summarizes credit card usage and repayment.
type CreditSignals struct {
	HasCreditCard         bool    `json:"has_credit_card"`
	NumCreditCards        int     `json:"num_credit_cards"`
	MaxUtilization        float64 `json:"max_utilization"`
	AvgUtilization        float64 `json:"avg_utilization"`
	HighUtilizationFlag   bool    `json:"high_utilization_flag"`
	MediumUtilizationFlag bool    `json:"medium_utilization_flag"`
	MinimumPaymentOnly    bool    `json:"minimum_payment_only"`
	HasInterestCharges    bool    `json:"has_interest_charges"`
	IsOverdue             bool    `json:"is_overdue"`
	TotalCreditBalance    float64 `json:"total_credit_balance"`
	TotalCreditLimit      float64 `json:"total_credit_limit"`
}

// IncomeSignals summarizes payroll regularity and cash-flow buffer.
type IncomeSignals struct {
	HasPayroll      bool    `json:"has_payroll"`
	MedianPayGap    float64 `json:"median_pay_gap"`  // days
	PayVariability  float64 `json:"pay_variability"` // stddev of gaps, days
	CashFlowBuffer  float64 `json:"cash_flow_buffer"` // months
	AvgIncomeAmount float64 `json:"avg_income_amount"`
}
