package signals

import (
	"github.com/dvloznov/spendsense/internal/domain"
)

// DetectSavingsBehavior measures flows into savings-type accounts (savings,
// money market, HSA) and how many months of expenses the balance covers.
// Deposits are negative amounts, so net inflow is the negated sum.
func DetectSavingsBehavior(txns []domain.Transaction, accounts []domain.Account, windowDays int) SavingsSignals {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	savingsIDs := accountSet(accounts, func(a domain.Account) bool { return a.Type.IsSavings() })
	if len(savingsIDs) == 0 {
		return SavingsSignals{}
	}

	var netInflow float64
	if end, ok := latestDate(txns); ok {
		start := windowStart(end, windowDays)
		for _, t := range txns {
			if savingsIDs[t.AccountID] && inWindow(t, start) {
				netInflow -= t.Amount
			}
		}
	}

	balance := balanceOf(accounts, savingsIDs)
	expenses := averageMonthlyExpenses(txns, accounts)

	return SavingsSignals{
		NetSavingsInflow:       netInflow,
		SavingsGrowthRate:      growthRate(balance, netInflow),
		MonthlySavingsInflow:   netInflow / monthsInWindow(windowDays),
		CurrentSavingsBalance:  balance,
		EmergencyFundCoverage:  safeDiv(balance, expenses),
		AverageMonthlyExpenses: expenses,
	}
}

// growthRate is the percent change from the implied starting balance.
func growthRate(current, netInflow float64) float64 {
	initial := current - netInflow
	if initial <= 0 {
		return 0
	}
	return (current/initial - 1) * 100
}
