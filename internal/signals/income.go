package signals

import (
	"sort"

	"github.com/dvloznov/spendsense/internal/domain"
)

// DetectIncomeStability looks at payroll deposits into checking accounts:
// INCOME-category inflows within the window. At least two are needed to
// measure a pay gap; with fewer the user is treated as having no payroll.
func DetectIncomeStability(txns []domain.Transaction, accounts []domain.Account, windowDays int) IncomeSignals {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	checkingIDs := accountSet(accounts, func(a domain.Account) bool { return a.Type == domain.AccountTypeChecking })
	if len(checkingIDs) == 0 {
		return IncomeSignals{}
	}

	end, ok := latestDate(txns)
	if !ok {
		return IncomeSignals{}
	}
	start := windowStart(end, windowDays)

	var payroll []domain.Transaction
	for _, t := range txns {
		if checkingIDs[t.AccountID] && t.CategoryPrimary == domain.CategoryIncome && t.IsInflow() && inWindow(t, start) {
			payroll = append(payroll, t)
		}
	}
	if len(payroll) < 2 {
		return IncomeSignals{}
	}

	sort.SliceStable(payroll, func(i, j int) bool {
		return payroll[i].Date.Before(payroll[j].Date)
	})

	gaps := make([]float64, 0, len(payroll)-1)
	amounts := make([]float64, 0, len(payroll))
	for i, t := range payroll {
		amounts = append(amounts, -t.Amount)
		if i > 0 {
			gaps = append(gaps, float64(t.Date.DaysSince(payroll[i-1].Date)))
		}
	}

	var variability float64
	if len(gaps) > 1 {
		variability = stdDev(gaps)
	}

	return IncomeSignals{
		HasPayroll:      true,
		MedianPayGap:    median(gaps),
		PayVariability:  variability,
		CashFlowBuffer:  safeDiv(balanceOf(accounts, checkingIDs), averageMonthlyExpenses(txns, accounts)),
		AvgIncomeAmount: mean(amounts),
	}
}
