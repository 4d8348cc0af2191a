package signals

import (
	"math"
	"sort"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/spendsense/internal/domain"
)

// latestDate returns the most recent transaction date. The detection window
// is anchored here rather than on the wall clock so results are reproducible.
func latestDate(txns []domain.Transaction) (civil.Date, bool) {
	var latest civil.Date
	found := false
	for _, t := range txns {
		if !found || t.Date.After(latest) {
			latest = t.Date
			found = true
		}
	}
	return latest, found
}

// windowStart returns the first date (inclusive) of a window of days ending at end.
func windowStart(end civil.Date, days int) civil.Date {
	return end.AddDays(-days)
}

func inWindow(t domain.Transaction, start civil.Date) bool {
	return !t.Date.Before(start)
}

// monthsInWindow converts a window length into 30-day months.
func monthsInWindow(days int) float64 {
	return float64(days) / daysPerMonth
}

// averageMonthlyExpenses sums checking-account outflows over the trailing
// 90 days and spreads them over three months. Returns 0 with no anchor date.
func averageMonthlyExpenses(txns []domain.Transaction, accounts []domain.Account) float64 {
	end, ok := latestDate(txns)
	if !ok {
		return 0
	}
	start := windowStart(end, ExpenseWindowDays)
	checking := accountSet(accounts, func(a domain.Account) bool { return a.Type == domain.AccountTypeChecking })

	var total float64
	for _, t := range txns {
		if checking[t.AccountID] && t.IsExpense() && inWindow(t, start) {
			total += t.Amount
		}
	}
	return total / (ExpenseWindowDays / daysPerMonth)
}

func accountSet(accounts []domain.Account, keep func(domain.Account) bool) map[string]bool {
	set := make(map[string]bool)
	for _, a := range accounts {
		if keep(a) {
			set[a.AccountID] = true
		}
	}
	return set
}

func balanceOf(accounts []domain.Account, ids map[string]bool) float64 {
	var total float64
	for _, a := range accounts {
		if ids[a.AccountID] {
			total += a.BalanceCurrent
		}
	}
	return total
}

// safeDiv returns num/den, or 0 when den is not positive.
func safeDiv(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the population standard deviation.
func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var sq float64
	for _, v := range values {
		sq += (v - m) * (v - m)
	}
	return math.Sqrt(sq / float64(len(values)))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
