package signals

import (
	"sort"

	"github.com/dvloznov/spendsense/internal/domain"
)

const (
	minRecurringCount = 3
	maxRecurringCV    = 0.2
)

// DetectSubscriptions finds merchants charged repeatedly at a near-constant
// amount. A merchant is recurring when it has at least three expenses in the
// window and the coefficient of variation of those amounts is below 0.2.
func DetectSubscriptions(txns []domain.Transaction, windowDays int) SubscriptionSignals {
	out := SubscriptionSignals{RecurringMerchants: []RecurringMerchant{}}
	if windowDays <= 0 {
		windowDays = SubscriptionWindowDays
	}

	end, ok := latestDate(txns)
	if !ok {
		return out
	}
	start := windowStart(end, windowDays)

	byMerchant := make(map[string][]float64)
	var totalSpend float64
	for _, t := range txns {
		if !t.IsExpense() || !inWindow(t, start) {
			continue
		}
		totalSpend += t.Amount
		if t.MerchantName == "" {
			continue
		}
		byMerchant[t.MerchantName] = append(byMerchant[t.MerchantName], t.Amount)
	}

	names := make([]string, 0, len(byMerchant))
	for name := range byMerchant {
		names = append(names, name)
	}
	sort.Strings(names)

	months := monthsInWindow(windowDays)
	var recurringSpend float64
	for _, name := range names {
		amounts := byMerchant[name]
		if !isRecurring(amounts) {
			continue
		}
		var sum float64
		for _, a := range amounts {
			sum += a
		}
		recurringSpend += sum
		out.RecurringMerchants = append(out.RecurringMerchants, RecurringMerchant{
			Name:          name,
			Count:         len(amounts),
			AverageAmount: mean(amounts),
			MonthlyAmount: sum / months,
		})
	}

	out.NumRecurringMerchants = len(out.RecurringMerchants)
	out.MonthlyRecurringSpend = recurringSpend / months
	out.SubscriptionShare = safeDiv(recurringSpend, totalSpend) * 100
	return out
}

func isRecurring(amounts []float64) bool {
	if len(amounts) < minRecurringCount {
		return false
	}
	m := mean(amounts)
	if m <= 0 {
		return false
	}
	return stdDev(amounts)/m < maxRecurringCV
}
