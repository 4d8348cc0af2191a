package signals

import (
	"github.com/dvloznov/spendsense/internal/domain"
)

const (
	highUtilizationThreshold   = 50
	mediumUtilizationThreshold = 30

	// A last payment within 10% of the minimum counts as minimum-only.
	minimumPaymentTolerance = 1.1
)

// DetectCreditBehavior computes utilization across credit cards and flags
// repayment patterns from the liabilities.
func DetectCreditBehavior(accounts []domain.Account, liabilities []domain.Liability) CreditSignals {
	cards := make(map[string]domain.Account)
	var utilizations []float64
	var out CreditSignals

	for _, a := range accounts {
		if a.Type != domain.AccountTypeCreditCard {
			continue
		}
		cards[a.AccountID] = a
		out.TotalCreditBalance += a.BalanceCurrent
		out.TotalCreditLimit += a.Limit()
		if limit := a.Limit(); limit > 0 {
			utilizations = append(utilizations, a.BalanceCurrent/limit*100)
		}
	}

	if len(cards) == 0 {
		return CreditSignals{}
	}

	out.HasCreditCard = true
	out.NumCreditCards = len(cards)
	for _, u := range utilizations {
		if u > out.MaxUtilization {
			out.MaxUtilization = u
		}
	}
	out.AvgUtilization = mean(utilizations)
	out.HighUtilizationFlag = out.MaxUtilization >= highUtilizationThreshold
	out.MediumUtilizationFlag = out.MaxUtilization >= mediumUtilizationThreshold

	for _, l := range liabilities {
		if l.LastPaymentAmount != nil && l.MinimumPaymentAmount != nil &&
			*l.LastPaymentAmount <= *l.MinimumPaymentAmount*minimumPaymentTolerance {
			out.MinimumPaymentOnly = true
		}
		if card, ok := cards[l.AccountID]; ok && card.BalanceCurrent > 0 {
			out.HasInterestCharges = true
		}
		if l.IsOverdue {
			out.IsOverdue = true
		}
	}

	return out
}
