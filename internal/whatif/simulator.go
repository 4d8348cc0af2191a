// Package whatif projects hypothetical changes to a user's finances: extra
// credit payments, cancelled subscriptions, increased savings, payoff goals
// and combinations of those. Every projection is computed from a fixed
// snapshot supplied to New and never changes that snapshot.
package whatif

import (
	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/dvloznov/spendsense/internal/signals"
)

const (
	// SavingsAPY is the nominal annual yield applied to savings projections.
	SavingsAPY = 4.5

	// DefaultMonthlyExpenses is assumed when no expense figure can be derived.
	DefaultMonthlyExpenses = 3000.0

	// DefaultProjectionMonths is used when a caller passes no horizon.
	DefaultProjectionMonths = 12
)

// savingsMonthlyRate is SavingsAPY compounded monthly.
const savingsMonthlyRate = SavingsAPY / 100 / 12

// Simulator evaluates scenarios against one user's signals, accounts and
// liabilities. It holds no mutable state and is safe for concurrent use.
type Simulator struct {
	signals     signals.Bundle
	accounts    []domain.Account
	liabilities []domain.Liability
}

// New returns a Simulator over the given snapshot.
func New(b signals.Bundle, accounts []domain.Account, liabilities []domain.Liability) *Simulator {
	return &Simulator{
		signals:     b,
		accounts:    accounts,
		liabilities: liabilities,
	}
}

// creditTerms looks up the account and the liability describing its terms.
func (s *Simulator) creditTerms(accountID string) (domain.Account, domain.Liability, error) {
	acc, ok := domain.FindAccount(s.accounts, accountID)
	if !ok {
		return domain.Account{}, domain.Liability{}, &NotFoundError{Kind: "account", ID: accountID}
	}
	liab, ok := domain.FindLiability(s.liabilities, accountID)
	if !ok {
		return domain.Account{}, domain.Liability{}, &NotFoundError{Kind: "liability", ID: accountID}
	}
	return acc, liab, nil
}

// averageMonthlyExpenses prefers the measured figure, then the one implied by
// emergency-fund coverage, then DefaultMonthlyExpenses.
func (s *Simulator) averageMonthlyExpenses() float64 {
	sv := s.signals.Savings
	if sv.AverageMonthlyExpenses > 0 {
		return sv.AverageMonthlyExpenses
	}
	if sv.EmergencyFundCoverage > 0 && sv.CurrentSavingsBalance > 0 {
		return sv.CurrentSavingsBalance / sv.EmergencyFundCoverage
	}
	return DefaultMonthlyExpenses
}

// projectionMonths defaults a non-positive horizon and caps it at
// MaxIterations.
func projectionMonths(months int) int {
	switch {
	case months <= 0:
		return DefaultProjectionMonths
	case months > MaxIterations:
		return MaxIterations
	}
	return months
}
