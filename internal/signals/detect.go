package signals

import (
	"time"

	"github.com/dvloznov/spendsense/internal/domain"
)

// DetectBehavioralSignals scopes the inputs to the user's accounts and runs
// every detector, stamping the bundle with the current time.
func DetectBehavioralSignals(userID string, txns []domain.Transaction, accounts []domain.Account, liabilities []domain.Liability, windowDays int) Bundle {
	return DetectBehavioralSignalsAt(userID, txns, accounts, liabilities, windowDays, time.Now().UTC())
}

// DetectBehavioralSignalsAt is DetectBehavioralSignals with an explicit
// detection timestamp.
func DetectBehavioralSignalsAt(userID string, txns []domain.Transaction, accounts []domain.Account, liabilities []domain.Liability, windowDays int, at time.Time) Bundle {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	userAccounts, userTxns, userLiabilities := ScopeToUser(userID, txns, accounts, liabilities)

	return Bundle{
		UserID:        userID,
		WindowDays:    windowDays,
		Subscriptions: DetectSubscriptions(userTxns, SubscriptionWindowDays),
		Savings:       DetectSavingsBehavior(userTxns, userAccounts, windowDays),
		Credit:        DetectCreditBehavior(userAccounts, userLiabilities),
		Income:        DetectIncomeStability(userTxns, userAccounts, windowDays),
		DetectedAt:    at,
	}
}

// ScopeToUser keeps only the records that belong to the user's accounts.
func ScopeToUser(userID string, txns []domain.Transaction, accounts []domain.Account, liabilities []domain.Liability) ([]domain.Account, []domain.Transaction, []domain.Liability) {
	var userAccounts []domain.Account
	owned := make(map[string]bool)
	for _, a := range accounts {
		if a.UserID == userID {
			userAccounts = append(userAccounts, a)
			owned[a.AccountID] = true
		}
	}

	var userTxns []domain.Transaction
	for _, t := range txns {
		if owned[t.AccountID] {
			userTxns = append(userTxns, t)
		}
	}

	var userLiabilities []domain.Liability
	for _, l := range liabilities {
		if owned[l.AccountID] {
			userLiabilities = append(userLiabilities, l)
		}
	}

	return userAccounts, userTxns, userLiabilities
}
