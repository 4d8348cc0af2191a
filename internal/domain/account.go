package domain

// AccountType is the product type of an account.
type AccountType string

const (
	AccountTypeChecking    AccountType = "checking"
	AccountTypeSavings     AccountType = "savings"
	AccountTypeCreditCard  AccountType = "credit card"
	AccountTypeMoneyMarket AccountType = "money market"
	AccountTypeHSA         AccountType = "hsa"
)

// IsSavings reports whether money held in accounts of this type counts as savings.
func (t AccountType) IsSavings() bool {
	switch t {
	case AccountTypeSavings, AccountTypeMoneyMarket, AccountTypeHSA:
		return true
	}
	return false
}

// Account is a read-only view of one of a user's accounts.
type Account struct {
	AccountID        string      `json:"account_id"`
	UserID           string      `json:"user_id"`
	Type             AccountType `json:"type"`
	BalanceCurrent   float64     `json:"balance_current"`
	BalanceAvailable *float64    `json:"balance_available,omitempty"`
	BalanceLimit     *float64    `json:"balance_limit,omitempty"` // credit cards only
	ISOCurrencyCode  string      `json:"iso_currency_code,omitempty"`
}

// Limit returns the credit limit, or 0 when the account has none.
func (a Account) Limit() float64 {
	if a.BalanceLimit == nil {
		return 0
	}
	return *a.BalanceLimit
}

// AccountIDs returns the ids of the given accounts, in order.
func AccountIDs(accounts []Account) []string {
	ids := make([]string, 0, len(accounts))
	for _, a := range accounts {
		ids = append(ids, a.AccountID)
	}
	return ids
}

// FindAccount returns the account with the given id.
func FindAccount(accounts []Account, accountID string) (Account, bool) {
	for _, a := range accounts {
		if a.AccountID == accountID {
			return a, true
		}
	}
	return Account{}, false
}
