package domain

import (
	"cloud.google.com/go/civil"
)

// CategoryIncome is the primary category carried by payroll deposits.
const CategoryIncome = "INCOME"

// Transaction is one immutable ledger entry as supplied by the data layer.
// Amount follows the ledger sign convention: negative = inflow (income,
// deposit), positive = outflow (expense).
type Transaction struct {
	TransactionID    string     `json:"transaction_id"`
	AccountID        string     `json:"account_id"`
	Date             civil.Date `json:"date"`
	Amount           float64    `json:"amount"`
	MerchantName     string     `json:"merchant_name"`
	CategoryPrimary  string     `json:"category_primary"`
	CategoryDetailed string     `json:"category_detailed"`
	PaymentChannel   string     `json:"payment_channel"`
	Pending          bool       `json:"pending"`
}

// IsExpense reports whether the transaction is an outflow.
func (t Transaction) IsExpense() bool {
	return t.Amount > 0
}

// IsInflow reports whether the transaction is a deposit or income.
func (t Transaction) IsInflow() bool {
	return t.Amount < 0
}
