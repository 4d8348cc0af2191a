package bigquery

import (
	"math/big"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
)

// AccountRow mirrors <dataset>.accounts.
type AccountRow struct {
	AccountID string `bigquery:"account_id"` // REQUIRED
	UserID    string `bigquery:"user_id"`    // REQUIRED

	AccountType string `bigquery:"account_type"` // REQUIRED

	BalanceCurrent   *big.Rat `bigquery:"balance_current"`   // REQUIRED NUMERIC
	BalanceAvailable *big.Rat `bigquery:"balance_available"` // NULLABLE NUMERIC
	BalanceLimit     *big.Rat `bigquery:"balance_limit"`     // NULLABLE NUMERIC, credit cards only

	Currency bigquery.NullString `bigquery:"iso_currency_code"` // NULLABLE
}

// TransactionRow mirrors <dataset>.transactions.
type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED
	AccountID     string `bigquery:"account_id"`     // REQUIRED
	UserID        string `bigquery:"user_id"`        // REQUIRED

	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED
	Amount          *big.Rat   `bigquery:"amount"`           // REQUIRED NUMERIC, negative = inflow

	MerchantName     bigquery.NullString `bigquery:"merchant_name"`     // NULLABLE
	CategoryPrimary  bigquery.NullString `bigquery:"category_primary"`  // NULLABLE
	CategoryDetailed bigquery.NullString `bigquery:"category_detailed"` // NULLABLE
	PaymentChannel   bigquery.NullString `bigquery:"payment_channel"`   // NULLABLE

	IsPending bigquery.NullBool `bigquery:"is_pending"` // NULLABLE
}

// LiabilityRow mirrors <dataset>.liabilities.
type LiabilityRow struct {
	AccountID     string              `bigquery:"account_id"`     // REQUIRED
	UserID        string              `bigquery:"user_id"`        // REQUIRED
	LiabilityType bigquery.NullString `bigquery:"liability_type"` // NULLABLE

	APRPercentage        bigquery.NullFloat64 `bigquery:"apr_percentage"`         // NULLABLE
	MinimumPaymentAmount *big.Rat             `bigquery:"minimum_payment_amount"` // NULLABLE NUMERIC
	LastPaymentAmount    *big.Rat             `bigquery:"last_payment_amount"`    // NULLABLE NUMERIC
	LastPaymentDate      bigquery.NullDate    `bigquery:"last_payment_date"`      // NULLABLE

	IsOverdue bigquery.NullBool `bigquery:"is_overdue"` // NULLABLE
}
