package bigquery

import (
	"math/big"

	"cloud.google.com/go/bigquery"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/spendsense/internal/domain"
)

// ratFloat converts a NUMERIC value; NULL reads as 0.
func ratFloat(r *big.Rat) float64 {
	if r == nil {
		return 0
	}
	f, _ := r.Float64()
	return f
}

// ratPtr converts a nullable NUMERIC value.
func ratPtr(r *big.Rat) *float64 {
	if r == nil {
		return nil
	}
	return domain.Float(ratFloat(r))
}

// numeric converts an amount to NUMERIC using its shortest decimal form,
// so 15.99 is stored as 1599/100 rather than its binary approximation.
func numeric(v float64) *big.Rat {
	return decimal.NewFromFloat(v).Rat()
}

func numericPtr(v *float64) *big.Rat {
	if v == nil {
		return nil
	}
	return numeric(*v)
}

func nullString(s string) bigquery.NullString {
	return bigquery.NullString{StringVal: s, Valid: s != ""}
}

func (r *AccountRow) toDomain() domain.Account {
	return domain.Account{
		AccountID:        r.AccountID,
		UserID:           r.UserID,
		Type:             domain.AccountType(r.AccountType),
		BalanceCurrent:   ratFloat(r.BalanceCurrent),
		BalanceAvailable: ratPtr(r.BalanceAvailable),
		BalanceLimit:     ratPtr(r.BalanceLimit),
		ISOCurrencyCode:  r.Currency.StringVal,
	}
}

func accountRow(a domain.Account) *AccountRow {
	return &AccountRow{
		AccountID:        a.AccountID,
		UserID:           a.UserID,
		AccountType:      string(a.Type),
		BalanceCurrent:   numeric(a.BalanceCurrent),
		BalanceAvailable: numericPtr(a.BalanceAvailable),
		BalanceLimit:     numericPtr(a.BalanceLimit),
		Currency:         nullString(a.ISOCurrencyCode),
	}
}

func (r *TransactionRow) toDomain() domain.Transaction {
	return domain.Transaction{
		TransactionID:    r.TransactionID,
		AccountID:        r.AccountID,
		Date:             r.TransactionDate,
		Amount:           ratFloat(r.Amount),
		MerchantName:     r.MerchantName.StringVal,
		CategoryPrimary:  r.CategoryPrimary.StringVal,
		CategoryDetailed: r.CategoryDetailed.StringVal,
		PaymentChannel:   r.PaymentChannel.StringVal,
		Pending:          r.IsPending.Valid && r.IsPending.Bool,
	}
}

func transactionRow(userID string, t domain.Transaction) *TransactionRow {
	return &TransactionRow{
		TransactionID:    t.TransactionID,
		AccountID:        t.AccountID,
		UserID:           userID,
		TransactionDate:  t.Date,
		Amount:           numeric(t.Amount),
		MerchantName:     nullString(t.MerchantName),
		CategoryPrimary:  nullString(t.CategoryPrimary),
		CategoryDetailed: nullString(t.CategoryDetailed),
		PaymentChannel:   nullString(t.PaymentChannel),
		IsPending:        bigquery.NullBool{Bool: t.Pending, Valid: true},
	}
}

func (r *LiabilityRow) toDomain() domain.Liability {
	l := domain.Liability{
		AccountID:            r.AccountID,
		UserID:               r.UserID,
		Type:                 r.LiabilityType.StringVal,
		APRPercentage:        r.APRPercentage.Float64,
		MinimumPaymentAmount: ratPtr(r.MinimumPaymentAmount),
		LastPaymentAmount:    ratPtr(r.LastPaymentAmount),
		IsOverdue:            r.IsOverdue.Valid && r.IsOverdue.Bool,
	}
	if r.LastPaymentDate.Valid {
		d := r.LastPaymentDate.Date
		l.LastPaymentDate = &d
	}
	return l
}

func liabilityRow(userID string, l domain.Liability) *LiabilityRow {
	row := &LiabilityRow{
		AccountID:            l.AccountID,
		UserID:               userID,
		LiabilityType:        nullString(l.Type),
		APRPercentage:        bigquery.NullFloat64{Float64: l.APRPercentage, Valid: true},
		MinimumPaymentAmount: numericPtr(l.MinimumPaymentAmount),
		LastPaymentAmount:    numericPtr(l.LastPaymentAmount),
		IsOverdue:            bigquery.NullBool{Bool: l.IsOverdue, Valid: true},
	}
	if l.LastPaymentDate != nil {
		row.LastPaymentDate = bigquery.NullDate{Date: *l.LastPaymentDate, Valid: true}
	}
	return row
}
