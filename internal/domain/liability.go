package domain

import (
	"encoding/json"

	"cloud.google.com/go/civil"
)

// Liability holds the repayment terms of a credit account.
//
// Producers disagree on field names: some emit "apr" and "minimum_payment",
// others "apr_percentage" and "minimum_payment_amount". UnmarshalJSON accepts
// both and the struct only ever carries the canonical pair.
type Liability struct {
	AccountID            string      `json:"account_id"`
	UserID               string      `json:"user_id,omitempty"`
	Type                 string      `json:"type,omitempty"`
	APRPercentage        float64     `json:"apr_percentage"`
	MinimumPaymentAmount *float64    `json:"minimum_payment_amount"`
	LastPaymentAmount    *float64    `json:"last_payment_amount"`
	LastPaymentDate      *civil.Date `json:"last_payment_date,omitempty"`
	IsOverdue            bool        `json:"is_overdue"`
}

// MonthlyRate returns the periodic rate derived from the APR.
func (l Liability) MonthlyRate() float64 {
	return l.APRPercentage / 100 / 12
}

// MinimumPayment returns the minimum payment, or 0 when unknown.
func (l Liability) MinimumPayment() float64 {
	if l.MinimumPaymentAmount == nil {
		return 0
	}
	return *l.MinimumPaymentAmount
}

type liabilityJSON struct {
	AccountID            string      `json:"account_id"`
	UserID               string      `json:"user_id"`
	Type                 string      `json:"type"`
	APR                  *float64    `json:"apr"`
	APRPercentage        *float64    `json:"apr_percentage"`
	MinimumPayment       *float64    `json:"minimum_payment"`
	MinimumPaymentAmount *float64    `json:"minimum_payment_amount"`
	LastPaymentAmount    *float64    `json:"last_payment_amount"`
	LastPaymentDate      *civil.Date `json:"last_payment_date"`
	IsOverdue            *bool       `json:"is_overdue"`
}

// UnmarshalJSON decodes either field-name dialect into the canonical form.
// A non-zero "apr" wins over "apr_percentage", and likewise for the
// minimum payment.
func (l *Liability) UnmarshalJSON(data []byte) error {
	var raw liabilityJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*l = Liability{
		AccountID:         raw.AccountID,
		UserID:            raw.UserID,
		Type:              raw.Type,
		LastPaymentAmount: raw.LastPaymentAmount,
		LastPaymentDate:   raw.LastPaymentDate,
		IsOverdue:         raw.IsOverdue != nil && *raw.IsOverdue,
	}

	switch {
	case raw.APR != nil && *raw.APR != 0:
		l.APRPercentage = *raw.APR
	case raw.APRPercentage != nil:
		l.APRPercentage = *raw.APRPercentage
	}

	switch {
	case raw.MinimumPayment != nil && *raw.MinimumPayment != 0:
		l.MinimumPaymentAmount = raw.MinimumPayment
	default:
		l.MinimumPaymentAmount = raw.MinimumPaymentAmount
	}

	return nil
}

// FindLiability returns the liability describing the given account.
// Only the first matching record is considered.
func FindLiability(liabilities []Liability, accountID string) (Liability, bool) {
	for _, l := range liabilities {
		if l.AccountID == accountID {
			return l, true
		}
	}
	return Liability{}, false
}

// Float returns a pointer to v, for optional amount fields.
func Float(v float64) *float64 {
	return &v
}
