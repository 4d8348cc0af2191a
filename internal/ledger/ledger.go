// Package ledger loads the raw accounts, transactions and liabilities a
// user's insights are computed from.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/dvloznov/spendsense/internal/signals"
)

var (
	// ErrUserNotFound is returned when a source holds no accounts for a user.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidSnapshot is returned for ledger data that fails validation.
	ErrInvalidSnapshot = errors.New("invalid ledger snapshot")
)

// Snapshot is a set of ledger records, either for many users or scoped to one.
type Snapshot struct {
	UserID       string               `json:"user_id,omitempty"`
	Accounts     []domain.Account     `json:"accounts"`
	Transactions []domain.Transaction `json:"transactions"`
	Liabilities  []domain.Liability   `json:"liabilities"`
}

// Source loads the snapshot of a single user.
type Source interface {
	Load(ctx context.Context, userID string) (Snapshot, error)
}

// ForUser returns the records belonging to the user's accounts.
func (s Snapshot) ForUser(userID string) (Snapshot, error) {
	accounts, txns, liabilities := signals.ScopeToUser(userID, s.Transactions, s.Accounts, s.Liabilities)
	if len(accounts) == 0 {
		return Snapshot{}, fmt.Errorf("ForUser: %s: %w", userID, ErrUserNotFound)
	}
	return Snapshot{
		UserID:       userID,
		Accounts:     accounts,
		Transactions: txns,
		Liabilities:  liabilities,
	}, nil
}

// Decode reads a JSON snapshot and validates it.
func Decode(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("Decode: %w: %v", ErrInvalidSnapshot, err)
	}
	if err := snap.Validate(); err != nil {
		return Snapshot{}, fmt.Errorf("Decode: %w", err)
	}
	return snap, nil
}

// Validate checks that ids are present and unique and that every
// transaction and liability references a known account.
func (s Snapshot) Validate() error {
	known := make(map[string]bool, len(s.Accounts))
	for i, a := range s.Accounts {
		if a.AccountID == "" {
			return fmt.Errorf("%w: account %d has no account_id", ErrInvalidSnapshot, i)
		}
		if known[a.AccountID] {
			return fmt.Errorf("%w: duplicate account %s", ErrInvalidSnapshot, a.AccountID)
		}
		known[a.AccountID] = true
	}
	for i, t := range s.Transactions {
		if !known[t.AccountID] {
			return fmt.Errorf("%w: transaction %d (%s) references unknown account %q",
				ErrInvalidSnapshot, i, t.TransactionID, t.AccountID)
		}
	}
	for i, l := range s.Liabilities {
		if !known[l.AccountID] {
			return fmt.Errorf("%w: liability %d references unknown account %q", ErrInvalidSnapshot, i, l.AccountID)
		}
	}
	return nil
}
