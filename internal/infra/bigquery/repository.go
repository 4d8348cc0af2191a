// Package bigquery stores user ledgers in BigQuery and serves them as
// ledger snapshots.
package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"

	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/dvloznov/spendsense/internal/ledger"
)

// LedgerRepository reads and writes the accounts, transactions and
// liabilities tables of one dataset. It implements ledger.Source.
type LedgerRepository struct {
	client    *bigquery.Client
	datasetID string
}

// NewLedgerRepository creates a repository with its own BigQuery client.
func NewLedgerRepository(ctx context.Context, projectID, datasetID string) (*LedgerRepository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewLedgerRepository: creating client: %w", err)
	}
	return &LedgerRepository{client: client, datasetID: datasetID}, nil
}

// Close closes the BigQuery client connection.
func (r *LedgerRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// Load fetches the user's ledger. A user without accounts is reported as
// ledger.ErrUserNotFound.
func (r *LedgerRepository) Load(ctx context.Context, userID string) (ledger.Snapshot, error) {
	accounts, err := ListAccountsByUserWithClient(ctx, r.client, r.datasetID, userID)
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("Load: %w", err)
	}
	if len(accounts) == 0 {
		return ledger.Snapshot{}, fmt.Errorf("Load: %s: %w", userID, ledger.ErrUserNotFound)
	}

	txns, err := ListTransactionsByUserWithClient(ctx, r.client, r.datasetID, userID)
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("Load: %w", err)
	}
	liabilities, err := ListLiabilitiesByUserWithClient(ctx, r.client, r.datasetID, userID)
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("Load: %w", err)
	}

	return snapshotFromRows(userID, accounts, txns, liabilities), nil
}

// ReplaceUserLedger deletes the user's existing rows and inserts snap.
func (r *LedgerRepository) ReplaceUserLedger(ctx context.Context, snap ledger.Snapshot) error {
	if snap.UserID == "" {
		return fmt.Errorf("ReplaceUserLedger: %w: snapshot has no user_id", ledger.ErrInvalidSnapshot)
	}
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("ReplaceUserLedger: %w", err)
	}

	if err := DeleteUserLedgerWithClient(ctx, r.client, r.datasetID, snap.UserID); err != nil {
		return fmt.Errorf("ReplaceUserLedger: %w", err)
	}

	accounts, txns, liabilities := rowsFromSnapshot(snap)
	if err := insertRowsWithClient(ctx, r.client, r.datasetID, accountsTable, accounts, len(accounts)); err != nil {
		return fmt.Errorf("ReplaceUserLedger: %w", err)
	}
	if err := insertRowsWithClient(ctx, r.client, r.datasetID, transactionsTable, txns, len(txns)); err != nil {
		return fmt.Errorf("ReplaceUserLedger: %w", err)
	}
	if err := insertRowsWithClient(ctx, r.client, r.datasetID, liabilitiesTable, liabilities, len(liabilities)); err != nil {
		return fmt.Errorf("ReplaceUserLedger: %w", err)
	}
	return nil
}

func snapshotFromRows(userID string, accounts []*AccountRow, txns []*TransactionRow, liabilities []*LiabilityRow) ledger.Snapshot {
	snap := ledger.Snapshot{
		UserID:       userID,
		Accounts:     make([]domain.Account, 0, len(accounts)),
		Transactions: make([]domain.Transaction, 0, len(txns)),
		Liabilities:  make([]domain.Liability, 0, len(liabilities)),
	}
	for _, a := range accounts {
		snap.Accounts = append(snap.Accounts, a.toDomain())
	}
	for _, t := range txns {
		snap.Transactions = append(snap.Transactions, t.toDomain())
	}
	for _, l := range liabilities {
		snap.Liabilities = append(snap.Liabilities, l.toDomain())
	}
	return snap
}

// rowsFromSnapshot stamps every row with the snapshot's user.
func rowsFromSnapshot(snap ledger.Snapshot) ([]*AccountRow, []*TransactionRow, []*LiabilityRow) {
	accounts := make([]*AccountRow, 0, len(snap.Accounts))
	for _, a := range snap.Accounts {
		row := accountRow(a)
		row.UserID = snap.UserID
		accounts = append(accounts, row)
	}
	txns := make([]*TransactionRow, 0, len(snap.Transactions))
	for _, t := range snap.Transactions {
		txns = append(txns, transactionRow(snap.UserID, t))
	}
	liabilities := make([]*LiabilityRow, 0, len(snap.Liabilities))
	for _, l := range snap.Liabilities {
		liabilities = append(liabilities, liabilityRow(snap.UserID, l))
	}
	return accounts, txns, liabilities
}
