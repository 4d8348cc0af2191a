package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

const (
	accountsTable     = "accounts"
	transactionsTable = "transactions"
	liabilitiesTable  = "liabilities"
)

// tableRef returns the fully qualified `project.dataset.table` name.
func tableRef(client *bigquery.Client, datasetID, table string) string {
	return fmt.Sprintf("`%s.%s.%s`", client.Project(), datasetID, table)
}

func userParam(userID string) []bigquery.QueryParameter {
	return []bigquery.QueryParameter{{Name: "user_id", Value: userID}}
}

// ListAccountsByUserWithClient returns the user's accounts ordered by id.
func ListAccountsByUserWithClient(ctx context.Context, client *bigquery.Client, datasetID, userID string) ([]*AccountRow, error) {
	q := client.Query(`
		SELECT
			account_id,
			user_id,
			account_type,
			balance_current,
			balance_available,
			balance_limit,
			iso_currency_code
		FROM ` + tableRef(client, datasetID, accountsTable) + `
		WHERE user_id = @user_id
		ORDER BY account_id
	`)
	q.Parameters = userParam(userID)

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListAccountsByUserWithClient: reading query: %w", err)
	}

	var rows []*AccountRow
	for {
		var row AccountRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListAccountsByUserWithClient: iterating: %w", err)
		}
		rows = append(rows, &row)
	}
	return rows, nil
}

// ListTransactionsByUserWithClient returns the user's transactions in date order.
func ListTransactionsByUserWithClient(ctx context.Context, client *bigquery.Client, datasetID, userID string) ([]*TransactionRow, error) {
	q := client.Query(`
		SELECT
			transaction_id,
			account_id,
			user_id,
			transaction_date,
			amount,
			merchant_name,
			category_primary,
			category_detailed,
			payment_channel,
			is_pending
		FROM ` + tableRef(client, datasetID, transactionsTable) + `
		WHERE user_id = @user_id
		ORDER BY transaction_date, transaction_id
	`)
	q.Parameters = userParam(userID)

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListTransactionsByUserWithClient: query read: %w", err)
	}

	var rows []*TransactionRow
	for {
		var r TransactionRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListTransactionsByUserWithClient: iter next: %w", err)
		}
		rows = append(rows, &r)
	}
	return rows, nil
}

// ListLiabilitiesByUserWithClient returns the user's liabilities ordered by account.
func ListLiabilitiesByUserWithClient(ctx context.Context, client *bigquery.Client, datasetID, userID string) ([]*LiabilityRow, error) {
	q := client.Query(`
		SELECT
			account_id,
			user_id,
			liability_type,
			apr_percentage,
			minimum_payment_amount,
			last_payment_amount,
			last_payment_date,
			is_overdue
		FROM ` + tableRef(client, datasetID, liabilitiesTable) + `
		WHERE user_id = @user_id
		ORDER BY account_id
	`)
	q.Parameters = userParam(userID)

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListLiabilitiesByUserWithClient: query read: %w", err)
	}

	var rows []*LiabilityRow
	for {
		var r LiabilityRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListLiabilitiesByUserWithClient: iter next: %w", err)
		}
		rows = append(rows, &r)
	}
	return rows, nil
}

// insertRowsWithClient streams rows into a table. Empty batches are a no-op.
func insertRowsWithClient(ctx context.Context, client *bigquery.Client, datasetID, table string, rows interface{}, n int) error {
	if n == 0 {
		return nil
	}
	inserter := client.Dataset(datasetID).Table(table).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

// DeleteUserLedgerWithClient removes every row the user owns from the three
// ledger tables, liabilities first.
func DeleteUserLedgerWithClient(ctx context.Context, client *bigquery.Client, datasetID, userID string) error {
	for _, table := range []string{liabilitiesTable, transactionsTable, accountsTable} {
		if err := deleteByUser(ctx, client, datasetID, table, userID); err != nil {
			return fmt.Errorf("DeleteUserLedgerWithClient: deleting %s: %w", table, err)
		}
	}
	return nil
}

func deleteByUser(ctx context.Context, client *bigquery.Client, datasetID, table, userID string) error {
	q := client.Query(`
		DELETE FROM ` + tableRef(client, datasetID, table) + `
		WHERE user_id = @user_id
	`)
	q.Parameters = userParam(userID)
	return runDML(ctx, q)
}

// runDML runs a statement and waits for it to finish.
func runDML(ctx context.Context, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("run query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("wait for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job failed: %w", err)
	}
	return nil
}
