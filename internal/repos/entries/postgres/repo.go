package entries

import (
	"database/sql"
	"fmt"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/repos/entries"
)

var _ entries.Entries = (*entriesRepo)(nil)

type entriesRepo struct{}

func New() *entriesRepo {
	return &entriesRepo{}
}

const entryColumns = `
	account_id, id, tenant_id, kind, effect, amount, balance_before, balance_after,
	order_id, idempotency_key, reason, reference, correction, created_by, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (credit.Entry, error) {
	var (
		e       credit.Entry
		kind    string
		effect  string
		orderID sql.NullInt64
		key     sql.NullString
	)

	err := row.Scan(
		&e.AccountID, &e.ID, &e.TenantID, &kind, &effect, &e.Amount, &e.BalanceBefore, &e.BalanceAfter,
		&orderID, &key, &e.Reason, &e.Reference, &e.Correction, &e.CreatedBy, &e.CreatedAt,
	)
	if err != nil {
		return credit.Entry{}, err
	}

	e.Kind, err = credit.ParseKind(kind)
	if err != nil {
		return credit.Entry{}, fmt.Errorf("entry %d: %w", e.ID, err)
	}

	e.Effect, err = credit.ParseEffect(effect)
	if err != nil {
		return credit.Entry{}, fmt.Errorf("entry %d: %w", e.ID, err)
	}

	if orderID.Valid {
		e.OrderID = uint64(orderID.Int64) //nolint:gosec
	}

	e.IdempotencyKey = key.String

	return e, nil
}

func scanEntries(rows *sql.Rows) ([]credit.Entry, error) {
	//nolint:errcheck
	defer rows.Close()

	var out []credit.Entry

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}

		out = append(out, e)
	}

	err := rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	return out, nil
}

// nullOrder maps order id 0 to NULL.
func nullOrder(id uint64) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(id), Valid: id != 0} //nolint:gosec
}

func nullKey(key string) sql.NullString {
	return sql.NullString{String: key, Valid: key != ""}
}
