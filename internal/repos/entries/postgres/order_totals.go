package entries

import (
	"context"
	"fmt"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/infra/pgutils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (r *entriesRepo) OrderTotals(ctx context.Context, q pgutils.Querier, accountID uuid.UUID, orderID uint64) (credit.OrderTotals, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT kind, SUM(amount)
		FROM ledger_entries
		WHERE account_id = $1 AND order_id = $2
		GROUP BY kind
	`, accountID, nullOrder(orderID))
	if err != nil {
		return credit.OrderTotals{}, fmt.Errorf("order totals: %w", err)
	}
	//nolint:errcheck
	defer rows.Close()

	var totals credit.OrderTotals

	for rows.Next() {
		var (
			kind string
			sum  decimal.Decimal
		)

		err = rows.Scan(&kind, &sum)
		if err != nil {
			return credit.OrderTotals{}, fmt.Errorf("scan order totals: %w", err)
		}

		k, perr := credit.ParseKind(kind)
		if perr != nil {
			return credit.OrderTotals{}, fmt.Errorf("order totals: %w", perr)
		}

		totals = totals.Add(k, sum)
	}

	err = rows.Err()
	if err != nil {
		return credit.OrderTotals{}, fmt.Errorf("iterate order totals: %w", err)
	}

	return totals, nil
}
