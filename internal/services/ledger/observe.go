package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/infra/logging"
	"github.com/fastprodman/creditledger/internal/infra/metrics"
	"github.com/google/uuid"
)

func (s *Service) observe(
	ctx context.Context,
	op credit.Operation,
	tenantID uint64,
	accountID uuid.UUID,
	start time.Time,
	res Result,
	err error,
) {
	kind := string(op.Kind)
	metrics.OperationDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	attrs := []any{
		logging.Account(tenantID, accountID),
		slog.String("kind", kind),
	}

	if op.OrderID != 0 {
		attrs = append(attrs, slog.Uint64("order_id", op.OrderID))
	}

	if op.IdempotencyKey != "" {
		attrs = append(attrs, slog.String("idempotency_key", op.IdempotencyKey))
	}

	if err == nil {
		outcome := metrics.OutcomeOK
		if res.Replayed {
			outcome = metrics.OutcomeReplayed
		}

		metrics.OperationsTotal.WithLabelValues(kind, outcome).Inc()
		s.log.DebugContext(ctx, "ledger operation applied", append(attrs,
			slog.Int64("entry_id", res.Entry.ID),
			slog.String("used_credit", res.Account.UsedCredit.String()),
			slog.Bool("replayed", res.Replayed),
		)...)

		return
	}

	attrs = append(attrs, slog.String("error_kind", credit.KindOf(err)), slog.Any("error", err))

	switch credit.Classify(err) {
	case credit.ClassClient:
		metrics.OperationsTotal.WithLabelValues(kind, metrics.OutcomeRejected).Inc()
		s.log.InfoContext(ctx, "ledger operation rejected", attrs...)
	case credit.ClassIntegrity:
		metrics.OperationsTotal.WithLabelValues(kind, metrics.OutcomeIntegrity).Inc()
		metrics.IntegrityErrors.WithLabelValues(credit.KindOf(err)).Inc()
		s.log.ErrorContext(ctx, "ledger integrity violation", attrs...)
	case credit.ClassTransient:
		metrics.OperationsTotal.WithLabelValues(kind, metrics.OutcomeTransient).Inc()
		s.log.WarnContext(ctx, "ledger operation failed, retryable", attrs...)
	case credit.ClassUnknown:
		metrics.OperationsTotal.WithLabelValues(kind, metrics.OutcomeError).Inc()
		s.log.ErrorContext(ctx, "ledger operation failed", attrs...)
	}
}
