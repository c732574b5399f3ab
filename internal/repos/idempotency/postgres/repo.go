package idempotency

import "github.com/fastprodman/creditledger/internal/repos/idempotency"

var _ idempotency.Store = (*idempotencyRepo)(nil)

type idempotencyRepo struct{}

func New() *idempotencyRepo {
	return &idempotencyRepo{}
}
