package port

import (
	"context"

	"tally.com/internal/domain/entity"
)

// Ledger is the port for the account registry and its transfer operations.
type Ledger interface {
	// SubmitTransfer validates and reserves a transfer between two accounts.
	// The result carries the source account's effective balance after the
	// reservation; settlement happens asynchronously.
	SubmitTransfer(ctx context.Context, from, to, amount int64) (entity.OperationResult, error)

	// GetAccount returns the account's current draft-inclusive balance.
	GetAccount(ctx context.Context, number int64) (entity.OperationResult, error)

	// TotalBalance sums every account's effective balance over a single
	// consistent snapshot of submission order.
	TotalBalance(ctx context.Context) int64

	// Reset repopulates the fixed account set with the configured count and
	// opening balance. Invoked once at startup and by test harnesses.
	Reset(ctx context.Context)
}
