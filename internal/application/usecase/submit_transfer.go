package usecase

import (
	"context"

	"tally.com/internal/domain/entity"
	"tally.com/internal/domain/port"
)

// SubmitTransferUseCase handles transfer submission
type SubmitTransferUseCase struct {
	ledger port.Ledger
}

// NewSubmitTransferUseCase creates a new SubmitTransferUseCase
func NewSubmitTransferUseCase(ledger port.Ledger) *SubmitTransferUseCase {
	return &SubmitTransferUseCase{
		ledger: ledger,
	}
}

// Execute submits a transfer from one account to another
func (uc *SubmitTransferUseCase) Execute(ctx context.Context, from, to, amount int64) (entity.OperationResult, error) {
	return uc.ledger.SubmitTransfer(ctx, from, to, amount)
}
