package usecase

import (
	"context"

	"tally.com/internal/domain/entity"
	"tally.com/internal/domain/port"
)

// GetAccountUseCase handles account state retrieval
type GetAccountUseCase struct {
	ledger port.Ledger
}

// NewGetAccountUseCase creates a new GetAccountUseCase
func NewGetAccountUseCase(ledger port.Ledger) *GetAccountUseCase {
	return &GetAccountUseCase{
		ledger: ledger,
	}
}

// Execute retrieves the effective balance for an account
func (uc *GetAccountUseCase) Execute(ctx context.Context, number int64) (entity.OperationResult, error) {
	return uc.ledger.GetAccount(ctx, number)
}
