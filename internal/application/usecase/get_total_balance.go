package usecase

import (
	"context"

	"tally.com/internal/domain/port"
)

// GetTotalBalanceUseCase handles aggregate balance retrieval
type GetTotalBalanceUseCase struct {
	ledger port.Ledger
}

// NewGetTotalBalanceUseCase creates a new GetTotalBalanceUseCase
func NewGetTotalBalanceUseCase(ledger port.Ledger) *GetTotalBalanceUseCase {
	return &GetTotalBalanceUseCase{
		ledger: ledger,
	}
}

// Execute returns the sum of all account balances over one snapshot
func (uc *GetTotalBalanceUseCase) Execute(ctx context.Context) int64 {
	return uc.ledger.TotalBalance(ctx)
}
