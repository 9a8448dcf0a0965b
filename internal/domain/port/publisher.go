package port

import (
	"context"

	"tally.com/internal/domain/entity"
)

// SettlementPublisher is the port for announcing settled batches to
// downstream consumers. Publishing never affects ledger state.
type SettlementPublisher interface {
	PublishSettlement(ctx context.Context, event entity.SettlementCompleted) error
}
