package events

import (
	"context"

	"tally.com/internal/domain/entity"
)

// NoopPublisher discards settlement events. Used when no brokers are
// configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishSettlement(context.Context, entity.SettlementCompleted) error {
	return nil
}
