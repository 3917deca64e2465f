package storage

import "liquidityRewards/internal/model"

// EventStorage defines a sink for domain events.
type EventStorage interface {
	AppendEvents(events []model.RewardEvent) error
}
