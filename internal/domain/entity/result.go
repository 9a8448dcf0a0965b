package entity

import "time"

// OperationResult carries the outcome details of a ledger operation: the
// account the operation was about and, when known, its resulting effective
// balance. Failures travel alongside as sentinel errors, so a rejected
// withdrawal can still report the balance that caused the rejection.
type OperationResult struct {
	AccountNumber int64
	Balance       int64
	HasBalance    bool
}

// SettlementCompleted is the event emitted after a settlement batch has been
// folded into committed balances.
type SettlementCompleted struct {
	TransferIDs []int64   `json:"transfer_ids"`
	BatchSize   int       `json:"batch_size"`
	SettledAt   time.Time `json:"settled_at"`
}
