package entity

import (
	"fmt"
	"sync/atomic"
)

// Transfer is an immutable money movement request between two accounts.
// The descriptor fields never change after construction; only the status
// advances, and only forward.
type Transfer struct {
	ID     int64
	From   *Account
	To     *Account
	Amount int64

	status atomic.Int32
}

// NewTransfer creates a transfer in DRAFT status. The accounts are borrowed
// from the ledger registry, never owned by the transfer.
func NewTransfer(id int64, from, to *Account, amount int64) *Transfer {
	t := &Transfer{
		ID:     id,
		From:   from,
		To:     to,
		Amount: amount,
	}
	t.status.Store(int32(StatusDraft))
	return t
}

// Status returns the current lifecycle status.
func (t *Transfer) Status() TransferStatus {
	return TransferStatus(t.status.Load())
}

// SetStatus advances the status. Terminal states are sticky: an attempt to
// leave PROCESSED or ERROR is refused and reported as false.
func (t *Transfer) SetStatus(next TransferStatus) bool {
	for {
		current := t.status.Load()
		if TransferStatus(current).IsTerminal() {
			return false
		}
		if t.status.CompareAndSwap(current, int32(next)) {
			return true
		}
	}
}

// Processed reports whether the transfer reached a terminal state.
func (t *Transfer) Processed() bool {
	return t.Status().IsTerminal()
}

// Pending reports whether both legs of the transfer have been reserved.
func (t *Transfer) Pending() bool {
	return t.Status().IsPending()
}

func (t *Transfer) String() string {
	return fmt.Sprintf("transfer#%d{from=%d, to=%d, amount=%d, status=%s}",
		t.ID, t.From.Number(), t.To.Number(), t.Amount, t.Status())
}
