package entity

// TransferStatus is the lifecycle state of a transfer.
//
// DRAFT -> PENDING -> PROCESSED
//
//	\-> ERROR (validation failure on the withdrawal leg)
//
// PROCESSED and ERROR are terminal; no transition leaves them.
type TransferStatus int32

const (
	StatusDraft TransferStatus = iota
	StatusPending
	StatusProcessed
	StatusError
)

// IsTerminal reports whether the status is PROCESSED or ERROR.
func (s TransferStatus) IsTerminal() bool {
	return s == StatusProcessed || s == StatusError
}

// IsPending reports whether the status is PENDING.
func (s TransferStatus) IsPending() bool {
	return s == StatusPending
}

func (s TransferStatus) String() string {
	switch s {
	case StatusDraft:
		return "DRAFT"
	case StatusPending:
		return "PENDING"
	case StatusProcessed:
		return "PROCESSED"
	case StatusError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
