package entity

import "sync"

// reservation is the provisional, unsettled effect of one transfer on one
// account: +1 for the deposit leg, -1 for the withdrawal leg.
type reservation struct {
	transfer *Transfer
	sign     int64
}

// Account holds a committed balance plus the reservations of every transfer
// that has been accepted but not yet settled. The committed balance is only
// ever written by Settle; submissions add reservations and read balances.
type Account struct {
	number int64

	mu           sync.RWMutex
	committed    int64
	reservations map[int64]reservation
}

// NewAccount creates an account with the given number and opening balance.
func NewAccount(number, balance int64) *Account {
	return &Account{
		number:       number,
		committed:    balance,
		reservations: make(map[int64]reservation),
	}
}

// Number returns the stable account number.
func (a *Account) Number() int64 {
	return a.number
}

// CommittedBalance returns the balance reflecting settled transfers only.
func (a *Account) CommittedBalance() int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.committed
}

// StampedBalance computes the effective balance: the committed balance plus
// the signed sum of reservations that qualify under the given view.
//
// A reservation qualifies when its transfer is not in terminal failure,
// when includeUnsettled is true or the transfer is PENDING, and when asOf is
// zero or the transfer id precedes asOf. With includeUnsettled the result is
// the draft-inclusive view used to validate withdrawals; without it, the
// settlement snapshot that counts only transfers accepted on both legs.
// A non-zero asOf pins the balance to a point in submission order so that
// cross-account sums exclude transfers submitted mid-query.
func (a *Account) StampedBalance(asOf int64, includeUnsettled bool) int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stampedLocked(asOf, includeUnsettled)
}

func (a *Account) stampedLocked(asOf int64, includeUnsettled bool) int64 {
	balance := a.committed
	for id, res := range a.reservations {
		if res.transfer.Status() == StatusError {
			continue
		}
		if !includeUnsettled && !res.transfer.Pending() {
			continue
		}
		if asOf > 0 && id >= asOf {
			continue
		}
		balance += res.sign * res.transfer.Amount
	}
	return balance
}

// Reserve records the transfer's effect on this account without settling it.
// Withdrawals are validated against the draft-inclusive effective balance
// and rejected with ErrInsufficientFunds when it would go negative, marking
// the transfer ERROR. The returned amount is the effective balance after the
// reservation, or the unchanged balance on rejection. Safe for concurrent
// use against the same account.
func (a *Account) Reserve(t *Transfer, withdraw bool) (int64, error) {
	if t.Processed() {
		return 0, ErrAlreadySettled
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	current := a.stampedLocked(0, true)
	if withdraw && current < t.Amount {
		t.SetStatus(StatusError)
		return current, ErrInsufficientFunds
	}

	sign := int64(1)
	if withdraw {
		sign = -1
	}
	a.reservations[t.ID] = reservation{transfer: t, sign: sign}

	return current + sign*t.Amount, nil
}

// Settle folds every reservation that did not fail validation into the
// committed balance and clears the reservation set. A no-op when there is
// nothing reserved. The caller serializes settlement against submissions;
// the account lock keeps the fold internally consistent.
func (a *Account) Settle() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.reservations) == 0 {
		return
	}
	for _, res := range a.reservations {
		if res.transfer.Status() == StatusError {
			continue
		}
		a.committed += res.sign * res.transfer.Amount
	}
	a.reservations = make(map[int64]reservation)
}
