package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"tally.com/internal/domain/entity"
	"tally.com/internal/domain/port"
	"tally.com/internal/infrastructure/logger"
	"tally.com/internal/infrastructure/scheduler"
)

const (
	// DefaultAccountCount is the size of the fixed account universe.
	DefaultAccountCount = 10
	// DefaultInitialBalance is each account's opening balance.
	DefaultInitialBalance = 100

	// settleWorkers bounds the per-account fan-out inside one batch.
	settleWorkers = 8
)

// Config tunes the bank registry and its settlement schedule.
type Config struct {
	AccountCount   int64
	InitialBalance int64
	BatchSize      int
	SettleInterval time.Duration
}

// InMemoryBank implements the Ledger port: a fixed set of accounts, a
// submission protocol that reserves funds under shared access, and a batch
// settlement pass that folds reservations under exclusive access.
//
// The registry lock is a many-submitters/one-settler discipline: submissions
// and total-balance queries are readers, settlement is the only writer.
// Submissions never block each other; they only wait out an in-flight
// settlement.
type InMemoryBank struct {
	mu       sync.RWMutex
	accounts map[int64]*entity.Account

	lastTransferID atomic.Int64

	executor  *scheduler.Executor[*entity.Transfer]
	publisher port.SettlementPublisher
	logger    logger.Logger

	accountCount   int64
	initialBalance int64
}

// NewInMemoryBank creates the registry, populates the account set and wires
// the settlement executor. Zero config fields fall back to the defaults.
func NewInMemoryBank(cfg Config, publisher port.SettlementPublisher, log logger.Logger) *InMemoryBank {
	if cfg.AccountCount <= 0 {
		cfg.AccountCount = DefaultAccountCount
	}
	if cfg.InitialBalance == 0 {
		cfg.InitialBalance = DefaultInitialBalance
	}

	b := &InMemoryBank{
		publisher:      publisher,
		logger:         log,
		accountCount:   cfg.AccountCount,
		initialBalance: cfg.InitialBalance,
	}
	b.executor = scheduler.NewExecutor(scheduler.Config{
		BatchSize: cfg.BatchSize,
		Delay:     cfg.SettleInterval,
	}, b.settleBatch, log)

	b.Reset(context.Background())
	return b
}

// SubmitTransfer validates the request, reserves the withdrawal leg on the
// source account and the deposit leg on the destination, marks the transfer
// PENDING and queues it for batch settlement. A rejected withdrawal never
// touches the destination account.
func (b *InMemoryBank) SubmitTransfer(ctx context.Context, from, to, amount int64) (entity.OperationResult, error) {
	start := time.Now()
	b.logger.LogDebug(ctx, "transfer request",
		"from", from, "to", to, "amount", amount)

	// Shared access: submissions must not interleave with a settlement pass
	// that is mid-fold, but run freely alongside each other.
	b.mu.RLock()
	defer b.mu.RUnlock()

	source, destination := b.accounts[from], b.accounts[to]
	if source == nil || destination == nil || amount <= 0 || from == to {
		b.logger.LogWarning(ctx, "transfer request rejected",
			"from", from, "to", to, "amount", amount)
		return entity.OperationResult{AccountNumber: from}, entity.ErrInvalidRequest
	}

	transfer := entity.NewTransfer(b.lastTransferID.Add(1), source, destination, amount)

	balance, err := source.Reserve(transfer, true)
	if err != nil {
		b.logger.LogInfo(ctx, "transfer rejected",
			"transfer_id", transfer.ID,
			"from", from, "to", to, "amount", amount,
			"balance", balance,
			"reason", err.Error(),
			"elapsed_ms", time.Since(start).Milliseconds())
		return entity.OperationResult{AccountNumber: from, Balance: balance, HasBalance: true}, err
	}

	// The deposit leg has no balance floor; it only fails if the transfer
	// already reached a terminal state, which the protocol rules out.
	if _, err := destination.Reserve(transfer, false); err != nil {
		transfer.SetStatus(entity.StatusError)
		b.logger.LogError(ctx, "deposit leg rejected", err, "transfer_id", transfer.ID)
		return entity.OperationResult{AccountNumber: from}, err
	}

	transfer.SetStatus(entity.StatusPending)
	b.executor.Submit(transfer)

	b.logger.LogInfo(ctx, "transfer submitted",
		"transfer_id", transfer.ID,
		"from", from, "to", to, "amount", amount,
		"balance", balance,
		"elapsed_ms", time.Since(start).Milliseconds())
	return entity.OperationResult{AccountNumber: from, Balance: balance, HasBalance: true}, nil
}

// GetAccount returns the account's draft-inclusive effective balance.
func (b *InMemoryBank) GetAccount(ctx context.Context, number int64) (entity.OperationResult, error) {
	b.mu.RLock()
	account := b.accounts[number]
	b.mu.RUnlock()

	if account == nil {
		b.logger.LogInfo(ctx, "account not found", "account", number)
		return entity.OperationResult{AccountNumber: number}, entity.ErrAccountNotFound
	}

	balance := account.StampedBalance(0, true)
	b.logger.LogInfo(ctx, "account state requested", "account", number, "balance", balance)
	return entity.OperationResult{AccountNumber: number, Balance: balance, HasBalance: true}, nil
}

// TotalBalance sums every account's effective balance over one snapshot of
// submission order. The shared lock keeps settlement from folding mid-sum;
// the snapshot id deterministically excludes transfers submitted after the
// query began, so no transfer is counted on one side only.
func (b *InMemoryBank) TotalBalance(ctx context.Context) int64 {
	start := time.Now()

	b.mu.RLock()
	// Consume an id as the snapshot point: exactly the transfers that
	// precede it in submission order are counted.
	asOf := b.lastTransferID.Add(1)
	var total int64
	for _, account := range b.accounts {
		total += account.StampedBalance(asOf, true)
	}
	b.mu.RUnlock()

	b.logger.LogInfo(ctx, "total balance requested",
		"total", total,
		"elapsed_ms", time.Since(start).Milliseconds())
	return total
}

// Reset (re)populates the fixed account set with the configured count and
// opening balance. Account numbers run from 1 to the configured count.
func (b *InMemoryBank) Reset(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	accounts := make(map[int64]*entity.Account, b.accountCount)
	for number := int64(1); number <= b.accountCount; number++ {
		accounts[number] = entity.NewAccount(number, b.initialBalance)
	}
	b.accounts = accounts

	b.logger.LogInfo(ctx, "accounts initialized",
		"count", b.accountCount,
		"initial_balance", b.initialBalance)
}

// settleBatch is the settlement callback: under exclusive access it folds
// each batched transfer's accounts and marks the transfer PROCESSED.
// Distinct accounts are applied in parallel; the per-account fold stays
// internally consistent behind the account lock, and a second Settle on an
// already-drained account is a no-op.
//
// Known gap: if this callback faults, the executor drops the batch and its
// transfers stay reserved but never settle, diverging committed and
// effective balances until the process restarts. There is no retry.
func (b *InMemoryBank) settleBatch(batch []*entity.Transfer) {
	if len(batch) == 0 {
		return
	}
	start := time.Now()

	b.mu.Lock()
	g := new(errgroup.Group)
	g.SetLimit(settleWorkers)
	for _, transfer := range batch {
		transfer := transfer
		g.Go(func() error {
			transfer.From.Settle()
			transfer.To.Settle()
			transfer.SetStatus(entity.StatusProcessed)
			return nil
		})
	}
	_ = g.Wait()
	b.mu.Unlock()

	b.logger.LogInfo(context.Background(), "settlement batch applied",
		"batch_size", len(batch),
		"elapsed_ms", time.Since(start).Milliseconds())

	event := entity.SettlementCompleted{
		TransferIDs: make([]int64, 0, len(batch)),
		BatchSize:   len(batch),
		SettledAt:   time.Now().UTC(),
	}
	for _, transfer := range batch {
		event.TransferIDs = append(event.TransferIDs, transfer.ID)
	}
	if err := b.publisher.PublishSettlement(context.Background(), event); err != nil {
		b.logger.LogError(context.Background(), "settlement event publish failed", err,
			"batch_size", len(batch))
	}
}
