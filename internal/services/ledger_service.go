package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ggegelya/expensetracker/internal/database"
	"github.com/ggegelya/expensetracker/internal/models"
	"github.com/ggegelya/expensetracker/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ledgerService is the engine's single serialized write path. Every balance
// touching mutation runs as one database transaction under one mutex, so the
// sequence of applied deltas per account equals the commit order. Reads go
// straight to the database and never take the write lock.
type ledgerService struct {
	db           *database.DB
	transactions repositories.TransactionRepositoryInterface
	accounts     repositories.AccountRepositoryInterface
	categories   repositories.CategoryRepositoryInterface
	pendings     repositories.PendingTransactionRepositoryInterface
	reconciler   *Reconciler
	notifier     *ChangeNotifier
	metrics      MetricsRecorderInterface
	audit        *AuditLogger
	logger       *slog.Logger

	writeMu sync.Mutex
}

// NewLedgerService creates the ledger write path service
func NewLedgerService(
	db *database.DB,
	transactions repositories.TransactionRepositoryInterface,
	accounts repositories.AccountRepositoryInterface,
	categories repositories.CategoryRepositoryInterface,
	pendings repositories.PendingTransactionRepositoryInterface,
	notifier *ChangeNotifier,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) LedgerServiceInterface {
	return &ledgerService{
		db:           db,
		transactions: transactions,
		accounts:     accounts,
		categories:   categories,
		pendings:     pendings,
		reconciler:   NewReconciler(),
		notifier:     notifier,
		metrics:      metrics,
		audit:        NewAuditLogger(logger),
		logger:       logger,
	}
}

// mutate runs one mutation unit: serialized, atomic, notified on commit.
// Cancellation is honored only before the unit begins, a unit in flight has
// no safe midpoint.
func (s *ledgerService) mutate(ctx context.Context, operation string, fn func(tx *gorm.DB) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	start := time.Now()
	err := s.db.Transaction(fn)
	status := "success"
	if err != nil {
		status = "error"
	}
	s.metrics.RecordMutation(operation, status, time.Since(start))

	if err != nil {
		return err
	}

	s.notifier.Notify()
	s.metrics.RecordNotification()
	return nil
}

func (s *ledgerService) checkCategoryExists(tx *gorm.DB, categoryID *uuid.UUID) error {
	if categoryID == nil {
		return nil
	}
	if _, err := s.categories.WithTx(tx).GetByID(*categoryID); err != nil {
		return err
	}
	return nil
}

func (s *ledgerService) checkPostingAccountExists(tx *gorm.DB, txn *models.Transaction) error {
	accountID, err := txn.PostingAccountID()
	if err != nil {
		return err
	}
	if _, err := s.accounts.WithTx(tx).GetByID(accountID); err != nil {
		return err
	}
	return nil
}

// CreateTransaction validates, persists, and posts a new transaction
func (s *ledgerService) CreateTransaction(ctx context.Context, txn *models.Transaction) (*models.Transaction, error) {
	if err := txn.Validate(); err != nil {
		return nil, err
	}

	err := s.mutate(ctx, "create_transaction", func(tx *gorm.DB) error {
		if err := s.checkPostingAccountExists(tx, txn); err != nil {
			return err
		}
		if err := s.checkCategoryExists(tx, txn.CategoryID); err != nil {
			return err
		}
		if err := s.transactions.WithTx(tx).Create(txn); err != nil {
			return err
		}
		return s.reconciler.Apply(s.accounts.WithTx(tx), txn)
	})
	if err != nil {
		return nil, err
	}

	s.audit.TransactionCreated(txn)
	return s.transactions.GetByID(txn.ID)
}

// UpdateTransaction replaces a transaction's stored state. The prior state's
// balance effect is reversed before the new state's effect is applied, in
// that order, so moving money between accounts lands exactly once on each.
func (s *ledgerService) UpdateTransaction(ctx context.Context, txn *models.Transaction) (*models.Transaction, error) {
	var updated *models.Transaction

	err := s.mutate(ctx, "update_transaction", func(tx *gorm.DB) error {
		transactions := s.transactions.WithTx(tx)

		prior, err := transactions.GetByID(txn.ID)
		if err != nil {
			return err
		}

		if !prior.IsPosting() {
			return ErrSplitChildLocked
		}

		if prior.TransferGroupID != nil {
			if !txn.Amount.Equal(prior.Amount) ||
				txn.TransactionType != prior.TransactionType ||
				!uuidPtrEqual(txn.FromAccountID, prior.FromAccountID) ||
				!uuidPtrEqual(txn.ToAccountID, prior.ToAccountID) {
				return ErrTransferLegLocked
			}
		}

		if prior.IsSplitParent() {
			if !txn.Amount.Equal(prior.Amount) || txn.TransactionType != prior.TransactionType {
				return ErrSplitParentLocked
			}
		}

		next := *prior
		next.Children = nil
		next.Category = nil
		next.TransactionType = txn.TransactionType
		next.Amount = txn.Amount
		next.Description = txn.Description
		next.TransactionDate = txn.TransactionDate
		next.CategoryID = txn.CategoryID
		next.FromAccountID = txn.FromAccountID
		next.ToAccountID = txn.ToAccountID
		next.IsReconciled = txn.IsReconciled

		if err := next.Validate(); err != nil {
			return err
		}
		if err := s.checkCategoryExists(tx, next.CategoryID); err != nil {
			return err
		}

		accounts := s.accounts.WithTx(tx)
		if err := s.reconciler.Reverse(accounts, prior); err != nil {
			return err
		}
		if err := s.reconciler.Apply(accounts, &next); err != nil {
			return err
		}

		if err := transactions.Update(&next); err != nil {
			return err
		}

		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.TransactionUpdated(updated)
	return s.transactions.GetByID(updated.ID)
}

// DeleteTransaction reverses the balance effect and removes the record.
// A split parent takes its children with it, a transfer leg takes its pair.
func (s *ledgerService) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	var childCount int

	err := s.mutate(ctx, "delete_transaction", func(tx *gorm.DB) error {
		count, err := s.deleteUnit(tx, id, false)
		childCount = count
		return err
	})
	if err != nil {
		return err
	}

	s.audit.TransactionDeleted(id, childCount)
	return nil
}

// deleteUnit removes one posting unit inside an open transaction. When
// allowChild is set a child id resolves to its parent instead of failing,
// the bulk path uses that to treat parent and children as one unit.
func (s *ledgerService) deleteUnit(tx *gorm.DB, id uuid.UUID, allowChild bool) (int, error) {
	transactions := s.transactions.WithTx(tx)
	accounts := s.accounts.WithTx(tx)

	target, err := transactions.GetByID(id)
	if err != nil {
		return 0, err
	}

	if !target.IsPosting() {
		if !allowChild {
			return 0, ErrSplitChildLocked
		}
		target, err = transactions.GetByID(*target.ParentTransactionID)
		if err != nil {
			return 0, err
		}
	}

	if target.TransferGroupID != nil {
		legs, err := transactions.GetByTransferGroup(*target.TransferGroupID)
		if err != nil {
			return 0, err
		}
		for i := range legs {
			if err := s.reconciler.Reverse(accounts, &legs[i]); err != nil {
				return 0, err
			}
			if err := transactions.Delete(legs[i].ID); err != nil {
				return 0, err
			}
		}
		return 0, nil
	}

	childCount := len(target.Children)
	if err := s.reconciler.Reverse(accounts, target); err != nil {
		return 0, err
	}
	if err := transactions.Delete(target.ID); err != nil {
		return 0, err
	}
	return childCount, nil
}

// BulkDeleteTransactions deletes a set of transactions as one atomic unit.
// Children resolve to their parent and each posting unit is deleted and
// reversed exactly once no matter how many of its rows appear in the input.
func (s *ledgerService) BulkDeleteTransactions(ctx context.Context, ids []uuid.UUID) (int, error) {
	var deleted int

	err := s.mutate(ctx, "bulk_delete_transactions", func(tx *gorm.DB) error {
		transactions := s.transactions.WithTx(tx)

		// Resolve every id to its posting unit key before touching anything
		unitIDs := make([]uuid.UUID, 0, len(ids))
		seen := make(map[uuid.UUID]bool)
		for _, id := range ids {
			target, err := transactions.GetByID(id)
			if err != nil {
				return err
			}
			unitID := target.ID
			if target.ParentTransactionID != nil {
				unitID = *target.ParentTransactionID
			}
			if target.TransferGroupID != nil {
				unitID = *target.TransferGroupID
			}
			if seen[unitID] {
				continue
			}
			seen[unitID] = true
			unitIDs = append(unitIDs, target.ID)
		}

		for _, id := range unitIDs {
			if _, err := s.deleteUnit(tx, id, true); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return deleted, nil
}

// GetTransaction retrieves one transaction with category and children
func (s *ledgerService) GetTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	return s.transactions.GetByID(id)
}

// QueryTransactions is the filtered read surface, date-descending, all
// filters conjunctive
func (s *ledgerService) QueryTransactions(ctx context.Context, filters models.TransactionFilters) ([]models.Transaction, int64, error) {
	if filters.Limit <= 0 {
		filters.Limit = 50
	}
	if filters.Limit > 500 {
		filters.Limit = 500
	}
	return s.transactions.GetWithFilters(filters)
}

// SplitTransaction decomposes a parent's amount across category allocations.
// The allocations must sum to the parent amount exactly, children never post
// to balances, the parent keeps its original effect.
func (s *ledgerService) SplitTransaction(ctx context.Context, parentID uuid.UUID, allocations []SplitAllocation) (*models.Transaction, error) {
	err := s.mutate(ctx, "split_transaction", func(tx *gorm.DB) error {
		transactions := s.transactions.WithTx(tx)

		parent, err := transactions.GetByID(parentID)
		if err != nil {
			return err
		}
		if !parent.IsPosting() {
			return ErrSplitChildLocked
		}
		// Transfer legs carry no category, there is nothing to allocate
		if parent.TransferGroupID != nil {
			return ErrSplitNotAllowed
		}

		allocated := decimalSum(allocations)
		for _, allocation := range allocations {
			if !allocation.Amount.IsPositive() {
				return fmt.Errorf("allocation for category %s: %w", allocation.CategoryID, models.ErrInvalidAmount)
			}
			if err := s.checkCategoryExists(tx, &allocation.CategoryID); err != nil {
				return err
			}
		}
		if len(allocations) == 0 || !allocated.Equal(parent.Amount) {
			return &AllocationMismatchError{ParentAmount: parent.Amount, Allocated: allocated}
		}

		// Re-splitting replaces the previous allocation set
		if err := transactions.DeleteChildren(parent.ID); err != nil {
			return err
		}

		for _, allocation := range allocations {
			categoryID := allocation.CategoryID
			child := &models.Transaction{
				TransactionType:     parent.TransactionType,
				Amount:              allocation.Amount,
				Description:         parent.Description,
				TransactionDate:     parent.TransactionDate,
				CategoryID:          &categoryID,
				FromAccountID:       parent.FromAccountID,
				ToAccountID:         parent.ToAccountID,
				ParentTransactionID: &parent.ID,
			}
			if err := transactions.Create(child); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.TransactionSplit(parentID, len(allocations))
	return s.transactions.GetByID(parentID)
}

// UnsplitTransaction removes all children, restoring the parent to ordinary
// status. The parent's posted effect is untouched, it posted correctly all
// along.
func (s *ledgerService) UnsplitTransaction(ctx context.Context, parentID uuid.UUID) (*models.Transaction, error) {
	err := s.mutate(ctx, "unsplit_transaction", func(tx *gorm.DB) error {
		transactions := s.transactions.WithTx(tx)

		parent, err := transactions.GetByID(parentID)
		if err != nil {
			return err
		}
		if !parent.IsPosting() {
			return ErrSplitChildLocked
		}
		if !parent.IsSplitParent() {
			return ErrNotSplit
		}
		return transactions.DeleteChildren(parent.ID)
	})
	if err != nil {
		return nil, err
	}

	return s.transactions.GetByID(parentID)
}

// CreateTransfer moves money between two accounts as one atomic unit of two
// legs sharing a transfer group id. Both legs post, debit and credit.
func (s *ledgerService) CreateTransfer(ctx context.Context, req TransferRequest) ([]models.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, models.ErrInvalidAmount
	}
	if req.FromAccountID == req.ToAccountID {
		return nil, ErrSameAccountTransfer
	}

	groupID := uuid.New()
	date := req.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	legOut := &models.Transaction{
		TransactionType: models.TransactionTypeTransferOut,
		Amount:          req.Amount,
		Description:     req.Description,
		TransactionDate: date,
		FromAccountID:   &req.FromAccountID,
		TransferGroupID: &groupID,
	}
	legIn := &models.Transaction{
		TransactionType: models.TransactionTypeTransferIn,
		Amount:          req.Amount,
		Description:     req.Description,
		TransactionDate: date,
		ToAccountID:     &req.ToAccountID,
		TransferGroupID: &groupID,
	}

	err := s.mutate(ctx, "create_transfer", func(tx *gorm.DB) error {
		transactions := s.transactions.WithTx(tx)
		accounts := s.accounts.WithTx(tx)

		for _, leg := range []*models.Transaction{legOut, legIn} {
			if err := s.checkPostingAccountExists(tx, leg); err != nil {
				return err
			}
			if err := transactions.Create(leg); err != nil {
				return err
			}
			if err := s.reconciler.Apply(accounts, leg); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.TransferCreated(groupID, req.FromAccountID, req.ToAccountID, req.Amount.String())
	return []models.Transaction{*legOut, *legIn}, nil
}

// PromotePending turns a pending bank import into a confirmed posted
// transaction. The status compare-and-swap and the insert share one database
// transaction, the loser of a concurrent race rolls back with nothing posted.
func (s *ledgerService) PromotePending(ctx context.Context, pendingID uuid.UUID, categoryID *uuid.UUID, overrideDescription *string) (*models.Transaction, error) {
	var created *models.Transaction

	err := s.mutate(ctx, "promote_pending", func(tx *gorm.DB) error {
		pendings := s.pendings.WithTx(tx)

		if err := pendings.TransitionStatus(pendingID, models.PendingStatusPending, models.PendingStatusProcessed, time.Now().UTC()); err != nil {
			return err
		}

		pending, err := pendings.GetByID(pendingID)
		if err != nil {
			return err
		}

		chosenCategory := categoryID
		if chosenCategory == nil {
			chosenCategory = pending.SuggestedCategoryID
		}

		description := pending.Description
		if overrideDescription != nil && *overrideDescription != "" {
			description = *overrideDescription
		}

		bankTxnID := pending.BankTransactionID
		txn := &models.Transaction{
			TransactionType:   pending.TransactionType,
			Amount:            pending.Amount,
			Description:       description,
			TransactionDate:   pending.TransactionDate,
			CategoryID:        chosenCategory,
			BankTransactionID: &bankTxnID,
			IsReconciled:      true,
		}
		if txn.IsOutgoing() {
			txn.FromAccountID = &pending.AccountID
		} else {
			txn.ToAccountID = &pending.AccountID
		}

		if err := txn.Validate(); err != nil {
			return err
		}
		if err := s.checkCategoryExists(tx, txn.CategoryID); err != nil {
			return err
		}
		if err := s.checkPostingAccountExists(tx, txn); err != nil {
			return err
		}
		if err := s.transactions.WithTx(tx).Create(txn); err != nil {
			return err
		}
		if err := s.reconciler.Apply(s.accounts.WithTx(tx), txn); err != nil {
			return err
		}

		created = txn
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPendingResolution("processed")
	s.audit.PendingResolved(pendingID, models.PendingStatusProcessed, &created.ID)
	return s.transactions.GetByID(created.ID)
}

// DismissPending resolves a pending import without posting anything
func (s *ledgerService) DismissPending(ctx context.Context, pendingID uuid.UUID) error {
	err := s.mutate(ctx, "dismiss_pending", func(tx *gorm.DB) error {
		return s.pendings.WithTx(tx).TransitionStatus(pendingID, models.PendingStatusPending, models.PendingStatusDismissed, time.Now().UTC())
	})
	if err != nil {
		return err
	}

	s.metrics.RecordPendingResolution("dismissed")
	s.audit.PendingResolved(pendingID, models.PendingStatusDismissed, nil)
	return nil
}

// CategoryBreakdown aggregates expenses per category over a window
func (s *ledgerService) CategoryBreakdown(ctx context.Context, startDate, endDate *time.Time, accountID *uuid.UUID) ([]models.CategoryBreakdownRow, error) {
	return s.transactions.CategoryBreakdown(startDate, endDate, accountID)
}

// RebuildBalances re-derives every account balance from the posted
// transaction set. Stored balances are a cache of a derived quantity, after
// an external merge they are repaired here rather than trusted.
func (s *ledgerService) RebuildBalances(ctx context.Context) ([]models.AccountDrift, error) {
	var report []models.AccountDrift

	err := s.mutate(ctx, "rebuild_balances", func(tx *gorm.DB) error {
		accounts := s.accounts.WithTx(tx)

		all, err := accounts.GetAll()
		if err != nil {
			return err
		}

		for i := range all {
			account := &all[i]
			derived, err := accounts.DerivedBalance(account.ID)
			if err != nil {
				return err
			}

			drift := derived.Sub(account.Balance)
			report = append(report, models.AccountDrift{
				AccountID: account.ID,
				Tag:       account.Tag,
				Stored:    account.Balance,
				Derived:   derived,
				Drift:     drift,
			})

			if !drift.IsZero() {
				if err := accounts.AdjustBalance(account.ID, drift); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	driftCount := 0
	for _, row := range report {
		if !row.Drift.IsZero() {
			driftCount++
		}
	}
	s.audit.BalancesRebuilt(driftCount)
	return report, nil
}

func decimalSum(allocations []SplitAllocation) (sum decimal.Decimal) {
	for _, allocation := range allocations {
		sum = sum.Add(allocation.Amount)
	}
	return sum
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
