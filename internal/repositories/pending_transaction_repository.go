package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/ggegelya/expensetracker/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrPendingNotFound         = errors.New("pending transaction not found")
	ErrPendingAlreadyProcessed = errors.New("pending transaction already processed")
	ErrPendingImportExists     = errors.New("pending import already exists for bank transaction")
)

// pendingTransactionRepository implements PendingTransactionRepositoryInterface
type pendingTransactionRepository struct {
	db *gorm.DB
}

// NewPendingTransactionRepository creates a new pending transaction repository
func NewPendingTransactionRepository(db *gorm.DB) PendingTransactionRepositoryInterface {
	return &pendingTransactionRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *pendingTransactionRepository) WithTx(tx *gorm.DB) PendingTransactionRepositoryInterface {
	return &pendingTransactionRepository{db: tx}
}

// Create creates a new pending transaction
func (r *pendingTransactionRepository) Create(pending *models.PendingTransaction) error {
	if err := r.db.Create(pending).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrPendingImportExists
		}
		return fmt.Errorf("failed to create pending transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a pending transaction by ID
func (r *pendingTransactionRepository) GetByID(id uuid.UUID) (*models.PendingTransaction, error) {
	var pending models.PendingTransaction
	if err := r.db.Where("id = ?", id).First(&pending).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPendingNotFound
		}
		return nil, fmt.Errorf("failed to get pending transaction: %w", err)
	}
	return &pending, nil
}

// GetByBankTransactionID retrieves a pending transaction by its bank identifier
func (r *pendingTransactionRepository) GetByBankTransactionID(bankTxnID string) (*models.PendingTransaction, error) {
	var pending models.PendingTransaction
	if err := r.db.Where("bank_transaction_id = ?", bankTxnID).First(&pending).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPendingNotFound
		}
		return nil, fmt.Errorf("failed to get pending transaction by bank id: %w", err)
	}
	return &pending, nil
}

// GetPending retrieves all pending-status imports, newest first, optionally
// scoped to one account
func (r *pendingTransactionRepository) GetPending(accountID *uuid.UUID) ([]models.PendingTransaction, error) {
	query := r.db.Where("status = ?", models.PendingStatusPending)
	if accountID != nil {
		query = query.Where("account_id = ?", *accountID)
	}

	var pendings []models.PendingTransaction
	if err := query.Order("transaction_date DESC, imported_at DESC").Find(&pendings).Error; err != nil {
		return nil, fmt.Errorf("failed to get pending transactions: %w", err)
	}
	return pendings, nil
}

// TransitionStatus moves a pending transaction from one status to another.
// The WHERE clause on the current status makes the transition a compare-and-swap,
// the loser of a concurrent race sees zero rows affected.
func (r *pendingTransactionRepository) TransitionStatus(id uuid.UUID, from, to string, processedAt time.Time) error {
	result := r.db.Model(&models.PendingTransaction{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":       to,
			"processed_at": processedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to transition pending transaction: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.Model(&models.PendingTransaction{}).
			Where("id = ?", id).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check pending transaction existence: %w", err)
		}
		if count == 0 {
			return ErrPendingNotFound
		}
		return ErrPendingAlreadyProcessed
	}

	return nil
}

// Update updates a pending transaction
func (r *pendingTransactionRepository) Update(pending *models.PendingTransaction) error {
	if err := r.db.Save(pending).Error; err != nil {
		return fmt.Errorf("failed to update pending transaction: %w", err)
	}
	return nil
}

// CountByStatus counts pending transactions in the given status
func (r *pendingTransactionRepository) CountByStatus(status string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.PendingTransaction{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count pending transactions: %w", err)
	}
	return count, nil
}
