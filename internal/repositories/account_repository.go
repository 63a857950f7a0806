package repositories

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ggegelya/expensetracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrAccountTagExists = errors.New("account tag already exists")
	ErrNoDefaultAccount = errors.New("no default account configured")
)

// accountRepository implements AccountRepositoryInterface
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) AccountRepositoryInterface {
	return &accountRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *accountRepository) WithTx(tx *gorm.DB) AccountRepositoryInterface {
	return &accountRepository{db: tx}
}

// Create creates a new account
func (r *accountRepository) Create(account *models.Account) error {
	if err := r.db.Create(account).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrAccountTagExists
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetByID retrieves an account by ID
func (r *accountRepository) GetByID(id uuid.UUID) (*models.Account, error) {
	var account models.Account
	if err := r.db.Where("id = ?", id).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// GetByTag retrieves an account by its tag, case-insensitively
func (r *accountRepository) GetByTag(tag string) (*models.Account, error) {
	var account models.Account
	if err := r.db.Where("tag_normalized = ?", models.NormalizeTag(tag)).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account by tag: %w", err)
	}
	return &account, nil
}

// GetAll retrieves all accounts ordered by creation time
func (r *accountRepository) GetAll() ([]models.Account, error) {
	var accounts []models.Account
	if err := r.db.Order("created_at ASC").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to get accounts: %w", err)
	}
	return accounts, nil
}

// GetDefault retrieves the account marked as default
func (r *accountRepository) GetDefault() (*models.Account, error) {
	var account models.Account
	if err := r.db.Where("is_default = ?", true).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoDefaultAccount
		}
		return nil, fmt.Errorf("failed to get default account: %w", err)
	}
	return &account, nil
}

// Update updates an account
func (r *accountRepository) Update(account *models.Account) error {
	if err := r.db.Save(account).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrAccountTagExists
		}
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}

// Delete deletes an account
func (r *accountRepository) Delete(id uuid.UUID) error {
	result := r.db.Delete(&models.Account{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// ClearDefaultExcept unsets the default flag on every account except the given one
func (r *accountRepository) ClearDefaultExcept(id uuid.UUID) error {
	if err := r.db.Model(&models.Account{}).
		Where("id <> ? AND is_default = ?", id, true).
		Update("is_default", false).Error; err != nil {
		return fmt.Errorf("failed to clear default accounts: %w", err)
	}
	return nil
}

// AdjustBalance applies a signed delta to the stored account balance
func (r *accountRepository) AdjustBalance(id uuid.UUID, delta decimal.Decimal) error {
	result := r.db.Model(&models.Account{}).
		Where("id = ?", id).
		Update("balance", gorm.Expr("balance + ?", delta))
	if result.Error != nil {
		return fmt.Errorf("failed to adjust account balance: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// ReferencingTransactionCount counts transactions and pending imports that reference the account
func (r *accountRepository) ReferencingTransactionCount(id uuid.UUID) (int64, error) {
	var txnCount int64
	if err := r.db.Model(&models.Transaction{}).
		Where("from_account_id = ? OR to_account_id = ?", id, id).
		Count(&txnCount).Error; err != nil {
		return 0, fmt.Errorf("failed to count referencing transactions: %w", err)
	}

	var pendingCount int64
	if err := r.db.Model(&models.PendingTransaction{}).
		Where("account_id = ?", id).
		Count(&pendingCount).Error; err != nil {
		return 0, fmt.Errorf("failed to count referencing pending transactions: %w", err)
	}

	return txnCount + pendingCount, nil
}

// DerivedBalance computes the account balance from posted transactions.
// Only posting rows count, split children never post on their own.
func (r *accountRepository) DerivedBalance(id uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}

	err := r.db.Model(&models.Transaction{}).
		Select(`COALESCE(SUM(CASE
			WHEN transaction_type IN (?, ?) AND from_account_id = ? THEN -amount
			WHEN transaction_type IN (?, ?) AND to_account_id = ? THEN amount
			ELSE 0
		END), 0) AS total`,
			models.TransactionTypeExpense, models.TransactionTypeTransferOut, id,
			models.TransactionTypeIncome, models.TransactionTypeTransferIn, id).
		Where("parent_transaction_id IS NULL").
		Where("from_account_id = ? OR to_account_id = ?", id, id).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to derive account balance: %w", err)
	}

	return result.Total, nil
}

// isDuplicateKeyError detects unique violations from both the postgres
// runtime driver and the sqlite driver used in tests.
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}
